package sector

import (
	"errors"
	"testing"
)

func TestViewCoordinatorDefaultsAndSwitch(t *testing.T) {
	idx, _ := cornerPlate(t)
	v := NewViewCoordinator(idx)

	if v.Focus() != Sector1 {
		t.Fatalf("default focus = %v, want %v", v.Focus(), Sector1)
	}

	if err := v.SwitchFocus(Sector2); err != nil {
		t.Fatalf("SwitchFocus: %v", err)
	}
	if v.Focus() != Sector2 {
		t.Fatalf("focus = %v after switch, want %v", v.Focus(), Sector2)
	}

	// B at (-1,+1) is the only sector-2 hole.
	focused := v.FocusedHoles()
	if len(focused) != 1 || focused[0] != "B" {
		t.Fatalf("FocusedHoles = %v, want [B]", focused)
	}

	// The panorama list is unaffected by focus.
	all := v.AllHoles()
	if len(all) != 4 {
		t.Fatalf("AllHoles = %v, want all four ids", all)
	}

	v.Reset()
	if v.Focus() != Sector1 {
		t.Fatalf("focus after reset = %v, want %v", v.Focus(), Sector1)
	}
}

func TestViewCoordinatorRejectsInvalidSector(t *testing.T) {
	idx, _ := cornerPlate(t)
	v := NewViewCoordinator(idx)

	if err := v.SwitchFocus(Sector(17)); !errors.Is(err, ErrUnknownSector) {
		t.Fatalf("expected ErrUnknownSector, got %v", err)
	}
	if v.Focus() != Sector1 {
		t.Fatalf("failed switch moved focus to %v", v.Focus())
	}
}
