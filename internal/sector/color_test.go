package sector

import "testing"

func TestColorForThresholds(t *testing.T) {
	cases := []struct {
		name      string
		completed int
		total     int
		want      ColorTier
	}{
		{"full", 100, 100, TierGreen},
		{"exactly 90", 90, 100, TierGreen},
		{"just under 90", 89, 100, TierYellow},
		{"exactly 60", 60, 100, TierYellow},
		{"just under 60", 59, 100, TierOrange},
		{"exactly 30", 30, 100, TierOrange},
		{"just under 30", 29, 100, TierRed},
		{"nothing done", 0, 100, TierRed},
		{"empty sector", 0, 0, TierRed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			agg := Aggregate{TotalHoles: tc.total, CompletedHoles: tc.completed}
			if got := ColorFor(agg); got != tc.want {
				t.Fatalf("ColorFor(%d/%d) = %v, want %v", tc.completed, tc.total, got, tc.want)
			}
		})
	}
}
