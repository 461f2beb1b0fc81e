// Package panels provides the side panel with per-sector progress and
// detection pass controls.
package panels

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"platescan/internal/app"
	"platescan/internal/detect"
	"platescan/internal/render"
	"platescan/internal/sector"
)

// refreshInterval throttles live statistics updates during a pass; a
// 25k-hole plate delivers far too many events to repaint per event.
const refreshInterval = 100 * time.Millisecond

// SectorPanel shows one progress card per sector plus pass controls.
type SectorPanel struct {
	session *app.Session

	mu          sync.Mutex
	lastRefresh time.Time
	cancelPass  context.CancelFunc

	cards     [sector.SectorCount]*sectorCard
	startBtn  *widget.Button
	stopBtn   *widget.Button
	totalLbl  *widget.Label
	container *fyne.Container
}

// sectorCard is the stats block for one sector.
type sectorCard struct {
	sec      sector.Sector
	tier     *fynecanvas.Rectangle
	title    *widget.Label
	stats    *widget.Label
	focusBtn *widget.Button
}

// NewSectorPanel creates the panel and subscribes it to session events.
func NewSectorPanel(session *app.Session) *SectorPanel {
	p := &SectorPanel{session: session}

	var cardBoxes []fyne.CanvasObject
	for _, sec := range sector.All() {
		card := &sectorCard{
			sec:   sec,
			tier:  fynecanvas.NewRectangle(render.TierColor(sector.TierRed)),
			title: widget.NewLabel(sectorTitle(sec)),
			stats: widget.NewLabel(""),
		}
		card.tier.SetMinSize(fyne.NewSize(12, 12))
		s := sec
		card.focusBtn = widget.NewButton("Focus", func() {
			if err := session.SwitchFocus(s); err != nil {
				log.Printf("Switch focus: %v", err)
			}
		})
		p.cards[sec] = card

		header := container.NewHBox(card.tier, card.title, card.focusBtn)
		cardBoxes = append(cardBoxes, container.NewVBox(header, card.stats, widget.NewSeparator()))
	}

	p.startBtn = widget.NewButton("Run Simulated Pass", p.startSimulatedPass)
	p.stopBtn = widget.NewButton("Stop Pass", p.stopPass)
	p.stopBtn.Disable()
	p.totalLbl = widget.NewLabel("No plate loaded")

	items := append([]fyne.CanvasObject{p.totalLbl, widget.NewSeparator()}, cardBoxes...)
	items = append(items, p.startBtn, p.stopBtn)
	p.container = container.NewVBox(items...)

	session.On(app.EventPlateLoaded, func(interface{}) { p.Refresh() })
	session.On(app.EventFocusChanged, func(interface{}) { p.Refresh() })
	session.On(app.EventStatusChanged, func(interface{}) { p.throttledRefresh() })
	session.On(app.EventPassStarted, func(interface{}) {
		p.startBtn.Disable()
		p.stopBtn.Enable()
	})
	session.On(app.EventPassFinished, func(interface{}) {
		p.startBtn.Enable()
		p.stopBtn.Disable()
		p.Refresh()
	})

	p.Refresh()
	return p
}

// Container returns the panel's root object.
func (p *SectorPanel) Container() fyne.CanvasObject {
	return p.container
}

// Refresh repaints all sector cards from fresh session snapshots.
func (p *SectorPanel) Refresh() {
	if !p.session.Loaded() {
		p.totalLbl.SetText("No plate loaded")
		for _, card := range p.cards {
			card.stats.SetText("")
		}
		return
	}

	aggs := p.session.Aggregates()
	focus := p.session.Focus()

	total, completed := 0, 0
	for _, sec := range sector.All() {
		agg := aggs[sec]
		total += agg.TotalHoles
		completed += agg.CompletedHoles

		card := p.cards[sec]
		card.tier.FillColor = render.TierColor(sector.ColorFor(agg))
		card.tier.Refresh()

		title := sectorTitle(sec)
		if sec == focus {
			title += "  [focused]"
		}
		card.title.SetText(title)
		card.stats.SetText(fmt.Sprintf(
			"%d/%d done  ✓%d ✗%d\ncompletion %.1f%%  qualification %.1f%%",
			agg.CompletedHoles, agg.TotalHoles,
			agg.QualifiedHoles, agg.DefectiveHoles,
			agg.CompletionRate()*100, agg.QualificationRate()*100,
		))
	}
	p.totalLbl.SetText(fmt.Sprintf("%s — %d/%d holes inspected",
		p.session.Source(), completed, total))
}

func (p *SectorPanel) throttledRefresh() {
	p.mu.Lock()
	if time.Since(p.lastRefresh) < refreshInterval {
		p.mu.Unlock()
		return
	}
	p.lastRefresh = time.Now()
	p.mu.Unlock()
	p.Refresh()
}

func (p *SectorPanel) startSimulatedPass() {
	if !p.session.Loaded() || p.session.PassActive() {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.mu.Lock()
	p.cancelPass = cancel
	p.mu.Unlock()

	go func() {
		defer cancel()
		drv := detect.NewSimDriver(detect.DefaultSimParams())
		if err := p.session.RunPass(ctx, drv); err != nil && err != context.Canceled {
			log.Printf("Detection pass failed: %v", err)
		}
	}()
}

func (p *SectorPanel) stopPass() {
	p.mu.Lock()
	cancel := p.cancelPass
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func sectorTitle(s sector.Sector) string {
	switch s {
	case sector.Sector1:
		return "Sector 1 (+x, +y)"
	case sector.Sector2:
		return "Sector 2 (-x, +y)"
	case sector.Sector3:
		return "Sector 3 (-x, -y)"
	default:
		return "Sector 4 (+x, -y)"
	}
}
