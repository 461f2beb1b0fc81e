// Package plateview provides the plate display widget: a raster of the
// panorama or focused sector view with click-to-select hit testing.
package plateview

import (
	"image"
	"sync"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"platescan/internal/hole"
	"platescan/internal/render"
)

// Mode selects which view the widget renders.
type Mode int

const (
	// ModePanorama shows the whole plate, all four sectors.
	ModePanorama Mode = iota
	// ModeFocused shows only the focused sector, scaled up.
	ModeFocused
)

// PlateView displays a rendered plate and reports hole clicks.
type PlateView struct {
	widget.BaseWidget

	mu    sync.Mutex
	scene render.Scene
	mode  Mode

	// Last raster geometry, for mapping tap positions to pixels.
	lastW, lastH int

	raster *fynecanvas.Raster

	// OnHoleTapped is called with the hole under a tap, panorama mode only.
	OnHoleTapped func(h hole.Hole)
}

// New creates a plate view in the given mode.
func New(mode Mode) *PlateView {
	v := &PlateView{mode: mode}
	v.raster = fynecanvas.NewRaster(v.draw)
	v.ExtendBaseWidget(v)
	return v
}

// CreateRenderer implements fyne.Widget.
func (v *PlateView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.raster)
}

// MinSize implements fyne.Widget.
func (v *PlateView) MinSize() fyne.Size {
	return fyne.NewSize(240, 240)
}

// SetScene replaces the displayed scene and repaints.
func (v *PlateView) SetScene(s render.Scene) {
	v.mu.Lock()
	v.scene = s
	v.mu.Unlock()
	v.raster.Refresh()
}

// SetMode switches between panorama and focused display.
func (v *PlateView) SetMode(m Mode) {
	v.mu.Lock()
	v.mode = m
	v.mu.Unlock()
	v.raster.Refresh()
}

func (v *PlateView) draw(w, h int) image.Image {
	v.mu.Lock()
	scene := v.scene
	mode := v.mode
	v.lastW, v.lastH = w, h
	v.mu.Unlock()

	opts := render.DefaultOptions()
	opts.Width, opts.Height = w, h
	if w < 1 || h < 1 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	if mode == ModeFocused {
		return render.Focused(scene, opts)
	}
	return render.Panorama(scene, opts)
}

// Tapped implements fyne.Tappable: maps the tap to a hole and reports it.
func (v *PlateView) Tapped(e *fyne.PointEvent) {
	v.mu.Lock()
	scene := v.scene
	mode := v.mode
	lastW, lastH := v.lastW, v.lastH
	v.mu.Unlock()

	if mode != ModePanorama || v.OnHoleTapped == nil || lastW == 0 {
		return
	}

	// Raster pixels may be denser than fyne units on HiDPI displays.
	size := v.Size()
	if size.Width <= 0 || size.Height <= 0 {
		return
	}
	px := float64(e.Position.X) * float64(lastW) / float64(size.Width)
	py := float64(e.Position.Y) * float64(lastH) / float64(size.Height)

	opts := render.DefaultOptions()
	opts.Width, opts.Height = lastW, lastH
	if h, ok := scene.HoleAt(px, py, opts); ok {
		v.OnHoleTapped(h)
	}
}
