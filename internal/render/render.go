// Package render draws the plate views consumed by the UI: the panorama
// (every hole, all four sectors) and the focused single-sector detail view.
// Rendering works from engine snapshots only; it owns the actual RGB values
// for statuses and color tiers.
package render

import (
	"image"
	"image/color"

	"platescan/internal/hole"
	"platescan/internal/sector"
	"platescan/pkg/geometry"
)

// Options configures plate rendering.
type Options struct {
	Width, Height int
	Margin        int     // Pixel margin around the plate
	MinHoleRadius int     // Holes never render smaller than this
	SectorTint    uint8   // Alpha of the per-sector progress tint
	AxisWidth     int     // Width of the centroid axis lines
	TintFocused   bool    // Highlight the focused sector in the panorama
}

// DefaultOptions returns the rendering options used by the main window.
func DefaultOptions() Options {
	return Options{
		Width:         1000,
		Height:        1000,
		Margin:        24,
		MinHoleRadius: 2,
		SectorTint:    40,
		AxisWidth:     1,
		TintFocused:   true,
	}
}

var statusColors = map[hole.Status]color.RGBA{
	hole.StatusPending:    {130, 130, 130, 255},
	hole.StatusProcessing: {70, 130, 220, 255},
	hole.StatusQualified:  {60, 170, 80, 255},
	hole.StatusDefective:  {210, 60, 50, 255},
	hole.StatusBlind:      {150, 120, 180, 255},
	hole.StatusTieRod:     {200, 160, 60, 255},
}

var tierColors = map[sector.ColorTier]color.RGBA{
	sector.TierGreen:  {60, 170, 80, 255},
	sector.TierYellow: {220, 200, 60, 255},
	sector.TierOrange: {230, 140, 40, 255},
	sector.TierRed:    {210, 60, 50, 255},
}

var (
	backgroundColor = color.RGBA{40, 40, 40, 255} // Dark gray background
	axisColor       = color.RGBA{90, 90, 90, 255}
	focusColor      = color.RGBA{240, 240, 240, 255}
)

// StatusColor returns the display color for a hole status.
func StatusColor(s hole.Status) color.RGBA {
	if c, ok := statusColors[s]; ok {
		return c
	}
	return statusColors[hole.StatusPending]
}

// TierColor returns the display color for a sector progress tier.
func TierColor(t sector.ColorTier) color.RGBA {
	if c, ok := tierColors[t]; ok {
		return c
	}
	return tierColors[sector.TierRed]
}

// Scene bundles the engine snapshots one frame is rendered from.
type Scene struct {
	Holes      []hole.Hole
	Centroid   geometry.Point2D
	Aggregates [sector.SectorCount]sector.Aggregate
	Focus      sector.Sector
}

// bounds returns the drawing-space region the scene occupies, padded so
// hole outlines at the edge stay inside the canvas.
func (s Scene) bounds() geometry.Rect {
	points := make([]geometry.Point2D, len(s.Holes))
	maxRadius := 0.0
	for i, h := range s.Holes {
		points[i] = h.Center
		if h.Radius > maxRadius {
			maxRadius = h.Radius
		}
	}
	return geometry.BoundingBox(points).Expand(maxRadius + 1)
}

// Transform returns the drawing-to-pixel transform for the panorama.
func (s Scene) Transform(opts Options) geometry.AffineTransform {
	canvas := geometry.Rect{
		X:      float64(opts.Margin),
		Y:      float64(opts.Margin),
		Width:  float64(opts.Width - 2*opts.Margin),
		Height: float64(opts.Height - 2*opts.Margin),
	}
	return geometry.FitRect(s.bounds(), canvas)
}

// HoleAt maps a pixel position back to the hole under it, for click
// hit-testing in the panorama. Returns false if no hole covers the point.
func (s Scene) HoleAt(px, py float64, opts Options) (hole.Hole, bool) {
	tf := s.Transform(opts)
	inv, ok := tf.Inverse()
	if !ok {
		return hole.Hole{}, false
	}
	p := inv.Apply(geometry.Point2D{X: px, Y: py})

	// Small holes render at MinHoleRadius pixels; accept clicks at the
	// rendered size so tiny holes stay clickable.
	minR := 0.0
	if tf.A > 0 {
		minR = float64(opts.MinHoleRadius) / tf.A
	}
	for _, h := range s.Holes {
		r := h.Radius
		if r < minR {
			r = minR
		}
		if c := (geometry.Circle{Center: h.Center, Radius: r}); c.Contains(p) {
			return h, true
		}
	}
	return hole.Hole{}, false
}

// Panorama renders the full-plate overview: every hole colored by status,
// the centroid axes, and each sector quarter tinted by its progress tier.
func Panorama(s Scene, opts Options) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	fillBackground(img)

	if len(s.Holes) == 0 {
		return img
	}

	tf := s.Transform(opts)
	c := tf.Apply(s.Centroid)
	cx, cy := int(c.X+0.5), int(c.Y+0.5)

	// Sector progress tint. Each sector occupies one quarter of the canvas
	// split at the projected centroid; Sector1 holds dx>=0, dy>=0.
	quarter := func(sec sector.Sector) image.Rectangle {
		switch sec {
		case sector.Sector1:
			return image.Rect(cx, cy, opts.Width, opts.Height)
		case sector.Sector2:
			return image.Rect(0, cy, cx, opts.Height)
		case sector.Sector3:
			return image.Rect(0, 0, cx, cy)
		default:
			return image.Rect(cx, 0, opts.Width, cy)
		}
	}
	for _, sec := range sector.All() {
		tint := TierColor(sector.ColorFor(s.Aggregates[sec]))
		tint.A = opts.SectorTint
		blendRect(img, quarter(sec), tint)
	}

	// Centroid axes.
	for w := 0; w < opts.AxisWidth; w++ {
		drawHLine(img, 0, opts.Width, cy+w, axisColor)
		drawVLine(img, cx+w, 0, opts.Height, axisColor)
	}

	// Holes on top.
	for _, h := range s.Holes {
		p := tf.Apply(h.Center)
		r := int(h.Radius*tf.A + 0.5)
		if r < opts.MinHoleRadius {
			r = opts.MinHoleRadius
		}
		col := StatusColor(h.Status)
		fillCircle(img, int(p.X+0.5), int(p.Y+0.5), r, col)
		drawCircle(img, int(p.X+0.5), int(p.Y+0.5), r, darken(col, 0.3))
	}

	// Outline the focused quarter.
	if opts.TintFocused {
		drawRectOutline(img, quarter(s.Focus), 2, focusColor)
	}

	return img
}

// Focused renders the detail view: only the focused sector's holes, scaled
// to fill the canvas.
func Focused(s Scene, opts Options) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	fillBackground(img)

	var focused []hole.Hole
	for _, h := range s.Holes {
		if sector.Classify(s.Centroid, h.Center) == s.Focus {
			focused = append(focused, h)
		}
	}
	if len(focused) == 0 {
		return img
	}

	sub := Scene{Holes: focused, Centroid: s.Centroid, Focus: s.Focus}
	tf := sub.Transform(opts)
	for _, h := range focused {
		p := tf.Apply(h.Center)
		r := int(h.Radius*tf.A + 0.5)
		if r < opts.MinHoleRadius {
			r = opts.MinHoleRadius
		}
		col := StatusColor(h.Status)
		fillCircle(img, int(p.X+0.5), int(p.Y+0.5), r, col)
		drawCircle(img, int(p.X+0.5), int(p.Y+0.5), r, darken(col, 0.3))
	}
	return img
}

func fillBackground(img *image.RGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetRGBA(x, y, backgroundColor)
		}
	}
}

// blendRect alpha-blends a translucent color over a rectangle.
func blendRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	r = r.Intersect(img.Bounds())
	a := int(c.A)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			base := img.RGBAAt(x, y)
			img.SetRGBA(x, y, color.RGBA{
				R: uint8((int(base.R)*(255-a) + int(c.R)*a) / 255),
				G: uint8((int(base.G)*(255-a) + int(c.G)*a) / 255),
				B: uint8((int(base.B)*(255-a) + int(c.B)*a) / 255),
				A: 255,
			})
		}
	}
}

// fillCircle fills a circle with the given color.
func fillCircle(img *image.RGBA, cx, cy, r int, c color.RGBA) {
	bounds := img.Bounds()
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				x, y := cx+dx, cy+dy
				if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
					img.SetRGBA(x, y, c)
				}
			}
		}
	}
}

// drawCircle draws a circle outline using the midpoint algorithm.
func drawCircle(img *image.RGBA, cx, cy, r int, c color.RGBA) {
	bounds := img.Bounds()
	set := func(x, y int) {
		if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
			img.SetRGBA(x, y, c)
		}
	}

	x, y := r, 0
	err := 0
	for x >= y {
		set(cx+x, cy+y)
		set(cx+y, cy+x)
		set(cx-y, cy+x)
		set(cx-x, cy+y)
		set(cx-x, cy-y)
		set(cx-y, cy-x)
		set(cx+y, cy-x)
		set(cx+x, cy-y)

		y++
		err += 1 + 2*y
		if 2*(err-x)+1 > 0 {
			x--
			err += 1 - 2*x
		}
	}
}

func drawHLine(img *image.RGBA, x1, x2, y int, c color.RGBA) {
	b := img.Bounds()
	if y < b.Min.Y || y >= b.Max.Y {
		return
	}
	for x := max(x1, b.Min.X); x < min(x2, b.Max.X); x++ {
		img.SetRGBA(x, y, c)
	}
}

func drawVLine(img *image.RGBA, x, y1, y2 int, c color.RGBA) {
	b := img.Bounds()
	if x < b.Min.X || x >= b.Max.X {
		return
	}
	for y := max(y1, b.Min.Y); y < min(y2, b.Max.Y); y++ {
		img.SetRGBA(x, y, c)
	}
}

func drawRectOutline(img *image.RGBA, r image.Rectangle, width int, c color.RGBA) {
	for w := 0; w < width; w++ {
		drawHLine(img, r.Min.X, r.Max.X, r.Min.Y+w, c)
		drawHLine(img, r.Min.X, r.Max.X, r.Max.Y-1-w, c)
		drawVLine(img, r.Min.X+w, r.Min.Y, r.Max.Y, c)
		drawVLine(img, r.Max.X-1-w, r.Min.Y, r.Max.Y, c)
	}
}

// darken reduces each channel by the given factor.
func darken(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * (1 - factor)),
		G: uint8(float64(c.G) * (1 - factor)),
		B: uint8(float64(c.B) * (1 - factor)),
		A: c.A,
	}
}
