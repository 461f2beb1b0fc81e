package detect

import (
	"context"
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"

	"platescan/internal/hole"
	"platescan/pkg/geometry"
)

// VisionParams configures frame analysis for the vision driver.
type VisionParams struct {
	// PixelsPerUnit converts drawing units to frame pixels for the rig's
	// fixed camera standoff.
	PixelsPerUnit float64
	// RadiusTolerance is the allowed relative deviation between measured
	// and nominal hole radius before the hole is declared defective.
	RadiusTolerance float64
	// MinCircularity rejects ragged bores. 1.0 is a perfect circle.
	MinCircularity float64
	// BlurKernel is the Gaussian blur kernel edge (odd).
	BlurKernel int
}

// DefaultVisionParams returns parameters tuned on the reference rig.
func DefaultVisionParams() VisionParams {
	return VisionParams{
		PixelsPerUnit:   12.0,
		RadiusTolerance: 0.15,
		MinCircularity:  0.82,
		BlurKernel:      5,
	}
}

// Measurement is the geometric result of analyzing one hole frame.
type Measurement struct {
	Center      geometry.Point2D // Bore center in frame pixels
	RadiusPx    float64          // Measured bore radius in pixels
	Circularity float64          // 4*pi*area/perimeter^2
}

// FrameSource supplies one camera frame per hole. The rig positions the
// camera over the hole before the frame is taken; frame acquisition is the
// rig's concern, not this package's.
type FrameSource interface {
	Frame(ctx context.Context, holeID string) (gocv.Mat, error)
}

// VisionDriver classifies holes from camera frames: the bore must be
// present, round, and within radius tolerance to qualify.
type VisionDriver struct {
	source FrameSource
	params VisionParams
	seq    uint64
}

// NewVisionDriver creates a vision driver reading frames from source.
func NewVisionDriver(source FrameSource, params VisionParams) *VisionDriver {
	return &VisionDriver{source: source, params: params}
}

// Name implements Driver.
func (d *VisionDriver) Name() string { return "vision" }

// Run implements Driver.
func (d *VisionDriver) Run(ctx context.Context, holes []hole.Hole, events chan<- StatusEvent) error {
	for _, h := range holes {
		if h.Status == hole.StatusBlind || h.Status == hole.StatusTieRod {
			if err := d.emit(ctx, events, h.ID, h.Status); err != nil {
				return err
			}
			continue
		}

		if err := d.emit(ctx, events, h.ID, hole.StatusProcessing); err != nil {
			return err
		}

		frame, err := d.source.Frame(ctx, h.ID)
		if err != nil {
			return fmt.Errorf("frame for %s: %w", h.ID, err)
		}

		verdict := hole.StatusDefective
		if m, ok := AnalyzeFrame(frame, d.params); ok && d.withinTolerance(m, h.Radius) {
			verdict = hole.StatusQualified
		}
		frame.Close()

		if err := d.emit(ctx, events, h.ID, verdict); err != nil {
			return err
		}
	}
	return nil
}

func (d *VisionDriver) withinTolerance(m Measurement, nominalRadius float64) bool {
	expected := nominalRadius * d.params.PixelsPerUnit
	if expected <= 0 {
		return true // no nominal radius to check against
	}
	return math.Abs(m.RadiusPx-expected)/expected <= d.params.RadiusTolerance
}

func (d *VisionDriver) emit(ctx context.Context, events chan<- StatusEvent, holeID string, status hole.Status) error {
	d.seq++
	select {
	case <-ctx.Done():
		return ctx.Err()
	case events <- StatusEvent{HoleID: holeID, NewStatus: status, Seq: d.seq}:
		return nil
	}
}

// AnalyzeFrame locates the bore in a hole frame and measures it. The bore
// shows as the dark region against the lit plate surface: grayscale, blur,
// inverted Otsu threshold, then the largest contour is the bore candidate.
// Returns false when no plausible bore is found.
func AnalyzeFrame(frame gocv.Mat, params VisionParams) (Measurement, bool) {
	if frame.Empty() {
		return Measurement{}, false
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	k := params.BlurKernel
	if k < 3 {
		k = 3
	}
	if k%2 == 0 {
		k++
	}
	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Pt(k, k), 0, 0, gocv.BorderDefault)

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.Threshold(blurred, &binary, 0, 255, gocv.ThresholdBinaryInv+gocv.ThresholdOtsu)

	contours := gocv.FindContours(binary, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	best := -1
	bestArea := 0.0
	for i := 0; i < contours.Size(); i++ {
		area := gocv.ContourArea(contours.At(i))
		if area > bestArea {
			bestArea = area
			best = i
		}
	}
	if best < 0 || bestArea < 9 {
		return Measurement{}, false
	}

	contour := contours.At(best)
	perimeter := gocv.ArcLength(contour, true)
	if perimeter <= 0 {
		return Measurement{}, false
	}
	circularity := 4 * math.Pi * bestArea / (perimeter * perimeter)

	x, y, radius := gocv.MinEnclosingCircle(contour)
	m := Measurement{
		Center:      geometry.Point2D{X: float64(x), Y: float64(y)},
		RadiusPx:    float64(radius),
		Circularity: circularity,
	}
	return m, circularity >= params.MinCircularity
}
