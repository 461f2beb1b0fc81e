package sector

import (
	"errors"

	"gonum.org/v1/gonum/stat"

	"platescan/pkg/geometry"
)

// ErrEmptyDataset is returned when the centroid is requested for a plate
// with no holes. The load must abort rather than continue with a degenerate
// centroid.
var ErrEmptyDataset = errors.New("empty dataset")

// ComputeCentroid returns the arithmetic mean of all hole centers.
//
// The mean, not the bounding-box center, is deliberate: tube sheets are
// irregular, non-convex point clouds, and the mean keeps the four sector
// populations balanced where a box center visibly does not.
func ComputeCentroid(points []geometry.Point2D) (geometry.Point2D, error) {
	if len(points) == 0 {
		return geometry.Point2D{}, ErrEmptyDataset
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.X
		ys[i] = p.Y
	}
	return geometry.Point2D{
		X: stat.Mean(xs, nil),
		Y: stat.Mean(ys, nil),
	}, nil
}
