package sector

import "platescan/pkg/geometry"

// Classify assigns a point to exactly one sector based on the sign of its
// offset from the centroid:
//
//	dx >= 0, dy >= 0  ->  Sector1
//	dx <  0, dy >= 0  ->  Sector2
//	dx <  0, dy <  0  ->  Sector3
//	dx >= 0, dy <  0  ->  Sector4
//
// Zero offsets fold into the non-negative side, so the positive X axis
// belongs to Sector1 and the positive Y axis to Sector1/Sector2. Holes that
// land exactly on an axis are a real occurrence in regular grid layouts;
// the fold guarantees every point maps to exactly one sector.
func Classify(centroid, point geometry.Point2D) Sector {
	dx := point.X - centroid.X
	dy := point.Y - centroid.Y

	if dx >= 0 {
		if dy >= 0 {
			return Sector1
		}
		return Sector4
	}
	if dy >= 0 {
		return Sector2
	}
	return Sector3
}
