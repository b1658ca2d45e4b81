package render

import (
	"math"
	"strconv"
)

const (
	// MaxScore is the top of the answer scale; percentages are relative to it.
	MaxScore = 4.0

	// RadialMin and RadialMax bound the radial axis.
	RadialMin = 0.5
	RadialMax = 4.5

	// annotationOffset pushes the percentage text outward from its vertex.
	annotationOffset = 0.1
)

// Angles returns n axis angles evenly spaced around the circle, starting at 0.
func Angles(n int) []float64 {
	if n <= 0 {
		return nil
	}
	step := 2 * math.Pi / float64(n)
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) * step
	}
	return out
}

// ClosedPolygon returns the polygon vertices for scores as parallel angle and
// radius slices. The first vertex is repeated at the end to close the loop.
func ClosedPolygon(scores []float64) (angles, radii []float64) {
	if len(scores) == 0 {
		return nil, nil
	}
	angles = append(Angles(len(scores)), 0)
	radii = make([]float64, 0, len(scores)+1)
	radii = append(radii, scores...)
	radii = append(radii, scores[0])
	return angles, radii
}

// PercentLabel renders a score as a whole percentage of MaxScore, e.g. 3 → "75%".
func PercentLabel(score float64) string {
	return strconv.Itoa(int(math.Round(score/MaxScore*100))) + "%"
}
