package macro

import (
	"math"
	"sort"
)

// MapTiles is the side of an unscaled map in percent-tiles.
const MapTiles = 100

const mapCenter = MapTiles / 2

// Point is a tile on the unscaled map.
type Point struct{ X, Y int }

// angleOf returns the counter-clockwise angle of p around the map center
// in [0, 2π).
func angleOf(p Point) float64 {
	a := math.Atan2(float64(p.Y-mapCenter), float64(p.X-mapCenter))
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

func sortByAngle(points []Point) {
	sort.SliceStable(points, func(i, j int) bool {
		return angleOf(points[i]) < angleOf(points[j])
	})
}

// RingPoints returns the tiles whose distance from the map center is within
// 0.25 of radius, ordered counter-clockwise.
func RingPoints(radius float64) []Point {
	var points []Point
	for x := 0; x < MapTiles; x++ {
		for y := 0; y < MapTiles; y++ {
			dx, dy := float64(x-mapCenter), float64(y-mapCenter)
			if math.Abs(math.Hypot(dx, dy)-radius) <= 0.25 {
				points = append(points, Point{x, y})
			}
		}
	}
	sortByAngle(points)
	return points
}

// SquarePoints returns the tiles on the sides of the square
// [inset, 100-inset]², leaving out cut tiles at each corner.
func SquarePoints(inset, cut int) []Point {
	lo, hi := inset, MapTiles-inset
	var points []Point
	for i := lo + cut; i <= hi-cut; i++ {
		points = append(points,
			Point{i, lo}, Point{lo, i},
			Point{i, hi}, Point{hi, i},
		)
	}
	sortByAngle(points)
	return points
}

// Select100 picks 100 evenly spaced points. It fails when points is too
// short to yield 100 distinct indices.
func Select100(points []Point) ([]Point, bool) {
	out := make([]Point, 0, 100)
	for i := 0; i < 100; i++ {
		j := int(math.Round(float64(i) * float64(len(points)) / 100))
		if j >= len(points) {
			return nil, false
		}
		out = append(out, points[j])
	}
	return out, true
}

// PointOffsets returns the index range [left, right] of points that are at
// least angle degrees away from points[0] in both directions.
func PointOffsets(points []Point, angle int) (left, right int, ok bool) {
	if len(points) == 0 {
		return 0, 0, false
	}
	minDeg := float64(angle)
	maxDeg := 360 - minDeg
	theta0 := angleOf(points[0])
	left, right = -1, -1
	for i, p := range points {
		theta := (angleOf(p) - theta0) * 180 / math.Pi
		if theta >= minDeg && left < 0 {
			left = i
		}
		if theta > maxDeg && right < 0 {
			right = i - 1
			break
		}
	}
	if left < 0 || right < left {
		return 0, 0, false
	}
	return left, right, true
}

// Probabilities returns 100 integer percents, nonzero only on [left, right],
// shaped like a Gaussian centered on the range and summing to exactly 100.
func Probabilities(left, right int) []int {
	mu := float64(left+right) / 2
	sigma := float64(left) / 2
	if sigma == 0 {
		sigma = 0.5
	}
	scale := 1 / sigma * math.Sqrt(2*math.Pi)
	raw := make([]float64, 100)
	var total float64
	for i := range raw {
		if i < left || i > right {
			continue
		}
		z := (float64(i) - mu) / sigma
		raw[i] = scale * math.Exp(-0.5*z*z)
	}
	for _, p := range raw {
		total += p
	}
	probs := make([]int, 100)
	for i := range raw {
		probs[i] = int(math.Round(raw[i] / total * 100))
	}
	renormalize(probs, left, right)
	return probs
}

// renormalize fixes rounding drift: a shortfall goes to the middle of the
// range, an excess is shaved one percent at a time off the larger tail.
func renormalize(probs []int, left, right int) {
	total := 0
	for _, p := range probs {
		total += p
	}
	if total < 100 {
		probs[(left+right)/2] += 100 - total
		return
	}
	i, j := 0, len(probs)-1
	for i < len(probs) && probs[i] == 0 {
		i++
	}
	for j > 0 && probs[j] == 0 {
		j--
	}
	for ; total > 100; total-- {
		x, y := probs[i], probs[j]
		if x >= y {
			probs[i]--
			if x == 1 {
				i++
			}
		} else {
			probs[j]--
			if y == 1 {
				j--
			}
		}
	}
}

// CirclePoints places n points on the circle of radius r around (cx, cy),
// the i-th at angle i·2π/n. Coordinates are rounded half away from zero.
func CirclePoints(n int, r, cx, cy float64) []Point {
	out := make([]Point, 0, n)
	step := 2 * math.Pi / float64(n)
	for i := 0; i < n; i++ {
		theta := float64(i) * step
		out = append(out, Point{
			X: int(math.Round(cx + r*math.Cos(theta))),
			Y: int(math.Round(cy + r*math.Sin(theta))),
		})
	}
	return out
}

// PerimeterPoints spaces n points evenly along the square [inset,
// 100-inset]², counter-clockwise from the middle of the right side.
func PerimeterPoints(n int, inset float64) []Point {
	lo, hi := inset, MapTiles-inset
	side := hi - lo
	perimeter := 4 * side
	out := make([]Point, 0, n)
	for k := 0; k < n; k++ {
		d := math.Mod(float64(k)*perimeter/float64(n)+side/2, perimeter)
		var x, y float64
		switch {
		case d < side: // правая сторона, вверх
			x, y = hi, lo+d
		case d < 2*side: // верхняя, влево
			x, y = hi-(d-side), hi
		case d < 3*side: // левая, вниз
			x, y = lo, hi-(d-2*side)
		default: // нижняя, вправо
			x, y = lo+(d-3*side), lo
		}
		out = append(out, Point{X: int(math.Round(x)), Y: int(math.Round(y))})
	}
	return out
}

// InMap reports whether p is a valid coordinate.
func InMap(p Point) bool {
	return p.X >= 0 && p.X <= MapTiles && p.Y >= 0 && p.Y <= MapTiles
}
