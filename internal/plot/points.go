package plot

// Point is one sample of a line plot. X is the cycle index within the window.
type Point struct {
	X float64
	Y float64
}

// Derivative replaces each point's Y by the slope to the next point and
// drops the last point, which has no successor.
func Derivative(points []Point) []Point {
	if len(points) == 0 {
		return points
	}
	for i := range len(points) - 1 {
		dx := points[i+1].X - points[i].X
		points[i].Y = (points[i+1].Y - points[i].Y) / dx
	}
	return points[:len(points)-1]
}
