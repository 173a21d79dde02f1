package geo

// Attendance point and radius used when nothing is configured.
var (
	DefaultReference       = Point{Lat: -6.357272186780644, Lng: 106.81912983857849}
	DefaultThresholdMeters = 90.0
)

// Fence is a circular geofence around a single reference point.
type Fence struct {
	Reference       Point
	ThresholdMeters float64
}

// DefaultFence is the attendance point shipped with the app.
var DefaultFence = Fence{Reference: DefaultReference, ThresholdMeters: DefaultThresholdMeters}

// Decision is the result of evaluating one fix against a fence.
type Decision struct {
	Fix            Point
	DistanceMeters float64
	Admit          bool
}

// Contains reports whether fix is strictly closer than the threshold.
// A fix exactly on the boundary is outside.
func (f Fence) Contains(fix Point) bool {
	return DistanceMeters(fix, f.Reference) < f.ThresholdMeters
}

func (f Fence) Evaluate(fix Point) Decision {
	d := DistanceMeters(fix, f.Reference)
	return Decision{Fix: fix, DistanceMeters: d, Admit: d < f.ThresholdMeters}
}
