package engine

// TrajectoryCapacity bounds the number of pointer samples kept per hold.
const TrajectoryCapacity = 100

type point struct {
	x, y float64
}

// Trajectory is a sliding window of the most recent pointer samples.
// Once full, each new sample evicts the oldest one.
type Trajectory struct {
	samples [TrajectoryCapacity]point
	start   int
	n       int
}

// Add appends a sample.
func (t *Trajectory) Add(x, y float64) {
	p := point{x: x, y: y}
	if t.n < TrajectoryCapacity {
		t.samples[(t.start+t.n)%TrajectoryCapacity] = p
		t.n++
		return
	}
	t.samples[t.start] = p
	t.start = (t.start + 1) % TrajectoryCapacity
}

// Len returns the number of retained samples.
func (t *Trajectory) Len() int {
	return t.n
}

// Average returns the mean of the retained samples; ok is false when empty.
func (t *Trajectory) Average() (x, y float64, ok bool) {
	if t.n == 0 {
		return 0, 0, false
	}
	var sx, sy float64
	for i := 0; i < t.n; i++ {
		p := t.samples[(t.start+i)%TrajectoryCapacity]
		sx += p.x
		sy += p.y
	}
	return sx / float64(t.n), sy / float64(t.n), true
}

// Reset drops all samples.
func (t *Trajectory) Reset() {
	t.start = 0
	t.n = 0
}
