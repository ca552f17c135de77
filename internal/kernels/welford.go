package kernels

// runningMean accumulates a mean incrementally via Welford's algorithm,
// adapted from the teacher's sched.stat (internal/sched/sched.go) which
// used the same recurrence to track per-pool wait/run latency. Here it
// tracks Data_Value means per kernel grouping instead of scheduler
// latency, but the accumulation itself is unchanged.
type runningMean struct {
	n    int64
	mean float64
}

func (s *runningMean) add(x float64) {
	s.n++
	delta := x - s.mean
	s.mean += delta / float64(s.n)
}

func (s *runningMean) count() int64   { return s.n }
func (s *runningMean) value() float64 { return s.mean }
