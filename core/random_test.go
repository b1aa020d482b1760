package core

// scriptedSource replays values in order and wraps around. Each value is
// returned as-is from Intn, so with a [-1, 1) range 0 means a -1 step and
// 1 means no step.
type scriptedSource struct {
	values []int
	next   int
	calls  int
}

func (s *scriptedSource) Intn(n int) int {
	s.calls++
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	if v >= n {
		v = n - 1
	}
	if v < 0 {
		v = 0
	}
	return v
}

func constSource(v int) *scriptedSource {
	return &scriptedSource{values: []int{v}}
}
