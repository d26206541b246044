package component

// LevelState is the singleton progress record of the running level.
type LevelState struct {
	Name       string
	Complete   bool
	Failed     bool
	FailReason string
	Ticks      uint64
	Elapsed    float64
	TimeLimit  float64

	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

var LevelStateComponent = NewComponent[LevelState]()

func (s *LevelState) Over() bool {
	return s.Complete || s.Failed
}

func (s *LevelState) MarkComplete() bool {
	if s.Over() {
		return false
	}
	s.Complete = true
	return true
}

func (s *LevelState) MarkFailed(reason string) bool {
	if s.Over() {
		return false
	}
	s.Failed = true
	s.FailReason = reason
	return true
}

func (s *LevelState) InBounds(x, y float64) bool {
	return x >= s.MinX && x <= s.MaxX && y >= s.MinY && y <= s.MaxY
}
