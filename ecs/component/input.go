package component

// Input stores the per-tick intent driving the player.
type Input struct {
	MoveX  float64
	Jump   bool
	Freeze bool
}

var InputComponent = NewComponent[Input]()
