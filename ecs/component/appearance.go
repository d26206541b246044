package component

// Appearance is render-only data and never affects simulation.
type Appearance struct {
	Color   string
	Texture string
}

var AppearanceComponent = NewComponent[Appearance]()
