package component

// Label carries the identity an entity had in its level document.
type Label struct {
	Name string
	Type string
}

var LabelComponent = NewComponent[Label]()
