package generic

// Void is the zero-size value type, used where only the presence of a key matters.
type Void struct{}

func NewVoid() Void {
	return Void{}
}
