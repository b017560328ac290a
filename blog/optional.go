package blog

// Optional carries a value together with an explicit presence flag.
// Update payloads use it to distinguish "field absent, leave it alone"
// from "field present, set it to this value" - including a present
// null, which for User.Age means clearing the age.
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// None returns an absent Optional. The zero value is equivalent.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet reports whether the value is present.
func (o Optional[T]) IsSet() bool {
	return o.set
}
