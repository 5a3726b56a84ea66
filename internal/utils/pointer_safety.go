package utils

// Value dereferences v, returning the zero value for nil.
func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}

// ValueOr dereferences v, returning fallback for nil. Optional JSON fields
// (discount_price, thumbnail, ...) go through this so that a present zero is
// kept distinct from an absent field.
func ValueOr[T any](v *T, fallback T) T {
	if v == nil {
		return fallback
	}
	return *v
}

func Ptr[T any](v T) *T {
	return &v
}
