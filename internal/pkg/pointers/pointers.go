// Package pointers builds pointers to values, for the nullable columns and
// optional JSON fields that want *T.
package pointers

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

// Float64 is Ptr pinned to the price/rating column type.
func Float64(v float64) *float64 { return &v }
