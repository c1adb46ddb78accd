package pointers

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

func Int64(v int64) *int64 { return &v }

// Unix returns nil for unset timestamps (nil or <= 0) and the value otherwise.
func Unix(v *int64) *int64 {
	if v == nil || *v <= 0 {
		return nil
	}
	out := *v
	return &out
}

// IsSet reports whether a unix timestamp pointer holds a positive value.
func IsSet(v *int64) bool { return v != nil && *v > 0 }
