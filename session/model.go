package session

// User is the cached profile of the authenticated account, as returned by the
// backend's auth and profile endpoints. The physical attributes are optional
// and zero when the user has not filled them in.
type User struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Bio      string  `json:"bio,omitempty"`
	HeightCm float64 `json:"height,omitempty"`
	WeightKg float64 `json:"weight,omitempty"`
	Age      int     `json:"age,omitempty"`
	Gender   string  `json:"gender,omitempty"` // "M", "F", "O", or empty
}

// Clone returns a copy of the user, or nil for a nil receiver. The Store
// hands out clones so callers can never mutate its internal state directly.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
