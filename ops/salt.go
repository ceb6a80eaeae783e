package ops

import "github.com/google/uuid"

// NewSalt returns a salt that is unique with overwhelming probability.
// Uniqueness of the (fields, salt) combination per authority is a caller
// obligation; this helper discharges it for callers without their own
// bookkeeping.
func NewSalt() string {
	return uuid.NewString()
}
