package repositories

import "errors"

// Data-layer error kinds. Repositories wrap driver errors with one of these so callers can
// classify failures with errors.Is without knowing the driver.
var (
	// ErrNotFound is returned when the addressed record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a write violates a unique constraint
	ErrDuplicate = errors.New("duplicate record")

	// ErrConstraint is returned when a write violates a not-null or check constraint
	ErrConstraint = errors.New("constraint violation")

	// ErrUnavailable is returned when the database cannot be reached
	ErrUnavailable = errors.New("database unavailable")
)

// IsNotFound reports whether err is ErrNotFound
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicate reports whether err is ErrDuplicate
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// IsConstraint reports whether err is ErrConstraint
func IsConstraint(err error) bool {
	return errors.Is(err, ErrConstraint)
}

// IsUnavailable reports whether err is ErrUnavailable
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
