package blob

import "errors"

// Sentinel errors returned by the storage layer. Callers match them with
// errors.Is; backends wrap provider errors so the chain keeps the original
// cause.
var (
	ErrNotFound      = errors.New("blob not found")
	ErrAlreadyExists = errors.New("blob already exists")
	ErrEmptyName     = errors.New("blob name cannot be empty")
	ErrInvalidConfig = errors.New("invalid storage configuration")
	ErrDecode        = errors.New("cannot decode blob content")
)
