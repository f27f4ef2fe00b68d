package contract

import "errors"

var (
	ErrValidation          = errors.New("validation failed")
	ErrConflict            = errors.New("email already registered")
	ErrNotFound            = errors.New("registration not found")
	ErrCollaborator        = errors.New("collaborator call failed")
	ErrUnresolvedSelection = errors.New("update field selection not recognized")
	ErrModelInvoke         = errors.New("model invoke failed")
	ErrSchemaViolation     = errors.New("model response violates schema")
)
