package models

import "errors"

// Error taxonomy shared by every layer. Wrap with fmt.Errorf("...: %w", err)
// and test with errors.Is.
var (
	ErrAuthentication = errors.New("authentication failed")
	ErrValidation     = errors.New("validation failed")
	ErrAuthorization  = errors.New("not authorized")
	ErrNotFound       = errors.New("not found")
	ErrStore          = errors.New("store failure")
)
