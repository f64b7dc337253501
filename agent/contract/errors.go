package contract

import "errors"

var (
	ErrModelInvoke       = errors.New("model invoke failed")
	ErrValidation        = errors.New("validation failed")
	ErrMissingCredential = errors.New("chat model credential is missing")
	ErrUnknownTool       = errors.New("unknown tool")
	ErrToolArguments     = errors.New("invalid tool arguments")
)
