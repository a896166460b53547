package tui

import "errors"

// ErrMissingWorkflowService is returned when the workflow service is not provided.
var ErrMissingWorkflowService = errors.New("tui: workflow service is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")
