package domain

import "errors"

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrCostNotFound    = errors.New("cost not found")
	ErrProjectMissing  = errors.New("cost references a missing project")
	ErrInvalidPosition = errors.New("invalid position")
)
