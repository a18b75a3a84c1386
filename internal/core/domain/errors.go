package domain

import "errors"

var (
	ErrInvalidBoundingBox   = errors.New("invalid bounding box")
	ErrLocationUnavailable  = errors.New("location unavailable")
	ErrOutOfRangeCoordinate = errors.New("coordinate out of range")

	ErrViewportNotFound = errors.New("viewport not found")
	ErrPropertyNotFound = errors.New("property not found")
	ErrInvalidRadius    = errors.New("invalid radius")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrInvalidMode      = errors.New("invalid location mode")
	ErrInvalidZoom      = errors.New("invalid zoom level")
	ErrInvalidPoint     = errors.New("invalid point of interest")
	ErrDuplicatePoint   = errors.New("duplicate point of interest")
)
