package plot

import "errors"

var (
	// ErrDuplicatePlot is returned when a boundary is already defined for
	// the (block, sector) pair.
	ErrDuplicatePlot = errors.New("plot: boundary already defined")

	// ErrInvalidGeometry is returned for a boundary with fewer than three vertices.
	ErrInvalidGeometry = errors.New("plot: invalid geometry")

	// ErrInvalidName is returned for a blank or overlong block or sector id.
	ErrInvalidName = errors.New("plot: invalid name")

	// ErrUnknownBlock is returned under strict naming for a block outside the farm's list.
	ErrUnknownBlock = errors.New("plot: unknown block")

	// ErrUnknownSector is returned under strict naming for a sector outside the farm's list.
	ErrUnknownSector = errors.New("plot: unknown sector")
)
