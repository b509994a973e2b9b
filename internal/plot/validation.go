package plot

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nerrad567/agrosirius-core/internal/geo"
)

const maxNameLength = 100

// NameOptions restricts block and sector ids to fixed lists.
// A nil *NameOptions allows any non-blank name.
type NameOptions struct {
	Blocks  []string
	Sectors []string
}

// ValidateKey checks that both parts of the key are usable. The key is
// not trimmed or otherwise normalised.
func ValidateKey(k Key, opts *NameOptions) error {
	if err := validateName("block", k.Block); err != nil {
		return err
	}
	if err := validateName("sector", k.Sector); err != nil {
		return err
	}
	if opts == nil {
		return nil
	}
	if !slices.Contains(opts.Blocks, k.Block) {
		return fmt.Errorf("%w: %q", ErrUnknownBlock, k.Block)
	}
	if !slices.Contains(opts.Sectors, k.Sector) {
		return fmt.Errorf("%w: %q", ErrUnknownSector, k.Sector)
	}
	return nil
}

func validateName(field, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrInvalidName, field)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidName, field, maxNameLength)
	}
	return nil
}

// ValidateBoundary checks a boundary before it is defined.
func ValidateBoundary(b Boundary, opts *NameOptions) error {
	if err := ValidateKey(b.Key, opts); err != nil {
		return err
	}
	if len(b.Vertices) < geo.MinPolygonVertices {
		return fmt.Errorf("%w: need at least %d vertices, got %d",
			ErrInvalidGeometry, geo.MinPolygonVertices, len(b.Vertices))
	}
	for i, v := range b.Vertices {
		if !geo.ValidGPS(&v) {
			return fmt.Errorf("%w: vertex %d (%v, %v) out of range", ErrInvalidGeometry, i, v.Lat, v.Lon)
		}
	}
	return nil
}
