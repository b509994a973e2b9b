package plot

import (
	"time"

	"github.com/nerrad567/agrosirius-core/internal/geo"
)

// Key identifies a plot. Both parts are matched byte for byte.
type Key struct {
	Block  string `json:"block"`
	Sector string `json:"sector"`
}

// String renders the key as "block/sector" for logs.
func (k Key) String() string {
	return k.Block + "/" + k.Sector
}

// Boundary is the surveyed outline of one plot.
type Boundary struct {
	Key
	Vertices  []geo.Point `json:"vertices"`
	CreatedAt time.Time   `json:"created_at"`
}

// DeepCopy returns a copy that shares no vertex storage with b.
func (b Boundary) DeepCopy() Boundary {
	out := b
	out.Vertices = make([]geo.Point, len(b.Vertices))
	copy(out.Vertices, b.Vertices)
	return out
}
