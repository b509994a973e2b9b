package plot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/agrosirius-core/internal/geo"
)

// mockRepository is an in-memory Repository with injectable failures.
type mockRepository struct {
	mu         sync.Mutex
	boundaries []Boundary
	createErr  error
	existsErr  error
}

func (m *mockRepository) Create(_ context.Context, b Boundary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.boundaries = append(m.boundaries, b)
	return nil
}

func (m *mockRepository) List(context.Context) ([]Boundary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Boundary, len(m.boundaries))
	copy(out, m.boundaries)
	return out, nil
}

func (m *mockRepository) Exists(_ context.Context, k Key) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.existsErr != nil {
		return false, m.existsErr
	}
	for _, b := range m.boundaries {
		if b.Key == k {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepository) DeleteAll(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.boundaries))
	m.boundaries = nil
	return n, nil
}

func newTestRegistry() (*Registry, *mockRepository) {
	repo := &mockRepository{}
	reg := NewRegistry(repo)
	reg.now = func() time.Time { return time.Date(2026, 3, 2, 8, 30, 15, 999, time.UTC) }
	return reg, repo
}

func TestRegistry_Define(t *testing.T) {
	reg, repo := newTestRegistry()
	ctx := context.Background()

	got, err := reg.Define(ctx, Boundary{Key: Key{"Lote 1", "Sector A"}, Vertices: square})
	if err != nil {
		t.Fatalf("Define() error = %v", err)
	}
	want := time.Date(2026, 3, 2, 8, 30, 15, 0, time.UTC)
	if !got.CreatedAt.Equal(want) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want)
	}
	if len(repo.boundaries) != 1 {
		t.Fatalf("repository holds %d boundaries, want 1", len(repo.boundaries))
	}

	// The stored copy must not alias the caller's slice.
	got.Vertices[0].Lat = 0
	if repo.boundaries[0].Vertices[0].Lat == 0 {
		t.Error("stored boundary shares vertex storage with the returned value")
	}
}

func TestRegistry_DefineRejects(t *testing.T) {
	tests := []struct {
		name    string
		b       Boundary
		opts    *NameOptions
		wantErr error
	}{
		{
			name:    "two vertices",
			b:       Boundary{Key: Key{"Lote 1", "Sector A"}, Vertices: square[:2]},
			wantErr: ErrInvalidGeometry,
		},
		{
			name:    "no vertices",
			b:       Boundary{Key: Key{"Lote 1", "Sector A"}},
			wantErr: ErrInvalidGeometry,
		},
		{
			name:    "vertex out of range",
			b:       Boundary{Key: Key{"Lote 1", "Sector A"}, Vertices: []geo.Point{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 95, Lon: 1}}},
			wantErr: ErrInvalidGeometry,
		},
		{
			name:    "blank block",
			b:       Boundary{Key: Key{"  ", "Sector A"}, Vertices: square},
			wantErr: ErrInvalidName,
		},
		{
			name:    "blank sector",
			b:       Boundary{Key: Key{"Lote 1", ""}, Vertices: square},
			wantErr: ErrInvalidName,
		},
		{
			name:    "strict unknown block",
			b:       Boundary{Key: Key{"Lote 11", "Sector A"}, Vertices: square},
			opts:    &NameOptions{Blocks: []string{"Lote 1"}, Sectors: []string{"Sector A"}},
			wantErr: ErrUnknownBlock,
		},
		{
			name:    "strict unknown sector",
			b:       Boundary{Key: Key{"Lote 1", "Sector Z"}, Vertices: square},
			opts:    &NameOptions{Blocks: []string{"Lote 1"}, Sectors: []string{"Sector A"}},
			wantErr: ErrUnknownSector,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, repo := newTestRegistry()
			reg.SetNameOptions(tt.opts)

			_, err := reg.Define(context.Background(), tt.b)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Define() error = %v, want %v", err, tt.wantErr)
			}
			if len(repo.boundaries) != 0 {
				t.Error("rejected boundary reached the repository")
			}
		})
	}
}

func TestRegistry_DefineDuplicate(t *testing.T) {
	reg, repo := newTestRegistry()
	ctx := context.Background()

	if _, err := reg.Define(ctx, Boundary{Key: Key{"Lote 2", "Sector B"}, Vertices: square}); err != nil {
		t.Fatalf("first Define() error = %v", err)
	}
	_, err := reg.Define(ctx, Boundary{Key: Key{"Lote 2", "Sector B"}, Vertices: square})
	if !errors.Is(err, ErrDuplicatePlot) {
		t.Errorf("second Define() error = %v, want ErrDuplicatePlot", err)
	}
	if len(repo.boundaries) != 1 {
		t.Errorf("repository holds %d boundaries, want 1", len(repo.boundaries))
	}
}

func TestRegistry_DefineConcurrentDuplicates(t *testing.T) {
	reg, repo := newTestRegistry()
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := reg.Define(ctx, Boundary{Key: Key{"Lote 5", "Sector E"}, Vertices: square})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, dup int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrDuplicatePlot):
			dup++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 || dup != workers-1 {
		t.Errorf("ok=%d dup=%d, want 1 and %d", ok, dup, workers-1)
	}
	if len(repo.boundaries) != 1 {
		t.Errorf("repository holds %d boundaries, want 1", len(repo.boundaries))
	}
}

func TestRegistry_RepositoryErrors(t *testing.T) {
	reg, repo := newTestRegistry()
	boom := errors.New("disk full")

	repo.existsErr = boom
	if _, err := reg.Define(context.Background(), Boundary{Key: Key{"Lote 1", "Sector A"}, Vertices: square}); !errors.Is(err, boom) {
		t.Errorf("Define() error = %v, want wrapped %v", err, boom)
	}

	repo.existsErr = nil
	repo.createErr = boom
	if _, err := reg.Define(context.Background(), Boundary{Key: Key{"Lote 1", "Sector A"}, Vertices: square}); !errors.Is(err, boom) {
		t.Errorf("Define() error = %v, want wrapped %v", err, boom)
	}
}

func TestRegistry_ListAndClear(t *testing.T) {
	reg, _ := newTestRegistry()
	ctx := context.Background()

	for _, k := range []Key{{"Lote 2", "Sector A"}, {"Lote 1", "Sector A"}} {
		if _, err := reg.Define(ctx, Boundary{Key: k, Vertices: square}); err != nil {
			t.Fatalf("Define(%s) error = %v", k, err)
		}
	}

	list, err := reg.ListBoundaries(ctx)
	if err != nil {
		t.Fatalf("ListBoundaries() error = %v", err)
	}
	if len(list) != 2 || list[0].Block != "Lote 2" {
		t.Errorf("ListBoundaries() = %v, want definition order", list)
	}

	ok, err := reg.Exists(ctx, Key{"Lote 1", "Sector A"})
	if err != nil || !ok {
		t.Errorf("Exists() = %v, %v; want true, nil", ok, err)
	}

	n, err := reg.Clear(ctx)
	if err != nil || n != 2 {
		t.Errorf("Clear() = %d, %v; want 2, nil", n, err)
	}
	list, _ = reg.ListBoundaries(ctx) //nolint:errcheck // Checked by length
	if len(list) != 0 {
		t.Errorf("ListBoundaries() after Clear = %d, want 0", len(list))
	}
}
