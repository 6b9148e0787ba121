package room

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/types"
)

// Snapshot is the persisted form of a room at the moment it closed.
type Snapshot struct {
	Room     types.RoomName                     `json:"room"`
	ClosedAt time.Time                          `json:"closed_at"`
	Canvases map[types.CanvasID][]types.Element `json:"canvases"`
}

// takeSnapshot copies the room's canvases for persistence.
func (r *Room) takeSnapshot() Snapshot {
	canvases := make(map[types.CanvasID][]types.Element, len(r.canvases))
	for id, c := range r.canvases {
		canvases[id] = c.snapshot()
	}
	return Snapshot{Room: r.Name, ClosedAt: time.Now().UTC(), Canvases: canvases}
}

// Saver persists the canvases of a room when it closes. Save runs
// with no registry lock held and must tolerate concurrent calls.
type Saver interface {
	Save(ctx context.Context, snap Snapshot) error
}

// NopSaver discards snapshots.
type NopSaver struct{}

func (NopSaver) Save(context.Context, Snapshot) error { return nil }

// FileSaver writes one JSON file per closed room into a directory.
type FileSaver struct {
	dir string
}

// NewFileSaver creates the directory if needed.
func NewFileSaver(dir string) (*FileSaver, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &FileSaver{dir: dir}, nil
}

func (s *FileSaver) Save(_ context.Context, snap Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	name := fmt.Sprintf("%s-%d.json", sanitizeFilename(string(snap.Room)), snap.ClosedAt.UnixMilli())
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// sanitizeFilename keeps room names filesystem-safe. Room names are
// user input and may contain separators.
func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
}
