package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bep/debounce"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/guidecraft/guidecraft/pkg/guide"
)

// GuideSnapshotVersion is stamped on every persisted draft. Loads
// tolerate mismatches: an old snapshot still loads, with a warning.
const GuideSnapshotVersion = 2

// DefaultGuideKey is the KV key for the draft guide snapshot.
const DefaultGuideKey = "guidecraft.draft"

// debounceInterval delays persistence writes so rapid edits collapse
// into one write, last-write-wins.
const debounceInterval = 500 * time.Millisecond

// GuideSnapshot is the persisted draft: the exported guide plus,
// when a recording is in flight, the editor block ids zipped 1:1
// with guide.Blocks so id-based references survive a reload.
type GuideSnapshot struct {
	Guide    guide.Guide `json:"guide"`
	BlockIDs []string    `json:"blockIds,omitempty"`
	SavedAt  time.Time   `json:"savedAt"`
	Version  int         `json:"version"`
}

// GuideStore persists draft snapshots through a KV.
type GuideStore struct {
	kv       KV
	key      string
	logger   *zap.Logger
	debounce func(func())
}

func NewGuideStore(kv KV, key string, logger *zap.Logger) *GuideStore {
	if key == "" {
		key = DefaultGuideKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GuideStore{
		kv:       kv,
		key:      key,
		logger:   logger,
		debounce: debounce.New(debounceInterval),
	}
}

// Save writes a snapshot immediately.
func (s *GuideStore) Save(ctx context.Context, g guide.Guide, blockIDs []string) error {
	snapshot := GuideSnapshot{
		Guide:    g,
		BlockIDs: blockIDs,
		SavedAt:  time.Now().UTC(),
		Version:  GuideSnapshotVersion,
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return errors.WithStack(err)
	}
	return s.kv.Set(ctx, s.key, data)
}

// SaveDebounced schedules a fire-and-forget write. Later calls
// supersede earlier ones within the debounce window; failures are
// logged, never surfaced, since in-memory state stays authoritative.
func (s *GuideStore) SaveDebounced(g guide.Guide, blockIDs []string) {
	s.debounce(func() {
		if err := s.Save(context.Background(), g, blockIDs); err != nil {
			s.logger.Warn("draft snapshot write failed", zap.Error(err))
		}
	})
}

// Load reads the current snapshot. A missing key yields (nil, nil).
// A version mismatch is logged and the snapshot is returned anyway,
// forward-compatible best-effort.
func (s *GuideStore) Load(ctx context.Context) (*GuideSnapshot, error) {
	data, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snapshot GuideSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, errors.WithStack(err)
	}
	if snapshot.Version != GuideSnapshotVersion {
		s.logger.Warn("draft snapshot version mismatch, loading anyway",
			zap.Int("stored", snapshot.Version),
			zap.Int("current", GuideSnapshotVersion),
		)
	}
	if len(snapshot.BlockIDs) > 0 && len(snapshot.BlockIDs) != len(snapshot.Guide.Blocks) {
		s.logger.Warn("draft snapshot block ids do not match blocks, dropping ids",
			zap.Int("ids", len(snapshot.BlockIDs)),
			zap.Int("blocks", len(snapshot.Guide.Blocks)),
		)
		snapshot.BlockIDs = nil
	}
	return &snapshot, nil
}

// Clear removes the snapshot.
func (s *GuideStore) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, s.key)
}
