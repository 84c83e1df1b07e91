package recorder

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/guidecraft/guidecraft/internal/storage"
	"github.com/guidecraft/guidecraft/pkg/editor"
	"github.com/guidecraft/guidecraft/pkg/guide"
)

// SessionKey is the KV key for the recording-session snapshot. It is
// written only while a recording is active and cleared on stop.
const SessionKey = "guidecraft.recording"

// SettleDelay is how long a freshly submitted section is given to
// settle before recording into it begins. UI-timing accommodation;
// callers must not skip it.
const SettleDelay = 100 * time.Millisecond

// Target is where recorded blocks land: a section, a conditional
// branch, or the root when both are empty.
type Target struct {
	SectionID string
	Branch    *editor.BranchRef
}

// Snapshot is the persisted recording-session state.
type Snapshot struct {
	RecordingIntoSection string            `json:"recordingIntoSection,omitempty"`
	RecordingIntoBranch  *editor.BranchRef `json:"recordingIntoConditionalBranch,omitempty"`
	RecordingStartURL    string            `json:"recordingStartUrl,omitempty"`
	RecordedSteps        []Step            `json:"recordedSteps"`
	SavedAt              time.Time         `json:"savedAt"`
}

// Session owns one recording: it accumulates captured steps,
// persists them so an interrupted session survives a reload, and on
// stop flushes whatever was captured through the grouping pass into
// the editor. Stopping early is normal; partial results are valid.
type Session struct {
	mu      sync.Mutex
	ed      *editor.Editor
	kv      storage.KV
	logger  *zap.Logger
	settle  time.Duration
	active  bool
	target  Target
	startURL string
	steps   []Step
}

type SessionOption func(*Session)

func WithLogger(logger *zap.Logger) SessionOption {
	return func(s *Session) { s.logger = logger }
}

// WithSettleDelay overrides the section settle delay. Test-only.
func WithSettleDelay(d time.Duration) SessionOption {
	return func(s *Session) { s.settle = d }
}

func NewSession(ed *editor.Editor, kv storage.KV, opts ...SessionOption) *Session {
	s := &Session{
		ed:     ed,
		kv:     kv,
		logger: zap.NewNop(),
		settle: SettleDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins recording into the given target.
func (s *Session) Start(target Target, startURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = true
	s.target = target
	s.startURL = startURL
	s.steps = nil
	s.persistLocked()
}

// StartIntoNewSection submits a new section block and schedules
// recording into it after the settle delay, giving the new element
// time to appear before capture begins. Returns the section's editor
// id immediately.
func (s *Session) StartIntoNewSection(title, startURL string) string {
	sectionID := s.ed.AddBlock(guide.NewSectionBlock("", title, nil))
	time.AfterFunc(s.settle, func() {
		s.Start(Target{SectionID: sectionID}, startURL)
	})
	return sectionID
}

// Active reports whether a recording is in flight.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Steps returns a copy of the captured steps so far.
func (s *Session) Steps() []Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Step, len(s.steps))
	copy(out, s.steps)
	return out
}

// Record appends a captured step and refreshes the persisted
// snapshot. Ignored while no recording is active.
func (s *Session) Record(step Step) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	s.steps = append(s.steps, step)
	s.persistLocked()
}

// Stop ends the recording and flushes the captured steps, grouped,
// into the editor in recorded order. The session snapshot is cleared
// whether or not any steps were captured.
func (s *Session) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	steps := s.steps
	target := s.target
	s.active = false
	s.steps = nil
	s.target = Target{}
	s.startURL = ""
	s.mu.Unlock()

	for _, block := range BlocksFor(steps) {
		s.append(target, block)
	}

	if err := s.kv.Delete(context.Background(), SessionKey); err != nil {
		s.logger.Warn("recording snapshot cleanup failed", zap.Error(err))
	}
}

func (s *Session) append(target Target, block guide.Block) {
	switch {
	case target.Branch != nil:
		s.ed.AddBlockToConditionalBranch(*target.Branch, block, -1)
	case target.SectionID != "":
		s.ed.AddBlockToSection(target.SectionID, block, -1)
	default:
		s.ed.AddBlock(block)
	}
}

// persistLocked writes the session snapshot, best-effort.
func (s *Session) persistLocked() {
	snapshot := Snapshot{
		RecordingIntoSection: s.target.SectionID,
		RecordingIntoBranch:  s.target.Branch,
		RecordingStartURL:    s.startURL,
		RecordedSteps:        s.steps,
		SavedAt:              time.Now().UTC(),
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.Error("recording snapshot marshal failed", zap.Error(err))
		return
	}
	if err := s.kv.Set(context.Background(), SessionKey, data); err != nil {
		s.logger.Warn("recording snapshot write failed", zap.Error(err))
	}
}

// Resume restores an interrupted recording from its persisted
// snapshot. Returns false when no snapshot exists.
func (s *Session) Resume(ctx context.Context) (bool, error) {
	data, err := s.kv.Get(ctx, SessionKey)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return false, errors.WithStack(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = true
	s.target = Target{SectionID: snapshot.RecordingIntoSection, Branch: snapshot.RecordingIntoBranch}
	s.startURL = snapshot.RecordingStartURL
	s.steps = snapshot.RecordedSteps
	return true, nil
}
