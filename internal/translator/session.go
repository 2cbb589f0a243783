package translator

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/troyanskii/troyanskii/internal/anthropic"
	"github.com/troyanskii/troyanskii/internal/extract"
)

// DefaultDebounce is the quiet period after the last source-text change
// before a translation cycle starts.
const DefaultDebounce = 1000 * time.Millisecond

// Session orchestrates one user's translation state: it debounces source-text
// changes, sequences translate-then-analyze, and guards every completion with
// a monotonically increasing cycle ID so a stale in-flight result can never
// overwrite a fresher one. All state is owned by the session and mutated
// under a single lock; network calls are never aborted once issued, only
// ignored.
type Session struct {
	client   anthropic.Client
	pipeline *extract.Pipeline
	debounce time.Duration
	logger   *slog.Logger
	notify   func(State)

	mu            sync.Mutex
	state         State
	timer         *time.Timer
	cycleID       uint64 // latest issued translate cycle
	docGen        uint64 // latest document extraction run
	extractCancel context.CancelFunc
}

// Option configures a Session.
type Option func(*Session)

// WithDebounce overrides the debounce window. Values <= 0 keep the default.
func WithDebounce(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithNotify registers a callback invoked with a state snapshot after every
// terminal transition (settled cycle, cleared, extraction failure). Called
// outside the session lock.
func WithNotify(fn func(State)) Option {
	return func(s *Session) { s.notify = fn }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewSession(client anthropic.Client, pipeline *extract.Pipeline, opts ...Option) *Session {
	s := &Session{
		client:   client,
		pipeline: pipeline,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SetSourceText records a source-text change and (re)arms the debounce timer,
// cancelling any previously armed timer. Only the text present when the timer
// finally fires is translated.
func (s *Session) SetSourceText(text string) {
	s.mu.Lock()
	s.state.SourceText = text
	s.state.Phase = Pending
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.fire)
	s.mu.Unlock()
}

// fire runs when the debounce window closes with no further edits.
func (s *Session) fire() {
	s.mu.Lock()
	text := s.state.SourceText

	if strings.TrimSpace(text) == "" {
		// Supersede any in-flight cycle, or its completion would resurrect
		// the output the user just emptied.
		s.cycleID++
		s.state.TranslatedText = ""
		s.state.Highlights = nil
		s.state.Err = ""
		s.state.Phase = Idle
		s.notifyLocked()
		return
	}

	s.cycleID++
	id := s.cycleID
	s.state.Phase = Translating
	s.state.Err = ""
	s.mu.Unlock()

	go s.runCycle(id, text)
}

// runCycle performs one translate-then-analyze sequence. Results are applied
// only while id is still the latest cycle; anything else is a stale
// completion and is discarded.
func (s *Session) runCycle(id uint64, text string) {
	ctx := context.Background()

	translated, err := s.client.Translate(ctx, text)

	s.mu.Lock()
	if id != s.cycleID {
		s.mu.Unlock()
		s.logger.Debug("discarding stale translate completion", "cycle", id)
		return
	}
	if err != nil {
		s.logger.Warn("translate failed", "cycle", id, "error", err)
		s.state.Phase = Failed
		s.state.Err = "Translation error occurred. Please try again."
		s.notifyLocked()
		return
	}
	s.state.TranslatedText = translated
	s.state.Phase = Analyzing
	s.mu.Unlock()

	terms, err := s.client.Analyze(ctx, text)

	s.mu.Lock()
	if id != s.cycleID {
		s.mu.Unlock()
		s.logger.Debug("discarding stale analyze completion", "cycle", id)
		return
	}
	if err != nil {
		// The translation already stored this cycle stays visible; only the
		// annotation failure is reported.
		s.logger.Warn("analyze failed", "cycle", id, "error", err)
		s.state.Phase = Failed
		s.state.Err = "Term analysis failed; translation shown without annotations."
		s.notifyLocked()
		return
	}
	s.state.Highlights = terms
	s.state.Phase = Done
	s.notifyLocked()
}

// Clear synchronously resets source text, translation, highlights, and error,
// independent of any in-flight request. Idempotent: in-flight completions are
// later discarded against the bumped cycle ID.
func (s *Session) Clear() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.extractCancel != nil {
		s.extractCancel()
		s.extractCancel = nil
	}
	s.cycleID++
	s.docGen++
	s.state = State{Phase: Idle}
	s.notifyLocked()
}

// OpenDocument runs the extraction pipeline on doc and feeds the extracted
// text through the same debounced translation path. A second document
// selected mid-extraction cancels and replaces the first run, consistent with
// the text supersession policy.
func (s *Session) OpenDocument(ctx context.Context, doc extract.Document) {
	s.mu.Lock()
	if s.extractCancel != nil {
		s.extractCancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.extractCancel = cancel
	s.docGen++
	gen := s.docGen
	s.cycleID++ // supersede any pending text cycle
	s.state.Phase = Extracting
	s.state.Progress = 0
	s.state.Err = ""
	s.mu.Unlock()

	go func() {
		text, err := s.pipeline.Run(runCtx, doc, func(p extract.Progress) {
			s.mu.Lock()
			if gen == s.docGen && p.Percent > s.state.Progress {
				s.state.Progress = p.Percent
			}
			s.mu.Unlock()
		})

		s.mu.Lock()
		if gen != s.docGen {
			s.mu.Unlock()
			return
		}
		if err != nil {
			s.state.Phase = Failed
			s.state.Err = extract.UserMessage(err)
			s.notifyLocked()
			return
		}
		s.mu.Unlock()

		s.SetSourceText(text)
	}()
}

// Snapshot returns a copy of the current state safe to hand to presentation.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() State {
	st := s.state
	st.PhaseName = st.Phase.String()
	if len(s.state.Highlights) > 0 {
		st.Highlights = make([]anthropic.HighlightedTerm, len(s.state.Highlights))
		copy(st.Highlights, s.state.Highlights)
	}
	return st
}

// notifyLocked snapshots under the held lock, releases it, and invokes the
// callback. Callers must hold s.mu and must not use it afterwards.
func (s *Session) notifyLocked() {
	st := s.snapshotLocked()
	fn := s.notify
	s.mu.Unlock()
	if fn != nil {
		fn(st)
	}
}
