package services

import (
	"context"
	"convention-scheduler-server/storage"
	"convention-scheduler-server/timeline"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("editor session not found")
	ErrSessionLive     = errors.New("editor session is still open")
)

// DraftStore keeps the unsaved state of editor sessions.
type DraftStore interface {
	SaveDraft(ctx context.Context, sessionID string, draft storage.Draft) error
	LoadDraft(ctx context.Context, conventionID uint, sessionID string) (*storage.Draft, error)
	ClearDraft(ctx context.Context, conventionID uint, sessionID string) error
}

// Session is one open schedule editor. Operations on a session run one at
// a time.
type Session struct {
	ID           string
	ConventionID uint
	Editor       *timeline.Editor

	mu       sync.Mutex
	lastUsed time.Time
}

// LastUsed returns when the session last served an operation.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// EditorService keeps the live editor sessions of the server.
type EditorService struct {
	store  timeline.Store
	drafts DraftStore
	grid   timeline.Grid
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewEditorService creates the service. drafts may be nil, in which case
// unsaved changes only live in memory.
func NewEditorService(store timeline.Store, drafts DraftStore, grid timeline.Grid) *EditorService {
	return &EditorService{
		store:    store,
		drafts:   drafts,
		grid:     grid,
		now:      time.Now,
		sessions: map[string]*Session{},
	}
}

// Open starts an editor for a convention. When resumeID names a closed
// session whose draft is still stored, the draft is restored under the same
// id. A session that is still open cannot be resumed.
func (s *EditorService) Open(ctx context.Context, conventionID uint, resumeID string) (*Session, error) {
	if resumeID != "" && s.live(resumeID) {
		return nil, ErrSessionLive
	}
	ed := timeline.NewEditor(s.store, conventionID, s.grid)
	if err := ed.Open(ctx); err != nil {
		ed.Close()
		return nil, err
	}

	id := uuid.NewString()
	if resumeID != "" && s.drafts != nil {
		draft, err := s.drafts.LoadDraft(ctx, conventionID, resumeID)
		switch {
		case err == nil:
			ed.Events.Restore(draft.Events, draft.DirtyKeys)
			id = resumeID
			log.Printf("📝 Restored editor draft %s for convention %d (%d unsaved)", id, conventionID, len(draft.DirtyKeys))
		case errors.Is(err, storage.ErrNoDraft):
		default:
			log.Printf("⚠️  Could not load editor draft %s: %v", resumeID, err)
		}
	}

	sess := &Session{ID: id, ConventionID: conventionID, Editor: ed, lastUsed: s.now()}
	s.mu.Lock()
	if _, ok := s.sessions[id]; ok {
		s.mu.Unlock()
		ed.Close()
		return nil, ErrSessionLive
	}
	s.sessions[id] = sess
	s.mu.Unlock()

	log.Printf("✅ Editor session %s opened for convention %d", id, conventionID)
	return sess, nil
}

// Get returns a live session.
func (s *EditorService) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *EditorService) live(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[id]
	return ok
}

// View runs fn on the session editor without snapshotting it.
func (s *EditorService) View(id string, fn func(ed *timeline.Editor) error) error {
	sess, err := s.Get(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastUsed = s.now()
	return s.guard(sess, fn)
}

// Do runs a mutating operation on the session editor, then snapshots its
// unsaved changes to the draft store. A session without unsaved changes
// has its draft cleared.
func (s *EditorService) Do(ctx context.Context, id string, fn func(ed *timeline.Editor) error) error {
	sess, err := s.Get(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastUsed = s.now()

	opErr := s.guard(sess, fn)
	s.snapshot(ctx, sess)
	return opErr
}

// guard turns a panic inside an editor operation into an error so one
// broken session cannot take the server down.
func (s *EditorService) guard(sess *Session, fn func(ed *timeline.Editor) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Editor session %s panicked: %v", sess.ID, r)
			err = fmt.Errorf("editor session %s failed unexpectedly", sess.ID)
		}
	}()
	return fn(sess.Editor)
}

func (s *EditorService) snapshot(ctx context.Context, sess *Session) {
	if s.drafts == nil {
		return
	}
	ev := sess.Editor.Events
	var err error
	if ev.HasUnsavedChanges() {
		err = s.drafts.SaveDraft(ctx, sess.ID, storage.Draft{
			ConventionID: sess.ConventionID,
			Events:       ev.Events(),
			DirtyKeys:    ev.DirtyKeys(),
		})
	} else {
		err = s.drafts.ClearDraft(ctx, sess.ConventionID, sess.ID)
	}
	if err != nil {
		log.Printf("⚠️  Could not snapshot editor session %s: %v", sess.ID, err)
	}
}

// Close ends a session and releases its pointer listeners and scroll timer.
// Its draft is kept so the session can be resumed.
func (s *EditorService) Close(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	sess.mu.Lock()
	sess.Editor.Close()
	sess.mu.Unlock()
	log.Printf("👋 Editor session %s closed", id)
	return nil
}

// CloseIdle closes every session unused for longer than maxIdle and returns
// how many were closed.
func (s *EditorService) CloseIdle(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)
	s.mu.Lock()
	live := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		live = append(live, sess)
	}
	s.mu.Unlock()

	closed := 0
	for _, sess := range live {
		if !sess.LastUsed().Before(cutoff) {
			continue
		}
		if err := s.Close(sess.ID); err == nil {
			closed++
		}
	}
	return closed
}

// Count returns the number of live sessions.
func (s *EditorService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// CloseAll ends every session, on shutdown.
func (s *EditorService) CloseAll() {
	s.mu.Lock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	for _, id := range ids {
		_ = s.Close(id)
	}
}
