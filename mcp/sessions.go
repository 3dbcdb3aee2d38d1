package mcp

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lvillar/richdoc"
	"github.com/lvillar/richdoc/editor"
	"github.com/lvillar/richdoc/render"
)

// session is one open document. Its editor is not safe for concurrent use,
// so every access holds mu.
type session struct {
	id     string
	mu     sync.Mutex
	editor *editor.Editor
	meta   richdoc.Metadata
	value  string // last value reported by the editor
	opened time.Time
}

// Workspace holds the editing sessions served by the tools, and the
// renderer used to export them.
type Workspace struct {
	mu       sync.Mutex
	sessions map[string]*session

	renderer *render.Renderer
	log      *slog.Logger
	now      func() time.Time
}

// NewWorkspace returns an empty workspace. A nil renderer uses render.New
// with the given logger.
func NewWorkspace(r *render.Renderer, log *slog.Logger) *Workspace {
	if log == nil {
		log = slog.Default()
	}
	if r == nil {
		r = render.New(render.WithLogger(log))
	}
	return &Workspace{
		sessions: make(map[string]*session),
		renderer: r,
		log:      log,
		now:      time.Now,
	}
}

// open creates a session over content.
func (w *Workspace) open(content string, meta richdoc.Metadata, opts ...editor.Option) (*session, error) {
	s := &session{id: uuid.NewString(), meta: meta, opened: w.now()}
	opts = append([]editor.Option{editor.WithLogger(w.log)}, opts...)
	e, err := editor.New(content, func(v string) {
		// runs inside editor calls, so s.mu is already held
		s.value = v
		s.meta.LastEditedAt = w.now().UTC()
	}, opts...)
	if err != nil {
		return nil, err
	}
	s.editor = e
	s.value = e.Value()

	w.mu.Lock()
	w.sessions[s.id] = s
	w.mu.Unlock()
	w.log.Info("session opened", "component", "mcp", "session", s.id, "title", meta.Title)
	return s, nil
}

// get returns the session with the given id.
func (w *Workspace) get(id string) (*session, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, ok := w.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: unknown session %q", richdoc.ErrInvalidParam, id)
	}
	return s, nil
}

// close removes the session and returns its final content.
func (w *Workspace) close(id string) (string, error) {
	w.mu.Lock()
	s, ok := w.sessions[id]
	delete(w.sessions, id)
	w.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("%w: unknown session %q", richdoc.ErrInvalidParam, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.editor.Close()
	w.log.Info("session closed", "component", "mcp", "session", id, "bytes", len(v))
	return v, nil
}

// list returns the open sessions ordered by opening time.
func (w *Workspace) list() []*session {
	w.mu.Lock()
	out := make([]*session, 0, len(w.sessions))
	for _, s := range w.sessions {
		out = append(out, s)
	}
	w.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].opened.Equal(out[j].opened) {
			return out[i].opened.Before(out[j].opened)
		}
		return out[i].id < out[j].id
	})
	return out
}

// with runs fn on the session while holding its lock.
func (w *Workspace) with(id string, fn func(*session) error) error {
	s, err := w.get(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s)
}
