package mcp

import (
	"fmt"
	"strings"

	"github.com/tidwall/sjson"

	"github.com/lvillar/richdoc"
)

// SessionsURI lists the open sessions; SessionsURI + "/<id>" reads one of them.
const SessionsURI = "richdoc://sessions"

// RegisterDefaultResources adds the built-in session resources to the server.
func RegisterDefaultResources(s *Server, w *Workspace) {
	s.AddResource(Resource{
		URI:         SessionsURI,
		Name:        "Editing Sessions",
		Description: "Open editing sessions with their title and content size. Read richdoc://sessions/<id> for the content of one session.",
		MIMEType:    "application/json",
		Handler: func(uri string) ([]ResourceContent, error) {
			if id, ok := strings.CutPrefix(uri, SessionsURI+"/"); ok {
				return sessionResource(w, uri, id)
			}
			return sessionsResource(w, uri)
		},
	})
}

func sessionsResource(w *Workspace, uri string) ([]ResourceContent, error) {
	out := "[]"
	for i, s := range w.list() {
		s.mu.Lock()
		title, size, empty := s.meta.Title, len(s.value), s.editor.Empty()
		s.mu.Unlock()

		var err error
		prefix := fmt.Sprintf("%d.", i)
		for _, f := range []field{{"id", s.id}, {"title", title}, {"bytes", size}, {"empty", empty}} {
			if out, err = sjson.Set(out, prefix+f.key, f.val); err != nil {
				return nil, fmt.Errorf("encoding sessions: %w", err)
			}
		}
	}
	return []ResourceContent{{URI: uri, MIMEType: "application/json", Text: out}}, nil
}

func sessionResource(w *Workspace, uri, id string) ([]ResourceContent, error) {
	var content string
	var meta richdoc.Metadata
	err := w.with(id, func(s *session) error {
		content, meta = s.value, s.meta
		return nil
	})
	if err != nil {
		return nil, err
	}
	out, err := sjson.Set("{}", "id", id)
	if err == nil {
		out, err = sjson.Set(out, "title", meta.Title)
	}
	if err == nil {
		out, err = sjson.Set(out, "content", content)
	}
	if err != nil {
		return nil, fmt.Errorf("encoding session: %w", err)
	}
	return []ResourceContent{{URI: uri, MIMEType: "application/json", Text: out}}, nil
}
