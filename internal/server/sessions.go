package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/gangsheet/pkg/catalog"
	"github.com/matzehuels/gangsheet/pkg/errors"
	"github.com/matzehuels/gangsheet/pkg/pipeline"
	"github.com/matzehuels/gangsheet/pkg/session"
)

// sessionView is a session as returned to clients. Design bytes are omitted.
type sessionView struct {
	ID        string      `json:"id"`
	Designs   []entryView `json:"designs"`
	Copies    int         `json:"copies"`
	CreatedAt time.Time   `json:"created_at"`
	ExpiresAt time.Time   `json:"expires_at"`
}

type entryView struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Category catalog.Category `json:"category"`
	Copies   int              `json:"copies"`
	AddedAt  time.Time        `json:"added_at"`
}

func viewOf(sess *session.Session) sessionView {
	v := sessionView{
		ID:        sess.ID,
		Designs:   make([]entryView, 0, sess.Len()),
		Copies:    sess.Copies(),
		CreatedAt: sess.CreatedAt,
		ExpiresAt: sess.ExpiresAt,
	}
	for _, e := range sess.Entries {
		v.Designs = append(v.Designs, viewOfEntry(e))
	}
	return v
}

func viewOfEntry(e session.Entry) entryView {
	return entryView{ID: e.ID, Name: e.Name, Category: e.Category, Copies: e.Copies, AddedAt: e.AddedAt}
}

// loadSession fetches the session named in the URL.
func (s *Server) loadSession(r *http.Request) (*session.Session, error) {
	id := chi.URLParam(r, "id")
	sess, err := s.cfg.Sessions.Get(r.Context(), id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load session")
	}
	if sess == nil {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %s not found", id)
	}
	return sess, nil
}

func (s *Server) saveSession(r *http.Request, sess *session.Session) error {
	if err := s.cfg.Sessions.Set(r.Context(), sess); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "save session")
	}
	return nil
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := session.New(s.cfg.SessionTTL)
	if err := s.saveSession(r, sess); err != nil {
		s.fail(w, r, err, nil)
		return
	}
	s.logger(r).Info("session created", "session", sess.ID)
	writeJSON(w, http.StatusCreated, viewOf(sess))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadSession(r)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(sess))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadSession(r)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	if err := s.cfg.Sessions.Delete(r.Context(), sess.ID); err != nil {
		s.fail(w, r, errors.Wrap(errors.ErrCodeInternal, err, "delete session"), nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addResponse struct {
	Session sessionView `json:"session"`
	Added   []entryView `json:"added"`
	Skipped []skipped   `json:"skipped,omitempty"`
}

// handleAddDesigns stores uploaded designs in the session. Categories are
// resolved now so a typo is reported on upload rather than at build time;
// such designs are skipped and listed in the response.
func (s *Server) handleAddDesigns(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadSession(r)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	inputs, err := s.readDesigns(w, r)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	defer r.MultipartForm.RemoveAll()

	cat := s.cfg.Options.Catalog()
	var (
		added    []entryView
		rejected []catalog.Rejection
	)
	for i, in := range inputs {
		e, err := s.entryOf(cat, in)
		if err == nil {
			e, err = sess.Add(e)
		}
		if err != nil {
			rejected = append(rejected, catalog.Rejection{Index: i, Name: in.Name, Err: err})
			continue
		}
		added = append(added, viewOfEntry(e))
	}

	if len(added) == 0 {
		s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "no designs added (%d skipped)", len(rejected)),
			&pipeline.Result{Skipped: rejected})
		return
	}
	if err := s.saveSession(r, sess); err != nil {
		s.fail(w, r, err, nil)
		return
	}

	s.logger(r).Info("designs added", "session", sess.ID, "added", len(added), "skipped", len(rejected))
	writeJSON(w, http.StatusOK, addResponse{Session: viewOf(sess), Added: added, Skipped: skippedOf(rejected)})
}

func (s *Server) entryOf(cat *catalog.Catalog, in pipeline.Input) (session.Entry, error) {
	category, err := cat.Parse(in.Label)
	if err != nil {
		return session.Entry{}, err
	}
	data, err := in.Open()
	if err != nil {
		return session.Entry{}, err
	}
	if len(data) == 0 {
		return session.Entry{}, errors.New(errors.ErrCodeEmptyAsset, "%s is empty", in.Name)
	}
	return session.Entry{Name: in.Name, Data: data, Category: category, Copies: in.Copies}, nil
}

func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadSession(r)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	sess.Reset()
	if err := s.saveSession(r, sess); err != nil {
		s.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(sess))
}

func (s *Server) handleRemoveDesign(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadSession(r)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	eid := chi.URLParam(r, "eid")
	if !sess.Remove(eid) {
		s.fail(w, r, errors.New(errors.ErrCodeNotFound, "design %s not in session", eid), nil)
		return
	}
	if err := s.saveSession(r, sess); err != nil {
		s.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(sess))
}

// handleBuildSession builds every design in the session. The session is
// emptied after a successful build unless keep=true is passed.
func (s *Server) handleBuildSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadSession(r)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	if sess.Len() == 0 {
		s.fail(w, r, errors.New(errors.ErrCodeEmptyResult, "session %s has no designs", sess.ID), nil)
		return
	}
	opts, publish, err := s.runOptions(r)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	keep := false
	if v := r.URL.Query().Get("keep"); v != "" {
		if keep, err = strconv.ParseBool(v); err != nil {
			s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "keep: %q is not a boolean", v), nil)
			return
		}
	}

	res := s.runAndSend(w, r, pipeline.InputsFromSession(sess), opts, publish)
	if res == nil || keep {
		return
	}
	sess.Reset()
	if err := s.saveSession(r, sess); err != nil {
		s.logger(r).Warn("could not reset session after build", "session", sess.ID, "error", err)
	}
}
