package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/forbiddennorth/hexcrawl/internal/storage/postgres"
)

func (s *Server) handleSessionList(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.sessions.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "listing sessions: %v", err)
		return
	}
	respondJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleSessionGet(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	sess, err := s.sessions.Get(r.Context(), id)
	if errors.Is(err, postgres.ErrSessionNotFound) {
		respondError(w, http.StatusNotFound, "session %d not found", id)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "getting session: %v", err)
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

func (s *Server) handleSessionActive(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Active(r.Context())
	if errors.Is(err, postgres.ErrNoActiveSession) {
		respondError(w, http.StatusNotFound, "no active session")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "getting active session: %v", err)
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

// handleSessionStart opens a new play session at the current campaign
// clock, closing any previously active session at the same point.
func (s *Server) handleSessionStart(w http.ResponseWriter, r *http.Request) {
	st, err := s.campaign.Get(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "loading campaign state: %v", err)
		return
	}
	sess, err := s.sessions.Start(r.Context(), st)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "starting session: %v", err)
		return
	}
	respondJSON(w, http.StatusCreated, sess)
}

type renameSessionRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleSessionRename(w http.ResponseWriter, r *http.Request) {
	var req renameSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "%v", err)
		return
	}
	id := pathID(r, "id")
	err := s.sessions.Rename(r.Context(), id, req.Name)
	if errors.Is(err, postgres.ErrSessionNotFound) {
		respondError(w, http.StatusNotFound, "session %d not found", id)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "renaming session: %v", err)
		return
	}
	sess, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "getting session: %v", err)
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

func (s *Server) handleSessionDelete(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	err := s.sessions.Delete(r.Context(), id)
	if errors.Is(err, postgres.ErrSessionNotFound) {
		respondError(w, http.StatusNotFound, "session %d not found", id)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "deleting session: %v", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSessionNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := s.sessions.Notes(r.Context(), pathID(r, "id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "listing notes: %v", err)
		return
	}
	respondJSON(w, http.StatusOK, notes)
}

type addNoteRequest struct {
	Message string `json:"message"`
}

// handleSessionAddNote attaches a referee note to a session, stamped
// with the current campaign clock and hex.
func (s *Server) handleSessionAddNote(w http.ResponseWriter, r *http.Request) {
	var req addNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "%v", err)
		return
	}
	if req.Message == "" {
		respondError(w, http.StatusBadRequest, "message must not be empty")
		return
	}
	ctx := r.Context()
	id := pathID(r, "id")

	if _, err := s.sessions.Get(ctx, id); errors.Is(err, postgres.ErrSessionNotFound) {
		respondError(w, http.StatusNotFound, "session %d not found", id)
		return
	} else if err != nil {
		respondError(w, http.StatusInternalServerError, "getting session: %v", err)
		return
	}

	st, err := s.campaign.Get(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "loading campaign state: %v", err)
		return
	}

	note, err := s.sessions.AddNote(ctx, postgres.SessionNote{
		SessionID: id,
		LogYear:   st.CurrentYear,
		LogMonth:  st.CurrentMonth,
		LogDay:    st.CurrentDayOfMonth,
		Hour:      st.CurrentHour,
		HexID:     st.CurrentHexID,
		Message:   req.Message,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "adding note: %v", err)
		return
	}
	respondJSON(w, http.StatusCreated, note)
}

func (s *Server) handleSessionDeleteNote(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	err := s.sessions.DeleteNote(r.Context(), id)
	if errors.Is(err, postgres.ErrSessionNotFound) {
		respondError(w, http.StatusNotFound, "note %d not found", id)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "deleting note: %v", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSessionExport renders a session's log and notes as Markdown.
func (s *Server) handleSessionExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := pathID(r, "id")

	sess, err := s.sessions.Get(ctx, id)
	if errors.Is(err, postgres.ErrSessionNotFound) {
		respondError(w, http.StatusNotFound, "session %d not found", id)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "getting session: %v", err)
		return
	}

	cal, err := s.cal.Load(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "loading calendar: %v", err)
		return
	}
	entries, err := s.logs.All(ctx, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "loading log: %v", err)
		return
	}
	notes, err := s.sessions.Notes(ctx, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "listing notes: %v", err)
		return
	}

	var b strings.Builder
	title := sess.Name
	if title == "" {
		title = fmt.Sprintf("Session %d", sess.SessionNumber)
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "Began %d %s, %d %s at hour %.2g.\n\n",
		sess.StartDay, cal.MonthName(sess.StartMonth), sess.StartYear, cal.Era(), sess.StartHour)

	b.WriteString("## Log\n\n")
	if len(entries) == 0 {
		b.WriteString("_No log entries._\n")
	}
	for _, e := range entries {
		fmt.Fprintf(&b, "- **%d %s, %d %s %05.2f** [%s] %s\n",
			e.LogDay, cal.MonthName(e.LogMonth), e.LogYear, cal.Era(), e.Hour, e.Category, e.Message)
	}

	b.WriteString("\n## Notes\n\n")
	if len(notes) == 0 {
		b.WriteString("_No notes._\n")
	}
	for _, n := range notes {
		fmt.Fprintf(&b, "- **%d %s, %d %s %05.2f**", n.LogDay, cal.MonthName(n.LogMonth), n.LogYear, cal.Era(), n.Hour)
		if n.HexID != "" {
			fmt.Fprintf(&b, " (hex %s)", n.HexID)
		}
		fmt.Fprintf(&b, " %s\n", n.Message)
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=session-%d.md", sess.SessionNumber))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(b.String()))
}
