package api

import (
	"errors"
	"net/http"

	"github.com/forbiddennorth/hexcrawl/internal/game/calendar"
	"github.com/forbiddennorth/hexcrawl/internal/storage/postgres"
)

// calendarResponse is the calendar configuration view.
type calendarResponse struct {
	Era    string           `json:"era"`
	Months []calendar.Month `json:"months"`
}

func (s *Server) handleCalendarGet(w http.ResponseWriter, r *http.Request) {
	cal, err := s.cal.Load(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "loading calendar: %v", err)
		return
	}
	respondJSON(w, http.StatusOK, calendarResponse{Era: cal.Era(), Months: cal.Months()})
}

type replaceMonthsRequest struct {
	Months []calendar.Month `json:"months"`
}

// handleCalendarReplaceMonths replaces the whole month table. The new
// set is validated as a unit; a partial calendar never lands.
func (s *Server) handleCalendarReplaceMonths(w http.ResponseWriter, r *http.Request) {
	var req replaceMonthsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "%v", err)
		return
	}
	if err := calendar.ValidateMonths(req.Months); err != nil {
		respondError(w, http.StatusBadRequest, "%v", err)
		return
	}
	if err := s.cal.ReplaceMonths(r.Context(), req.Months); err != nil {
		respondError(w, http.StatusInternalServerError, "replacing months: %v", err)
		return
	}
	cal, err := s.cal.Load(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "loading calendar: %v", err)
		return
	}
	respondJSON(w, http.StatusOK, calendarResponse{Era: cal.Era(), Months: cal.Months()})
}

func (s *Server) handleCalendarPatchMonth(w http.ResponseWriter, r *http.Request) {
	var patch postgres.MonthUpdate
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, "%v", err)
		return
	}
	if patch.Empty() {
		respondError(w, http.StatusBadRequest, "month patch carries no fields")
		return
	}
	number := int(pathID(r, "number"))
	month, err := s.cal.UpdateMonth(r.Context(), number, patch)
	if errors.Is(err, postgres.ErrMonthNotFound) {
		respondError(w, http.StatusNotFound, "month %d not found", number)
		return
	}
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "updating month: %v", err)
		return
	}
	respondJSON(w, http.StatusOK, month)
}

type calendarConfigRequest struct {
	Era *string `json:"era,omitempty"`
}

func (s *Server) handleCalendarPatchConfig(w http.ResponseWriter, r *http.Request) {
	var req calendarConfigRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "%v", err)
		return
	}
	if req.Era == nil {
		respondError(w, http.StatusBadRequest, "config patch carries no fields")
		return
	}
	if err := s.cal.SetEra(r.Context(), *req.Era); err != nil {
		respondError(w, http.StatusInternalServerError, "setting era: %v", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"era": *req.Era})
}
