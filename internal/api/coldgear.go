package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/forbiddennorth/hexcrawl/internal/storage/postgres"
)

func (s *Server) handleColdGearList(w http.ResponseWriter, r *http.Request) {
	items, err := s.coldGear.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "listing cold gear: %v", err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

type createColdGearRequest struct {
	Name        string `json:"name"`
	TempShift   int    `json:"temp_shift"`
	NegatesGear bool   `json:"negates_gear"`
}

func (s *Server) handleColdGearCreate(w http.ResponseWriter, r *http.Request) {
	var req createColdGearRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "%v", err)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		respondError(w, http.StatusBadRequest, "cold gear name must not be empty")
		return
	}
	item, err := s.coldGear.Create(r.Context(), postgres.ColdGearItem{
		Name:        name,
		TempShift:   req.TempShift,
		NegatesGear: req.NegatesGear,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "creating cold gear: %v", err)
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

func (s *Server) handleColdGearDelete(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	err := s.coldGear.Delete(r.Context(), id)
	if errors.Is(err, postgres.ErrColdGearNotFound) {
		respondError(w, http.StatusNotFound, "cold gear item %d not found", id)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "deleting cold gear: %v", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
