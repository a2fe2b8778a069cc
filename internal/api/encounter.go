package api

import (
	"errors"
	"net/http"

	"github.com/forbiddennorth/hexcrawl/internal/game/dice"
	"github.com/forbiddennorth/hexcrawl/internal/game/encounter"
	"github.com/forbiddennorth/hexcrawl/internal/storage/postgres"
)

func (s *Server) handleEncounterTablesForTerrain(w http.ResponseWriter, r *http.Request) {
	tables, err := s.encounters.TablesForTerrain(r.Context(), pathID(r, "id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "listing encounter tables: %v", err)
		return
	}
	respondJSON(w, http.StatusOK, tables)
}

func (s *Server) handleEncounterTableCreate(w http.ResponseWriter, r *http.Request) {
	var t encounter.Table
	if err := decodeJSON(r, &t); err != nil {
		respondError(w, http.StatusBadRequest, "%v", err)
		return
	}
	if t.Name == "" {
		respondError(w, http.StatusBadRequest, "table name must not be empty")
		return
	}
	if _, err := dice.Parse(t.DiceExpression); err != nil {
		respondError(w, http.StatusBadRequest, "invalid dice expression: %v", err)
		return
	}
	created, err := s.encounters.CreateTable(r.Context(), t)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "creating encounter table: %v", err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleEncounterTableDelete(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	err := s.encounters.DeleteTable(r.Context(), id)
	if errors.Is(err, postgres.ErrEncounterTableNotFound) {
		respondError(w, http.StatusNotFound, "encounter table %d not found", id)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "deleting encounter table: %v", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEncounterEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.encounters.Entries(r.Context(), pathID(r, "id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "listing encounter entries: %v", err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// validateEntry checks the invariants shared by entry create and update.
func validateEntry(e encounter.Entry) error {
	if e.Description == "" {
		return errors.New("description must not be empty")
	}
	if e.RollMin > e.RollMax {
		return errors.New("roll_min must not exceed roll_max")
	}
	if e.NumberAppearing != "" {
		if _, err := dice.Parse(e.NumberAppearing); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) handleEncounterEntryCreate(w http.ResponseWriter, r *http.Request) {
	var e encounter.Entry
	if err := decodeJSON(r, &e); err != nil {
		respondError(w, http.StatusBadRequest, "%v", err)
		return
	}
	if err := validateEntry(e); err != nil {
		respondError(w, http.StatusBadRequest, "%v", err)
		return
	}
	created, err := s.encounters.CreateEntry(r.Context(), e)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "creating encounter entry: %v", err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleEncounterEntryUpdate(w http.ResponseWriter, r *http.Request) {
	var e encounter.Entry
	if err := decodeJSON(r, &e); err != nil {
		respondError(w, http.StatusBadRequest, "%v", err)
		return
	}
	e.ID = pathID(r, "id")
	if err := validateEntry(e); err != nil {
		respondError(w, http.StatusBadRequest, "%v", err)
		return
	}
	err := s.encounters.UpdateEntry(r.Context(), e)
	if errors.Is(err, postgres.ErrEncounterEntryNotFound) {
		respondError(w, http.StatusNotFound, "encounter entry %d not found", e.ID)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "updating encounter entry: %v", err)
		return
	}
	respondJSON(w, http.StatusOK, e)
}

func (s *Server) handleEncounterEntryDelete(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	err := s.encounters.DeleteEntry(r.Context(), id)
	if errors.Is(err, postgres.ErrEncounterEntryNotFound) {
		respondError(w, http.StatusNotFound, "encounter entry %d not found", id)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "deleting encounter entry: %v", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
