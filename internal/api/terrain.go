package api

import (
	"errors"
	"net/http"

	"github.com/forbiddennorth/hexcrawl/internal/game/terrain"
	"github.com/forbiddennorth/hexcrawl/internal/storage/postgres"
)

func (s *Server) handleTerrainList(w http.ResponseWriter, r *http.Request) {
	terrains, err := s.terrains.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "listing terrains: %v", err)
		return
	}
	respondJSON(w, http.StatusOK, terrains)
}

func (s *Server) handleTerrainGet(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	t, err := s.terrains.Get(r.Context(), id)
	if errors.Is(err, postgres.ErrTerrainNotFound) {
		respondError(w, http.StatusNotFound, "terrain %d not found", id)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "getting terrain: %v", err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

func (s *Server) handleTerrainCreate(w http.ResponseWriter, r *http.Request) {
	var t terrain.Terrain
	if err := decodeJSON(r, &t); err != nil {
		respondError(w, http.StatusBadRequest, "%v", err)
		return
	}
	if err := t.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, "%v", err)
		return
	}
	created, err := s.terrains.Create(r.Context(), t)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "creating terrain: %v", err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleTerrainPatch(w http.ResponseWriter, r *http.Request) {
	var patch terrain.Update
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, "%v", err)
		return
	}
	if patch.Empty() {
		respondError(w, http.StatusBadRequest, "terrain patch carries no fields")
		return
	}
	id := pathID(r, "id")
	updated, err := s.terrains.Update(r.Context(), id, patch)
	if errors.Is(err, postgres.ErrTerrainNotFound) {
		respondError(w, http.StatusNotFound, "terrain %d not found", id)
		return
	}
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "updating terrain: %v", err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleTerrainDelete(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	err := s.terrains.Delete(r.Context(), id)
	if errors.Is(err, postgres.ErrTerrainNotFound) {
		respondError(w, http.StatusNotFound, "terrain %d not found", id)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "deleting terrain: %v", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
