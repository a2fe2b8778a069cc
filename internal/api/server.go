// Package api exposes the campaign tracker over HTTP: travel and chance
// resolution, campaign state, terrain and calendar configuration, play
// sessions, and the adventure log. All endpoints speak JSON and are
// routed with gorilla/mux. Store dependencies are declared as
// consumer-side interfaces so handler tests can stub them.
package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/forbiddennorth/hexcrawl/internal/game/calendar"
	"github.com/forbiddennorth/hexcrawl/internal/game/dice"
	"github.com/forbiddennorth/hexcrawl/internal/game/encounter"
	"github.com/forbiddennorth/hexcrawl/internal/game/terrain"
	"github.com/forbiddennorth/hexcrawl/internal/storage/postgres"
)

// CampaignStore persists the single campaign-state row.
type CampaignStore interface {
	Get(ctx context.Context) (postgres.State, error)
	Put(ctx context.Context, s postgres.State) error
	Patch(ctx context.Context, u postgres.StateUpdate) (postgres.State, error)
}

// TerrainStore persists terrain types.
type TerrainStore interface {
	List(ctx context.Context) ([]terrain.Terrain, error)
	Get(ctx context.Context, id int64) (terrain.Terrain, error)
	Create(ctx context.Context, t terrain.Terrain) (terrain.Terrain, error)
	Update(ctx context.Context, id int64, patch terrain.Update) (terrain.Terrain, error)
	Delete(ctx context.Context, id int64) error
}

// CalendarStore persists the calendar configuration.
type CalendarStore interface {
	Load(ctx context.Context) (*calendar.Calendar, error)
	ReplaceMonths(ctx context.Context, months []calendar.Month) error
	UpdateMonth(ctx context.Context, number int, patch postgres.MonthUpdate) (calendar.Month, error)
	SetEra(ctx context.Context, era string) error
}

// LogStore persists the adventure log. DeleteAfter truncates entries
// above an undo watermark.
type LogStore interface {
	Append(ctx context.Context, e postgres.LogEntry) (int64, error)
	Recent(ctx context.Context, limit int, sessionID *int64) ([]postgres.LogEntry, error)
	All(ctx context.Context, sessionID int64) ([]postgres.LogEntry, error)
	MaxID(ctx context.Context) (int64, error)
	DeleteAfter(ctx context.Context, watermark int64) error
}

// SessionStore persists play sessions and their notes.
type SessionStore interface {
	List(ctx context.Context) ([]postgres.Session, error)
	Get(ctx context.Context, id int64) (postgres.Session, error)
	Active(ctx context.Context) (postgres.Session, error)
	ActiveID(ctx context.Context) (*int64, error)
	Start(ctx context.Context, s postgres.State) (postgres.Session, error)
	Rename(ctx context.Context, id int64, name string) error
	Delete(ctx context.Context, id int64) error
	Notes(ctx context.Context, sessionID int64) ([]postgres.SessionNote, error)
	AddNote(ctx context.Context, n postgres.SessionNote) (postgres.SessionNote, error)
	DeleteNote(ctx context.Context, id int64) error
}

// EncounterStore persists encounter tables and their entries.
type EncounterStore interface {
	TablesForTerrain(ctx context.Context, terrainID int64) ([]encounter.Table, error)
	GetTable(ctx context.Context, id int64) (encounter.Table, error)
	CreateTable(ctx context.Context, t encounter.Table) (encounter.Table, error)
	DeleteTable(ctx context.Context, id int64) error
	Entries(ctx context.Context, tableID int64) ([]encounter.Entry, error)
	CreateEntry(ctx context.Context, e encounter.Entry) (encounter.Entry, error)
	UpdateEntry(ctx context.Context, e encounter.Entry) error
	DeleteEntry(ctx context.Context, id int64) error
}

// ColdGearStore persists cold-weather gear options.
type ColdGearStore interface {
	List(ctx context.Context) ([]postgres.ColdGearItem, error)
	Create(ctx context.Context, item postgres.ColdGearItem) (postgres.ColdGearItem, error)
	Delete(ctx context.Context, id int64) error
}

// Server wires the HTTP handlers to their stores and the dice roller.
type Server struct {
	campaign   CampaignStore
	terrains   TerrainStore
	cal        CalendarStore
	logs       LogStore
	sessions   SessionStore
	encounters EncounterStore
	coldGear   ColdGearStore
	roller     *dice.Roller
	history    *History
	logger     *zap.Logger
}

// NewServer creates a Server with the given dependencies.
//
// Precondition: all stores, the roller, the history, and the logger must
// be non-nil.
// Postcondition: Returns a fully initialised Server.
func NewServer(
	campaign CampaignStore,
	terrains TerrainStore,
	cal CalendarStore,
	logs LogStore,
	sessions SessionStore,
	encounters EncounterStore,
	coldGear ColdGearStore,
	roller *dice.Roller,
	history *History,
	logger *zap.Logger,
) *Server {
	return &Server{
		campaign:   campaign,
		terrains:   terrains,
		cal:        cal,
		logs:       logs,
		sessions:   sessions,
		encounters: encounters,
		coldGear:   coldGear,
		roller:     roller,
		history:    history,
		logger:     logger,
	}
}

// Router builds the HTTP route table.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(RequestID, RequestLogging(s.logger))

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	t := api.PathPrefix("/travel").Subrouter()
	t.HandleFunc("/state", s.handleTravelState).Methods(http.MethodGet)
	t.HandleFunc("/enter-hex", s.handleEnterHex).Methods(http.MethodPost)
	t.HandleFunc("/forage", s.handleForage).Methods(http.MethodPost)
	t.HandleFunc("/hunt", s.handleHunt).Methods(http.MethodPost)
	t.HandleFunc("/direction-check", s.handleDirectionCheck).Methods(http.MethodPost)
	t.HandleFunc("/wander-check", s.handleWanderCheck).Methods(http.MethodPost)
	t.HandleFunc("/roll-weather", s.handleRollWeather).Methods(http.MethodPost)
	t.HandleFunc("/reset-day", s.handleResetDay).Methods(http.MethodPost)
	t.HandleFunc("/set-state", s.handleSetState).Methods(http.MethodPost)
	t.HandleFunc("/log", s.handleLog).Methods(http.MethodGet)
	t.HandleFunc("/can-undo", s.handleCanUndo).Methods(http.MethodGet)
	t.HandleFunc("/undo", s.handleUndo).Methods(http.MethodPost)

	api.HandleFunc("/terrains", s.handleTerrainList).Methods(http.MethodGet)
	api.HandleFunc("/terrains", s.handleTerrainCreate).Methods(http.MethodPost)
	api.HandleFunc("/terrains/{id:[0-9]+}", s.handleTerrainGet).Methods(http.MethodGet)
	api.HandleFunc("/terrains/{id:[0-9]+}", s.handleTerrainPatch).Methods(http.MethodPatch)
	api.HandleFunc("/terrains/{id:[0-9]+}", s.handleTerrainDelete).Methods(http.MethodDelete)

	api.HandleFunc("/calendar", s.handleCalendarGet).Methods(http.MethodGet)
	api.HandleFunc("/calendar/months", s.handleCalendarReplaceMonths).Methods(http.MethodPut)
	api.HandleFunc("/calendar/months/{number:[0-9]+}", s.handleCalendarPatchMonth).Methods(http.MethodPatch)
	api.HandleFunc("/calendar/config", s.handleCalendarPatchConfig).Methods(http.MethodPatch)

	api.HandleFunc("/sessions", s.handleSessionList).Methods(http.MethodGet)
	api.HandleFunc("/sessions", s.handleSessionStart).Methods(http.MethodPost)
	api.HandleFunc("/sessions/active", s.handleSessionActive).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id:[0-9]+}", s.handleSessionGet).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id:[0-9]+}", s.handleSessionRename).Methods(http.MethodPatch)
	api.HandleFunc("/sessions/{id:[0-9]+}", s.handleSessionDelete).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{id:[0-9]+}/notes", s.handleSessionNotes).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id:[0-9]+}/notes", s.handleSessionAddNote).Methods(http.MethodPost)
	api.HandleFunc("/sessions/notes/{id:[0-9]+}", s.handleSessionDeleteNote).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{id:[0-9]+}/export", s.handleSessionExport).Methods(http.MethodGet)

	api.HandleFunc("/terrains/{id:[0-9]+}/encounter-tables", s.handleEncounterTablesForTerrain).Methods(http.MethodGet)
	api.HandleFunc("/encounter-tables", s.handleEncounterTableCreate).Methods(http.MethodPost)
	api.HandleFunc("/encounter-tables/{id:[0-9]+}", s.handleEncounterTableDelete).Methods(http.MethodDelete)
	api.HandleFunc("/encounter-tables/{id:[0-9]+}/entries", s.handleEncounterEntries).Methods(http.MethodGet)
	api.HandleFunc("/encounter-entries", s.handleEncounterEntryCreate).Methods(http.MethodPost)
	api.HandleFunc("/encounter-entries/{id:[0-9]+}", s.handleEncounterEntryUpdate).Methods(http.MethodPut)
	api.HandleFunc("/encounter-entries/{id:[0-9]+}", s.handleEncounterEntryDelete).Methods(http.MethodDelete)

	api.HandleFunc("/cold-gear", s.handleColdGearList).Methods(http.MethodGet)
	api.HandleFunc("/cold-gear", s.handleColdGearCreate).Methods(http.MethodPost)
	api.HandleFunc("/cold-gear/{id:[0-9]+}", s.handleColdGearDelete).Methods(http.MethodDelete)

	return r
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
