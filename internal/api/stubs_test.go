package api

import (
	"context"
	"sort"
	"testing"

	"go.uber.org/zap"

	"github.com/forbiddennorth/hexcrawl/internal/game/calendar"
	"github.com/forbiddennorth/hexcrawl/internal/game/dice"
	"github.com/forbiddennorth/hexcrawl/internal/game/encounter"
	"github.com/forbiddennorth/hexcrawl/internal/game/terrain"
	"github.com/forbiddennorth/hexcrawl/internal/storage/postgres"
)

// scriptedSource returns a fixed sequence of draws, wrapping around.
type scriptedSource struct {
	draws []int
	pos   int
}

func (s *scriptedSource) Intn(n int) int {
	v := s.draws[s.pos%len(s.draws)]
	s.pos++
	return v % n
}

type stubCampaign struct {
	state postgres.State
}

func (s *stubCampaign) Get(ctx context.Context) (postgres.State, error) {
	return s.state, nil
}

func (s *stubCampaign) Put(ctx context.Context, st postgres.State) error {
	s.state = st
	return nil
}

func (s *stubCampaign) Patch(ctx context.Context, u postgres.StateUpdate) (postgres.State, error) {
	s.state = u.Apply(s.state)
	return s.state, nil
}

type stubTerrains struct {
	terrains map[int64]terrain.Terrain
	nextID   int64
}

func newStubTerrains(ts ...terrain.Terrain) *stubTerrains {
	s := &stubTerrains{terrains: make(map[int64]terrain.Terrain), nextID: 1}
	for _, t := range ts {
		t.ID = s.nextID
		s.terrains[t.ID] = t
		s.nextID++
	}
	return s
}

func (s *stubTerrains) List(ctx context.Context) ([]terrain.Terrain, error) {
	out := make([]terrain.Terrain, 0, len(s.terrains))
	for id := int64(1); id < s.nextID; id++ {
		if t, ok := s.terrains[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *stubTerrains) Get(ctx context.Context, id int64) (terrain.Terrain, error) {
	t, ok := s.terrains[id]
	if !ok {
		return terrain.Terrain{}, postgres.ErrTerrainNotFound
	}
	return t, nil
}

func (s *stubTerrains) Create(ctx context.Context, t terrain.Terrain) (terrain.Terrain, error) {
	t.ID = s.nextID
	s.terrains[t.ID] = t
	s.nextID++
	return t, nil
}

func (s *stubTerrains) Update(ctx context.Context, id int64, patch terrain.Update) (terrain.Terrain, error) {
	t, ok := s.terrains[id]
	if !ok {
		return terrain.Terrain{}, postgres.ErrTerrainNotFound
	}
	t = patch.Apply(t)
	if err := t.Validate(); err != nil {
		return terrain.Terrain{}, err
	}
	s.terrains[id] = t
	return t, nil
}

func (s *stubTerrains) Delete(ctx context.Context, id int64) error {
	if _, ok := s.terrains[id]; !ok {
		return postgres.ErrTerrainNotFound
	}
	delete(s.terrains, id)
	return nil
}

type stubCalendar struct {
	cal *calendar.Calendar
}

func (s *stubCalendar) Load(ctx context.Context) (*calendar.Calendar, error) {
	return s.cal, nil
}

func (s *stubCalendar) ReplaceMonths(ctx context.Context, months []calendar.Month) error {
	s.cal = calendar.New(months, s.cal.Era())
	return nil
}

func (s *stubCalendar) UpdateMonth(ctx context.Context, number int, patch postgres.MonthUpdate) (calendar.Month, error) {
	for _, m := range s.cal.Months() {
		if m.Number != number {
			continue
		}
		if patch.Name != nil {
			m.Name = *patch.Name
		}
		if patch.Season != nil {
			m.Season = *patch.Season
		}
		if patch.Days != nil {
			m.Days = *patch.Days
		}
		return m, nil
	}
	return calendar.Month{}, postgres.ErrMonthNotFound
}

func (s *stubCalendar) SetEra(ctx context.Context, era string) error {
	s.cal = calendar.New(s.cal.Months(), era)
	return nil
}

type stubLogs struct {
	entries []postgres.LogEntry
	nextID  int64
}

func (s *stubLogs) Append(ctx context.Context, e postgres.LogEntry) (int64, error) {
	s.nextID++
	e.ID = s.nextID
	s.entries = append(s.entries, e)
	return e.ID, nil
}

func (s *stubLogs) Recent(ctx context.Context, limit int, sessionID *int64) ([]postgres.LogEntry, error) {
	// Mirror the repository's default so limit handling is exercised.
	if limit < 1 {
		limit = 50
	}
	out := make([]postgres.LogEntry, 0, len(s.entries))
	for _, e := range s.entries {
		if sessionID != nil && (e.SessionID == nil || *e.SessionID != *sessionID) {
			continue
		}
		out = append(out, e)
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (s *stubLogs) All(ctx context.Context, sessionID int64) ([]postgres.LogEntry, error) {
	var out []postgres.LogEntry
	for _, e := range s.entries {
		if e.SessionID != nil && *e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *stubLogs) MaxID(ctx context.Context) (int64, error) {
	return s.nextID, nil
}

func (s *stubLogs) DeleteAfter(ctx context.Context, watermark int64) error {
	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.ID <= watermark {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	return nil
}

type stubSessions struct {
	sessions map[int64]postgres.Session
	notes    map[int64]postgres.SessionNote
	nextID   int64
}

func newStubSessions() *stubSessions {
	return &stubSessions{
		sessions: make(map[int64]postgres.Session),
		notes:    make(map[int64]postgres.SessionNote),
	}
}

func (s *stubSessions) List(ctx context.Context) ([]postgres.Session, error) {
	out := make([]postgres.Session, 0, len(s.sessions))
	for id := s.nextID; id >= 1; id-- {
		if sess, ok := s.sessions[id]; ok {
			out = append(out, sess)
		}
	}
	return out, nil
}

func (s *stubSessions) Get(ctx context.Context, id int64) (postgres.Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return postgres.Session{}, postgres.ErrSessionNotFound
	}
	return sess, nil
}

func (s *stubSessions) Active(ctx context.Context) (postgres.Session, error) {
	for _, sess := range s.sessions {
		if sess.IsActive {
			return sess, nil
		}
	}
	return postgres.Session{}, postgres.ErrNoActiveSession
}

func (s *stubSessions) ActiveID(ctx context.Context) (*int64, error) {
	sess, err := s.Active(ctx)
	if err != nil {
		return nil, nil
	}
	return &sess.ID, nil
}

func (s *stubSessions) Start(ctx context.Context, st postgres.State) (postgres.Session, error) {
	number := 1
	for id, sess := range s.sessions {
		if sess.SessionNumber >= number {
			number = sess.SessionNumber + 1
		}
		if sess.IsActive {
			sess.IsActive = false
			s.sessions[id] = sess
		}
	}
	s.nextID++
	sess := postgres.Session{
		ID:            s.nextID,
		SessionNumber: number,
		IsActive:      true,
		StartYear:     st.CurrentYear,
		StartMonth:    st.CurrentMonth,
		StartDay:      st.CurrentDayOfMonth,
		StartHour:     st.CurrentHour,
	}
	s.sessions[sess.ID] = sess
	return sess, nil
}

func (s *stubSessions) Rename(ctx context.Context, id int64, name string) error {
	sess, ok := s.sessions[id]
	if !ok {
		return postgres.ErrSessionNotFound
	}
	sess.Name = name
	s.sessions[id] = sess
	return nil
}

func (s *stubSessions) Delete(ctx context.Context, id int64) error {
	if _, ok := s.sessions[id]; !ok {
		return postgres.ErrSessionNotFound
	}
	delete(s.sessions, id)
	for noteID, n := range s.notes {
		if n.SessionID == id {
			delete(s.notes, noteID)
		}
	}
	return nil
}

func (s *stubSessions) Notes(ctx context.Context, sessionID int64) ([]postgres.SessionNote, error) {
	out := make([]postgres.SessionNote, 0)
	for id := int64(1); id <= s.nextID; id++ {
		if n, ok := s.notes[id]; ok && n.SessionID == sessionID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *stubSessions) AddNote(ctx context.Context, n postgres.SessionNote) (postgres.SessionNote, error) {
	s.nextID++
	n.ID = s.nextID
	s.notes[n.ID] = n
	return n, nil
}

func (s *stubSessions) DeleteNote(ctx context.Context, id int64) error {
	if _, ok := s.notes[id]; !ok {
		return postgres.ErrSessionNotFound
	}
	delete(s.notes, id)
	return nil
}

type stubEncounters struct {
	tables  map[int64]encounter.Table
	entries map[int64]encounter.Entry
	nextID  int64
}

func newStubEncounters() *stubEncounters {
	return &stubEncounters{
		tables:  make(map[int64]encounter.Table),
		entries: make(map[int64]encounter.Entry),
	}
}

func (s *stubEncounters) TablesForTerrain(ctx context.Context, terrainID int64) ([]encounter.Table, error) {
	out := make([]encounter.Table, 0)
	for id := int64(1); id <= s.nextID; id++ {
		if t, ok := s.tables[id]; ok && t.TerrainID == terrainID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *stubEncounters) GetTable(ctx context.Context, id int64) (encounter.Table, error) {
	t, ok := s.tables[id]
	if !ok {
		return encounter.Table{}, postgres.ErrEncounterTableNotFound
	}
	return t, nil
}

func (s *stubEncounters) CreateTable(ctx context.Context, t encounter.Table) (encounter.Table, error) {
	s.nextID++
	t.ID = s.nextID
	s.tables[t.ID] = t
	return t, nil
}

func (s *stubEncounters) DeleteTable(ctx context.Context, id int64) error {
	if _, ok := s.tables[id]; !ok {
		return postgres.ErrEncounterTableNotFound
	}
	delete(s.tables, id)
	return nil
}

func (s *stubEncounters) Entries(ctx context.Context, tableID int64) ([]encounter.Entry, error) {
	out := make([]encounter.Entry, 0)
	for id := int64(1); id <= s.nextID; id++ {
		if e, ok := s.entries[id]; ok && e.TableID == tableID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *stubEncounters) CreateEntry(ctx context.Context, e encounter.Entry) (encounter.Entry, error) {
	s.nextID++
	e.ID = s.nextID
	s.entries[e.ID] = e
	return e, nil
}

func (s *stubEncounters) UpdateEntry(ctx context.Context, e encounter.Entry) error {
	if _, ok := s.entries[e.ID]; !ok {
		return postgres.ErrEncounterEntryNotFound
	}
	s.entries[e.ID] = e
	return nil
}

func (s *stubEncounters) DeleteEntry(ctx context.Context, id int64) error {
	if _, ok := s.entries[id]; !ok {
		return postgres.ErrEncounterEntryNotFound
	}
	delete(s.entries, id)
	return nil
}

// testEnv bundles a Server with its stubs for inspection.
type stubColdGear struct {
	items  map[int64]postgres.ColdGearItem
	nextID int64
}

func newStubColdGear() *stubColdGear {
	return &stubColdGear{items: make(map[int64]postgres.ColdGearItem)}
}

func (s *stubColdGear) List(ctx context.Context) ([]postgres.ColdGearItem, error) {
	out := make([]postgres.ColdGearItem, 0, len(s.items))
	for id := int64(1); id <= s.nextID; id++ {
		if item, ok := s.items[id]; ok {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TempShift > out[j].TempShift
	})
	return out, nil
}

func (s *stubColdGear) Create(ctx context.Context, item postgres.ColdGearItem) (postgres.ColdGearItem, error) {
	s.nextID++
	item.ID = s.nextID
	s.items[item.ID] = item
	return item, nil
}

func (s *stubColdGear) Delete(ctx context.Context, id int64) error {
	if _, ok := s.items[id]; !ok {
		return postgres.ErrColdGearNotFound
	}
	delete(s.items, id)
	return nil
}

type testEnv struct {
	server     *Server
	campaign   *stubCampaign
	terrains   *stubTerrains
	cal        *stubCalendar
	logs       *stubLogs
	sessions   *stubSessions
	encounters *stubEncounters
	coldGear   *stubColdGear
}

// defaultTestState is a mid-campaign state in forest terrain (id 2).
func defaultTestState() postgres.State {
	terrainID := int64(2)
	return postgres.State{
		CurrentHexID:       "0101",
		CurrentTerrainID:   &terrainID,
		CurrentYear:        22,
		CurrentMonth:       8,
		CurrentDayOfMonth:  22,
		CurrentHour:        6,
		MovementRate:       120,
	}
}

func newTestEnv(t *testing.T, draws ...int) *testEnv {
	t.Helper()
	if len(draws) == 0 {
		draws = []int{0}
	}

	env := &testEnv{
		campaign: &stubCampaign{state: defaultTestState()},
		terrains: newStubTerrains(
			terrain.Terrain{
				Name:                   "Grasslands",
				TravelSpeedModifier:    0,
				ForagingChance:         "1:6",
				ForagingYield:          "1d4",
				HuntingChance:          "2:6",
				HuntingYield:           "1d6",
				LosingDirectionChance:  "1:6",
				WanderingMonsterChance: "1:6",
				EncounterDistance:      "4d6",
			},
			terrain.Terrain{
				Name:                   "Forest",
				TravelSpeedModifier:    -0.5,
				ForagingChance:         "2:6",
				ForagingYield:          "1d6",
				HuntingChance:          "3:6",
				HuntingYield:           "1d8",
				LosingDirectionChance:  "2:6",
				WanderingMonsterChance: "2:6",
				EncounterDistance:      "3d6",
			},
			terrain.Terrain{
				Name:                "Lava Field",
				TravelSpeedModifier: -1,
			},
			terrain.Terrain{
				Name:                "Farmlands",
				TravelSpeedModifier: 0,
				ForagingChance:      terrain.ChanceAuto,
				ForagingYield:       "1d6",
			},
			terrain.Terrain{
				Name:                "Old Road",
				TravelSpeedModifier: 0.5,
			},
		),
		cal:        &stubCalendar{cal: calendar.Default()},
		logs:       &stubLogs{},
		sessions:   newStubSessions(),
		encounters: newStubEncounters(),
		coldGear:   newStubColdGear(),
	}

	env.server = NewServer(
		env.campaign,
		env.terrains,
		env.cal,
		env.logs,
		env.sessions,
		env.encounters,
		env.coldGear,
		dice.NewLoggedRoller(&scriptedSource{draws: draws}, zap.NewNop()),
		NewHistory(5),
		zap.NewNop(),
	)
	return env
}

// tableForTest builds a 1d8 encounter table for the given terrain.
func tableForTest(terrainID int64) encounter.Table {
	return encounter.Table{
		TerrainID:      terrainID,
		Name:           "Test Encounters",
		DiceExpression: "1d8",
	}
}

func entryForTest(tableID int64, min, max int, description string) encounter.Entry {
	return encounter.Entry{
		TableID:     tableID,
		RollMin:     min,
		RollMax:     max,
		Description: description,
	}
}

// lastLog returns the most recent log entry, failing the test when none exist.
func (env *testEnv) lastLog(t *testing.T) postgres.LogEntry {
	t.Helper()
	if len(env.logs.entries) == 0 {
		t.Fatal("expected at least one log entry")
	}
	return env.logs.entries[len(env.logs.entries)-1]
}
