package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/forbiddennorth/hexcrawl/internal/game/dice"
	"github.com/forbiddennorth/hexcrawl/internal/game/encounter"
	"github.com/forbiddennorth/hexcrawl/internal/game/terrain"
	"github.com/forbiddennorth/hexcrawl/internal/game/travel"
	"github.com/forbiddennorth/hexcrawl/internal/game/weather"
	"github.com/forbiddennorth/hexcrawl/internal/storage/postgres"
)

// Log categories, one per kind of resolved action.
const (
	categoryTravel    = "travel"
	categoryForage    = "forage"
	categoryHunt      = "hunt"
	categoryDirection = "direction"
	categoryEncounter = "encounter"
	categoryWeather   = "weather"
	categoryRest      = "rest"
	categoryState     = "state"
)

// appendLog writes an adventure-log entry stamped with the state's clock
// and the active session. Log failures are reported in the server log
// but never fail the action that produced them.
func (s *Server) appendLog(ctx context.Context, st postgres.State, category, message string) {
	sessionID, err := s.sessions.ActiveID(ctx)
	if err != nil {
		s.logger.Warn("resolving active session for log entry", zap.Error(err))
	}
	_, err = s.logs.Append(ctx, postgres.LogEntry{
		SessionID: sessionID,
		LogYear:   st.CurrentYear,
		LogMonth:  st.CurrentMonth,
		LogDay:    st.CurrentDayOfMonth,
		Hour:      st.CurrentHour,
		Category:  category,
		Message:   message,
	})
	if err != nil {
		s.logger.Warn("appending log entry", zap.Error(err))
	}
}

// snapshot records an undo point before a state mutation.
func (s *Server) snapshot(ctx context.Context, st postgres.State) {
	watermark, err := s.logs.MaxID(ctx)
	if err != nil {
		s.logger.Warn("reading log watermark for undo snapshot", zap.Error(err))
		return
	}
	s.history.Push(Snapshot{State: st, LogWatermark: watermark})
}

// currentTerrain loads the terrain the party currently occupies.
func (s *Server) currentTerrain(ctx context.Context, st postgres.State) (terrain.Terrain, error) {
	if st.CurrentTerrainID == nil {
		return terrain.Terrain{}, fmt.Errorf("campaign state has no current terrain")
	}
	return s.terrains.Get(ctx, *st.CurrentTerrainID)
}

// stateResponse is the full travel-state view: persisted state plus the
// current terrain and the speed it implies.
type stateResponse struct {
	State   postgres.State   `json:"state"`
	Terrain *terrain.Terrain `json:"terrain,omitempty"`
	Speed   *travel.Speed    `json:"speed,omitempty"`
}

func (s *Server) stateView(ctx context.Context, st postgres.State) stateResponse {
	resp := stateResponse{State: st}
	if st.CurrentTerrainID == nil {
		return resp
	}
	t, err := s.terrains.Get(ctx, *st.CurrentTerrainID)
	if err != nil {
		s.logger.Warn("loading current terrain", zap.Int64("terrain_id", *st.CurrentTerrainID), zap.Error(err))
		return resp
	}
	speed := travel.CalculateSpeed(t.TravelSpeedModifier, st.MovementRate)
	resp.Terrain = &t
	resp.Speed = &speed
	return resp
}

// handleTravelState returns the campaign state with terrain and speed.
func (s *Server) handleTravelState(w http.ResponseWriter, r *http.Request) {
	st, err := s.campaign.Get(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "loading campaign state: %v", err)
		return
	}
	respondJSON(w, http.StatusOK, s.stateView(r.Context(), st))
}

type enterHexRequest struct {
	HexID     string `json:"hex_id"`
	TerrainID int64  `json:"terrain_id"`
}

type enterHexResponse struct {
	State       postgres.State  `json:"state"`
	Terrain     terrain.Terrain `json:"terrain"`
	Speed       travel.Speed    `json:"speed"`
	HoursSpent  float64         `json:"hours_spent"`
	ForcedMarch bool            `json:"forced_march"`
	DayRolled   bool            `json:"day_rolled"`
}

// handleEnterHex moves the party into an adjacent hex: computes the
// traversal time from the target terrain, advances the clock, and logs
// the move.
func (s *Server) handleEnterHex(w http.ResponseWriter, r *http.Request) {
	var req enterHexRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "%v", err)
		return
	}
	if req.HexID == "" {
		respondError(w, http.StatusBadRequest, "hex_id must not be empty")
		return
	}
	ctx := r.Context()

	st, err := s.campaign.Get(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "loading campaign state: %v", err)
		return
	}
	t, err := s.terrains.Get(ctx, req.TerrainID)
	if err != nil {
		respondError(w, http.StatusNotFound, "terrain %d: %v", req.TerrainID, err)
		return
	}

	speed := travel.CalculateSpeed(t.TravelSpeedModifier, st.MovementRate)
	if !speed.Traversable() {
		respondError(w, http.StatusUnprocessableEntity, "terrain %q cannot be traversed", t.Name)
		return
	}

	cal, err := s.cal.Load(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "loading calendar: %v", err)
		return
	}

	s.snapshot(ctx, st)

	before := st.Clock()
	after := travel.AdvanceTime(cal, before, speed.HoursPerHex)

	next := st.WithClock(after)
	next.CurrentHexID = req.HexID
	terrainID := t.ID
	next.CurrentTerrainID = &terrainID

	if err := s.campaign.Put(ctx, next); err != nil {
		respondError(w, http.StatusInternalServerError, "saving campaign state: %v", err)
		return
	}

	forced := travel.IsForcedMarch(after.HoursToday)
	dayRolled := after.Day != before.Day || after.Month != before.Month || after.Year != before.Year

	msg := fmt.Sprintf("Entered hex %s (%s): %.2f hours", req.HexID, t.Name, speed.HoursPerHex)
	if forced {
		msg += " (forced march)"
	}
	s.appendLog(ctx, next, categoryTravel, msg)

	respondJSON(w, http.StatusOK, enterHexResponse{
		State:       next,
		Terrain:     t,
		Speed:       speed,
		HoursSpent:  speed.HoursPerHex,
		ForcedMarch: forced,
		DayRolled:   dayRolled,
	})
}

// chanceResponse is the outcome of a forage or hunt attempt.
type chanceResponse struct {
	Possible bool              `json:"possible"`
	Auto     bool              `json:"auto,omitempty"`
	Check    *dice.ChanceCheck `json:"check,omitempty"`
	Success  bool              `json:"success"`
	Yield    *dice.Result      `json:"yield,omitempty"`
}

// resolveChanceActivity runs one chance-gated activity against the
// current terrain: an empty chance string means the activity is not
// possible there, "auto" means automatic success, anything else is a
// "target:sides" roll. On success the yield expression is rolled.
func (s *Server) resolveChanceActivity(ctx context.Context, st postgres.State, chance, yield string) (chanceResponse, error) {
	if chance == "" {
		return chanceResponse{Possible: false}, nil
	}

	resp := chanceResponse{Possible: true}
	if chance == terrain.ChanceAuto {
		resp.Auto = true
		resp.Success = true
	} else {
		check, err := s.roller.RollChance(chance)
		if err != nil {
			return chanceResponse{}, fmt.Errorf("resolving chance %q: %w", chance, err)
		}
		resp.Check = &check
		resp.Success = check.Success
	}

	if resp.Success && yield != "" {
		result, err := s.roller.RollExpr(yield)
		if err != nil {
			return chanceResponse{}, fmt.Errorf("rolling yield %q: %w", yield, err)
		}
		resp.Yield = &result
	}
	return resp, nil
}

// handleForage resolves a foraging attempt in the current terrain.
func (s *Server) handleForage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	st, err := s.campaign.Get(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "loading campaign state: %v", err)
		return
	}
	t, err := s.currentTerrain(ctx, st)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "%v", err)
		return
	}

	resp, err := s.resolveChanceActivity(ctx, st, t.ForagingChance, t.ForagingYield)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "%v", err)
		return
	}
	s.appendLog(ctx, st, categoryForage, forageMessage("Foraging", t.Name, resp))
	respondJSON(w, http.StatusOK, resp)
}

// handleHunt resolves a hunting attempt in the current terrain.
func (s *Server) handleHunt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	st, err := s.campaign.Get(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "loading campaign state: %v", err)
		return
	}
	t, err := s.currentTerrain(ctx, st)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "%v", err)
		return
	}

	resp, err := s.resolveChanceActivity(ctx, st, t.HuntingChance, t.HuntingYield)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "%v", err)
		return
	}
	s.appendLog(ctx, st, categoryHunt, forageMessage("Hunting", t.Name, resp))
	respondJSON(w, http.StatusOK, resp)
}

// forageMessage renders a chance activity outcome for the adventure log.
func forageMessage(activity, terrainName string, resp chanceResponse) string {
	switch {
	case !resp.Possible:
		return fmt.Sprintf("%s in %s: not possible here", activity, terrainName)
	case resp.Success && resp.Yield != nil:
		return fmt.Sprintf("%s in %s: success, yield %d (%s)", activity, terrainName, resp.Yield.Total, resp.Yield.Expression)
	case resp.Success:
		return fmt.Sprintf("%s in %s: success", activity, terrainName)
	default:
		return fmt.Sprintf("%s in %s: failure (rolled %d, needed <= %d)", activity, terrainName, resp.Check.Roll, resp.Check.Target)
	}
}

type directionCheckRequest struct {
	WeatherModifier int `json:"weather_modifier"`
}

type directionCheckResponse struct {
	Possible bool                    `json:"possible"`
	Chance   *travel.DirectionChance `json:"chance,omitempty"`
	Roll     int                     `json:"roll,omitempty"`
	Lost     bool                    `json:"lost"`
}

// handleDirectionCheck resolves a losing-direction check against the
// current terrain, with an additive weather modifier to the target.
func (s *Server) handleDirectionCheck(w http.ResponseWriter, r *http.Request) {
	var req directionCheckRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "%v", err)
		return
	}
	ctx := r.Context()

	st, err := s.campaign.Get(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "loading campaign state: %v", err)
		return
	}
	t, err := s.currentTerrain(ctx, st)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "%v", err)
		return
	}

	if t.LosingDirectionChance == "" {
		s.appendLog(ctx, st, categoryDirection, fmt.Sprintf("Direction check in %s: cannot get lost here", t.Name))
		respondJSON(w, http.StatusOK, directionCheckResponse{Possible: false})
		return
	}

	chance, err := travel.ParseDirectionChance(t.LosingDirectionChance, req.WeatherModifier)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "%v", err)
		return
	}
	roll, err := s.roller.RollExpr(fmt.Sprintf("1d%d", chance.Sides))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "rolling direction check: %v", err)
		return
	}

	lost := travel.IsLost(roll.Total, chance)
	outcome := "kept their bearings"
	if lost {
		outcome = "lost direction"
	}
	s.appendLog(ctx, st, categoryDirection,
		fmt.Sprintf("Direction check in %s: rolled %d vs %d:%d, party %s",
			t.Name, roll.Total, chance.AdjustedTarget, chance.Sides, outcome))

	respondJSON(w, http.StatusOK, directionCheckResponse{
		Possible: true,
		Chance:   &chance,
		Roll:     roll.Total,
		Lost:     lost,
	})
}

type wanderCheckResponse struct {
	Possible  bool              `json:"possible"`
	Check     *dice.ChanceCheck `json:"check,omitempty"`
	Encounter *encounter.Result `json:"encounter,omitempty"`
	Distance  *dice.Result      `json:"distance,omitempty"`
}

// handleWanderCheck resolves a wandering-monster check in the current
// terrain; on a hit it rolls the terrain's first encounter table and the
// encounter distance.
func (s *Server) handleWanderCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	st, err := s.campaign.Get(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "loading campaign state: %v", err)
		return
	}
	t, err := s.currentTerrain(ctx, st)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "%v", err)
		return
	}

	if t.WanderingMonsterChance == "" {
		respondJSON(w, http.StatusOK, wanderCheckResponse{Possible: false})
		return
	}

	check, err := s.roller.RollChance(t.WanderingMonsterChance)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "resolving wandering-monster chance: %v", err)
		return
	}
	resp := wanderCheckResponse{Possible: true, Check: &check}

	if !check.Success {
		s.appendLog(ctx, st, categoryEncounter,
			fmt.Sprintf("Wandering monster check in %s: no encounter (rolled %d, needed <= %d)",
				t.Name, check.Roll, check.Target))
		respondJSON(w, http.StatusOK, resp)
		return
	}

	tables, err := s.encounters.TablesForTerrain(ctx, t.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "loading encounter tables: %v", err)
		return
	}
	msg := fmt.Sprintf("Wandering monster check in %s: encounter!", t.Name)
	if len(tables) > 0 {
		entries, err := s.encounters.Entries(ctx, tables[0].ID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "loading encounter entries: %v", err)
			return
		}
		result, err := encounter.Resolve(tables[0], entries, s.roller.Source())
		if err != nil {
			respondError(w, http.StatusUnprocessableEntity, "resolving encounter: %v", err)
			return
		}
		resp.Encounter = &result
		msg += " " + result.Entry.Description
	}
	if t.EncounterDistance != "" {
		dist, err := s.roller.RollExpr(t.EncounterDistance)
		if err != nil {
			respondError(w, http.StatusUnprocessableEntity, "rolling encounter distance: %v", err)
			return
		}
		resp.Distance = &dist
		msg += fmt.Sprintf(" at %d yards", dist.Total)
	}

	s.appendLog(ctx, st, categoryEncounter, msg)
	respondJSON(w, http.StatusOK, resp)
}

// handleRollWeather rolls the weather table for the current month's season.
func (s *Server) handleRollWeather(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	st, err := s.campaign.Get(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "loading campaign state: %v", err)
		return
	}
	cal, err := s.cal.Load(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "loading calendar: %v", err)
		return
	}

	reading, err := weather.Roll(cal.SeasonOf(st.CurrentMonth), s.roller.Source())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "rolling weather: %v", err)
		return
	}

	s.appendLog(ctx, st, categoryWeather,
		fmt.Sprintf("Weather (%s): %s, %s air, %s days and %s nights",
			reading.Season, reading.Weather, reading.Air, reading.DayTemp, reading.NightTemp))
	respondJSON(w, http.StatusOK, reading)
}

// handleResetDay advances the date one day, resets the clock to the
// morning start hour, and zeroes the travel counters.
func (s *Server) handleResetDay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	st, err := s.campaign.Get(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "loading campaign state: %v", err)
		return
	}
	cal, err := s.cal.Load(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "loading calendar: %v", err)
		return
	}

	s.snapshot(ctx, st)

	next := cal.Advance(st.Clock().Date(), 1)
	st.CurrentYear = next.Year
	st.CurrentMonth = next.Month
	st.CurrentDayOfMonth = next.Day
	st.CurrentHour = travel.DayStartHour
	st.HoursTraveledToday = 0
	st.HexesTraveledToday = 0

	if err := s.campaign.Put(ctx, st); err != nil {
		respondError(w, http.StatusInternalServerError, "saving campaign state: %v", err)
		return
	}

	s.appendLog(ctx, st, categoryRest,
		fmt.Sprintf("Rested for the night. It is now %s.", cal.FormatDate(next.Day, next.Month, next.Year)))
	respondJSON(w, http.StatusOK, s.stateView(ctx, st))
}

// handleSetState applies a manual partial edit to the campaign state.
func (s *Server) handleSetState(w http.ResponseWriter, r *http.Request) {
	var patch postgres.StateUpdate
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, "%v", err)
		return
	}
	if patch.Empty() {
		respondError(w, http.StatusBadRequest, "state patch carries no fields")
		return
	}
	ctx := r.Context()

	st, err := s.campaign.Get(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "loading campaign state: %v", err)
		return
	}
	s.snapshot(ctx, st)

	updated, err := s.campaign.Patch(ctx, patch)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "patching campaign state: %v", err)
		return
	}
	s.appendLog(ctx, updated, categoryState, "Campaign state edited manually")
	respondJSON(w, http.StatusOK, s.stateView(ctx, updated))
}

// handleLog returns recent adventure-log entries, oldest first.
// Query parameters: limit (default 50), session (filter by session ID).
func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	var sessionID *int64
	if v := r.URL.Query().Get("session"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "session must be an integer")
			return
		}
		sessionID = &id
	}

	entries, err := s.logs.Recent(r.Context(), limit, sessionID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "loading log: %v", err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// handleCanUndo reports whether an undo snapshot is available.
func (s *Server) handleCanUndo(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"can_undo": s.history.Len() > 0,
		"depth":    s.history.Len(),
	})
}

// handleUndo restores the most recent snapshot: campaign state is put
// back and log entries written after the watermark are deleted.
func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.history.Pop()
	if !ok {
		respondError(w, http.StatusConflict, "nothing to undo")
		return
	}
	ctx := r.Context()

	if err := s.campaign.Put(ctx, snap.State); err != nil {
		respondError(w, http.StatusInternalServerError, "restoring campaign state: %v", err)
		return
	}
	if err := s.logs.DeleteAfter(ctx, snap.LogWatermark); err != nil {
		respondError(w, http.StatusInternalServerError, "truncating log: %v", err)
		return
	}
	respondJSON(w, http.StatusOK, s.stateView(ctx, snap.State))
}
