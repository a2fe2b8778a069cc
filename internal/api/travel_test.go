package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// doJSON performs a request against the server's router and decodes the
// JSON response into out (when out is non-nil).
func doJSON(t *testing.T, env *testEnv, method, path string, body, out interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	env.server.Router().ServeHTTP(rec, req)

	if out != nil && rec.Code < 300 {
		require.NoError(t, json.NewDecoder(rec.Body).Decode(out), "decoding %s %s response", method, path)
	}
	return rec
}

func TestTravelState(t *testing.T) {
	env := newTestEnv(t)

	var resp stateResponse
	rec := doJSON(t, env, http.MethodGet, "/api/travel/state", nil, &resp)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "0101", resp.State.CurrentHexID)
	require.NotNil(t, resp.Terrain)
	assert.Equal(t, "Forest", resp.Terrain.Name)
	require.NotNil(t, resp.Speed)
	assert.Equal(t, 12.0, resp.Speed.MilesPerDay)
	assert.Equal(t, 4.0, resp.Speed.HoursPerHex)
}

func TestEnterHex(t *testing.T) {
	env := newTestEnv(t)

	var resp enterHexResponse
	rec := doJSON(t, env, http.MethodPost, "/api/travel/enter-hex",
		enterHexRequest{HexID: "0102", TerrainID: 1}, &resp)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "0102", resp.State.CurrentHexID)
	require.NotNil(t, resp.State.CurrentTerrainID)
	assert.Equal(t, int64(1), *resp.State.CurrentTerrainID)
	assert.Equal(t, 2.0, resp.HoursSpent)
	assert.Equal(t, 8.0, resp.State.CurrentHour)
	assert.Equal(t, 1, resp.State.HexesTraveledToday)
	assert.False(t, resp.ForcedMarch)

	entry := env.lastLog(t)
	assert.Equal(t, categoryTravel, entry.Category)
	assert.Contains(t, entry.Message, "0102")
	assert.Contains(t, entry.Message, "Grasslands")
}

func TestEnterHex_Impassable(t *testing.T) {
	env := newTestEnv(t)

	rec := doJSON(t, env, http.MethodPost, "/api/travel/enter-hex",
		enterHexRequest{HexID: "0102", TerrainID: 3}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "0101", env.campaign.state.CurrentHexID)
}

func TestEnterHex_UnknownTerrain(t *testing.T) {
	env := newTestEnv(t)

	rec := doJSON(t, env, http.MethodPost, "/api/travel/enter-hex",
		enterHexRequest{HexID: "0102", TerrainID: 99}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEnterHex_MissingHexID(t *testing.T) {
	env := newTestEnv(t)

	rec := doJSON(t, env, http.MethodPost, "/api/travel/enter-hex",
		enterHexRequest{TerrainID: 1}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// A full day on a good road: six hexes fit inside the eight-hour budget,
// the seventh tips the party into a forced march.
func TestEnterHex_FullDayThenForcedMarch(t *testing.T) {
	env := newTestEnv(t)

	var resp enterHexResponse
	for i := 0; i < 6; i++ {
		rec := doJSON(t, env, http.MethodPost, "/api/travel/enter-hex",
			enterHexRequest{HexID: fmt.Sprintf("01%02d", i+2), TerrainID: 5}, &resp)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, resp.ForcedMarch, "hex %d", i+1)
	}
	assert.InDelta(t, 7.98, resp.State.HoursTraveledToday, 0.001)
	assert.Equal(t, 6, resp.State.HexesTraveledToday)

	rec := doJSON(t, env, http.MethodPost, "/api/travel/enter-hex",
		enterHexRequest{HexID: "0108", TerrainID: 5}, &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.ForcedMarch)
	assert.Equal(t, 7, resp.State.HexesTraveledToday)
}

func TestForage_Success(t *testing.T) {
	// Forest foraging is 2:6; a draw of 1 rolls a 2, which succeeds, then
	// the next draw feeds the 1d6 yield.
	env := newTestEnv(t, 1, 3)

	var resp chanceResponse
	rec := doJSON(t, env, http.MethodPost, "/api/travel/forage", nil, &resp)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.True(t, resp.Possible)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Check)
	assert.Equal(t, 2, resp.Check.Roll)
	require.NotNil(t, resp.Yield)
	assert.Equal(t, 4, resp.Yield.Total)
	assert.Equal(t, categoryForage, env.lastLog(t).Category)
}

func TestForage_Failure(t *testing.T) {
	env := newTestEnv(t, 5) // rolls a 6 against 2:6

	var resp chanceResponse
	rec := doJSON(t, env, http.MethodPost, "/api/travel/forage", nil, &resp)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.True(t, resp.Possible)
	assert.False(t, resp.Success)
	assert.Nil(t, resp.Yield)
}

func TestForage_Auto(t *testing.T) {
	env := newTestEnv(t, 2)
	terrainID := int64(4) // Farmlands
	env.campaign.state.CurrentTerrainID = &terrainID

	var resp chanceResponse
	rec := doJSON(t, env, http.MethodPost, "/api/travel/forage", nil, &resp)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.True(t, resp.Possible)
	assert.True(t, resp.Auto)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Check)
	require.NotNil(t, resp.Yield)
	assert.Equal(t, 3, resp.Yield.Total)
}

func TestForage_NotPossible(t *testing.T) {
	env := newTestEnv(t)
	terrainID := int64(3) // Lava Field has no foraging chance
	env.campaign.state.CurrentTerrainID = &terrainID

	var resp chanceResponse
	rec := doJSON(t, env, http.MethodPost, "/api/travel/forage", nil, &resp)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.False(t, resp.Possible)
	assert.False(t, resp.Success)
}

func TestHunt_Success(t *testing.T) {
	env := newTestEnv(t, 0, 4) // rolls 1 against 3:6, then 5 on 1d8

	var resp chanceResponse
	rec := doJSON(t, env, http.MethodPost, "/api/travel/hunt", nil, &resp)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.True(t, resp.Success)
	require.NotNil(t, resp.Yield)
	assert.Equal(t, 5, resp.Yield.Total)
	assert.Equal(t, categoryHunt, env.lastLog(t).Category)
}

func TestDirectionCheck_Lost(t *testing.T) {
	// Forest is 2:6 and a +1 weather modifier raises the target to 3; a
	// draw of 2 rolls a 3, which is lost.
	env := newTestEnv(t, 2)

	var resp directionCheckResponse
	rec := doJSON(t, env, http.MethodPost, "/api/travel/direction-check",
		directionCheckRequest{WeatherModifier: 1}, &resp)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.True(t, resp.Possible)
	require.NotNil(t, resp.Chance)
	assert.Equal(t, 2, resp.Chance.BaseTarget)
	assert.Equal(t, 3, resp.Chance.AdjustedTarget)
	assert.Equal(t, 3, resp.Roll)
	assert.True(t, resp.Lost)
}

func TestDirectionCheck_Safe(t *testing.T) {
	env := newTestEnv(t, 5) // rolls 6 against 2:6

	var resp directionCheckResponse
	rec := doJSON(t, env, http.MethodPost, "/api/travel/direction-check",
		directionCheckRequest{}, &resp)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.True(t, resp.Possible)
	assert.False(t, resp.Lost)
}

func TestWanderCheck_Encounter(t *testing.T) {
	// Draws: 0 → 1 vs 2:6 (hit); 3 → 4 on the 1d8 table roll; 1,1,1 for
	// the 3d6 encounter distance.
	env := newTestEnv(t, 0, 3, 1, 1, 1)

	table, err := env.encounters.CreateTable(context.Background(), tableForTest(2))
	require.NoError(t, err)
	_, err = env.encounters.CreateEntry(context.Background(), entryForTest(table.ID, 1, 4, "Wolf pack"))
	require.NoError(t, err)
	_, err = env.encounters.CreateEntry(context.Background(), entryForTest(table.ID, 5, 8, "Bandits"))
	require.NoError(t, err)

	var resp wanderCheckResponse
	rec := doJSON(t, env, http.MethodPost, "/api/travel/wander-check", nil, &resp)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.True(t, resp.Possible)
	require.NotNil(t, resp.Check)
	assert.True(t, resp.Check.Success)
	require.NotNil(t, resp.Encounter)
	assert.Equal(t, "Wolf pack", resp.Encounter.Entry.Description)
	require.NotNil(t, resp.Distance)
	assert.Equal(t, 6, resp.Distance.Total)
	assert.Equal(t, categoryEncounter, env.lastLog(t).Category)
}

func TestWanderCheck_NoEncounter(t *testing.T) {
	env := newTestEnv(t, 5) // rolls 6 against 2:6

	var resp wanderCheckResponse
	rec := doJSON(t, env, http.MethodPost, "/api/travel/wander-check", nil, &resp)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.True(t, resp.Possible)
	assert.False(t, resp.Check.Success)
	assert.Nil(t, resp.Encounter)
}

func TestRollWeather(t *testing.T) {
	env := newTestEnv(t, 0) // rolls 1 on 1d12

	var resp map[string]interface{}
	rec := doJSON(t, env, http.MethodPost, "/api/travel/roll-weather", nil, &resp)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, float64(1), resp["roll"])
	assert.NotEmpty(t, resp["weather"])
	assert.Equal(t, categoryWeather, env.lastLog(t).Category)
}

func TestResetDay(t *testing.T) {
	env := newTestEnv(t)
	env.campaign.state.CurrentHour = 18.5
	env.campaign.state.HoursTraveledToday = 9.31
	env.campaign.state.HexesTraveledToday = 7

	var resp stateResponse
	rec := doJSON(t, env, http.MethodPost, "/api/travel/reset-day", nil, &resp)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 23, resp.State.CurrentDayOfMonth)
	assert.Equal(t, 6.0, resp.State.CurrentHour)
	assert.Zero(t, resp.State.HoursTraveledToday)
	assert.Zero(t, resp.State.HexesTraveledToday)
	last := env.lastLog(t)
	assert.Equal(t, categoryRest, last.Category)
	assert.Contains(t, last.Message, "23 Panagion, 22 P.I.")
}

func TestSetState(t *testing.T) {
	env := newTestEnv(t)

	var resp stateResponse
	rec := doJSON(t, env, http.MethodPost, "/api/travel/set-state",
		map[string]interface{}{"current_hex_id": "0909", "movement_rate": 90}, &resp)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "0909", resp.State.CurrentHexID)
	assert.Equal(t, 90.0, resp.State.MovementRate)
	// Untouched fields survive.
	assert.Equal(t, 22, resp.State.CurrentYear)
}

func TestSetState_EmptyPatch(t *testing.T) {
	env := newTestEnv(t)

	rec := doJSON(t, env, http.MethodPost, "/api/travel/set-state",
		map[string]interface{}{}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetState_UnknownField(t *testing.T) {
	env := newTestEnv(t)

	rec := doJSON(t, env, http.MethodPost, "/api/travel/set-state",
		map[string]interface{}{"current_hexid": "oops"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLog_LimitAndFilter(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 5; i++ {
		env.server.appendLog(context.Background(), env.campaign.state, categoryTravel, fmt.Sprintf("entry %d", i))
	}

	var entries []map[string]interface{}
	rec := doJSON(t, env, http.MethodGet, "/api/travel/log?limit=2", nil, &entries)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, entries, 2)
	assert.Equal(t, "entry 3", entries[0]["message"])
	assert.Equal(t, "entry 4", entries[1]["message"])

	rec = doJSON(t, env, http.MethodGet, "/api/travel/log?limit=0", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUndo_RestoresStateAndTruncatesLog(t *testing.T) {
	env := newTestEnv(t)

	var canUndo map[string]interface{}
	rec := doJSON(t, env, http.MethodGet, "/api/travel/can-undo", nil, &canUndo)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, canUndo["can_undo"])

	rec = doJSON(t, env, http.MethodPost, "/api/travel/enter-hex",
		enterHexRequest{HexID: "0102", TerrainID: 1}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, env.logs.entries, 1)

	rec = doJSON(t, env, http.MethodGet, "/api/travel/can-undo", nil, &canUndo)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, canUndo["can_undo"])

	var resp stateResponse
	rec = doJSON(t, env, http.MethodPost, "/api/travel/undo", nil, &resp)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "0101", resp.State.CurrentHexID)
	assert.Equal(t, 6.0, resp.State.CurrentHour)
	assert.Empty(t, env.logs.entries, "log entries after the watermark are deleted")

	rec = doJSON(t, env, http.MethodPost, "/api/travel/undo", nil, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}
