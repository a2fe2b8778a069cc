package postgres_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forbiddennorth/hexcrawl/internal/storage/postgres"
	"github.com/forbiddennorth/hexcrawl/internal/testutil"
)

func TestSessionRepository_StartClosesPreviousActive(t *testing.T) {
	pool := testutil.NewPool(t)
	repo := postgres.NewSessionRepository(pool)
	campaigns := postgres.NewCampaignRepository(pool)
	ctx := context.Background()

	_, err := repo.Active(ctx)
	assert.ErrorIs(t, err, postgres.ErrNoActiveSession)

	st, err := campaigns.Get(ctx)
	require.NoError(t, err)

	first, err := repo.Start(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, 1, first.SessionNumber)
	assert.True(t, first.IsActive)
	assert.Equal(t, st.CurrentYear, first.StartYear)
	assert.Equal(t, st.CurrentDayOfMonth, first.StartDay)
	assert.Nil(t, first.EndYear)

	st.CurrentDayOfMonth = 25
	st.CurrentHour = 14.5
	require.NoError(t, campaigns.Put(ctx, st))

	second, err := repo.Start(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, 2, second.SessionNumber)

	closed, err := repo.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, closed.IsActive)
	require.NotNil(t, closed.EndDay)
	assert.Equal(t, 25, *closed.EndDay)
	require.NotNil(t, closed.EndHour)
	assert.Equal(t, 14.5, *closed.EndHour)

	active, err := repo.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)

	id, err := repo.ActiveID(ctx)
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, second.ID, *id)
}

func TestSessionRepository_Rename(t *testing.T) {
	pool := testutil.NewPool(t)
	repo := postgres.NewSessionRepository(pool)
	campaigns := postgres.NewCampaignRepository(pool)
	ctx := context.Background()

	st, err := campaigns.Get(ctx)
	require.NoError(t, err)
	sess, err := repo.Start(ctx, st)
	require.NoError(t, err)

	require.NoError(t, repo.Rename(ctx, sess.ID, "Into the Barrowmoor"))
	got, err := repo.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "Into the Barrowmoor", got.Name)

	assert.ErrorIs(t, repo.Rename(ctx, 99999, "ghost"), postgres.ErrSessionNotFound)
}

func TestSessionRepository_DeleteDetachesLogsAndRenumbers(t *testing.T) {
	pool := testutil.NewPool(t)
	repo := postgres.NewSessionRepository(pool)
	logs := postgres.NewLogRepository(pool)
	campaigns := postgres.NewCampaignRepository(pool)
	ctx := context.Background()

	st, err := campaigns.Get(ctx)
	require.NoError(t, err)

	first, err := repo.Start(ctx, st)
	require.NoError(t, err)
	second, err := repo.Start(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, 2, second.SessionNumber)

	_, err = repo.AddNote(ctx, postgres.SessionNote{
		SessionID: second.ID,
		LogYear:   st.CurrentYear,
		LogMonth:  st.CurrentMonth,
		LogDay:    st.CurrentDayOfMonth,
		Hour:      st.CurrentHour,
		Message:   "Doomed note.",
	})
	require.NoError(t, err)
	entryID, err := logs.Append(ctx, postgres.LogEntry{
		SessionID: &second.ID,
		LogYear:   st.CurrentYear,
		LogMonth:  st.CurrentMonth,
		LogDay:    st.CurrentDayOfMonth,
		Hour:      st.CurrentHour,
		Category:  "travel",
		Message:   "Entered hex 0102",
	})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, second.ID))

	_, err = repo.Get(ctx, second.ID)
	assert.ErrorIs(t, err, postgres.ErrSessionNotFound)
	notes, err := repo.Notes(ctx, second.ID)
	require.NoError(t, err)
	assert.Empty(t, notes, "notes cascade with the session")

	// The log entry survives, detached from the deleted session.
	recent, err := logs.Recent(ctx, 0, nil)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, entryID, recent[0].ID)
	assert.Nil(t, recent[0].SessionID)

	// No active session remains, yet numbering continues past the
	// surviving ended session instead of colliding with its number.
	_, err = repo.Active(ctx)
	assert.ErrorIs(t, err, postgres.ErrNoActiveSession)
	third, err := repo.Start(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, first.SessionNumber+1, third.SessionNumber)

	assert.ErrorIs(t, repo.Delete(ctx, second.ID), postgres.ErrSessionNotFound)
}

func TestSessionRepository_Notes(t *testing.T) {
	pool := testutil.NewPool(t)
	repo := postgres.NewSessionRepository(pool)
	campaigns := postgres.NewCampaignRepository(pool)
	ctx := context.Background()

	st, err := campaigns.Get(ctx)
	require.NoError(t, err)
	sess, err := repo.Start(ctx, st)
	require.NoError(t, err)

	note, err := repo.AddNote(ctx, postgres.SessionNote{
		SessionID: sess.ID,
		LogYear:   st.CurrentYear,
		LogMonth:  st.CurrentMonth,
		LogDay:    st.CurrentDayOfMonth,
		Hour:      st.CurrentHour,
		HexID:     "0304",
		Message:   "Party camped by the standing stones.",
	})
	require.NoError(t, err)
	assert.Greater(t, note.ID, int64(0))
	assert.False(t, note.Timestamp.IsZero())

	notes, err := repo.Notes(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "0304", notes[0].HexID)

	require.NoError(t, repo.DeleteNote(ctx, note.ID))
	notes, err = repo.Notes(ctx, sess.ID)
	require.NoError(t, err)
	assert.Empty(t, notes)

	assert.ErrorIs(t, repo.DeleteNote(ctx, note.ID), postgres.ErrSessionNotFound)
}

func TestLogRepository_AppendRecentAndWatermark(t *testing.T) {
	pool := testutil.NewPool(t)
	logs := postgres.NewLogRepository(pool)
	sessions := postgres.NewSessionRepository(pool)
	campaigns := postgres.NewCampaignRepository(pool)
	ctx := context.Background()

	st, err := campaigns.Get(ctx)
	require.NoError(t, err)
	sess, err := sessions.Start(ctx, st)
	require.NoError(t, err)

	entry := postgres.LogEntry{
		SessionID: &sess.ID,
		LogYear:   st.CurrentYear,
		LogMonth:  st.CurrentMonth,
		LogDay:    st.CurrentDayOfMonth,
		Hour:      st.CurrentHour,
		Category:  "travel",
	}

	entry.Message = "Entered hex 0102"
	first, err := logs.Append(ctx, entry)
	require.NoError(t, err)

	entry.Message = "Entered hex 0103"
	second, err := logs.Append(ctx, entry)
	require.NoError(t, err)
	assert.Greater(t, second, first)

	recent, err := logs.Recent(ctx, 0, nil)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "Entered hex 0102", recent[0].Message, "entries return oldest first")

	recent, err = logs.Recent(ctx, 1, &sess.ID)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "Entered hex 0103", recent[0].Message, "limit keeps the newest entries")

	max, err := logs.MaxID(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, max)

	require.NoError(t, logs.DeleteAfter(ctx, first))
	recent, err = logs.Recent(ctx, 0, nil)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "Entered hex 0102", recent[0].Message)
}

func TestLogRepository_AllReturnsFullSessionLog(t *testing.T) {
	pool := testutil.NewPool(t)
	logs := postgres.NewLogRepository(pool)
	sessions := postgres.NewSessionRepository(pool)
	campaigns := postgres.NewCampaignRepository(pool)
	ctx := context.Background()

	st, err := campaigns.Get(ctx)
	require.NoError(t, err)
	sess, err := sessions.Start(ctx, st)
	require.NoError(t, err)

	// Long sessions outgrow Recent's default cap; All must not truncate.
	const total = 60
	for i := 0; i < total; i++ {
		_, err := logs.Append(ctx, postgres.LogEntry{
			SessionID: &sess.ID,
			LogYear:   st.CurrentYear,
			LogMonth:  st.CurrentMonth,
			LogDay:    st.CurrentDayOfMonth,
			Hour:      st.CurrentHour,
			Category:  "travel",
			Message:   fmt.Sprintf("Entered hex %04d", i+1),
		})
		require.NoError(t, err)
	}

	all, err := logs.All(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, all, total)
	assert.Equal(t, "Entered hex 0001", all[0].Message, "entries return oldest first")
	assert.Equal(t, fmt.Sprintf("Entered hex %04d", total), all[total-1].Message)

	recent, err := logs.Recent(ctx, 0, &sess.ID)
	require.NoError(t, err)
	assert.Len(t, recent, 50)
}
