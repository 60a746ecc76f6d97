package services

import (
	"context"
	"testing"

	"dkp-tracker/models"
	"dkp-tracker/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedEvent(t *testing.T, st store.Store, id, name string, reward int) *models.Event {
	t.Helper()
	e := &models.Event{ID: id, Name: name, Slug: id, DKPReward: reward}
	require.NoError(t, st.Events().Create(context.Background(), e))
	return e
}

func TestRecord_Validation(t *testing.T) {
	tests := []struct {
		name        string
		req         RecordRequest
		wantMissing []string
	}{
		{
			name:        "missing event_id",
			req:         RecordRequest{DiscordUser: DiscordUser{ID: "D1", Username: "Alice"}},
			wantMissing: []string{"event_id"},
		},
		{
			name:        "missing discord id",
			req:         RecordRequest{EventID: "E1", DiscordUser: DiscordUser{Username: "Alice"}},
			wantMissing: []string{"discord_user.id"},
		},
		{
			name:        "missing username",
			req:         RecordRequest{EventID: "E1", DiscordUser: DiscordUser{ID: "D1"}},
			wantMissing: []string{"discord_user.username"},
		},
		{
			name:        "everything missing",
			req:         RecordRequest{},
			wantMissing: []string{"event_id", "discord_user.id", "discord_user.username"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := store.NewMemoryStore()
			seedEvent(t, st, "E1", "Raid Night", 10)
			svc := NewAttendanceService(st)

			result, err := svc.Record(context.Background(), tt.req)

			assert.Nil(t, result)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantMissing, verr.Fields)

			// No records may exist after a validation failure.
			players, _ := st.Players().List(context.Background(), "", 0)
			assert.Empty(t, players)
		})
	}
}

func TestRecord_EventNotFound(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewAttendanceService(st)

	_, err := svc.Record(context.Background(), RecordRequest{
		EventID:     "nope",
		DiscordUser: DiscordUser{ID: "D1", Username: "Alice"},
	})

	assert.ErrorIs(t, err, ErrEventNotFound)

	// Not-found must have no side effects, not even a player row.
	players, _ := st.Players().List(context.Background(), "", 0)
	assert.Empty(t, players)
}

func TestRecord_FirstAttendance(t *testing.T) {
	st := store.NewMemoryStore()
	seedEvent(t, st, "E1", "Raid Night", 10)
	svc := NewAttendanceService(st)

	result, err := svc.Record(context.Background(), RecordRequest{
		EventID:     "E1",
		DiscordUser: DiscordUser{ID: "D1", Username: "Alice"},
	})

	require.NoError(t, err)
	assert.False(t, result.AlreadyAttending)
	assert.Equal(t, "Alice", result.PlayerUsername)
	assert.Equal(t, "Raid Night", result.EventName)
	assert.Equal(t, 10, result.DKPAwarded)
	assert.Equal(t, 10, result.NewTotalDKP)

	player, err := st.Players().GetByDiscordID(context.Background(), "D1")
	require.NoError(t, err)
	assert.Equal(t, 10, player.TotalDKP)

	rows, err := st.Attendances().ListByEvent(context.Background(), "E1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, player.ID, rows[0].PlayerID)
	assert.Equal(t, 10, rows[0].DKPAwarded)
}

func TestRecord_Idempotent(t *testing.T) {
	st := store.NewMemoryStore()
	seedEvent(t, st, "E1", "Raid Night", 10)
	svc := NewAttendanceService(st)

	req := RecordRequest{
		EventID:     "E1",
		DiscordUser: DiscordUser{ID: "D1", Username: "Alice"},
	}

	first, err := svc.Record(context.Background(), req)
	require.NoError(t, err)
	require.False(t, first.AlreadyAttending)

	second, err := svc.Record(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.AlreadyAttending)
	assert.Equal(t, "Alice", second.PlayerUsername)
	assert.Equal(t, "Raid Night", second.EventName)

	// Exactly one attendance, points awarded exactly once.
	rows, _ := st.Attendances().ListByEvent(context.Background(), "E1")
	assert.Len(t, rows, 1)
	player, _ := st.Players().GetByDiscordID(context.Background(), "D1")
	assert.Equal(t, 10, player.TotalDKP)
}

func TestRecord_UsernameRefresh(t *testing.T) {
	st := store.NewMemoryStore()
	seedEvent(t, st, "E1", "Raid Night", 10)
	seedEvent(t, st, "E2", "Clear Run", 5)
	svc := NewAttendanceService(st)

	_, err := svc.Record(context.Background(), RecordRequest{
		EventID:     "E1",
		DiscordUser: DiscordUser{ID: "D1", Username: "Alice"},
	})
	require.NoError(t, err)

	// Same discord account, new display name, different event.
	result, err := svc.Record(context.Background(), RecordRequest{
		EventID:     "E2",
		DiscordUser: DiscordUser{ID: "D1", Username: "AliceTheBrave"},
	})
	require.NoError(t, err)
	assert.Equal(t, "AliceTheBrave", result.PlayerUsername)
	assert.Equal(t, 15, result.NewTotalDKP)

	player, _ := st.Players().GetByDiscordID(context.Background(), "D1")
	assert.Equal(t, "AliceTheBrave", player.Username)
	assert.Equal(t, "alicethebrave", player.SearchKey)
}

func TestRecord_UsernameRefreshOnDuplicate(t *testing.T) {
	st := store.NewMemoryStore()
	seedEvent(t, st, "E1", "Raid Night", 10)
	svc := NewAttendanceService(st)

	req := RecordRequest{EventID: "E1", DiscordUser: DiscordUser{ID: "D1", Username: "Alice"}}
	_, err := svc.Record(context.Background(), req)
	require.NoError(t, err)

	// The refresh is independent of the attendance outcome.
	req.DiscordUser.Username = "Alicia"
	result, err := svc.Record(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.AlreadyAttending)

	player, _ := st.Players().GetByDiscordID(context.Background(), "D1")
	assert.Equal(t, "Alicia", player.Username)
	assert.Equal(t, 10, player.TotalDKP)
}

// racePlayers simulates losing the create race: the first lookup misses,
// the insert conflicts, the re-fetch finds the winner's row.
type racePlayers struct {
	store.PlayerRepo
	missedOnce bool
}

func (r *racePlayers) GetByDiscordID(ctx context.Context, discordID string) (*models.Player, error) {
	if !r.missedOnce {
		r.missedOnce = true
		return nil, store.ErrNotFound
	}
	return r.PlayerRepo.GetByDiscordID(ctx, discordID)
}

type raceStore struct {
	store.Store
	players *racePlayers
}

func (s *raceStore) Players() store.PlayerRepo { return s.players }

func TestRecord_PlayerCreateRaceConverges(t *testing.T) {
	mem := store.NewMemoryStore()
	seedEvent(t, mem, "E1", "Raid Night", 10)

	// The "winner" already holds the discord_id.
	_, err := mem.Players().CreateIgnoreConflict(context.Background(), &models.Player{
		ID: "P1", DiscordID: "D1", Username: "Alice", SearchKey: "alice",
	})
	require.NoError(t, err)

	st := &raceStore{Store: mem, players: &racePlayers{PlayerRepo: mem.Players()}}
	svc := NewAttendanceService(st)

	result, err := svc.Record(context.Background(), RecordRequest{
		EventID:     "E1",
		DiscordUser: DiscordUser{ID: "D1", Username: "Alice"},
	})

	require.NoError(t, err)
	assert.False(t, result.AlreadyAttending)

	// Only one player row; the award landed on the winner's row.
	players, _ := mem.Players().List(context.Background(), "", 0)
	require.Len(t, players, 1)
	assert.Equal(t, "P1", players[0].ID)
	assert.Equal(t, 10, players[0].TotalDKP)
}

func TestAttendees(t *testing.T) {
	st := store.NewMemoryStore()
	seedEvent(t, st, "E1", "Raid Night", 10)
	svc := NewAttendanceService(st)

	_, err := svc.Attendees(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrEventNotFound)

	for _, du := range []DiscordUser{{ID: "D1", Username: "Alice"}, {ID: "D2", Username: "Bob"}} {
		_, err := svc.Record(context.Background(), RecordRequest{EventID: "E1", DiscordUser: du})
		require.NoError(t, err)
	}

	rows, err := svc.Attendees(context.Background(), "E1")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
