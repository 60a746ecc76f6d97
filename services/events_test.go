package services

import (
	"context"
	"testing"

	"dkp-tracker/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventCreate(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewEventService(st)

	event, err := svc.Create(context.Background(), EventInput{
		Name:      "Raid Night: Onyxia",
		DKPReward: 10,
	}, "officer-1")

	require.NoError(t, err)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "raid-night-onyxia", event.Slug)
	assert.Equal(t, "officer-1", event.CreatedBy)

	// Same name gets a disambiguated slug.
	second, err := svc.Create(context.Background(), EventInput{Name: "Raid Night: Onyxia", DKPReward: 10}, "")
	require.NoError(t, err)
	assert.NotEqual(t, event.Slug, second.Slug)
	assert.Contains(t, second.Slug, "raid-night-onyxia-")
}

func TestEventCreate_Validation(t *testing.T) {
	svc := NewEventService(store.NewMemoryStore())

	var verr *ValidationError

	_, err := svc.Create(context.Background(), EventInput{Name: "  ", DKPReward: 5}, "")
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")

	_, err = svc.Create(context.Background(), EventInput{Name: "Raid", DKPReward: -1}, "")
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "dkp_reward")
}

func TestEventGet_ByIDOrSlug(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewEventService(st)

	created, err := svc.Create(context.Background(), EventInput{Name: "Raid Night", DKPReward: 10}, "")
	require.NoError(t, err)

	byID, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byID.ID)

	bySlug, err := svc.Get(context.Background(), "raid-night")
	require.NoError(t, err)
	assert.Equal(t, created.ID, bySlug.ID)

	_, err = svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestEventUpdate_RefreshesSlug(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewEventService(st)

	created, err := svc.Create(context.Background(), EventInput{Name: "Raid Night", DKPReward: 10}, "")
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, EventInput{
		Name:      "Molten Core Clear",
		DKPReward: 25,
	})
	require.NoError(t, err)
	assert.Equal(t, "molten-core-clear", updated.Slug)
	assert.Equal(t, 25, updated.DKPReward)

	// Renaming back to itself keeps the slug stable.
	same, err := svc.Update(context.Background(), created.ID, EventInput{
		Name:      "Molten Core Clear",
		DKPReward: 25,
	})
	require.NoError(t, err)
	assert.Equal(t, "molten-core-clear", same.Slug)
}

func TestEventDelete(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewEventService(st)

	created, err := svc.Create(context.Background(), EventInput{Name: "Raid Night", DKPReward: 10}, "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	assert.ErrorIs(t, svc.Delete(context.Background(), created.ID), ErrEventNotFound)
}
