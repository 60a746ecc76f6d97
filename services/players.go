package services

import (
	"context"
	"fmt"
	"strings"

	"dkp-tracker/models"
	"dkp-tracker/store"
	"dkp-tracker/utils"

	"github.com/google/uuid"
)

// AdjustInput is a manual DKP correction request.
type AdjustInput struct {
	PlayerID   string `json:"player_id"`
	Delta      int    `json:"delta"`
	Reason     string `json:"reason"`
	AdjustedBy string `json:"adjusted_by"`
}

// PlayerHistory bundles a player with their award trail.
type PlayerHistory struct {
	Player      *models.Player      `json:"player"`
	Attendances []models.Attendance `json:"attendances"`
	Adjustments []models.Adjustment `json:"adjustments"`
}

// PlayerService serves the DKP table and manual corrections.
type PlayerService struct {
	Store store.Store
}

func NewPlayerService(st store.Store) *PlayerService {
	return &PlayerService{Store: st}
}

// Standings returns the DKP table: players ordered by total, rank filled in.
// search matches anywhere in the folded username.
func (s *PlayerService) Standings(ctx context.Context, search string, limit int) ([]models.Player, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	players, err := s.Store.Players().List(ctx, utils.SearchKey(search), limit)
	if err != nil {
		return nil, err
	}
	for i := range players {
		players[i].Rank = i + 1
	}
	return players, nil
}

// Get returns one player with their full award history.
func (s *PlayerService) Get(ctx context.Context, id string) (*PlayerHistory, error) {
	player, err := s.Store.Players().GetByID(ctx, id)
	if err == store.ErrNotFound {
		return nil, ErrPlayerNotFound
	}
	if err != nil {
		return nil, err
	}

	attendances, err := s.Store.Attendances().ListByPlayer(ctx, id)
	if err != nil {
		return nil, err
	}
	adjustments, err := s.Store.Adjustments().ListByPlayer(ctx, id)
	if err != nil {
		return nil, err
	}

	return &PlayerHistory{
		Player:      player,
		Attendances: attendances,
		Adjustments: adjustments,
	}, nil
}

// Adjust applies a manual DKP delta with an audit row, atomically. Totals
// are floored at zero: an officer deducting more than a player holds drains
// the balance instead of going negative.
func (s *PlayerService) Adjust(ctx context.Context, in AdjustInput) (*models.Player, error) {
	var missing []string
	if in.PlayerID == "" {
		missing = append(missing, "player_id")
	}
	if strings.TrimSpace(in.Reason) == "" {
		missing = append(missing, "reason")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}
	if in.Delta == 0 {
		return nil, &ValidationError{Fields: []string{"delta"}}
	}

	var updated *models.Player
	err := s.Store.Transaction(ctx, func(tx store.Store) error {
		player, err := tx.Players().GetByID(ctx, in.PlayerID)
		if err == store.ErrNotFound {
			return ErrPlayerNotFound
		}
		if err != nil {
			return err
		}

		delta := in.Delta
		if player.TotalDKP+delta < 0 {
			delta = -player.TotalDKP
		}

		if err := tx.Adjustments().Create(ctx, &models.Adjustment{
			ID:         uuid.NewString(),
			PlayerID:   player.ID,
			Delta:      delta,
			Reason:     in.Reason,
			AdjustedBy: in.AdjustedBy,
		}); err != nil {
			return fmt.Errorf("adjustment insert failed: %w", err)
		}

		newTotal, err := tx.Players().AddDKP(ctx, player.ID, delta)
		if err != nil {
			return fmt.Errorf("adjustment apply failed: %w", err)
		}

		player.TotalDKP = newTotal
		updated = player
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
