package services

import (
	"context"
	"fmt"
	"log"

	"dkp-tracker/models"
	"dkp-tracker/store"
	"dkp-tracker/utils"

	"github.com/google/uuid"
)

// DiscordUser is the identity the bot forwards with an attendance claim.
type DiscordUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// RecordRequest is an attendance claim from the Discord bot.
type RecordRequest struct {
	EventID     string      `json:"event_id"`
	DiscordUser DiscordUser `json:"discord_user"`
}

// RecordResult is the outcome of a processed claim. AlreadyAttending means
// the (event, player) pair had a record before this call; nothing was
// written and no points moved.
type RecordResult struct {
	AlreadyAttending bool
	PlayerUsername   string
	EventName        string
	DKPAwarded       int
	NewTotalDKP      int
}

// AttendanceService records event attendance and awards DKP. The pipeline is
// strictly sequential: validate → event lookup → player resolution →
// attendance insert + point award. The last two writes share one transaction
// so a player can never end up with a recorded attendance and missing points.
type AttendanceService struct {
	Store store.Store
}

func NewAttendanceService(st store.Store) *AttendanceService {
	return &AttendanceService{Store: st}
}

// Record processes one attendance claim.
func (s *AttendanceService) Record(ctx context.Context, req RecordRequest) (*RecordResult, error) {
	if verr := validateRecord(req); verr != nil {
		return nil, verr
	}

	event, err := s.Store.Events().GetByID(ctx, req.EventID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("event lookup failed: %w", err)
	}

	player, err := s.resolvePlayer(ctx, req.DiscordUser)
	if err != nil {
		return nil, err
	}

	result := &RecordResult{
		PlayerUsername: player.Username,
		EventName:      event.Name,
	}

	err = s.Store.Transaction(ctx, func(tx store.Store) error {
		created, err := tx.Attendances().CreateIgnoreConflict(ctx, &models.Attendance{
			ID:         uuid.NewString(),
			EventID:    event.ID,
			PlayerID:   player.ID,
			DKPAwarded: event.DKPReward,
		})
		if err != nil {
			return fmt.Errorf("attendance insert failed: %w", err)
		}
		if !created {
			result.AlreadyAttending = true
			return nil
		}

		newTotal, err := tx.Players().AddDKP(ctx, player.ID, event.DKPReward)
		if err != nil {
			return fmt.Errorf("dkp award failed: %w", err)
		}
		result.DKPAwarded = event.DKPReward
		result.NewTotalDKP = newTotal
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Attendees lists who attended an event, oldest first.
func (s *AttendanceService) Attendees(ctx context.Context, eventID string) ([]models.Attendance, error) {
	if _, err := s.Store.Events().GetByID(ctx, eventID); err != nil {
		if err == store.ErrNotFound {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return s.Store.Attendances().ListByEvent(ctx, eventID)
}

// resolvePlayer finds the player for a discord id, creating them on first
// contact and refreshing a changed username. The insert ignores conflicts on
// discord_id, so two concurrent first contacts converge on one row: the
// loser of the race just re-reads the winner's.
func (s *AttendanceService) resolvePlayer(ctx context.Context, du DiscordUser) (*models.Player, error) {
	players := s.Store.Players()

	player, err := players.GetByDiscordID(ctx, du.ID)
	if err == store.ErrNotFound {
		candidate := &models.Player{
			ID:        uuid.NewString(),
			DiscordID: du.ID,
			Username:  du.Username,
			TotalDKP:  0,
			SearchKey: utils.SearchKey(du.Username),
		}
		created, err := players.CreateIgnoreConflict(ctx, candidate)
		if err != nil {
			return nil, fmt.Errorf("player create failed: %w", err)
		}
		if created {
			log.Printf("🆕 Registered player %s (discord_id=%s)", du.Username, du.ID)
			return candidate, nil
		}
		player, err = players.GetByDiscordID(ctx, du.ID)
		if err != nil {
			return nil, fmt.Errorf("player re-fetch failed: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("player lookup failed: %w", err)
	}

	if player.Username != du.Username {
		if err := players.UpdateUsername(ctx, player.ID, du.Username, utils.SearchKey(du.Username)); err != nil {
			return nil, fmt.Errorf("username refresh failed: %w", err)
		}
		player.Username = du.Username
	}

	return player, nil
}

func validateRecord(req RecordRequest) error {
	var missing []string
	if req.EventID == "" {
		missing = append(missing, "event_id")
	}
	if req.DiscordUser.ID == "" {
		missing = append(missing, "discord_user.id")
	}
	if req.DiscordUser.Username == "" {
		missing = append(missing, "discord_user.username")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}
