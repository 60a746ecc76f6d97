// Package store defines the persistence boundary of the tracker. Services
// depend on these interfaces; the GORM/Postgres implementation lives in
// gorm.go and tests substitute in-memory fakes.
package store

import (
	"context"
	"errors"

	"dkp-tracker/models"
)

// ErrNotFound is returned by lookups when no record matches.
var ErrNotFound = errors.New("record not found")

// EventRepo persists events.
type EventRepo interface {
	Create(ctx context.Context, e *models.Event) error
	GetByID(ctx context.Context, id string) (*models.Event, error)
	GetBySlug(ctx context.Context, slug string) (*models.Event, error)
	List(ctx context.Context) ([]models.Event, error)
	Update(ctx context.Context, e *models.Event) error
	Delete(ctx context.Context, id string) error
}

// PlayerRepo persists players. CreateIgnoreConflict reports whether the row
// was actually inserted; false means another writer got there first on the
// discord_id unique index.
type PlayerRepo interface {
	CreateIgnoreConflict(ctx context.Context, p *models.Player) (bool, error)
	GetByID(ctx context.Context, id string) (*models.Player, error)
	GetByDiscordID(ctx context.Context, discordID string) (*models.Player, error)
	UpdateUsername(ctx context.Context, id, username, searchKey string) error
	AddDKP(ctx context.Context, id string, delta int) (int, error)
	SetTotalDKP(ctx context.Context, id string, total int) error
	List(ctx context.Context, searchKey string, limit int) ([]models.Player, error)
}

// AttendanceRepo persists attendance records. CreateIgnoreConflict relies on
// the (event_id, player_id) unique index: false means the pair already has a
// record, i.e. the player is already attending.
type AttendanceRepo interface {
	CreateIgnoreConflict(ctx context.Context, a *models.Attendance) (bool, error)
	ListByEvent(ctx context.Context, eventID string) ([]models.Attendance, error)
	ListByPlayer(ctx context.Context, playerID string) ([]models.Attendance, error)
	CountByEvent(ctx context.Context, eventID string) (int64, error)
	TotalsByPlayer(ctx context.Context) (map[string]int, error)
}

// AdjustmentRepo persists manual DKP corrections.
type AdjustmentRepo interface {
	Create(ctx context.Context, a *models.Adjustment) error
	ListByPlayer(ctx context.Context, playerID string) ([]models.Adjustment, error)
	TotalsByPlayer(ctx context.Context) (map[string]int, error)
}

// Store aggregates the repositories and provides transactions. The Store
// passed to the Transaction callback is bound to the transaction; an error
// from the callback rolls everything back.
type Store interface {
	Events() EventRepo
	Players() PlayerRepo
	Attendances() AttendanceRepo
	Adjustments() AdjustmentRepo
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
