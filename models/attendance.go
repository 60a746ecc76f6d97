package models

import "time"

// Attendance links one Player to one Event and grants the event's DKP
// reward exactly once. The composite unique index is what enforces the
// at-most-once rule: a second insert for the same pair conflicts instead
// of racing a read.
type Attendance struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	EventID    string    `json:"event_id" gorm:"not null;index;uniqueIndex:idx_attendances_event_player"`
	PlayerID   string    `json:"player_id" gorm:"not null;index;uniqueIndex:idx_attendances_event_player"`
	DKPAwarded int       `json:"dkp_awarded" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`

	// Calculated (filled by joins, not stored)
	PlayerName string `json:"player_name,omitempty" gorm:"-"`
	EventName  string `json:"event_name,omitempty" gorm:"-"`
}
