package models

import (
	"time"
)

// Event is a guild activity (raid, clear, on-time bonus) with a fixed DKP reward.
type Event struct {
	ID          string     `json:"id" gorm:"primaryKey"`
	Name        string     `json:"name" gorm:"not null"`
	Slug        string     `json:"slug" gorm:"uniqueIndex;not null"`
	Description string     `json:"description"`
	DKPReward   int        `json:"dkp_reward" gorm:"not null;default:0"`
	EventTime   *time.Time `json:"event_time,omitempty"`
	CreatedBy   string     `json:"created_by,omitempty"`

	Timestamps

	// Calculated (not stored)
	AttendeeCount int64 `json:"attendee_count,omitempty" gorm:"-"`
}
