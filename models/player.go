package models

import (
	"time"
)

// Player is a tracked guild member, identified by their Discord account.
// Created lazily on first attendance from a given discord_id.
type Player struct {
	ID        string `json:"id" gorm:"primaryKey"`
	DiscordID string `json:"discord_id" gorm:"uniqueIndex;not null"`
	Username  string `json:"username" gorm:"not null"`
	TotalDKP  int    `json:"total_dkp" gorm:"default:0"`

	// SearchKey is the ASCII-folded, case-folded username, maintained on
	// every username write so the DKP table search never needs a live fold.
	SearchKey string `json:"-" gorm:"index"`

	Timestamps

	// Calculated (not stored)
	Rank int `json:"rank,omitempty" gorm:"-"`
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
