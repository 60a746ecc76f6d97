package models

import "time"

// Adjustment is a manual DKP correction (officer grant, auction spend,
// penalty). Kept as an audit row so a player's total stays explainable:
// total_dkp = sum(attendance awards) + sum(adjustment deltas).
type Adjustment struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	PlayerID   string    `json:"player_id" gorm:"not null;index"`
	Delta      int       `json:"delta" gorm:"not null"`
	Reason     string    `json:"reason"`
	AdjustedBy string    `json:"adjusted_by,omitempty"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}
