package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dkp-tracker/store"

	"github.com/google/uuid"
)

// Uploader is satisfied by utils.UploadObject (S3/R2). Tests substitute a
// recorder.
type Uploader func(ctx context.Context, key string, body []byte, contentType string) (string, error)

type standingsSnapshot struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Players     []standingsRow `json:"players"`
}

type standingsRow struct {
	Rank      int    `json:"rank"`
	DiscordID string `json:"discord_id"`
	Username  string `json:"username"`
	TotalDKP  int    `json:"total_dkp"`
}

// ExportService snapshots the DKP standings to object storage, both on a
// schedule and on demand from the admin API.
type ExportService struct {
	Store  store.Store
	Upload Uploader
}

func NewExportService(st store.Store, upload Uploader) *ExportService {
	return &ExportService{Store: st, Upload: upload}
}

// Export writes the current standings as one JSON object and returns its URL.
func (s *ExportService) Export(ctx context.Context) (string, error) {
	if s.Upload == nil {
		return "", fmt.Errorf("standings export is not configured")
	}

	players, err := s.Store.Players().List(ctx, "", 0)
	if err != nil {
		return "", fmt.Errorf("standings query failed: %w", err)
	}

	snap := standingsSnapshot{
		GeneratedAt: time.Now().UTC(),
		Players:     make([]standingsRow, len(players)),
	}
	for i, p := range players {
		snap.Players[i] = standingsRow{
			Rank:      i + 1,
			DiscordID: p.DiscordID,
			Username:  p.Username,
			TotalDKP:  p.TotalDKP,
		}
	}

	body, err := json.Marshal(snap)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("standings/%s/%s.json",
		snap.GeneratedAt.Format("2006-01-02"), uuid.NewString())
	return s.Upload(ctx, key, body, "application/json")
}
