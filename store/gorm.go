package store

import (
	"context"
	"errors"

	"dkp-tracker/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements Store on top of *gorm.DB (Postgres).
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Events() EventRepo           { return &gormEvents{db: s.db} }
func (s *GormStore) Players() PlayerRepo         { return &gormPlayers{db: s.db} }
func (s *GormStore) Attendances() AttendanceRepo { return &gormAttendances{db: s.db} }
func (s *GormStore) Adjustments() AdjustmentRepo { return &gormAdjustments{db: s.db} }

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// --- events ---

type gormEvents struct {
	db *gorm.DB
}

func (r *gormEvents) Create(ctx context.Context, e *models.Event) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *gormEvents) GetByID(ctx context.Context, id string) (*models.Event, error) {
	var e models.Event
	if err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

func (r *gormEvents) GetBySlug(ctx context.Context, slug string) (*models.Event, error) {
	var e models.Event
	if err := r.db.WithContext(ctx).First(&e, "slug = ?", slug).Error; err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

func (r *gormEvents) List(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&events).Error
	return events, err
}

func (r *gormEvents) Update(ctx context.Context, e *models.Event) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *gormEvents) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Event{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- players ---

type gormPlayers struct {
	db *gorm.DB
}

func (r *gormPlayers) CreateIgnoreConflict(ctx context.Context, p *models.Player) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "discord_id"}},
		DoNothing: true,
	}).Create(p)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormPlayers) GetByID(ctx context.Context, id string) (*models.Player, error) {
	var p models.Player
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *gormPlayers) GetByDiscordID(ctx context.Context, discordID string) (*models.Player, error) {
	var p models.Player
	if err := r.db.WithContext(ctx).First(&p, "discord_id = ?", discordID).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *gormPlayers) UpdateUsername(ctx context.Context, id, username, searchKey string) error {
	return r.db.WithContext(ctx).Model(&models.Player{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"username":   username,
			"search_key": searchKey,
		}).Error
}

func (r *gormPlayers) AddDKP(ctx context.Context, id string, delta int) (int, error) {
	res := r.db.WithContext(ctx).Model(&models.Player{}).
		Where("id = ?", id).
		UpdateColumn("total_dkp", gorm.Expr("total_dkp + ?", delta))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrNotFound
	}

	var p models.Player
	if err := r.db.WithContext(ctx).Select("total_dkp").First(&p, "id = ?", id).Error; err != nil {
		return 0, notFound(err)
	}
	return p.TotalDKP, nil
}

func (r *gormPlayers) SetTotalDKP(ctx context.Context, id string, total int) error {
	return r.db.WithContext(ctx).Model(&models.Player{}).
		Where("id = ?", id).
		UpdateColumn("total_dkp", total).Error
}

func (r *gormPlayers) List(ctx context.Context, searchKey string, limit int) ([]models.Player, error) {
	db := r.db.WithContext(ctx).Order("total_dkp DESC, username ASC")
	if searchKey != "" {
		db = db.Where("search_key LIKE ?", "%"+searchKey+"%")
	}
	if limit > 0 {
		db = db.Limit(limit)
	}
	var players []models.Player
	err := db.Find(&players).Error
	return players, err
}

// --- attendances ---

type gormAttendances struct {
	db *gorm.DB
}

func (r *gormAttendances) CreateIgnoreConflict(ctx context.Context, a *models.Attendance) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}, {Name: "player_id"}},
		DoNothing: true,
	}).Create(a)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormAttendances) ListByEvent(ctx context.Context, eventID string) ([]models.Attendance, error) {
	var rows []models.Attendance
	err := r.db.WithContext(ctx).
		Model(&models.Attendance{}).
		Select("attendances.*, players.username AS player_name").
		Joins("INNER JOIN players ON players.id = attendances.player_id").
		Where("attendances.event_id = ?", eventID).
		Order("attendances.created_at ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *gormAttendances) ListByPlayer(ctx context.Context, playerID string) ([]models.Attendance, error) {
	var rows []models.Attendance
	err := r.db.WithContext(ctx).
		Model(&models.Attendance{}).
		Select("attendances.*, events.name AS event_name").
		Joins("INNER JOIN events ON events.id = attendances.event_id").
		Where("attendances.player_id = ?", playerID).
		Order("attendances.created_at DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *gormAttendances) CountByEvent(ctx context.Context, eventID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Attendance{}).
		Where("event_id = ?", eventID).Count(&n).Error
	return n, err
}

func (r *gormAttendances) TotalsByPlayer(ctx context.Context) (map[string]int, error) {
	return sumByPlayer(ctx, r.db, &models.Attendance{}, "SUM(dkp_awarded)")
}

// --- adjustments ---

type gormAdjustments struct {
	db *gorm.DB
}

func (r *gormAdjustments) Create(ctx context.Context, a *models.Adjustment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *gormAdjustments) ListByPlayer(ctx context.Context, playerID string) ([]models.Adjustment, error) {
	var rows []models.Adjustment
	err := r.db.WithContext(ctx).
		Where("player_id = ?", playerID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *gormAdjustments) TotalsByPlayer(ctx context.Context) (map[string]int, error) {
	return sumByPlayer(ctx, r.db, &models.Adjustment{}, "SUM(delta)")
}

func sumByPlayer(ctx context.Context, db *gorm.DB, model interface{}, sumExpr string) (map[string]int, error) {
	var rows []struct {
		PlayerID string
		Total    int
	}
	err := db.WithContext(ctx).Model(model).
		Select("player_id, " + sumExpr + " AS total").
		Group("player_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	totals := make(map[string]int, len(rows))
	for _, row := range rows {
		totals[row.PlayerID] = row.Total
	}
	return totals, nil
}
