package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"dkp-tracker/models"
)

// MemoryStore is an in-memory Store used by tests and local hacking without
// a Postgres. It honors the same uniqueness rules as the SQL schema
// (players.discord_id, attendances (event_id, player_id)) but Transaction is
// only mutual exclusion, not rollback.
type MemoryStore struct {
	mu sync.Mutex

	events      map[string]models.Event
	players     map[string]models.Player
	attendances map[string]models.Attendance
	adjustments map[string]models.Adjustment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events:      make(map[string]models.Event),
		players:     make(map[string]models.Player),
		attendances: make(map[string]models.Attendance),
		adjustments: make(map[string]models.Adjustment),
	}
}

func (s *MemoryStore) Events() EventRepo           { return (*memEvents)(s) }
func (s *MemoryStore) Players() PlayerRepo         { return (*memPlayers)(s) }
func (s *MemoryStore) Attendances() AttendanceRepo { return (*memAttendances)(s) }
func (s *MemoryStore) Adjustments() AdjustmentRepo { return (*memAdjustments)(s) }

func (s *MemoryStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return fn(s)
}

// --- events ---

type memEvents MemoryStore

func (r *memEvents) Create(ctx context.Context, e *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	r.events[e.ID] = *e
	return nil
}

func (r *memEvents) GetByID(ctx context.Context, id string) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (r *memEvents) GetBySlug(ctx context.Context, slug string) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.Slug == slug {
			e := e
			return &e, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memEvents) List(ctx context.Context) ([]models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Event, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memEvents) Update(ctx context.Context, e *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[e.ID]; !ok {
		return ErrNotFound
	}
	r.events[e.ID] = *e
	return nil
}

func (r *memEvents) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return ErrNotFound
	}
	delete(r.events, id)
	return nil
}

// --- players ---

type memPlayers MemoryStore

func (r *memPlayers) CreateIgnoreConflict(ctx context.Context, p *models.Player) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.players {
		if existing.DiscordID == p.DiscordID {
			return false, nil
		}
	}
	r.players[p.ID] = *p
	return true, nil
}

func (r *memPlayers) GetByID(ctx context.Context, id string) (*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *memPlayers) GetByDiscordID(ctx context.Context, discordID string) (*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.players {
		if p.DiscordID == discordID {
			p := p
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memPlayers) UpdateUsername(ctx context.Context, id, username, searchKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return ErrNotFound
	}
	p.Username = username
	p.SearchKey = searchKey
	r.players[id] = p
	return nil
}

func (r *memPlayers) AddDKP(ctx context.Context, id string, delta int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return 0, ErrNotFound
	}
	p.TotalDKP += delta
	r.players[id] = p
	return p.TotalDKP, nil
}

func (r *memPlayers) SetTotalDKP(ctx context.Context, id string, total int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return ErrNotFound
	}
	p.TotalDKP = total
	r.players[id] = p
	return nil
}

func (r *memPlayers) List(ctx context.Context, searchKey string, limit int) ([]models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Player, 0, len(r.players))
	for _, p := range r.players {
		if searchKey != "" && !strings.Contains(p.SearchKey, searchKey) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalDKP != out[j].TotalDKP {
			return out[i].TotalDKP > out[j].TotalDKP
		}
		return out[i].Username < out[j].Username
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- attendances ---

type memAttendances MemoryStore

func (r *memAttendances) CreateIgnoreConflict(ctx context.Context, a *models.Attendance) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.attendances {
		if existing.EventID == a.EventID && existing.PlayerID == a.PlayerID {
			return false, nil
		}
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	r.attendances[a.ID] = *a
	return true, nil
}

func (r *memAttendances) ListByEvent(ctx context.Context, eventID string) ([]models.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Attendance
	for _, a := range r.attendances {
		if a.EventID != eventID {
			continue
		}
		if p, ok := r.players[a.PlayerID]; ok {
			a.PlayerName = p.Username
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memAttendances) ListByPlayer(ctx context.Context, playerID string) ([]models.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Attendance
	for _, a := range r.attendances {
		if a.PlayerID != playerID {
			continue
		}
		if e, ok := r.events[a.EventID]; ok {
			a.EventName = e.Name
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memAttendances) CountByEvent(ctx context.Context, eventID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.attendances {
		if a.EventID == eventID {
			n++
		}
	}
	return n, nil
}

func (r *memAttendances) TotalsByPlayer(ctx context.Context) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	totals := make(map[string]int)
	for _, a := range r.attendances {
		totals[a.PlayerID] += a.DKPAwarded
	}
	return totals, nil
}

// --- adjustments ---

type memAdjustments MemoryStore

func (r *memAdjustments) Create(ctx context.Context, a *models.Adjustment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	r.adjustments[a.ID] = *a
	return nil
}

func (r *memAdjustments) ListByPlayer(ctx context.Context, playerID string) ([]models.Adjustment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Adjustment
	for _, a := range r.adjustments {
		if a.PlayerID == playerID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memAdjustments) TotalsByPlayer(ctx context.Context) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	totals := make(map[string]int)
	for _, a := range r.adjustments {
		totals[a.PlayerID] += a.Delta
	}
	return totals, nil
}
