package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/sports-edge/internal/models"
)

// NewMemoryRepositories returns map-backed repositories for tests and
// offline runs. They follow the same ordering rules as the Postgres ones.
func NewMemoryRepositories() *Repositories {
	store := &memoryStore{
		games:   make(map[string]models.Game),
		quotes:  make(map[string][]models.MarketQuote),
		ratings: make(map[string]models.TeamRating),
		runs:    make(map[uuid.UUID]*models.BacktestRun),
	}
	return &Repositories{
		Game:        &memoryGameRepository{store},
		Quote:       &memoryQuoteRepository{store},
		TeamRating:  &memoryTeamRatingRepository{store},
		BacktestRun: &memoryBacktestRunRepository{store},
	}
}

type memoryStore struct {
	mu      sync.RWMutex
	games   map[string]models.Game
	quotes  map[string][]models.MarketQuote
	ratings map[string]models.TeamRating
	runs    map[uuid.UUID]*models.BacktestRun
}

type memoryGameRepository struct{ s *memoryStore }

func (r *memoryGameRepository) Upsert(ctx context.Context, game *models.Game) error {
	return r.UpsertBatch(ctx, []models.Game{*game})
}

func (r *memoryGameRepository) UpsertBatch(ctx context.Context, games []models.Game) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, g := range games {
		r.s.games[g.ID] = g
	}
	return nil
}

func (r *memoryGameRepository) GetByID(ctx context.Context, id string) (*models.Game, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	g, ok := r.s.games[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &g, nil
}

func (r *memoryGameRepository) GetByLeague(ctx context.Context, league string, until time.Time) ([]models.Game, error) {
	return r.filter(func(g models.Game) bool {
		return strings.EqualFold(g.League, league) && g.Date.Before(until)
	}), nil
}

func (r *memoryGameRepository) GetSchedule(ctx context.Context, league string, from, to time.Time) ([]models.Game, error) {
	return r.filter(func(g models.Game) bool {
		return strings.EqualFold(g.League, league) && !g.Date.Before(from) && g.Date.Before(to)
	}), nil
}

func (r *memoryGameRepository) filter(keep func(models.Game) bool) []models.Game {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Game
	for _, g := range r.s.games {
		if keep(g) {
			out = append(out, g)
		}
	}
	models.SortGames(out)
	return out
}

type memoryQuoteRepository struct{ s *memoryStore }

func (r *memoryQuoteRepository) Insert(ctx context.Context, quote *models.MarketQuote) error {
	return r.InsertBatch(ctx, []models.MarketQuote{*quote})
}

func (r *memoryQuoteRepository) InsertBatch(ctx context.Context, quotes []models.MarketQuote) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, q := range quotes {
		r.s.quotes[q.GameID] = append(r.s.quotes[q.GameID], q)
	}
	return nil
}

func (r *memoryQuoteRepository) GetClosing(ctx context.Context, league string, start, end time.Time) (map[string]*models.MarketQuote, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string]*models.MarketQuote)
	for id, g := range r.s.games {
		if !strings.EqualFold(g.League, league) || g.Date.Before(start) || !g.Date.Before(end) {
			continue
		}
		if q := latestQuote(r.s.quotes[id], g.Date); q != nil {
			out[id] = q
		}
	}
	return out, nil
}

func (r *memoryQuoteRepository) GetLatest(ctx context.Context, gameID string, asOf time.Time) (*models.MarketQuote, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if q := latestQuote(r.s.quotes[gameID], asOf); q != nil {
		return q, nil
	}
	return nil, models.ErrNotFound
}

// latestQuote picks the last quote at or before asOf, breaking ties by book.
func latestQuote(quotes []models.MarketQuote, asOf time.Time) *models.MarketQuote {
	var best *models.MarketQuote
	for i := range quotes {
		q := quotes[i]
		if q.Timestamp.After(asOf) {
			continue
		}
		if best == nil || q.Timestamp.After(best.Timestamp) || (q.Timestamp.Equal(best.Timestamp) && q.Book < best.Book) {
			best = &q
		}
	}
	return best
}

type memoryTeamRatingRepository struct{ s *memoryStore }

func (r *memoryTeamRatingRepository) UpsertBatch(ctx context.Context, ratings []models.TeamRating) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, tr := range ratings {
		r.s.ratings[tr.League+"/"+tr.Team] = tr
	}
	return nil
}

func (r *memoryTeamRatingRepository) GetByLeague(ctx context.Context, league string) ([]models.TeamRating, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.TeamRating
	for _, tr := range r.s.ratings {
		if strings.EqualFold(tr.League, league) {
			out = append(out, tr)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].Team < out[j].Team
	})
	return out, nil
}

type memoryBacktestRunRepository struct{ s *memoryStore }

func (r *memoryBacktestRunRepository) Create(ctx context.Context, run *models.BacktestRun) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.runs[run.ID]; exists {
		return models.ErrDuplicateKey
	}
	cp := *run
	r.s.runs[run.ID] = &cp
	return nil
}

func (r *memoryBacktestRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BacktestRun, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	run, ok := r.s.runs[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *run
	return &cp, nil
}

func (r *memoryBacktestRunRepository) GetRecent(ctx context.Context, league string, limit int) ([]*models.BacktestRun, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*models.BacktestRun
	for _, run := range r.s.runs {
		if strings.EqualFold(run.League, league) {
			cp := *run
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
