package repositories

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/Dosada05/tournament-engine/models"
)

// memoryTournamentRepository keeps clones of the documents so callers never
// share pointers with the store. Used by tests and the CLI.
type memoryTournamentRepository struct {
	mu          sync.RWMutex
	tournaments map[string]*models.Tournament
	archiveKeys map[string]string
}

func NewMemoryTournamentRepository() TournamentRepository {
	return &memoryTournamentRepository{
		tournaments: make(map[string]*models.Tournament),
		archiveKeys: make(map[string]string),
	}
}

func (r *memoryTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tournaments[t.ID]; ok {
		return fmt.Errorf("tournament %s already exists", t.ID)
	}
	for _, existing := range r.tournaments {
		if existing.Name == t.Name {
			return ErrTournamentNameConflict
		}
	}
	t.Version = 1
	r.tournaments[t.ID] = t.Clone()
	return nil
}

func (r *memoryTournamentRepository) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tournaments[id]
	if !ok {
		return nil, ErrTournamentNotFound
	}
	return t.Clone(), nil
}

func (r *memoryTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]*models.Tournament, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Tournament, 0, len(r.tournaments))
	for _, t := range r.tournaments {
		if filter.Format != nil && t.Format != *filter.Format {
			continue
		}
		if filter.Stage != nil && t.CurrentStage != *filter.Stage {
			continue
		}
		out = append(out, t.Clone())
	}
	slices.SortFunc(out, func(a, b *models.Tournament) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []*models.Tournament{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *memoryTournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.tournaments[t.ID]
	if !ok {
		return ErrTournamentNotFound
	}
	if stored.Version != t.Version {
		return fmt.Errorf("%w: tournament %s at version %d, stored %d", ErrVersionConflict, t.ID, t.Version, stored.Version)
	}
	for id, existing := range r.tournaments {
		if id != t.ID && existing.Name == t.Name {
			return ErrTournamentNameConflict
		}
	}
	t.Version++
	r.tournaments[t.ID] = t.Clone()
	return nil
}

func (r *memoryTournamentRepository) UpdateArchiveKey(ctx context.Context, id string, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tournaments[id]; !ok {
		return ErrTournamentNotFound
	}
	r.archiveKeys[id] = key
	return nil
}

func (r *memoryTournamentRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tournaments[id]; !ok {
		return ErrTournamentNotFound
	}
	delete(r.tournaments, id)
	delete(r.archiveKeys, id)
	return nil
}
