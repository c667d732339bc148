package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name already exists")
	// ErrVersionConflict means the stored tournament changed since it was read.
	ErrVersionConflict = errors.New("tournament was modified concurrently")
)

type ListTournamentsFilter struct {
	Format *models.Format
	Stage  *models.Stage
	Limit  int
	Offset int
}

// TournamentRepository stores whole tournament documents. Update is a
// compare-and-swap on Tournament.Version: it succeeds only when the stored
// version equals t.Version and then increments t.Version.
type TournamentRepository interface {
	Create(ctx context.Context, t *models.Tournament) error
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]*models.Tournament, error)
	Update(ctx context.Context, t *models.Tournament) error
	UpdateArchiveKey(ctx context.Context, id string, key string) error
	Delete(ctx context.Context, id string) error
}

type postgresTournamentRepository struct {
	db SQLExecutor
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

const tournamentColumns = `document, version`

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	t.Version = 1
	doc, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode tournament %s: %w", t.ID, err)
	}

	query := `
		INSERT INTO tournaments (id, name, format, current_stage, champion_id, document, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9)`
	_, err = r.db.ExecContext(ctx, query,
		t.ID, t.Name, t.Format, t.CurrentStage, t.ChampionID, doc, t.Version, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		t.Version = 0
		return r.handleTournamentError(err)
	}
	return nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	t, err := scanTournament(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.Format != nil {
		query += fmt.Sprintf(" AND format = $%d", argID)
		args = append(args, *filter.Format)
		argID++
	}
	if filter.Stage != nil {
		query += fmt.Sprintf(" AND current_stage = $%d", argID)
		args = append(args, *filter.Stage)
		argID++
	}

	query += " ORDER BY created_at DESC, id"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		t, scanErr := scanTournament(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	expected := t.Version
	next := *t
	next.Version = expected + 1
	doc, err := json.Marshal(&next)
	if err != nil {
		return fmt.Errorf("failed to encode tournament %s: %w", t.ID, err)
	}

	query := `
		UPDATE tournaments SET
			name = $1,
			current_stage = $2,
			champion_id = NULLIF($3, ''),
			document = $4,
			version = version + 1,
			updated_at = $5
		WHERE id = $6 AND version = $7`
	result, err := r.db.ExecContext(ctx, query,
		t.Name, t.CurrentStage, t.ChampionID, doc, t.UpdatedAt, t.ID, expected,
	)
	if err != nil {
		return r.handleTournamentError(err)
	}
	if err := checkAffectedRows(result, ErrVersionConflict); err != nil {
		if !errors.Is(err, ErrVersionConflict) {
			return err
		}
		var exists bool
		if qErr := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM tournaments WHERE id = $1)`, t.ID).Scan(&exists); qErr != nil {
			return fmt.Errorf("failed to check tournament %s after update miss: %w", t.ID, qErr)
		}
		if !exists {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("%w: tournament %s at version %d", ErrVersionConflict, t.ID, expected)
	}
	t.Version = next.Version
	return nil
}

func (r *postgresTournamentRepository) UpdateArchiveKey(ctx context.Context, id string, key string) error {
	query := `UPDATE tournaments SET archive_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, key, id)
	if err != nil {
		return fmt.Errorf("failed to update tournament archive key: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTournament(row rowScanner) (*models.Tournament, error) {
	var (
		doc     []byte
		version int64
	)
	if err := row.Scan(&doc, &version); err != nil {
		return nil, err
	}
	t := &models.Tournament{}
	if err := json.Unmarshal(doc, t); err != nil {
		return nil, fmt.Errorf("failed to decode tournament document: %w", err)
	}
	t.Version = version
	return t, nil
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "tournaments_name_key" {
				return ErrTournamentNameConflict
			}
		}
	}
	return err
}
