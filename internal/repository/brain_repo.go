package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"mirrorbrain/internal/domain"
)

// ListOptions filtra y ordena el listado de brains.
type ListOptions struct {
	PublicOnly bool
	Archetype  domain.Archetype
	Sort       string // recent | popular | nodes
	Page       int
	Limit      int
}

type BrainRepository interface {
	Create(ctx context.Context, brain domain.Brain) error
	GetByID(ctx context.Context, id string) (domain.Brain, error)
	Update(ctx context.Context, brain domain.Brain) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, opts ListOptions) ([]domain.Brain, int, error)
	Search(ctx context.Context, query string) ([]domain.Brain, error)
	Leaderboard(ctx context.Context, limit int) ([]domain.Brain, error)
	Nearest(ctx context.Context, dims domain.Dimensions, excludeID string, limit int) ([]domain.Brain, error)
}

type PgBrainRepository struct {
	pool *pgxpool.Pool
}

func NewPgBrainRepository(pool *pgxpool.Pool) *PgBrainRepository {
	return &PgBrainRepository{pool: pool}
}

const brainColumns = `id, user_id, archetype, dimensions, node_count, connection_count, public, created_at, updated_at`

// EnsureSchema crea la tabla de brains y la extension pgvector si faltan.
func (r *PgBrainRepository) EnsureSchema(ctx context.Context) error {
	const schema = `
		CREATE EXTENSION IF NOT EXISTS vector;
		CREATE TABLE IF NOT EXISTS brains (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL DEFAULT '',
			archetype TEXT NOT NULL,
			dimensions vector(5) NOT NULL,
			node_count INT NOT NULL,
			connection_count INT NOT NULL,
			public BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_brains_public ON brains (public);
		CREATE INDEX IF NOT EXISTS idx_brains_archetype ON brains (archetype);
	`
	_, err := r.pool.Exec(ctx, schema)
	return err
}

func (r *PgBrainRepository) Create(ctx context.Context, brain domain.Brain) error {
	const query = `
		INSERT INTO brains (id, user_id, archetype, dimensions, node_count, connection_count, public, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		brain.ID,
		brain.UserID,
		string(brain.Archetype),
		brain.Dimensions.Vector(),
		brain.NodeCount,
		brain.ConnectionCount,
		brain.Public,
		brain.CreatedAt,
		brain.UpdatedAt,
	)
	return err
}

func (r *PgBrainRepository) GetByID(ctx context.Context, id string) (domain.Brain, error) {
	query := `SELECT ` + brainColumns + ` FROM brains WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanBrain(row)
}

func (r *PgBrainRepository) Update(ctx context.Context, brain domain.Brain) error {
	const query = `
		UPDATE brains
		SET user_id = $2,
			archetype = $3,
			dimensions = $4,
			node_count = $5,
			connection_count = $6,
			public = $7,
			updated_at = $8
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		brain.ID,
		brain.UserID,
		string(brain.Archetype),
		brain.Dimensions.Vector(),
		brain.NodeCount,
		brain.ConnectionCount,
		brain.Public,
		brain.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgBrainRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM brains WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgBrainRepository) List(ctx context.Context, opts ListOptions) ([]domain.Brain, int, error) {
	where := `WHERE 1=1`
	args := []any{}
	if opts.PublicOnly {
		where += ` AND public`
	}
	if opts.Archetype != "" {
		args = append(args, string(opts.Archetype))
		where += fmt.Sprintf(` AND archetype = $%d`, len(args))
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM brains ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	orderBy := `created_at DESC`
	switch opts.Sort {
	case "nodes":
		orderBy = `node_count DESC`
	case "popular":
		orderBy = `connection_count DESC`
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	page := opts.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)
	query := fmt.Sprintf(`SELECT %s FROM brains %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		brainColumns, where, orderBy, len(args)-1, len(args))

	brains, err := r.queryBrains(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return brains, total, nil
}

func (r *PgBrainRepository) Search(ctx context.Context, query string) ([]domain.Brain, error) {
	const search = `
		SELECT ` + brainColumns + `
		FROM brains
		WHERE public
		  AND (archetype ILIKE '%' || $1 || '%' OR id ILIKE '%' || $1 || '%' OR user_id ILIKE '%' || $1 || '%')
		ORDER BY created_at DESC
	`
	return r.queryBrains(ctx, search, query)
}

func (r *PgBrainRepository) Leaderboard(ctx context.Context, limit int) ([]domain.Brain, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `
		SELECT ` + brainColumns + `
		FROM brains
		WHERE public
		ORDER BY node_count DESC
		LIMIT $1
	`
	return r.queryBrains(ctx, query, limit)
}

// Nearest devuelve los brains publicos mas cercanos al vector dado.
func (r *PgBrainRepository) Nearest(ctx context.Context, dims domain.Dimensions, excludeID string, limit int) ([]domain.Brain, error) {
	if limit <= 0 {
		limit = 5
	}
	const query = `
		SELECT ` + brainColumns + `
		FROM brains
		WHERE public AND id <> $1
		ORDER BY dimensions <=> $2
		LIMIT $3
	`
	return r.queryBrains(ctx, query, excludeID, dims.Vector(), limit)
}

func (r *PgBrainRepository) queryBrains(ctx context.Context, query string, args ...any) ([]domain.Brain, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var brains []domain.Brain
	for rows.Next() {
		brain, err := scanBrain(rows)
		if err != nil {
			return nil, err
		}
		brains = append(brains, brain)
	}
	return brains, rows.Err()
}

func scanBrain(row pgx.Row) (domain.Brain, error) {
	var (
		brain     domain.Brain
		archetype string
		vector    pgvector.Vector
	)
	err := row.Scan(
		&brain.ID,
		&brain.UserID,
		&archetype,
		&vector,
		&brain.NodeCount,
		&brain.ConnectionCount,
		&brain.Public,
		&brain.CreatedAt,
		&brain.UpdatedAt,
	)
	if err != nil {
		return domain.Brain{}, err
	}
	brain.Archetype = domain.Archetype(archetype)
	brain.Dimensions = domain.DimensionsFromVector(vector)
	return brain, nil
}
