package scopes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, id string) (*models.Scope, error) {

	// the conditional upsert returns no row when a live scope already exists
	query :=
		`INSERT INTO scopes (id) VALUES ($1)
		 ON CONFLICT (id) DO UPDATE SET deleted_at = NULL, created_at = now()
		 WHERE scopes.deleted_at IS NOT NULL
		 RETURNING id, created_at`

	s := &models.Scope{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return s, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Scope, error) {

	query := `SELECT id, created_at FROM scopes WHERE id = $1 AND deleted_at IS NULL`

	s := &models.Scope{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return s, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]models.Scope, error) {

	query := `SELECT id, created_at FROM scopes WHERE deleted_at IS NULL ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.Scope{}
	for rows.Next() {
		var s models.Scope
		if err := rows.Scan(&s.ID, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {

	query := `UPDATE scopes SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOne(res)
}

func (r *PostgresRepository) ScopesOf(ctx context.Context, userID string) ([]string, error) {

	query :=
		`SELECT s.id FROM users_scopes us
		 JOIN scopes s ON s.id = us.scope_id
		 WHERE us.user_id = $1 AND s.deleted_at IS NULL
		 ORDER BY s.id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) AddToUser(ctx context.Context, userID, scopeID string) error {

	query :=
		`INSERT INTO users_scopes (user_id, scope_id) VALUES ($1, $2)
		 ON CONFLICT (user_id, scope_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, userID, scopeID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) RemoveFromUser(ctx context.Context, userID, scopeID string) error {

	query := `DELETE FROM users_scopes WHERE user_id = $1 AND scope_id = $2`

	res, err := r.db.ExecContext(ctx, query, userID, scopeID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOne(res)
}

func requireOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
