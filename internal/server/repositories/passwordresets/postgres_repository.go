package passwordresets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

// Upsert is a single statement, so of two concurrent requests for one user
// the last writer wins.
func (r *PostgresRepository) Upsert(ctx context.Context, reset *models.PasswordReset) error {

	query :=
		`INSERT INTO password_resets (user_id, token, expires_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at`

	if _, err := r.db.ExecContext(ctx, query, reset.UserID, reset.Token, reset.ExpiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

// FindByToken locks the matched row, so within a transaction a concurrent
// consumer of the same token blocks and then finds nothing.
func (r *PostgresRepository) FindByToken(ctx context.Context, token string, now time.Time) (*models.PasswordReset, error) {

	query :=
		`SELECT pr.user_id, pr.token, pr.expires_at FROM password_resets pr
		 JOIN users u ON u.id = pr.user_id
		 WHERE pr.token = $1 AND pr.expires_at > $2 AND u.deleted_at IS NULL
		 FOR UPDATE OF pr`

	reset := &models.PasswordReset{}
	err := r.db.QueryRowContext(ctx, query, token, now).Scan(&reset.UserID, &reset.Token, &reset.ExpiresAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return reset, nil
}

func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID string) error {

	query := `DELETE FROM password_resets WHERE user_id = $1`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
