package refreshtokens

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

func (r *PostgresRepository) Create(ctx context.Context, token *models.RefreshToken) error {

	query :=
		`INSERT INTO refresh_tokens (id, user_id, access_token, expires_at)
		 VALUES ($1, $2, $3, $4)`

	_, err := r.db.ExecContext(ctx, query, token.ID, token.UserID, token.AccessToken, token.ExpiresAt)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

// Consume relies on DELETE ... RETURNING: the row lock taken by the delete
// lets exactly one concurrent statement see the row.
func (r *PostgresRepository) Consume(ctx context.Context, id string) (*models.RefreshToken, error) {

	query :=
		`DELETE FROM refresh_tokens
		 WHERE id = $1
		 RETURNING id, user_id, access_token, expires_at, created_at`

	t := &models.RefreshToken{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.UserID, &t.AccessToken, &t.ExpiresAt, &t.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return t, nil
}

func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID string) error {

	query := `DELETE FROM refresh_tokens WHERE user_id = $1`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
