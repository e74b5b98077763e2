package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// sortColumns whitelists the columns a listing may be ordered by.
var sortColumns = map[string]string{
	"id":         "id",
	"lastname":   "lastname",
	"firstname":  "firstname",
	"email":      "email",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) error {

	query :=
		`INSERT INTO users (id, lastname, firstname, email, password)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Lastname, user.Firstname, user.Email, user.Password).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT id, lastname, firstname, email, password, created_at, updated_at FROM users
		 WHERE email = $1 AND deleted_at IS NULL`

	return r.getOne(ctx, query, email)
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	query :=
		`SELECT id, lastname, firstname, email, password, created_at, updated_at FROM users
		 WHERE id = $1 AND deleted_at IS NULL`

	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg string) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Lastname, &user.Firstname, &user.Email, &user.Password, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	query :=
		`UPDATE users SET password = $1, updated_at = now()
		 WHERE id = $2 AND deleted_at IS NULL`

	return r.execOne(ctx, query, passwordHash, id)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query :=
		`UPDATE users SET deleted_at = now(), updated_at = now()
		 WHERE id = $1 AND deleted_at IS NULL`

	return r.execOne(ctx, query, id)
}

// execOne runs a statement expected to touch exactly one live row.
func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) List(ctx context.Context, page models.Page) ([]models.User, error) {
	page = page.Normalize()

	column, ok := sortColumns[page.Sort]
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if page.Desc {
		direction = "DESC"
	}

	// column and direction come from the whitelist above, never from input
	query := fmt.Sprintf(
		`SELECT id, lastname, firstname, email, password, created_at, updated_at FROM users
		 WHERE deleted_at IS NULL
		 ORDER BY %s %s, id
		 LIMIT $1 OFFSET $2`, column, direction)

	rows, err := r.db.QueryContext(ctx, query, page.Size, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.User, 0, page.Size)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Lastname, &u.Firstname, &u.Email, &u.Password, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM users WHERE deleted_at IS NULL`

	var n int64
	if err := r.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
