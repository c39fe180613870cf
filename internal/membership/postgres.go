// internal/membership/postgres.go
package membership

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"libralend/internal/notify"
)

const (
	tableUsers = "users"
	colID      = "id"
	colName    = "name"
	colChannel = "channel"
)

// PostgresRepository persists users with their channel address and rebuilds
// the notification sink from it on every lookup.
type PostgresRepository struct {
	db       *sqlx.DB
	resolver notify.Resolver
	dialect  goqu.DialectWrapper
}

func NewPostgresRepository(db *sqlx.DB, resolver notify.Resolver) *PostgresRepository {
	return &PostgresRepository{
		db:       db,
		resolver: resolver,
		dialect:  goqu.Dialect("postgres"),
	}
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id string) (*User, error) {
	query, args, err := r.dialect.From(tableUsers).
		Select(colID, colName, colChannel).
		Where(goqu.Ex{colID: id}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	user := &User{}
	if err := r.db.GetContext(ctx, user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}

	sink, err := r.resolver.Resolve(user.Channel)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", id, err)
	}
	user.Notifier = sink

	return user, nil
}

func (r *PostgresRepository) RegisterUser(ctx context.Context, id string, user *User) error {
	query, args, err := r.dialect.Insert(tableUsers).
		Rows(goqu.Record{
			colID:      id,
			colName:    user.Name,
			colChannel: user.Channel,
		}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert user %s: %w", id, err)
	}
	return nil
}
