package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"beacon/internal/app/db"
)

// PGStore is a Store backed by PostgreSQL. Durability is delegated to the
// database; every method returns only after the statement has committed.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore constructs a PGStore on top of an initialized connection pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) Get(ctx context.Context, name string) (User, error) {
	var u User
	err := s.pool.QueryRow(ctx,
		`SELECT name, pass, nick, avatar, balance, registered FROM users WHERE name = $1`,
		name,
	).Scan(&u.Name, &u.Pass, &u.Nick, &u.Avatar, &u.Balance, &u.Registered)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("get user: %w", err)
	}

	return u, nil
}

func (s *PGStore) Create(ctx context.Context, u User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (name, pass, nick, avatar, balance, registered)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		u.Name, u.Pass, u.Nick, u.Avatar, u.Balance, u.Registered,
	)

	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (s *PGStore) Update(ctx context.Context, name string, upd Update) error {
	var nick *string
	if upd.Nick != nil {
		clamped := ClampNick(*upd.Nick)
		nick = &clamped
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET
		   nick    = COALESCE($2, nick),
		   balance = COALESCE($3, balance),
		   avatar  = COALESCE($4, avatar)
		 WHERE name = $1`,
		name, nick, upd.Balance, upd.Avatar,
	)

	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *PGStore) List(ctx context.Context) ([]User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT name, pass, nick, avatar, balance, registered FROM users
		 ORDER BY registered, name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var list []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.Name, &u.Pass, &u.Nick, &u.Avatar, &u.Balance, &u.Registered); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return list, nil
}
