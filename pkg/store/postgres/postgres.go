// Package postgres implements the session repository on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for the migration runner
	"github.com/pressly/goose/v3"

	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/core/types"
	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/store"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store is a PostgreSQL-backed session repository.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to the database, runs pending migrations, and returns the
// repository.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := migrate(databaseURL); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func migrate(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Get(ctx context.Context, id string) (*types.ChatSession, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, title, language, turns, created_at, updated_at FROM chat_sessions WHERE id = $1`, id)
	return scanSession(row)
}

func (s *Store) List(ctx context.Context) ([]types.ChatSession, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, title, language, turns, created_at, updated_at FROM chat_sessions ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []types.ChatSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return out, nil
}

func (s *Store) Put(ctx context.Context, session *types.ChatSession) error {
	if session == nil || session.ID == "" {
		return fmt.Errorf("session must have an id")
	}
	turns, err := json.Marshal(session.Turns)
	if err != nil {
		return fmt.Errorf("encode turns: %w", err)
	}
	now := time.Now().UTC()
	_, err = s.pool.Exec(ctx, `
		INSERT INTO chat_sessions (id, title, language, turns, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			language = EXCLUDED.language,
			turns = EXCLUDED.turns,
			updated_at = EXCLUDED.updated_at`,
		session.ID, session.Title, session.Language, turns, now)
	if err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM chat_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*types.ChatSession, error) {
	var (
		session types.ChatSession
		turns   []byte
	)
	err := row.Scan(&session.ID, &session.Title, &session.Language, &turns,
		&session.CreatedAt, &session.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}
	if len(turns) > 0 {
		if err := json.Unmarshal(turns, &session.Turns); err != nil {
			return nil, fmt.Errorf("decode turns: %w", err)
		}
	}
	return &session, nil
}
