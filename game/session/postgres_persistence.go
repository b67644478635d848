package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wricardo/power-four/game/service"
)

const createSessionsTable = `
CREATE TABLE IF NOT EXISTS powerfour_sessions (
	id					text	PRIMARY KEY,
	config_name			text	NOT NULL,
	created_at			timestamp with time zone
								NOT NULL,
	last_accessed_at	timestamp with time zone
								NOT NULL,
	state				jsonb	NOT NULL,
	updated_at			timestamp with time zone
								DEFAULT now()
								NOT NULL
);`

// DefaultQueryTimeout bounds every statement issued by PostgresPersistence
const DefaultQueryTimeout = 5 * time.Second

// sessionRow mirrors one row of powerfour_sessions
type sessionRow struct {
	ID             string    `db:"id"`
	ConfigName     string    `db:"config_name"`
	CreatedAt      time.Time `db:"created_at"`
	LastAccessedAt time.Time `db:"last_accessed_at"`
	State          []byte    `db:"state"`
}

// PostgresPersistence implements SessionPersistence on a Postgres table
type PostgresPersistence struct {
	db            *pgxpool.Pool
	configManager service.ConfigManager
	timeout       time.Duration
}

// NewPostgresPersistence connects to dbURL and creates the sessions table if needed
func NewPostgresPersistence(ctx context.Context, dbURL string, configManager service.ConfigManager) (*PostgresPersistence, error) {
	dbconfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}

	db, err := pgxpool.NewWithConfig(ctx, dbconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec(ctx, createSessionsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create sessions table: %w", err)
	}

	return &PostgresPersistence{
		db:            db,
		configManager: configManager,
		timeout:       DefaultQueryTimeout,
	}, nil
}

// Close releases the connection pool
func (pp *PostgresPersistence) Close() {
	pp.db.Close()
}

func (pp *PostgresPersistence) queryContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), pp.timeout)
}

// Save upserts a session row
func (pp *PostgresPersistence) Save(session *service.Session) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}

	data := snapshot(session)
	state, err := json.Marshal(data.GameState)
	if err != nil {
		return fmt.Errorf("failed to marshal game state: %w", err)
	}

	ctx, cancel := pp.queryContext()
	defer cancel()

	_, err = pp.db.Exec(ctx, `
	INSERT INTO powerfour_sessions (
		id, config_name, created_at, last_accessed_at, state
	)
	VALUES (@id, @config_name, @created_at, @last_accessed_at, @state)
	ON CONFLICT (id) DO UPDATE SET
		config_name = EXCLUDED.config_name,
		last_accessed_at = EXCLUDED.last_accessed_at,
		state = EXCLUDED.state,
		updated_at = now();`,
		pgx.NamedArgs{
			"id":               strings.ToLower(data.ID),
			"config_name":      data.ConfigName,
			"created_at":       data.CreatedAt,
			"last_accessed_at": data.LastAccessedAt,
			"state":            state,
		})
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", data.ID, err)
	}
	return nil
}

// Load retrieves a session row by ID
func (pp *PostgresPersistence) Load(id string) (*service.Session, error) {
	ctx, cancel := pp.queryContext()
	defer cancel()

	rows, err := pp.db.Query(ctx, `
	SELECT id
		, config_name
		, created_at
		, last_accessed_at
		, state
	FROM powerfour_sessions
	WHERE id = @id;`, pgx.NamedArgs{"id": strings.ToLower(id)})
	if err != nil {
		return nil, fmt.Errorf("failed to query session %s: %w", id, err)
	}

	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[sessionRow])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session %s: %w", id, err)
	}

	data := PersistedSessionData{
		ID:             row.ID,
		ConfigName:     row.ConfigName,
		CreatedAt:      row.CreatedAt,
		LastAccessedAt: row.LastAccessedAt,
	}
	if err := json.Unmarshal(row.State, &data.GameState); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game state: %w", err)
	}

	return restore(data, pp.configManager)
}

// Delete removes a session row
func (pp *PostgresPersistence) Delete(id string) error {
	ctx, cancel := pp.queryContext()
	defer cancel()

	tag, err := pp.db.Exec(ctx, `DELETE FROM powerfour_sessions WHERE id = @id;`,
		pgx.NamedArgs{"id": strings.ToLower(id)})
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll returns all persisted session IDs
func (pp *PostgresPersistence) ListAll() ([]string, error) {
	ctx, cancel := pp.queryContext()
	defer cancel()

	rows, err := pp.db.Query(ctx, `SELECT id FROM powerfour_sessions ORDER BY created_at;`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// Exists checks if a session row exists
func (pp *PostgresPersistence) Exists(id string) bool {
	ctx, cancel := pp.queryContext()
	defer cancel()

	var exists bool
	err := pp.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM powerfour_sessions WHERE id = @id);`,
		pgx.NamedArgs{"id": strings.ToLower(id)},
	).Scan(&exists)
	if err != nil {
		Log.WithField("session_id", id).WithError(err).Warn("session existence check failed")
		return false
	}
	return exists
}
