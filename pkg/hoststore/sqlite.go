package hoststore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// SQLiteHost stores one site and its network in SQLite, using the table
// layout of the host it stands in for. Values are stored as JSON.
type SQLiteHost struct {
	db     *sql.DB
	logger *logrus.Logger

	// NetworkAdmin reports whether callers act from the network admin screen.
	NetworkAdmin bool
}

// OpenSQLiteHost opens (or creates) the database at path and prepares it.
func OpenSQLiteHost(path string, logger *logrus.Logger) (*SQLiteHost, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open host database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	host, err := NewSQLiteHost(db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return host, nil
}

// NewSQLiteHost prepares the schema on an already opened database.
func NewSQLiteHost(db *sql.DB, logger *logrus.Logger) (*SQLiteHost, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	host := &SQLiteHost{db: db, logger: logger}
	if err := host.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize host schema: %w", err)
	}
	return host, nil
}

// initSchema creates the host tables if they don't exist
func (h *SQLiteHost) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS options (
		option_name TEXT PRIMARY KEY,
		option_value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sitemeta (
		meta_key TEXT PRIMARY KEY,
		meta_value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS usermeta (
		user_id INTEGER NOT NULL,
		meta_key TEXT NOT NULL,
		meta_value TEXT NOT NULL,
		PRIMARY KEY (user_id, meta_key)
	);

	CREATE TABLE IF NOT EXISTS network_plugins (
		plugin TEXT PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS super_admins (
		user_id INTEGER PRIMARY KEY
	);
	`
	_, err := h.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (h *SQLiteHost) Close() error {
	return h.db.Close()
}

func (h *SQLiteHost) GetOption(ctx context.Context, name string) (any, bool, error) {
	return h.getValue(ctx, `SELECT option_value FROM options WHERE option_name = ?`, name)
}

// AddOption stores value only when name is not set yet.
func (h *SQLiteHost) AddOption(ctx context.Context, name string, value any) error {
	encoded, err := encodeValue(value)
	if err != nil {
		return err
	}
	_, err = h.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO options (option_name, option_value) VALUES (?, ?)`,
		name, encoded)
	if err != nil {
		return fmt.Errorf("failed to add option %q: %w", name, err)
	}
	return nil
}

func (h *SQLiteHost) UpdateOption(ctx context.Context, name string, value any) error {
	encoded, err := encodeValue(value)
	if err != nil {
		return err
	}
	_, err = h.db.ExecContext(ctx, `
		INSERT INTO options (option_name, option_value) VALUES (?, ?)
		ON CONFLICT(option_name) DO UPDATE SET option_value = excluded.option_value
	`, name, encoded)
	if err != nil {
		return fmt.Errorf("failed to update option %q: %w", name, err)
	}
	return nil
}

func (h *SQLiteHost) GetSiteOption(ctx context.Context, name string) (any, bool, error) {
	return h.getValue(ctx, `SELECT meta_value FROM sitemeta WHERE meta_key = ?`, name)
}

func (h *SQLiteHost) UpdateSiteOption(ctx context.Context, name string, value any) error {
	encoded, err := encodeValue(value)
	if err != nil {
		return err
	}
	_, err = h.db.ExecContext(ctx, `
		INSERT INTO sitemeta (meta_key, meta_value) VALUES (?, ?)
		ON CONFLICT(meta_key) DO UPDATE SET meta_value = excluded.meta_value
	`, name, encoded)
	if err != nil {
		return fmt.Errorf("failed to update site option %q: %w", name, err)
	}
	return nil
}

// IsPluginActiveForNetwork reads as false when the lookup fails.
func (h *SQLiteHost) IsPluginActiveForNetwork(ctx context.Context, plugin string) bool {
	return h.exists(ctx, `SELECT 1 FROM network_plugins WHERE plugin = ?`, plugin)
}

func (h *SQLiteHost) IsNetworkAdmin(context.Context) bool {
	return h.NetworkAdmin
}

// IsSuperAdmin reads as false when the lookup fails.
func (h *SQLiteHost) IsSuperAdmin(ctx context.Context, userID int64) bool {
	return h.exists(ctx, `SELECT 1 FROM super_admins WHERE user_id = ?`, userID)
}

// GetUserMeta returns nil for a missing key.
func (h *SQLiteHost) GetUserMeta(ctx context.Context, userID int64, key string) (any, error) {
	value, _, err := h.getValue(ctx,
		`SELECT meta_value FROM usermeta WHERE user_id = ? AND meta_key = ?`, userID, key)
	return value, err
}

// SetUserMeta stores a user meta value.
func (h *SQLiteHost) SetUserMeta(ctx context.Context, userID int64, key string, value any) error {
	encoded, err := encodeValue(value)
	if err != nil {
		return err
	}
	_, err = h.db.ExecContext(ctx, `
		INSERT INTO usermeta (user_id, meta_key, meta_value) VALUES (?, ?, ?)
		ON CONFLICT(user_id, meta_key) DO UPDATE SET meta_value = excluded.meta_value
	`, userID, key, encoded)
	if err != nil {
		return fmt.Errorf("failed to set user meta %q: %w", key, err)
	}
	return nil
}

// ActivatePluginForNetwork marks plugin as network activated.
func (h *SQLiteHost) ActivatePluginForNetwork(ctx context.Context, plugin string) error {
	_, err := h.db.ExecContext(ctx, `INSERT OR IGNORE INTO network_plugins (plugin) VALUES (?)`, plugin)
	if err != nil {
		return fmt.Errorf("failed to activate plugin %q: %w", plugin, err)
	}
	return nil
}

// GrantSuperAdmin marks userID as a super administrator.
func (h *SQLiteHost) GrantSuperAdmin(ctx context.Context, userID int64) error {
	_, err := h.db.ExecContext(ctx, `INSERT OR IGNORE INTO super_admins (user_id) VALUES (?)`, userID)
	if err != nil {
		return fmt.Errorf("failed to grant super admin %d: %w", userID, err)
	}
	return nil
}

func (h *SQLiteHost) getValue(ctx context.Context, query string, args ...any) (any, bool, error) {
	var raw string
	err := h.db.QueryRowContext(ctx, query, args...).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, false, fmt.Errorf("failed to decode stored value: %w", err)
	}
	return value, true, nil
}

func (h *SQLiteHost) exists(ctx context.Context, query string, args ...any) bool {
	var one int
	err := h.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false
	}
	if err != nil {
		h.logger.WithError(err).WithField("query", query).Warn("Host lookup failed")
		return false
	}
	return true
}

func encodeValue(value any) (string, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("failed to encode value: %w", err)
	}
	return string(encoded), nil
}
