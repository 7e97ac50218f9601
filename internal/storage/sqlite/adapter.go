// Package sqlite implements the storage contract on top of a local
// SQLite database. It is the default backend.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"relay-router/internal/models"
	"relay-router/internal/storage"
)

type Adapter struct {
	db     *sql.DB
	config *Config
}

type factory struct{}

func (f *factory) Create(config storage.StorageConfig) (storage.Storage, error) {
	generic, ok := config.(storage.GenericConfig)
	if ok {
		return NewAdapter(&Config{DatabasePath: generic.GetString("path")})
	}
	sqliteConfig, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("invalid config type for SQLite storage")
	}
	return NewAdapter(sqliteConfig)
}

func init() {
	storage.Register("sqlite", &factory{})
}

func NewAdapter(config *Config) (*Adapter, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid SQLite config: %w", err)
	}

	db, err := sql.Open("sqlite3", config.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	adapter := &Adapter{
		db:     db,
		config: config,
	}

	if err := adapter.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return adapter, nil
}

func (a *Adapter) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func (a *Adapter) Health() error {
	return a.db.Ping()
}

func (a *Adapter) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS handover_rules (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			keyword TEXT NOT NULL DEFAULT '',
			delegate_id TEXT NOT NULL DEFAULT '',
			flow_json TEXT NOT NULL DEFAULT '',
			expiry_time DATETIME,
			activation_time DATETIME NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_handover_rules_user_active
			ON handover_rules(user_id, is_active)`,
		`CREATE TABLE IF NOT EXISTS relay_logs (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL DEFAULT '',
			sender_id TEXT NOT NULL DEFAULT '',
			delegate_id TEXT NOT NULL DEFAULT '',
			message_text TEXT NOT NULL DEFAULT '',
			domain TEXT NOT NULL DEFAULT '',
			urgency_score INTEGER NOT NULL DEFAULT 0,
			action_taken TEXT NOT NULL DEFAULT '',
			flow_type TEXT NOT NULL DEFAULT '',
			logged_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_relay_logs_user_time
			ON relay_logs(user_id, logged_at)`,
		`CREATE INDEX IF NOT EXISTS idx_relay_logs_time
			ON relay_logs(logged_at)`,
	}

	for _, query := range queries {
		if _, err := a.db.Exec(query); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

func (a *Adapter) CreateRule(ctx context.Context, rule *models.Rule) error {
	if err := rule.Validate(); err != nil {
		return err
	}

	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if rule.ActivationTime.IsZero() {
		rule.ActivationTime = now
	}
	rule.CreatedAt = now
	rule.UpdatedAt = now

	flowJSON, err := models.MarshalFlowGraph(rule.FlowGraph)
	if err != nil {
		return fmt.Errorf("failed to encode flow graph: %w", err)
	}

	var expiry interface{}
	if rule.ExpiryTime != nil {
		expiry = rule.ExpiryTime.UTC()
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// One active rule per user: activating a new rule supersedes any
	// rule still active for that user.
	if rule.IsActive {
		if _, err := tx.ExecContext(ctx,
			`UPDATE handover_rules SET is_active = 0, updated_at = ? WHERE user_id = ? AND is_active = 1`,
			now, rule.UserID); err != nil {
			return fmt.Errorf("failed to supersede active rule: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO handover_rules
			(id, user_id, keyword, delegate_id, flow_json, expiry_time, activation_time, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.ID, rule.UserID, rule.Keyword, rule.DelegateID, string(flowJSON),
		expiry, rule.ActivationTime.UTC(), rule.IsActive, rule.CreatedAt, rule.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert rule: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rule: %w", err)
	}
	return nil
}

const ruleColumns = `id, user_id, keyword, delegate_id, flow_json, expiry_time, activation_time, is_active, created_at, updated_at`

func scanRule(row interface{ Scan(...interface{}) error }) (*models.Rule, error) {
	var rule models.Rule
	var flowJSON string
	var expiry sql.NullTime

	err := row.Scan(&rule.ID, &rule.UserID, &rule.Keyword, &rule.DelegateID,
		&flowJSON, &expiry, &rule.ActivationTime, &rule.IsActive,
		&rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if expiry.Valid {
		t := expiry.Time
		rule.ExpiryTime = &t
	}

	graph, err := models.ParseFlowGraph([]byte(flowJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to decode flow graph for rule %s: %w", rule.ID, err)
	}
	rule.FlowGraph = graph

	return &rule, nil
}

func (a *Adapter) GetRule(ctx context.Context, id string) (*models.Rule, error) {
	row := a.db.QueryRowContext(ctx,
		`SELECT `+ruleColumns+` FROM handover_rules WHERE id = ?`, id)

	rule, err := scanRule(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}
	return rule, nil
}

func (a *Adapter) FindActiveRule(ctx context.Context, userID string) (*models.Rule, error) {
	// Filter on user_id and is_active only; expiry is the engine's
	// responsibility.
	row := a.db.QueryRowContext(ctx,
		`SELECT `+ruleColumns+` FROM handover_rules
		WHERE user_id = ? AND is_active = 1
		ORDER BY activation_time DESC LIMIT 1`, userID)

	rule, err := scanRule(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find active rule: %w", err)
	}
	return rule, nil
}

func (a *Adapter) ListRules(ctx context.Context, limit, offset int) ([]*models.Rule, int, error) {
	var total int
	if err := a.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM handover_rules`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count rules: %w", err)
	}

	rows, err := a.db.QueryContext(ctx,
		`SELECT `+ruleColumns+` FROM handover_rules
		ORDER BY created_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list rules: %w", err)
	}
	defer rows.Close()

	var rules []*models.Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, 0, err
		}
		rules = append(rules, rule)
	}

	return rules, total, rows.Err()
}

func (a *Adapter) DeactivateRule(ctx context.Context, id string) error {
	// Idempotent: deactivating an already inactive rule changes nothing.
	_, err := a.db.ExecContext(ctx,
		`UPDATE handover_rules SET is_active = 0, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate rule: %w", err)
	}
	return nil
}

func (a *Adapter) DeleteRule(ctx context.Context, id string) error {
	_, err := a.db.ExecContext(ctx,
		`DELETE FROM handover_rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	return nil
}

func (a *Adapter) AppendLogEvent(ctx context.Context, event *models.LogEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.LoggedAt.IsZero() {
		event.LoggedAt = time.Now().UTC()
	}

	_, err := a.db.ExecContext(ctx,
		`INSERT INTO relay_logs
			(id, user_id, sender_id, delegate_id, message_text, domain, urgency_score, action_taken, flow_type, logged_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.UserID, event.SenderID, event.DelegateID, event.MessageText,
		event.Domain, event.UrgencyScore, event.ActionTaken, string(event.FlowType),
		event.LoggedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to append log event: %w", err)
	}
	return nil
}

const logColumns = `id, user_id, sender_id, delegate_id, message_text, domain, urgency_score, action_taken, flow_type, logged_at`

func scanLogEvent(row interface{ Scan(...interface{}) error }) (*models.LogEvent, error) {
	var event models.LogEvent
	var flowType string
	err := row.Scan(&event.ID, &event.UserID, &event.SenderID, &event.DelegateID,
		&event.MessageText, &event.Domain, &event.UrgencyScore,
		&event.ActionTaken, &flowType, &event.LoggedAt)
	if err != nil {
		return nil, err
	}
	event.FlowType = models.FlowType(flowType)
	return &event, nil
}

func (a *Adapter) ListLogEvents(ctx context.Context, limit, offset int) ([]*models.LogEvent, int, error) {
	var total int
	if err := a.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM relay_logs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count log events: %w", err)
	}

	rows, err := a.db.QueryContext(ctx,
		`SELECT `+logColumns+` FROM relay_logs
		ORDER BY logged_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list log events: %w", err)
	}
	defer rows.Close()

	var events []*models.LogEvent
	for rows.Next() {
		event, err := scanLogEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, event)
	}

	return events, total, rows.Err()
}

func (a *Adapter) ListLogEventsSince(ctx context.Context, userID string, since time.Time) ([]*models.LogEvent, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT `+logColumns+` FROM relay_logs
		WHERE user_id = ? AND logged_at >= ?
		ORDER BY logged_at ASC`, userID, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list log events since: %w", err)
	}
	defer rows.Close()

	var events []*models.LogEvent
	for rows.Next() {
		event, err := scanLogEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

func (a *Adapter) DeleteLogEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := a.db.ExecContext(ctx,
		`DELETE FROM relay_logs WHERE logged_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune log events: %w", err)
	}
	return result.RowsAffected()
}
