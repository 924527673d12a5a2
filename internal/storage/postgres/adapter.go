package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"hook-engine/internal/common/errors"
	"hook-engine/internal/common/utils"
	"hook-engine/internal/hooks"
	"hook-engine/internal/storage"
)

type Adapter struct {
	db     *sql.DB
	config *Config
}

func NewAdapter(config *Config) (*Adapter, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid PostgreSQL config: %w", err)
	}

	db, err := sql.Open("pgx", config.GetConnectionString())
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
		`CREATE TABLE IF NOT EXISTS hooks (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			event TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			priority INTEGER NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			conditions JSONB,
			actions JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			deleted_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS hook_executions (
			id TEXT PRIMARY KEY,
			hook_id TEXT NOT NULL REFERENCES hooks (id),
			success BOOLEAN NOT NULL,
			duration_ms BIGINT NOT NULL,
			error_message TEXT,
			event_context JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_hooks_event_active ON hooks (event, is_active)`,
		`CREATE INDEX IF NOT EXISTS idx_hooks_deleted_at ON hooks (deleted_at)`,
		`CREATE INDEX IF NOT EXISTS idx_executions_hook_id ON hook_executions (hook_id)`,
		`CREATE INDEX IF NOT EXISTS idx_executions_created_at ON hook_executions (created_at)`,
	}

	for _, query := range queries {
		if _, err := a.db.Exec(query); err != nil {
			return fmt.Errorf("migration query failed: %w", err)
		}
	}

	return nil
}

func (a *Adapter) CreateHook(ctx context.Context, hook *hooks.Hook) error {
	if hook.ID == "" {
		id, err := utils.GenerateUUID()
		if err != nil {
			return errors.InternalError("failed to generate hook id", err)
		}
		hook.ID = id
	}

	now := time.Now().UTC()
	hook.CreatedAt = now
	hook.UpdatedAt = now

	conditionsJSON, actionsJSON, err := marshalHookColumns(hook)
	if err != nil {
		return err
	}

	_, err = a.db.ExecContext(ctx, `
		INSERT INTO hooks (id, name, event, description, priority, is_active, conditions, actions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		hook.ID, hook.Name, hook.Event, hook.Description, hook.Priority, hook.IsActive,
		conditionsJSON, actionsJSON, hook.CreatedAt, hook.UpdatedAt)
	if err != nil {
		return errors.InternalError("failed to create hook", err)
	}

	return nil
}

func (a *Adapter) GetHook(ctx context.Context, id string) (*hooks.Hook, error) {
	row := a.db.QueryRowContext(ctx, `
		SELECT id, name, event, description, priority, is_active, conditions, actions, created_at, updated_at, deleted_at
		FROM hooks
		WHERE id = $1 AND deleted_at IS NULL`, id)

	hook, err := scanHook(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundError("hook")
	}
	if err != nil {
		return nil, errors.InternalError("failed to get hook", err)
	}

	return hook, nil
}

func (a *Adapter) ListHooks(ctx context.Context, filters storage.HookFilters, limit, offset int) ([]*hooks.Hook, int, error) {
	where := "deleted_at IS NULL"
	args := []interface{}{}

	if filters.Event != "" {
		args = append(args, filters.Event)
		where += fmt.Sprintf(" AND event = $%d", len(args))
	}
	if filters.Active != nil {
		args = append(args, *filters.Active)
		where += fmt.Sprintf(" AND is_active = $%d", len(args))
	}

	var total int
	if err := a.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM hooks WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.InternalError("failed to count hooks", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT id, name, event, description, priority, is_active, conditions, actions, created_at, updated_at, deleted_at
		FROM hooks
		WHERE %s
		ORDER BY priority DESC, created_at DESC, id ASC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.InternalError("failed to list hooks", err)
	}
	defer rows.Close()

	result, err := collectHooks(rows)
	if err != nil {
		return nil, 0, err
	}

	return result, total, nil
}

func (a *Adapter) UpdateHook(ctx context.Context, hook *hooks.Hook) error {
	hook.UpdatedAt = time.Now().UTC()

	conditionsJSON, actionsJSON, err := marshalHookColumns(hook)
	if err != nil {
		return err
	}

	res, err := a.db.ExecContext(ctx, `
		UPDATE hooks
		SET name = $1, event = $2, description = $3, priority = $4, is_active = $5, conditions = $6, actions = $7, updated_at = $8
		WHERE id = $9 AND deleted_at IS NULL`,
		hook.Name, hook.Event, hook.Description, hook.Priority, hook.IsActive,
		conditionsJSON, actionsJSON, hook.UpdatedAt, hook.ID)
	if err != nil {
		return errors.InternalError("failed to update hook", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.InternalError("failed to update hook", err)
	}
	if affected == 0 {
		return errors.NotFoundError("hook")
	}

	return nil
}

func (a *Adapter) SoftDeleteHook(ctx context.Context, id string) error {
	now := time.Now().UTC()

	res, err := a.db.ExecContext(ctx, `
		UPDATE hooks SET deleted_at = $1, updated_at = $2
		WHERE id = $3 AND deleted_at IS NULL`, now, now, id)
	if err != nil {
		return errors.InternalError("failed to delete hook", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.InternalError("failed to delete hook", err)
	}
	if affected == 0 {
		return errors.NotFoundError("hook")
	}

	return nil
}

func (a *Adapter) ActiveHooksForEvent(ctx context.Context, event string) ([]*hooks.Hook, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, name, event, description, priority, is_active, conditions, actions, created_at, updated_at, deleted_at
		FROM hooks
		WHERE event = $1 AND is_active = TRUE AND deleted_at IS NULL
		ORDER BY priority DESC, created_at ASC, id ASC`, event)
	if err != nil {
		return nil, errors.InternalError("failed to query hooks for event", err)
	}
	defer rows.Close()

	return collectHooks(rows)
}

func (a *Adapter) CreateExecution(ctx context.Context, execution *hooks.HookExecution) error {
	if execution.ID == "" {
		id, err := utils.GenerateUUID()
		if err != nil {
			return errors.InternalError("failed to generate execution id", err)
		}
		execution.ID = id
	}
	if execution.CreatedAt.IsZero() {
		execution.CreatedAt = time.Now().UTC()
	}

	contextJSON, err := json.Marshal(execution.EventContext)
	if err != nil {
		return errors.InternalError("failed to marshal event context", err)
	}

	_, err = a.db.ExecContext(ctx, `
		INSERT INTO hook_executions (id, hook_id, success, duration_ms, error_message, event_context, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		execution.ID, execution.HookID, execution.Success, execution.DurationMs,
		execution.ErrorMessage, string(contextJSON), execution.CreatedAt)
	if err != nil {
		return errors.InternalError("failed to record execution", err)
	}

	return nil
}

func (a *Adapter) GetExecution(ctx context.Context, id string) (*hooks.HookExecution, error) {
	row := a.db.QueryRowContext(ctx, `
		SELECT id, hook_id, success, duration_ms, error_message, event_context, created_at
		FROM hook_executions
		WHERE id = $1`, id)

	execution, err := scanExecution(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundError("execution")
	}
	if err != nil {
		return nil, errors.InternalError("failed to get execution", err)
	}

	return execution, nil
}

func (a *Adapter) ListExecutions(ctx context.Context, filters storage.ExecutionFilters, limit, offset int) ([]*hooks.HookExecution, int, error) {
	where := "TRUE"
	args := []interface{}{}

	if filters.HookID != "" {
		args = append(args, filters.HookID)
		where += fmt.Sprintf(" AND hook_id = $%d", len(args))
	}
	if filters.Success != nil {
		args = append(args, *filters.Success)
		where += fmt.Sprintf(" AND success = $%d", len(args))
	}

	var total int
	if err := a.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM hook_executions WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.InternalError("failed to count executions", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT id, hook_id, success, duration_ms, error_message, event_context, created_at
		FROM hook_executions
		WHERE %s
		ORDER BY created_at DESC, id ASC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.InternalError("failed to list executions", err)
	}
	defer rows.Close()

	result := []*hooks.HookExecution{}
	for rows.Next() {
		execution, err := scanExecution(rows)
		if err != nil {
			return nil, 0, errors.InternalError("failed to scan execution", err)
		}
		result = append(result, execution)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.InternalError("failed to list executions", err)
	}

	return result, total, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func marshalHookColumns(hook *hooks.Hook) (interface{}, string, error) {
	var conditionsJSON interface{}
	if hook.Conditions != nil {
		data, err := json.Marshal(hook.Conditions)
		if err != nil {
			return nil, "", errors.InternalError("failed to marshal conditions", err)
		}
		conditionsJSON = string(data)
	}

	actionsJSON, err := json.Marshal(hook.Actions)
	if err != nil {
		return nil, "", errors.InternalError("failed to marshal actions", err)
	}

	return conditionsJSON, string(actionsJSON), nil
}

func scanHook(row rowScanner) (*hooks.Hook, error) {
	var hook hooks.Hook
	var conditionsJSON sql.NullString
	var actionsJSON string
	var deletedAt sql.NullTime

	err := row.Scan(&hook.ID, &hook.Name, &hook.Event, &hook.Description, &hook.Priority,
		&hook.IsActive, &conditionsJSON, &actionsJSON, &hook.CreatedAt, &hook.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	if conditionsJSON.Valid && conditionsJSON.String != "" {
		if err := json.Unmarshal([]byte(conditionsJSON.String), &hook.Conditions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal conditions: %w", err)
		}
	}
	if err := json.Unmarshal([]byte(actionsJSON), &hook.Actions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal actions: %w", err)
	}
	if deletedAt.Valid {
		hook.DeletedAt = &deletedAt.Time
	}

	return &hook, nil
}

func collectHooks(rows *sql.Rows) ([]*hooks.Hook, error) {
	result := []*hooks.Hook{}
	for rows.Next() {
		hook, err := scanHook(rows)
		if err != nil {
			return nil, errors.InternalError("failed to scan hook", err)
		}
		result = append(result, hook)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.InternalError("failed to read hooks", err)
	}
	return result, nil
}

func scanExecution(row rowScanner) (*hooks.HookExecution, error) {
	var execution hooks.HookExecution
	var contextJSON string

	err := row.Scan(&execution.ID, &execution.HookID, &execution.Success, &execution.DurationMs,
		&execution.ErrorMessage, &contextJSON, &execution.CreatedAt)
	if err != nil {
		return nil, err
	}

	if contextJSON != "" {
		if err := json.Unmarshal([]byte(contextJSON), &execution.EventContext); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event context: %w", err)
		}
	}

	return &execution, nil
}
