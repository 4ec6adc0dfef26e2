package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"stylegen/internal/config"
	"stylegen/internal/model"
	"stylegen/internal/selection"
	"stylegen/internal/sqlitedb"
)

// ErrBatchNotFound is returned when an update names a batch that is not stored.
var ErrBatchNotFound = errors.New("batch not found")

// Store manages batch persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open initializes or connects to the batch database under the state dir.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.StoreDBPath())
}

// OpenPath opens the database at path.
func OpenPath(path string) (*Store, error) {
	db, err := sqlitedb.Open(path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, path: path, now: time.Now}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

// SaveBatch replaces any stored batch with b.
func (s *Store) SaveBatch(ctx context.Context, b Batch) error {
	if b.ID == "" {
		return errors.New("batch id is required")
	}
	rows := make([]itemRow, 0, len(b.Items))
	for _, item := range b.Items {
		row, err := toRow(item)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	ts := s.timestamp()
	return sqlitedb.RetryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin save tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, "DELETE FROM batch_items"); err != nil {
			return fmt.Errorf("clear previous items: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM batches"); err != nil {
			return fmt.Errorf("clear previous batch: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO batches (id, created_at, updated_at, total, complete, finalized)
             VALUES (?, ?, ?, ?, ?, ?)`,
			b.ID, ts, ts, b.Total, boolToInt(b.Complete), boolToInt(b.Finalized),
		); err != nil {
			return fmt.Errorf("insert batch: %w", err)
		}
		for _, row := range rows {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO batch_items (
                    batch_id, position, image_name, image_path, status,
                    error_kind, error_stage, error_message, result_json,
                    selection_state, user_choice
                ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				b.ID, row.position, row.imageName, nullableString(row.imagePath), row.status,
				nullableString(row.errorKind), nullableString(row.errorStage), nullableString(row.errorMessage),
				nullableString(row.resultJSON), nullableString(row.selectionState), row.userChoice,
			); err != nil {
				return fmt.Errorf("insert item %s: %w", row.imageName, err)
			}
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit batch: %w", err)
		}
		return nil
	})
}

// LatestBatch returns the stored batch, or nil when nothing was saved yet.
func (s *Store) LatestBatch(ctx context.Context) (*Batch, error) {
	var (
		b                   Batch
		created, updated    string
		complete, finalized int
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, updated_at, total, complete, finalized
         FROM batches ORDER BY created_at DESC LIMIT 1`,
	).Scan(&b.ID, &created, &updated, &b.Total, &complete, &finalized)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query batch: %w", err)
	}
	b.CreatedAt = parseTime(created)
	b.UpdatedAt = parseTime(updated)
	b.Complete = complete != 0
	b.Finalized = finalized != 0

	rows, err := s.db.QueryContext(ctx,
		`SELECT position, image_name, image_path, status, error_kind, error_stage,
                error_message, result_json, selection_state, user_choice
         FROM batch_items WHERE batch_id = ? ORDER BY position`, b.ID)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		b.Items = append(b.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return &b, nil
}

// UpdateSelection stores the selection state, chosen index, and updated result
// for one image.
func (s *Store) UpdateSelection(ctx context.Context, batchID, image string, state selection.State, choice int, result *model.ProcessResult) error {
	resultJSON, err := encodeResult(result)
	if err != nil {
		return err
	}
	var affected int64
	err = sqlitedb.RetryOnBusy(ctx, func() error {
		res, execErr := s.db.ExecContext(ctx,
			`UPDATE batch_items SET selection_state = ?, user_choice = ?, result_json = COALESCE(?, result_json)
             WHERE batch_id = ? AND image_name = ?`,
			string(state), choice, nullableString(resultJSON), batchID, image,
		)
		if execErr != nil {
			return execErr
		}
		affected, execErr = res.RowsAffected()
		return execErr
	})
	if err != nil {
		return fmt.Errorf("update selection for %s: %w", image, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s/%s", ErrBatchNotFound, batchID, image)
	}
	return s.touch(ctx, batchID)
}

// MarkFinalized flags the batch and every successful item as finalized.
func (s *Store) MarkFinalized(ctx context.Context, batchID string) error {
	var affected int64
	err := sqlitedb.RetryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		res, err := tx.ExecContext(ctx,
			"UPDATE batches SET finalized = 1, updated_at = ? WHERE id = ?", s.timestamp(), batchID)
		if err != nil {
			return err
		}
		if affected, err = res.RowsAffected(); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE batch_items SET selection_state = ? WHERE batch_id = ? AND status = ?",
			string(selection.Finalized), batchID, string(StatusSucceeded),
		); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return fmt.Errorf("finalize batch %s: %w", batchID, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrBatchNotFound, batchID)
	}
	return nil
}

func (s *Store) touch(ctx context.Context, batchID string) error {
	if err := sqlitedb.Exec(ctx, s.db, "UPDATE batches SET updated_at = ? WHERE id = ?", s.timestamp(), batchID); err != nil {
		return fmt.Errorf("touch batch: %w", err)
	}
	return nil
}

type itemRow struct {
	position       int
	imageName      string
	imagePath      string
	status         string
	errorKind      string
	errorStage     string
	errorMessage   string
	resultJSON     string
	selectionState string
	userChoice     int
}

func toRow(item Item) (itemRow, error) {
	row := itemRow{
		position:       item.Position,
		imageName:      item.ImageName,
		imagePath:      item.ImagePath,
		status:         string(item.Status),
		selectionState: string(item.SelectionState),
		userChoice:     item.UserChoice,
	}
	if item.Err != nil {
		row.errorKind = string(item.Err.Kind)
		row.errorStage = item.Err.Stage
		row.errorMessage = item.Err.Message
		if row.errorMessage == "" && item.Err.Cause != nil {
			row.errorMessage = item.Err.Cause.Error()
		}
	}
	encoded, err := encodeResult(item.Result)
	if err != nil {
		return itemRow{}, err
	}
	row.resultJSON = encoded
	return row, nil
}

func scanItem(rows *sql.Rows) (Item, error) {
	var (
		item                                 Item
		imagePath, errKind, errStage, errMsg sql.NullString
		resultJSON, state                    sql.NullString
		status                               string
	)
	if err := rows.Scan(&item.Position, &item.ImageName, &imagePath, &status, &errKind, &errStage,
		&errMsg, &resultJSON, &state, &item.UserChoice); err != nil {
		return Item{}, fmt.Errorf("scan item: %w", err)
	}
	item.ImagePath = imagePath.String
	item.Status = ItemStatus(status)
	item.SelectionState = selection.State(state.String)
	if resultJSON.Valid && resultJSON.String != "" {
		var result model.ProcessResult
		if err := json.Unmarshal([]byte(resultJSON.String), &result); err != nil {
			return Item{}, fmt.Errorf("decode result for %s: %w", item.ImageName, err)
		}
		item.Result = &result
	}
	if item.Status == StatusFailed {
		item.Err = &model.StageError{
			Image:   item.ImageName,
			Stage:   errStage.String,
			Kind:    model.FailureKind(errKind.String),
			Message: errMsg.String,
		}
	}
	return item, nil
}

func encodeResult(result *model.ProcessResult) (string, error) {
	if result == nil {
		return "", nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	return string(data), nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
