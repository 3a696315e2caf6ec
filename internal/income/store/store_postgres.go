package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"inntektlager/internal/income/models"
	"inntektlager/pkg/domain"
	"inntektlager/pkg/platform/sentinel"
)

// PostgresStore persists income records in PostgreSQL. The payload is stored
// as a JSONB document and decoded through models.Payload on the way out, with
// required fields validated explicitly.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed income store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const recordColumns = `r.id, r.payload, r.used, r.manually_edited, r.edited_by, r.justification, r.created_at`

func (s *PostgresStore) LookupLatest(ctx context.Context, key models.LookupKey) (*models.IncomeRecord, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM income_record r
		JOIN income_lookup l ON l.record_id = r.id
		WHERE l.actor_id = $1
		  AND l.context_id = $2
		  AND l.context_type = $3
		  AND l.calculation_date = $4
		  AND ($5::text IS NULL OR l.national_id IS NULL OR l.national_id = $5)
		ORDER BY l.created_at DESC
		LIMIT 1
	`
	row := s.db.QueryRowContext(ctx, query,
		key.ActorID.String(),
		key.ContextID,
		key.ContextType,
		key.CalculationDate,
		nullString(key.NationalID.String()),
	)
	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("lookup income record: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id domain.RecordID) (*models.IncomeRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM income_record r WHERE r.id = $1`
	record, err := scanRecord(s.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get income record: %w", err)
	}
	return record, nil
}

// Insert writes the record and its lookup mapping in one transaction. There
// is no unique constraint on the key: concurrent writers for the same key
// both succeed and the newest mapping becomes canonical.
func (s *PostgresStore) Insert(ctx context.Context, key models.LookupKey, record *models.IncomeRecord) error {
	if record == nil {
		return fmt.Errorf("income record is required")
	}
	payload, err := json.Marshal(record.Payload)
	if err != nil {
		return fmt.Errorf("marshal income payload: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO income_record (id, payload, used, manually_edited, edited_by, justification, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		record.ID.String(),
		payload,
		record.Used,
		record.ManuallyEdited,
		nullString(record.EditedBy),
		nullString(record.Justification),
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert income record: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO income_lookup (id, record_id, actor_id, national_id, context_id, context_type, calculation_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		uuid.New(),
		record.ID.String(),
		key.ActorID.String(),
		nullString(key.NationalID.String()),
		key.ContextID,
		key.ContextType,
		key.CalculationDate,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert income lookup: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert: %w", err)
	}
	return nil
}

func (s *PostgresStore) MarkUsed(ctx context.Context, id domain.RecordID) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE income_record SET used = TRUE WHERE id = $1 AND used = FALSE`,
		id.String(),
	)
	if err != nil {
		return false, fmt.Errorf("mark income record used: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark income record used: %w", err)
	}
	if affected > 0 {
		return true, nil
	}

	// Either already used (a no-op) or absent.
	var exists bool
	err = s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM income_record WHERE id = $1)`,
		id.String(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("mark income record used: %w", err)
	}
	if !exists {
		return false, sentinel.ErrNotFound
	}
	return false, nil
}

func (s *PostgresStore) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM income_record
		WHERE used = FALSE
		  AND manually_edited = FALSE
		  AND created_at < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired income records: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired income records: %w", err)
	}
	return deleted, nil
}

func scanRecord(row *sql.Row) (*models.IncomeRecord, error) {
	var (
		record        models.IncomeRecord
		id            string
		payload       []byte
		editedBy      sql.NullString
		justification sql.NullString
	)
	err := row.Scan(&id, &payload, &record.Used, &record.ManuallyEdited, &editedBy, &justification, &record.CreatedAt)
	if err != nil {
		return nil, err
	}
	record.ID = domain.RecordID(id)
	record.EditedBy = editedBy.String
	record.Justification = justification.String

	if err := json.Unmarshal(payload, &record.Payload); err != nil {
		return nil, fmt.Errorf("decode income payload: %w", err)
	}
	if err := record.Payload.Validate(); err != nil {
		return nil, fmt.Errorf("stored income payload invalid: %w", err)
	}
	return &record, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
