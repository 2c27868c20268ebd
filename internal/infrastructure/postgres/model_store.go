package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bibbank/credit-risk-service/internal/infrastructure/oracle"
	pgutil "github.com/bibbank/credit-risk-service/pkg/postgres"
)

const uniqueViolation = "23505"

var (
	// ErrNoActiveModel is returned when no scoring model has been activated.
	ErrNoActiveModel = errors.New("no active scoring model")
	// ErrModelNotFound is returned when a version does not exist.
	ErrModelNotFound = errors.New("scoring model not found")
	// ErrVersionExists is returned when saving a version that is already registered.
	ErrVersionExists = errors.New("scoring model version already exists")
)

// DB is the subset of *pgxpool.Pool the store needs.
type DB interface {
	pgutil.Querier
	pgutil.TxBeginner
}

// ModelRecord describes a registered model without its artifact.
type ModelRecord struct {
	CreatedAt time.Time
	Version   string
	ID        uuid.UUID
	Active    bool
}

// ModelStore is the scoring model registry backed by PostgreSQL. It implements
// oracle.ModelSource.
type ModelStore struct {
	db DB
}

// NewModelStore creates a new PostgreSQL-backed model registry.
func NewModelStore(db DB) *ModelStore {
	return &ModelStore{db: db}
}

// LoadActive returns the active model artifact.
func (s *ModelStore) LoadActive(ctx context.Context) (*oracle.LogisticModel, error) {
	query := `
		SELECT version, artifact
		FROM scoring_models
		WHERE active
		ORDER BY created_at DESC
		LIMIT 1
	`

	var (
		version  string
		artifact []byte
	)
	err := s.db.QueryRow(ctx, query).Scan(&version, &artifact)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoActiveModel
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load active model: %w", err)
	}

	var m oracle.LogisticModel
	if err := json.Unmarshal(artifact, &m); err != nil {
		return nil, fmt.Errorf("failed to decode model %s: %w", version, err)
	}
	m.Version = version

	return &m, nil
}

// Save registers a new model version. When activate is set the new version
// replaces the active one in the same transaction.
func (s *ModelStore) Save(ctx context.Context, m *oracle.LogisticModel, activate bool) (uuid.UUID, error) {
	if err := m.Validate(); err != nil {
		return uuid.Nil, fmt.Errorf("invalid model artifact: %w", err)
	}

	artifact, err := json.Marshal(m)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to encode model: %w", err)
	}

	id := uuid.New()
	err = pgutil.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		if activate {
			if _, err := tx.Exec(ctx, `UPDATE scoring_models SET active = FALSE WHERE active`); err != nil {
				return fmt.Errorf("failed to deactivate current model: %w", err)
			}
		}

		_, err := tx.Exec(ctx,
			`INSERT INTO scoring_models (id, version, artifact, active, created_at) VALUES ($1, $2, $3, $4, $5)`,
			id, m.Version, artifact, activate, time.Now().UTC(),
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return ErrVersionExists
			}
			return fmt.Errorf("failed to save model: %w", err)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	return id, nil
}

// Activate makes version the active model.
func (s *ModelStore) Activate(ctx context.Context, version string) error {
	return pgutil.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE scoring_models SET active = FALSE WHERE active`); err != nil {
			return fmt.Errorf("failed to deactivate current model: %w", err)
		}

		tag, err := tx.Exec(ctx, `UPDATE scoring_models SET active = TRUE WHERE version = $1`, version)
		if err != nil {
			return fmt.Errorf("failed to activate model: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrModelNotFound
		}
		return nil
	})
}

// List returns every registered model, newest first.
func (s *ModelStore) List(ctx context.Context) ([]ModelRecord, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, version, active, created_at
		FROM scoring_models
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	defer rows.Close()

	var records []ModelRecord
	for rows.Next() {
		var r ModelRecord
		if err := rows.Scan(&r.ID, &r.Version, &r.Active, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan model row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate model rows: %w", err)
	}

	return records, nil
}
