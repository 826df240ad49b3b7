package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/prasdika/fieldbooking/internal/core/domain"
)

type FieldRepository struct {
	db *sql.DB
}

func NewFieldRepository(db *sql.DB) *FieldRepository {
	return &FieldRepository{db: db}
}

func (r *FieldRepository) GetByID(ctx context.Context, fieldID uuid.UUID) (*domain.Field, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
	SELECT id, branch_id, name, day_rate, night_rate, status
	FROM fields
	WHERE id = $1
	`

	var f domain.Field
	err := r.db.QueryRowContext(ctx, query, fieldID).Scan(
		&f.ID,
		&f.BranchID,
		&f.Name,
		&f.DayRate,
		&f.NightRate,
		&f.Status,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: field %s", domain.ErrResourceNotFound, fieldID)
		}
		return nil, mapStoreError(err)
	}

	return &f, nil
}
