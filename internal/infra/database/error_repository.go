package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vanguardcontact/data-server/internal/entity"
)

// AppErrorRepository appends to the app_error_log table.
type AppErrorRepository struct {
	DB *sql.DB
}

func NewAppErrorRepository(db *sql.DB) *AppErrorRepository {
	return &AppErrorRepository{DB: db}
}

func (r *AppErrorRepository) Insert(ctx context.Context, appErr *entity.AppError) error {
	query := `
		INSERT INTO base.app_error_log (app, app_module, process, description, error, date_created)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
	`
	_, err := r.DB.ExecContext(ctx, query,
		appErr.App,
		appErr.Module,
		appErr.Process,
		appErr.Description,
		appErr.Error,
		appErr.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("recording application error: %w", err)
	}
	return nil
}
