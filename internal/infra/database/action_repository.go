package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/vanguardcontact/data-server/internal/entity"
)

// ContactActionRepository appends to the contact_action_log audit table.
// The log is insert-only; nothing ever updates or deletes a row.
type ContactActionRepository struct {
	DB *sql.DB
}

func NewContactActionRepository(db *sql.DB) *ContactActionRepository {
	return &ContactActionRepository{DB: db}
}

func (r *ContactActionRepository) Insert(ctx context.Context, action *entity.ContactAction) error {
	detail, err := json.Marshal(action.Detail)
	if err != nil {
		return fmt.Errorf("encoding action detail: %w", err)
	}

	query := `
		INSERT INTO base.contact_action_log (
			action_uuid, date_created, client_id, campaign_id, actor_id
			, contact_action_id, contact_reason_id, contact_method_id, contact_result_id
			, detail, modified_by, date_modified
		) VALUES (
			$1, $2, $3, $4, $5
			, (SELECT action_id FROM base.contact_action WHERE description ILIKE $6)
			, (SELECT reason_id FROM base.contact_reason WHERE description ILIKE $7)
			, (SELECT method_id FROM base.contact_method WHERE description ILIKE $8)
			, (SELECT result_id FROM base.contact_result WHERE description ILIKE $9)
			, $10, $11, NOW()
		)
	`

	_, err = r.DB.ExecContext(ctx, query,
		action.ID,
		action.Timestamp,
		action.ClientID,
		action.CampaignID,
		action.ActorID,
		string(action.Action),
		string(action.Reason),
		string(action.Method),
		string(action.Result),
		detail,
		fmt.Sprintf("actor:%d", action.ActorID),
	)
	if err != nil {
		return fmt.Errorf("recording contact action: %w", err)
	}
	return nil
}
