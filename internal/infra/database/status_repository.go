package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vanguardcontact/data-server/internal/entity"
)

// ContactStatusRepository is the transactional store for the one-per-person
// cooldown record. It carries no policy: callers decide what to write.
type ContactStatusRepository struct {
	DB *sql.DB
}

func NewContactStatusRepository(db *sql.DB) *ContactStatusRepository {
	return &ContactStatusRepository{DB: db}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// GetStatus returns (nil, nil) when the person is unknown locally. A
// person without a status row comes back virtual with the allowed dates
// defaulted far in the past, so every reason is immediately permitted.
func (r *ContactStatusRepository) GetStatus(ctx context.Context, personID int64) (*entity.ContactStatus, error) {
	query := `
		SELECT p.person_id
		, CASE WHEN cs.person_id IS NULL THEN true ELSE false END AS is_virtual
		, cs.lease_time
		, cs.last_contact_attempt_time
		, COALESCE(cs.donation_request_allowed_date, TO_DATE('01/01/2000', 'mm/dd/yyyy')) AS donation_request_allowed_date
		, COALESCE(cs.persuasion_attempt_allowed_date, TO_DATE('01/01/2000', 'mm/dd/yyyy')) AS persuasion_attempt_allowed_date
		, COALESCE(cs.turnout_request_allowed_date, TO_DATE('01/01/2000', 'mm/dd/yyyy')) AS turnout_request_allowed_date
		, cs.callback_timestamp
		, cs.callback_actor_id
		, COALESCE(cs.review_required, false) AS review_required
		, COALESCE(cs.review_required_note, '') AS review_required_note
		FROM base.person p
		LEFT OUTER JOIN base.contact_status cs ON cs.person_id = p.person_id
		WHERE p.person_id = $1
	`

	var status entity.ContactStatus
	var leaseTime, lastAttempt, callbackTS sql.NullTime
	var callbackActor sql.NullInt64

	err := r.DB.QueryRowContext(ctx, query, personID).Scan(
		&status.PersonID,
		&status.IsVirtual,
		&leaseTime,
		&lastAttempt,
		&status.DonationRequestAllowedDate,
		&status.PersuasionAttemptAllowedDate,
		&status.TurnoutRequestAllowedDate,
		&callbackTS,
		&callbackActor,
		&status.ReviewRequired,
		&status.ReviewRequiredNote,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("retrieving contact status for person %d: %w", personID, err)
	}

	if leaseTime.Valid {
		status.LeaseTime = &leaseTime.Time
	}
	if lastAttempt.Valid {
		status.LastContactAttemptTime = &lastAttempt.Time
	}
	if callbackTS.Valid {
		status.CallbackTimestamp = &callbackTS.Time
	}
	if callbackActor.Valid {
		status.CallbackActorID = &callbackActor.Int64
	}
	return &status, nil
}

// MarkLeased writes the lease as an upsert: INSERT first because the row
// may not exist yet, UPDATE when the uniqueness constraint says it does.
// The unique-violation fallback is the one expected storage error here.
func (r *ContactStatusRepository) MarkLeased(ctx context.Context, personID int64, modifiedBy string) error {
	insert := `
		INSERT INTO base.contact_status (person_id, lease_time, last_contact_attempt_time, modified_by)
		VALUES ($1, NOW(), NOW(), $2)
	`
	_, err := r.DB.ExecContext(ctx, insert, personID, modifiedBy)
	if err == nil {
		return nil
	}
	if !isUniqueViolation(err) {
		return fmt.Errorf("inserting lease for person %d: %w", personID, err)
	}

	update := `
		UPDATE base.contact_status
		SET lease_time = NOW()
		, last_contact_attempt_time = NOW()
		, modified_by = $2
		, date_modified = NOW()
		WHERE person_id = $1
	`
	if _, err := r.DB.ExecContext(ctx, update, personID, modifiedBy); err != nil {
		return fmt.Errorf("updating lease for person %d: %w", personID, err)
	}
	return nil
}

// ApplyChange writes a cooldown change-set with the same insert-then-update
// discipline as MarkLeased.
func (r *ContactStatusRepository) ApplyChange(ctx context.Context, personID int64, change entity.StatusChange, modifiedBy string) error {
	type setPair struct {
		col string
		val any
	}
	var pairs []setPair

	if change.ClearLease {
		pairs = append(pairs, setPair{"lease_time", nil})
	}
	if change.DonationRequestAllowedDate != nil {
		pairs = append(pairs, setPair{"donation_request_allowed_date", *change.DonationRequestAllowedDate})
	}
	if change.PersuasionAttemptAllowedDate != nil {
		pairs = append(pairs, setPair{"persuasion_attempt_allowed_date", *change.PersuasionAttemptAllowedDate})
	}
	if change.TurnoutRequestAllowedDate != nil {
		pairs = append(pairs, setPair{"turnout_request_allowed_date", *change.TurnoutRequestAllowedDate})
	}
	if change.SetCallback {
		pairs = append(pairs, setPair{"callback_timestamp", change.CallbackTimestamp})
		pairs = append(pairs, setPair{"callback_actor_id", change.CallbackActorID})
	}
	if change.ClearCallback {
		pairs = append(pairs, setPair{"callback_timestamp", nil})
		pairs = append(pairs, setPair{"callback_actor_id", nil})
	}
	if change.ReviewRequired {
		pairs = append(pairs, setPair{"review_required", true})
		pairs = append(pairs, setPair{"review_required_note", change.ReviewRequiredNote})
	}
	if len(pairs) == 0 {
		return nil
	}

	insertCols := []string{"person_id"}
	placeholders := []string{"$1"}
	args := []any{personID}
	for _, p := range pairs {
		insertCols = append(insertCols, p.col)
		args = append(args, p.val)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
	}
	insertCols = append(insertCols, "modified_by")
	args = append(args, modifiedBy)
	placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))

	insert := fmt.Sprintf(
		"INSERT INTO base.contact_status (%s) VALUES (%s)",
		strings.Join(insertCols, ", "), strings.Join(placeholders, ", "),
	)
	_, err := r.DB.ExecContext(ctx, insert, args...)
	if err == nil {
		return nil
	}
	if !isUniqueViolation(err) {
		return fmt.Errorf("inserting contact status for person %d: %w", personID, err)
	}

	sets := make([]string, 0, len(pairs)+2)
	for i, p := range pairs {
		sets = append(sets, fmt.Sprintf("%s = $%d", p.col, i+2))
	}
	sets = append(sets, fmt.Sprintf("modified_by = $%d", len(pairs)+2))
	sets = append(sets, "date_modified = NOW()")

	update := fmt.Sprintf(
		"UPDATE base.contact_status SET %s WHERE person_id = $1",
		strings.Join(sets, ", "),
	)
	if _, err := r.DB.ExecContext(ctx, update, args...); err != nil {
		return fmt.Errorf("updating contact status for person %d: %w", personID, err)
	}
	return nil
}

// Delete permanently removes the person from the allocation pool.
func (r *ContactStatusRepository) Delete(ctx context.Context, personID int64) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM base.contact_status WHERE person_id = $1`, personID); err != nil {
		return fmt.Errorf("deleting contact status for person %d: %w", personID, err)
	}
	return nil
}
