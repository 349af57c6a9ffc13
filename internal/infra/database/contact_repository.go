package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vanguardcontact/data-server/internal/entity"
)

// ContactRepository reads candidate contacts from the per-(reason, method)
// views and applies the person-data side effects of outcomes.
type ContactRepository struct {
	DB *sql.DB
}

func NewContactRepository(db *sql.DB) *ContactRepository {
	return &ContactRepository{DB: db}
}

var reasonSlugs = map[entity.ContactReason]string{
	entity.ReasonDonationRequest: "donation",
	entity.ReasonPersuasion:      "persuasion",
	entity.ReasonTurnout:         "turnout",
}

var methodSlugs = map[entity.ContactMethod]string{
	entity.MethodPhoneCall: "phone",
	entity.MethodCanvass:   "canvass",
	entity.MethodEmail:     "email",
	entity.MethodText:      "text",
}

// candidateView names the database view that ranks contactable people for
// one (reason, method) pair. The views filter out fresh leases and
// not-yet-allowed dates and sort best-rated first.
func candidateView(reason entity.ContactReason, method entity.ContactMethod) (string, error) {
	r, ok := reasonSlugs[reason]
	if !ok {
		return "", fmt.Errorf("%q is not a valid contact reason", reason)
	}
	m, ok := methodSlugs[method]
	if !ok {
		return "", fmt.Errorf("%q is not a valid contact method", method)
	}
	return fmt.Sprintf("base.v_%s_%s_contact", r, m), nil
}

type phoneRow struct {
	PhoneID           int64      `json:"phone_id"`
	PhoneNumber       string     `json:"phone_number"`
	PhoneType         string     `json:"phone_type"`
	IsPrimary         bool       `json:"is_primary"`
	DoNotCallCount    int        `json:"do_not_call_count"`
	LastDoNotCallDate *time.Time `json:"last_do_not_call_date"`
}

type addressRow struct {
	AddressID   int64  `json:"address_id"`
	Street1     string `json:"street1"`
	Street2     string `json:"street2"`
	City        string `json:"city"`
	State       string `json:"state"`
	Zip         string `json:"zip"`
	AddressType string `json:"address_type"`
	IsPrimary   bool   `json:"is_primary"`
}

func (r *ContactRepository) FetchCandidates(ctx context.Context, reason entity.ContactReason, method entity.ContactMethod, limit int) ([]entity.Contact, error) {
	view, err := candidateView(reason, method)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT first_name, last_name, middle_name, prefix, suffix
		, rating, phones, addresses
		, lease_time, last_contact_attempt_time
		, donation_request_allowed_date
		, persuasion_attempt_allowed_date
		, turnout_request_allowed_date
		, person_id, is_virtual
		FROM %s
		ORDER BY rating DESC
		LIMIT $1
	`, view)

	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching candidates from %s: %w", view, err)
	}
	defer rows.Close()

	var contacts []entity.Contact
	for rows.Next() {
		var c entity.Contact
		var middle, prefix, suffix sql.NullString
		var phonesJSON, addressesJSON []byte
		var leaseTime, lastAttempt sql.NullTime

		err := rows.Scan(
			&c.FirstName, &c.LastName, &middle, &prefix, &suffix,
			&c.Rating, &phonesJSON, &addressesJSON,
			&leaseTime, &lastAttempt,
			&c.DonationRequestAllowedDate,
			&c.PersuasionAttemptAllowedDate,
			&c.TurnoutRequestAllowedDate,
			&c.PersonID, &c.IsVirtual,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning candidate row: %w", err)
		}

		c.MiddleName = middle.String
		c.NamePrefix = prefix.String
		c.NameSuffix = suffix.String
		if leaseTime.Valid {
			c.LeaseTime = &leaseTime.Time
		}
		if lastAttempt.Valid {
			c.LastContactAttemptTime = &lastAttempt.Time
		}
		if c.Phones, err = translatePhones(phonesJSON); err != nil {
			return nil, fmt.Errorf("decoding phones for person %d: %w", c.PersonID, err)
		}
		if c.Addresses, err = translateAddresses(addressesJSON); err != nil {
			return nil, fmt.Errorf("decoding addresses for person %d: %w", c.PersonID, err)
		}

		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading candidate rows: %w", err)
	}
	return contacts, nil
}

func translatePhones(data []byte) ([]entity.Phone, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var rows []phoneRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	phones := make([]entity.Phone, 0, len(rows))
	for _, p := range rows {
		phones = append(phones, entity.Phone{
			PhoneID:           p.PhoneID,
			PhoneNumber:       p.PhoneNumber,
			PhoneType:         p.PhoneType,
			IsPrimary:         p.IsPrimary,
			DoNotCallCount:    p.DoNotCallCount,
			LastDoNotCallDate: p.LastDoNotCallDate,
		})
	}
	return phones, nil
}

func translateAddresses(data []byte) ([]entity.Address, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var rows []addressRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	addresses := make([]entity.Address, 0, len(rows))
	for _, a := range rows {
		addresses = append(addresses, entity.Address{
			AddressID:   a.AddressID,
			Street1:     a.Street1,
			Street2:     a.Street2,
			City:        a.City,
			State:       a.State,
			Zip:         a.Zip,
			AddressType: a.AddressType,
			IsPrimary:   a.IsPrimary,
		})
	}
	return addresses, nil
}

func (r *ContactRepository) RemovePhone(ctx context.Context, personID, phoneID int64) error {
	query := `DELETE FROM base.person_phone WHERE person_id = $1 AND phone_id = $2`
	if _, err := r.DB.ExecContext(ctx, query, personID, phoneID); err != nil {
		return fmt.Errorf("removing phone %d for person %d: %w", phoneID, personID, err)
	}
	return nil
}

// RemoveAddress deletes the given address, or the primary address when
// addressID is nil.
func (r *ContactRepository) RemoveAddress(ctx context.Context, personID int64, addressID *int64) error {
	if addressID != nil {
		query := `DELETE FROM base.person_address WHERE person_id = $1 AND address_id = $2`
		if _, err := r.DB.ExecContext(ctx, query, personID, *addressID); err != nil {
			return fmt.Errorf("removing address %d for person %d: %w", *addressID, personID, err)
		}
		return nil
	}

	query := `
		DELETE FROM base.person_address
		WHERE person_id = $1
		AND address_id = (
			SELECT address_id
			FROM base.person_address
			WHERE person_id = $1
			AND is_primary = true
		)
	`
	if _, err := r.DB.ExecContext(ctx, query, personID); err != nil {
		return fmt.Errorf("removing primary address for person %d: %w", personID, err)
	}
	return nil
}

// MarkPhoneDoNotCall is a soft, time-boxed suppression: the counter and
// date keep the number out of the candidate views for a while without
// deleting it.
func (r *ContactRepository) MarkPhoneDoNotCall(ctx context.Context, personID, phoneID int64, modifiedBy string) error {
	query := `
		UPDATE base.person_phone
		SET do_not_call_count = do_not_call_count + 1
		, last_do_not_call_date = NOW()
		, modified_by = $3
		, date_modified = NOW()
		WHERE person_id = $1 AND phone_id = $2
	`
	if _, err := r.DB.ExecContext(ctx, query, personID, phoneID, modifiedBy); err != nil {
		return fmt.Errorf("marking phone %d do-not-call for person %d: %w", phoneID, personID, err)
	}
	return nil
}

func (r *ContactRepository) RemoveRating(ctx context.Context, personID int64) error {
	query := `DELETE FROM base.contact_rating WHERE person_id = $1`
	if _, err := r.DB.ExecContext(ctx, query, personID); err != nil {
		return fmt.Errorf("removing rating for person %d: %w", personID, err)
	}
	return nil
}
