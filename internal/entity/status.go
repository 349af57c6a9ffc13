package entity

import "time"

// ContactStatus is the one-row-per-person cooldown record. It is created
// lazily on the first lease attempt and mutated on every allocation and
// every outcome.
type ContactStatus struct {
	PersonID                     int64
	LeaseTime                    *time.Time
	LastContactAttemptTime       *time.Time
	DonationRequestAllowedDate   time.Time
	PersuasionAttemptAllowedDate time.Time
	TurnoutRequestAllowedDate    time.Time
	CallbackTimestamp            *time.Time
	CallbackActorID              *int64
	ReviewRequired               bool
	ReviewRequiredNote           string

	// IsVirtual means the person exists but has no status row yet.
	IsVirtual bool
}

// Leased reports whether the person currently holds a fresh lease. A lease
// older than the window is treated as absent; no cleanup ever runs.
func (s *ContactStatus) Leased(now time.Time, window time.Duration) bool {
	if s == nil || s.LeaseTime == nil {
		return false
	}
	return now.Sub(*s.LeaseTime) < window
}

// StatusChange is the change-set a cooldown decision produces. The policy
// computes it; the store and the person repositories apply it.
type StatusChange struct {
	ClearLease bool

	DonationRequestAllowedDate   *time.Time
	PersuasionAttemptAllowedDate *time.Time
	TurnoutRequestAllowedDate    *time.Time

	SetCallback       bool
	CallbackTimestamp *time.Time
	CallbackActorID   *int64
	ClearCallback     bool

	ReviewRequired     bool
	ReviewRequiredNote string

	// Person-data side effects, applied outside contact_status.
	RemovePhone        bool
	RemoveAddress      bool
	MarkPhoneDoNotCall bool
	DeletePerson       bool
}

// TouchesStatus reports whether the change mutates the contact_status row
// itself, as opposed to only person-data side effects.
func (c StatusChange) TouchesStatus() bool {
	return c.ClearLease ||
		c.DonationRequestAllowedDate != nil ||
		c.PersuasionAttemptAllowedDate != nil ||
		c.TurnoutRequestAllowedDate != nil ||
		c.SetCallback || c.ClearCallback || c.ReviewRequired
}

// HasSideEffects reports whether the change touches person data.
func (c StatusChange) HasSideEffects() bool {
	return c.RemovePhone || c.RemoveAddress || c.MarkPhoneDoNotCall || c.DeletePerson
}
