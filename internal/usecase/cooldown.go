package usecase

import (
	"fmt"
	"time"

	"github.com/vanguardcontact/data-server/internal/config"
	"github.com/vanguardcontact/data-server/internal/entity"
)

// CooldownPolicy maps a contact outcome to the change-set that keeps the
// person off the pool for the right amount of time. It is pure: it never
// touches storage, so the same rules run for local outcomes and for events
// replayed from other campaigns.
type CooldownPolicy struct {
	Intervals config.CooldownIntervals
}

func NewCooldownPolicy(intervals config.CooldownIntervals) *CooldownPolicy {
	return &CooldownPolicy{Intervals: intervals}
}

func (p *CooldownPolicy) Evaluate(now time.Time, kind entity.ContactActionKind, reason entity.ContactReason, method entity.ContactMethod, result entity.ContactResult, detail entity.ActionDetail) (entity.StatusChange, error) {
	switch kind {
	case entity.ActionContactResponded:
		return p.evaluateResponded(now, reason, result, detail)
	case entity.ActionContactAttemptFailed:
		return p.evaluateAttemptFailed(now, reason, method, result)
	case entity.ActionContactRejected:
		return p.evaluateRejected(now, method, result, detail)
	default:
		return entity.StatusChange{}, NewDomainError(CodeInvalidTransition,
			fmt.Sprintf("%q is not a valid contact response action", kind))
	}
}

func (p *CooldownPolicy) evaluateResponded(now time.Time, reason entity.ContactReason, result entity.ContactResult, detail entity.ActionDetail) (entity.StatusChange, error) {
	switch result {
	case entity.ResultPositiveResponse, entity.ResultNegativeResponse:
		switch reason {
		case entity.ReasonDonationRequest:
			// A completed donation ask quiets both asks: no new donation
			// request for months, no persuasion call for two weeks. A
			// recurring pledge pushes the donation date out for years.
			donation := now.AddDate(0, p.Intervals.DonationAfterResponseMonths, 0)
			if result == entity.ResultPositiveResponse && detail.Recurring != nil && *detail.Recurring {
				donation = now.AddDate(p.Intervals.RecurringDonationYears, 0, 0)
			}
			persuasion := now.AddDate(0, 0, p.Intervals.PersuasionAfterDonationDays)
			return entity.StatusChange{
				DonationRequestAllowedDate:   &donation,
				PersuasionAttemptAllowedDate: &persuasion,
				ClearCallback:                true,
			}, nil
		case entity.ReasonPersuasion:
			donation := now.AddDate(0, 0, p.Intervals.AfterPersuasionDays)
			persuasion := now.AddDate(0, 0, p.Intervals.AfterPersuasionDays)
			return entity.StatusChange{
				DonationRequestAllowedDate:   &donation,
				PersuasionAttemptAllowedDate: &persuasion,
				ClearCallback:                true,
			}, nil
		case entity.ReasonTurnout:
			// Nothing to do for turnout responses.
			return entity.StatusChange{}, nil
		default:
			return entity.StatusChange{}, NewDomainError(CodeInvalidContactReason,
				fmt.Sprintf("%q is not a valid contact reason", reason))
		}

	case entity.ResultCallbackScheduled:
		return entity.StatusChange{
			SetCallback:       true,
			CallbackTimestamp: detail.CallbackTimestamp,
			CallbackActorID:   detail.CallbackActorID,
		}, nil

	default:
		return entity.StatusChange{}, NewDomainError(CodeInvalidTransition,
			fmt.Sprintf("%q is not a valid result for a contact response", result))
	}
}

func (p *CooldownPolicy) evaluateAttemptFailed(now time.Time, reason entity.ContactReason, method entity.ContactMethod, result entity.ContactResult) (entity.StatusChange, error) {
	switch result {
	case entity.ResultNoAnswerNotHome:
		// Release the lease immediately so the person goes back to the
		// pool, but hold off further donation asks for a few days.
		donation := now.AddDate(0, 0, p.Intervals.NoAnswerRetryDays)
		return entity.StatusChange{
			ClearLease:                 true,
			DonationRequestAllowedDate: &donation,
		}, nil

	case entity.ResultContactHasMoved:
		return entity.StatusChange{RemoveAddress: true}, nil

	case entity.ResultContactIsDeceased:
		// Permanent removal from the allocation pool.
		return entity.StatusChange{DeletePerson: true}, nil

	case entity.ResultPhoneOrAddressInvalid:
		return removeContactInfo(method)

	case entity.ResultRefusedDoNotCall:
		if method == entity.MethodPhoneCall {
			// Soft, time-boxed suppression on the phone itself, not a
			// permanent removal.
			return entity.StatusChange{MarkPhoneDoNotCall: true}, nil
		}
		allowed := now.AddDate(0, p.Intervals.RefusalMonths, 0)
		change := entity.StatusChange{}
		switch reason {
		case entity.ReasonDonationRequest:
			change.DonationRequestAllowedDate = &allowed
		case entity.ReasonPersuasion:
			change.PersuasionAttemptAllowedDate = &allowed
		case entity.ReasonTurnout:
			change.TurnoutRequestAllowedDate = &allowed
		default:
			return entity.StatusChange{}, NewDomainError(CodeInvalidContactReason,
				fmt.Sprintf("%q is not a valid contact reason", reason))
		}
		return change, nil

	default:
		return entity.StatusChange{}, NewDomainError(CodeInvalidTransition,
			fmt.Sprintf("%q is not a valid result for a failed contact attempt", result))
	}
}

func (p *CooldownPolicy) evaluateRejected(now time.Time, method entity.ContactMethod, result entity.ContactResult, detail entity.ActionDetail) (entity.StatusChange, error) {
	switch result {
	case entity.ResultConflictOfInterest:
		// Back to the pool for a different actor; cooldowns untouched.
		return entity.StatusChange{ClearLease: true}, nil

	case entity.ResultCallbackCancelled:
		return entity.StatusChange{ClearCallback: true}, nil

	case entity.ResultElectedOfficial, entity.ResultOther:
		// The person stays leased and blocked until a human reviews them.
		return entity.StatusChange{
			ReviewRequired:     true,
			ReviewRequiredNote: detail.Note,
		}, nil

	case entity.ResultContactInfoInvalid:
		return removeContactInfo(method)

	default:
		return entity.StatusChange{}, NewDomainError(CodeInvalidTransition,
			fmt.Sprintf("%q is not a valid result for a rejected contact", result))
	}
}

func removeContactInfo(method entity.ContactMethod) (entity.StatusChange, error) {
	switch method {
	case entity.MethodPhoneCall:
		return entity.StatusChange{RemovePhone: true}, nil
	case entity.MethodCanvass:
		return entity.StatusChange{RemoveAddress: true}, nil
	default:
		return entity.StatusChange{}, NewDomainError(CodeInvalidContactMethod,
			fmt.Sprintf("%q is not a valid contact method for removing contact information", method))
	}
}
