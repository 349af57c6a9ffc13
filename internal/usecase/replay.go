package usecase

import (
	"context"

	"github.com/vanguardcontact/data-server/internal/entity"
)

// ReplayUseCase applies broadcast events from other campaign instances to
// the local contact state. Delivery is at-least-once and unordered, so
// every handler here is idempotent: cooldown dates are computed from the
// event's own timestamp and merged monotonically (a date only ever moves
// forward), and the lease apply is the same upsert a local lease performs.
type ReplayUseCase struct {
	CampaignID int64
	Policy     *CooldownPolicy
	Store      ContactStatusStoreInterface
	Errors     ErrorRecorderInterface
}

func NewReplayUseCase(campaignID int64, policy *CooldownPolicy, store ContactStatusStoreInterface, errors ErrorRecorderInterface) *ReplayUseCase {
	return &ReplayUseCase{
		CampaignID: campaignID,
		Policy:     policy,
		Store:      store,
		Errors:     errors,
	}
}

// Apply processes one received event. Events from this instance's own
// campaign are dropped; only lease-affecting and cooldown-affecting kinds
// are replayed, everything else is a no-op.
func (uc *ReplayUseCase) Apply(ctx context.Context, msg *entity.ContactAction) error {
	if msg.CampaignID == uc.CampaignID {
		return nil
	}
	switch msg.Action {
	case entity.ActionContactLeased:
		return uc.applyLease(ctx, msg)
	case entity.ActionContactResponded, entity.ActionContactRejected:
		return uc.applyOutcome(ctx, msg)
	default:
		return nil
	}
}

// applyLease closes the cross-instance race window: once a peer announces
// a lease, this instance stops offering the person too.
func (uc *ReplayUseCase) applyLease(ctx context.Context, msg *entity.ContactAction) error {
	status, err := uc.Store.GetStatus(ctx, msg.Detail.PersonID)
	if err != nil {
		uc.Errors.Record(ctx, entity.NewAppError("usecase/replay", "applyLease", "database error retrieving contact status", err))
		return NewTechnicalError(CodeStorageError, "retrieving contact status", err)
	}
	if status == nil {
		// Person is not in our database; nothing to do.
		return nil
	}
	system := entity.SystemActor(msg.CampaignID)
	if err := uc.Store.MarkLeased(ctx, msg.Detail.PersonID, system.Username); err != nil {
		uc.Errors.Record(ctx, entity.NewAppError("usecase/replay", "applyLease", "database error marking contact as leased", err))
		return NewTechnicalError(CodeStorageError, "marking contact as leased", err)
	}
	return nil
}

func (uc *ReplayUseCase) applyOutcome(ctx context.Context, msg *entity.ContactAction) error {
	if err := msg.Detail.Validate(msg.Action, msg.Method, msg.Result); err != nil {
		uc.Errors.Record(ctx, entity.NewAppError("usecase/replay", "applyOutcome", "invalid detail on replayed event", err))
		return NewDomainError(CodeInvalidArgument, err.Error())
	}

	status, err := uc.Store.GetStatus(ctx, msg.Detail.PersonID)
	if err != nil {
		uc.Errors.Record(ctx, entity.NewAppError("usecase/replay", "applyOutcome", "database error retrieving contact status", err))
		return NewTechnicalError(CodeStorageError, "retrieving contact status", err)
	}
	if status == nil {
		return nil
	}

	// Same policy branch a local outcome runs, evaluated at the event's
	// timestamp so that re-deliveries compute identical dates.
	change, err := uc.Policy.Evaluate(msg.Timestamp, msg.Action, msg.Reason, msg.Method, msg.Result, msg.Detail)
	if err != nil {
		uc.Errors.Record(ctx, entity.NewAppError("usecase/replay", "applyOutcome", err.Error(), err))
		return err
	}

	change = clampForReplay(change, status)
	if !change.TouchesStatus() {
		return nil
	}
	system := entity.SystemActor(msg.CampaignID)
	if err := uc.Store.ApplyChange(ctx, msg.Detail.PersonID, change, system.Username); err != nil {
		uc.Errors.Record(ctx, entity.NewAppError("usecase/replay", "applyOutcome", "database error applying replayed status change", err))
		return NewTechnicalError(CodeStorageError, "applying replayed status change", err)
	}
	return nil
}

// clampForReplay enforces the monotonic merge rule and strips the
// person-data side effects, which are never applied from remote events.
func clampForReplay(change entity.StatusChange, status *entity.ContactStatus) entity.StatusChange {
	if change.DonationRequestAllowedDate != nil && change.DonationRequestAllowedDate.Before(status.DonationRequestAllowedDate) {
		change.DonationRequestAllowedDate = nil
	}
	if change.PersuasionAttemptAllowedDate != nil && change.PersuasionAttemptAllowedDate.Before(status.PersuasionAttemptAllowedDate) {
		change.PersuasionAttemptAllowedDate = nil
	}
	if change.TurnoutRequestAllowedDate != nil && change.TurnoutRequestAllowedDate.Before(status.TurnoutRequestAllowedDate) {
		change.TurnoutRequestAllowedDate = nil
	}
	change.RemovePhone = false
	change.RemoveAddress = false
	change.MarkPhoneDoNotCall = false
	change.DeletePerson = false
	return change
}
