package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ContactActionKind string

const (
	ActionContactRequested     ContactActionKind = "Contact requested"
	ActionContactLeased        ContactActionKind = "Contact leased"
	ActionContactResponded     ContactActionKind = "Contact responded"
	ActionContactAttemptFailed ContactActionKind = "Contact attempt failed"
	ActionContactRejected      ContactActionKind = "Contact rejected"
)

type ContactReason string

const (
	ReasonDonationRequest ContactReason = "Donation request"
	ReasonPersuasion      ContactReason = "Persuasion"
	ReasonTurnout         ContactReason = "Turnout"
)

type ContactMethod string

const (
	MethodPhoneCall ContactMethod = "Phone call"
	MethodCanvass   ContactMethod = "Canvass"
	MethodEmail     ContactMethod = "Email"
	MethodText      ContactMethod = "Text"
)

type ContactResult string

const (
	ResultContactRequested      ContactResult = "Contact requested"
	ResultContactLeased         ContactResult = "Contact leased"
	ResultPositiveResponse      ContactResult = "Positive response"
	ResultNegativeResponse      ContactResult = "Negative response"
	ResultCallbackScheduled     ContactResult = "Callback scheduled"
	ResultNoAnswerNotHome       ContactResult = "No answer/Not home"
	ResultContactHasMoved       ContactResult = "Contact has moved"
	ResultContactIsDeceased     ContactResult = "Contact is deceased"
	ResultPhoneOrAddressInvalid ContactResult = "Phone/Address is invalid"
	ResultRefusedDoNotCall      ContactResult = "Refused (Do not call again)"
	ResultConflictOfInterest    ContactResult = "Conflict of interest"
	ResultCallbackCancelled     ContactResult = "Callback cancelled"
	ResultElectedOfficial       ContactResult = "Contact is elected official"
	ResultOther                 ContactResult = "Other"
	ResultContactInfoInvalid    ContactResult = "Contact information is invalid"
)

var actionKinds = []ContactActionKind{
	ActionContactRequested, ActionContactLeased, ActionContactResponded,
	ActionContactAttemptFailed, ActionContactRejected,
}

var reasons = []ContactReason{ReasonDonationRequest, ReasonPersuasion, ReasonTurnout}

var methods = []ContactMethod{MethodPhoneCall, MethodCanvass, MethodEmail, MethodText}

var results = []ContactResult{
	ResultContactRequested, ResultContactLeased, ResultPositiveResponse,
	ResultNegativeResponse, ResultCallbackScheduled, ResultNoAnswerNotHome,
	ResultContactHasMoved, ResultContactIsDeceased, ResultPhoneOrAddressInvalid,
	ResultRefusedDoNotCall, ResultConflictOfInterest, ResultCallbackCancelled,
	ResultElectedOfficial, ResultOther, ResultContactInfoInvalid,
}

// Parsers are case-insensitive so that payloads written by other campaign
// instances (and the legacy clients) keep matching.
func ParseContactActionKind(s string) (ContactActionKind, bool) {
	for _, k := range actionKinds {
		if strings.EqualFold(s, string(k)) {
			return k, true
		}
	}
	return "", false
}

func ParseContactReason(s string) (ContactReason, bool) {
	for _, r := range reasons {
		if strings.EqualFold(s, string(r)) {
			return r, true
		}
	}
	return "", false
}

func ParseContactMethod(s string) (ContactMethod, bool) {
	for _, m := range methods {
		if strings.EqualFold(s, string(m)) {
			return m, true
		}
	}
	return "", false
}

func ParseContactResult(s string) (ContactResult, bool) {
	for _, r := range results {
		if strings.EqualFold(s, string(r)) {
			return r, true
		}
	}
	return "", false
}

// ActionDetail carries the branch-specific payload of a contact action.
// Only the fields the matching cooldown branch reads are ever set.
type ActionDetail struct {
	PersonID          int64      `json:"personId,omitempty"`
	FirstName         string     `json:"firstName,omitempty"`
	LastName          string     `json:"lastName,omitempty"`
	Amount            *float64   `json:"amount,omitempty"`
	Recurring         *bool      `json:"recurring,omitempty"`
	CallbackTimestamp *time.Time `json:"callbackTimestamp,omitempty"`
	CallbackActorID   *int64     `json:"callbackActorId,omitempty"`
	AddressID         *int64     `json:"addressId,omitempty"`
	PhoneID           *int64     `json:"phoneId,omitempty"`
	Note              string     `json:"note,omitempty"`
}

// Validate checks the fields a given outcome branch requires. It runs on
// ingestion, both for local HTTP outcomes and replayed broadcast events.
func (d ActionDetail) Validate(kind ContactActionKind, method ContactMethod, result ContactResult) error {
	if d.PersonID == 0 {
		return fmt.Errorf("detail.personId is required for %q", kind)
	}
	switch result {
	case ResultCallbackScheduled:
		if d.CallbackTimestamp == nil {
			return fmt.Errorf("detail.callbackTimestamp is required for %q", result)
		}
		if d.CallbackActorID == nil {
			return fmt.Errorf("detail.callbackActorId is required for %q", result)
		}
	case ResultPhoneOrAddressInvalid, ResultContactInfoInvalid:
		if method == MethodPhoneCall && d.PhoneID == nil {
			return fmt.Errorf("detail.phoneId is required for %q via %q", result, method)
		}
		if method == MethodCanvass && d.AddressID == nil {
			return fmt.Errorf("detail.addressId is required for %q via %q", result, method)
		}
	case ResultRefusedDoNotCall:
		if method == MethodPhoneCall && d.PhoneID == nil {
			return fmt.Errorf("detail.phoneId is required for %q via %q", result, method)
		}
	}
	return nil
}

// ContactAction is both the append-only audit record and the wire payload
// broadcast to the other campaign instances.
type ContactAction struct {
	ID         string            `json:"id"`
	Action     ContactActionKind `json:"action"`
	Timestamp  time.Time         `json:"timestamp"`
	ClientID   int64             `json:"clientId"`
	CampaignID int64             `json:"campaignId"`
	ActorID    int64             `json:"actorId"`
	Reason     ContactReason     `json:"reason"`
	Method     ContactMethod     `json:"method"`
	Result     ContactResult     `json:"result"`
	Detail     ActionDetail      `json:"detail"`
}

func NewContactAction(kind ContactActionKind, actor *Actor, reason ContactReason, method ContactMethod, result ContactResult, detail ActionDetail) *ContactAction {
	return &ContactAction{
		ID:         uuid.New().String(),
		Action:     kind,
		Timestamp:  time.Now().UTC(),
		ClientID:   actor.ClientID,
		CampaignID: actor.CampaignID,
		ActorID:    actor.ActorID,
		Reason:     reason,
		Method:     method,
		Result:     result,
		Detail:     detail,
	}
}

// AppError is the durable record of any error that reached a boundary.
type AppError struct {
	App         string    `json:"app"`
	Module      string    `json:"module"`
	Process     string    `json:"process"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	Error       string    `json:"error"`
}

func NewAppError(module, process, description string, err error) *AppError {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &AppError{
		App:         "data-server",
		Module:      module,
		Process:     process,
		Description: description,
		Timestamp:   time.Now().UTC(),
		Error:       msg,
	}
}
