package entity

import "time"

// Value Object: Phone
type Phone struct {
	PhoneID           int64      `json:"phoneId"`
	PhoneNumber       string     `json:"phoneNumber"`
	PhoneType         string     `json:"phoneType"`
	IsPrimary         bool       `json:"isPrimary"`
	DoNotCallCount    int        `json:"doNotCallCount"`
	LastDoNotCallDate *time.Time `json:"lastDoNotCallDate,omitempty"`
}

// Value Object: Address
type Address struct {
	AddressID   int64  `json:"addressId"`
	Street1     string `json:"street1"`
	Street2     string `json:"street2,omitempty"`
	City        string `json:"city"`
	State       string `json:"state"`
	Zip         string `json:"zip"`
	AddressType string `json:"addressType"`
	IsPrimary   bool   `json:"isPrimary"`
}

// Contact is a denormalized, point-in-time snapshot of a contactable
// person, complete enough to hand to an actor without another store
// round-trip. It goes stale the moment any other instance leases the same
// person; staleness is re-checked at allocation time, not prevented.
type Contact struct {
	PersonID                     int64     `json:"personId"`
	FirstName                    string    `json:"firstName"`
	LastName                     string    `json:"lastName"`
	MiddleName                   string    `json:"middleName,omitempty"`
	NamePrefix                   string    `json:"namePrefix,omitempty"`
	NameSuffix                   string    `json:"nameSuffix,omitempty"`
	Rating                       int       `json:"rating"`
	Phones                       []Phone   `json:"phones"`
	Addresses                    []Address `json:"addresses"`
	LeaseTime                    *time.Time `json:"leaseTime,omitempty"`
	LastContactAttemptTime       *time.Time `json:"lastContactAttemptTime,omitempty"`
	DonationRequestAllowedDate   time.Time `json:"donationRequestAllowedDate"`
	PersuasionAttemptAllowedDate time.Time `json:"persuasionAttemptAllowedDate"`
	TurnoutRequestAllowedDate    time.Time `json:"turnoutRequestAllowedDate"`

	// IsVirtual means no contact_status row exists for this person yet;
	// the first lease write must attempt an INSERT.
	IsVirtual bool `json:"isVirtual"`
}
