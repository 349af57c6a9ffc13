package entity

// Actor is a record from the external actor/identity directory. The
// directory is the source of truth; nothing here is persisted locally.
type Actor struct {
	ActorID           int64  `json:"actorId"`
	Username          string `json:"username"`
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	MiddleName        string `json:"middleName,omitempty"`
	NamePrefix        string `json:"namePrefix,omitempty"`
	NameSuffix        string `json:"nameSuffix,omitempty"`
	ClientID          int64  `json:"clientId"`
	CampaignID        int64  `json:"campaignId"`
	IsBlocked         bool   `json:"isBlocked"`
	IsCampaignManager bool   `json:"isCampaignManager"`
}

// SystemActor attributes lease writes replayed from another campaign's
// broadcast; the remote actor never appears in local modified_by columns.
func SystemActor(campaignID int64) *Actor {
	return &Actor{
		ActorID:    0,
		Username:   "system",
		CampaignID: campaignID,
	}
}
