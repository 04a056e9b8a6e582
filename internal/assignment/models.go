package assignment

import "time"

// Caller is an agent placing calls. Created by the admin subsystem or
// self-registration; read here to authenticate and scope queries.
type Caller struct {
	ID     string `json:"id" db:"id"`
	AreaID string `json:"area_id" db:"area_id"`
	Name   string `json:"name" db:"name"`
	Phone  string `json:"phone" db:"phone"`

	// Pin is the login credential. Never serialized to clients.
	Pin string `json:"-" db:"pin"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Client is a contact targeted by a campaign. Enrollment is per campaign:
// the same person in two campaigns is two client rows.
//
// Clients carry no "in progress" marker; their availability is derived
// entirely from call history.
type Client struct {
	ID         string `json:"id" db:"id"`
	CampaignID string `json:"campaign_id" db:"campaign_id"`
	Name       string `json:"name" db:"name"`
	Phone      string `json:"phone" db:"phone"`
	City       string `json:"city,omitempty" db:"city"`

	// SortGroup orders candidates: lower is called first, 0 means unranked
	// (ranked clients come before unranked ones).
	SortGroup int `json:"sort_group,omitempty" db:"sort_group"`

	Deleted bool `json:"deleted" db:"deleted"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Call is one session: an attempt by a caller to reach a client within a
// campaign. Created in progress by reservation, transitioned exactly once by
// completion, and kept forever for reporting. The only rows ever removed are
// abandoned sessions (give-up), which record nothing.
type Call struct {
	ID         string `json:"id" db:"id"`
	ClientID   string `json:"client_id" db:"client_id"`
	CallerID   string `json:"caller_id" db:"caller_id"`
	CampaignID string `json:"campaign_id" db:"campaign_id"`

	Status CallStatus `json:"status" db:"status"`

	// Outcome is one of the campaign's configured outcomes, or the remove
	// sentinel. Empty while in progress.
	Outcome string `json:"outcome,omitempty" db:"outcome"`
	Comment string `json:"comment,omitempty" db:"comment"`

	DurationSeconds int `json:"duration_seconds" db:"duration_seconds"`

	StartedAt       time.Time `json:"started_at" db:"started_at"`
	LastInteraction time.Time `json:"last_interaction" db:"last_interaction"`
}

type CallStatus string

const (
	CallStatusInProgress CallStatus = "in_progress"
	CallStatusDone       CallStatus = "done"
	CallStatusDeleted    CallStatus = "deleted"
)

// Candidate pairs a client with its call stats in the campaign, the inputs
// the eligibility check needs.
type Candidate struct {
	Client Client

	// CallCount is the number of non-deleted calls for the client in the
	// campaign, including any in-progress one.
	CallCount int

	// LastStartedAt is the start of the most recent call, zero if none.
	LastStartedAt time.Time

	// InProgress reports whether some caller currently holds the client.
	InProgress bool
}
