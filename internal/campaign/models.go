package campaign

import "time"

// Campaign is the read model of an outreach campaign. Campaigns are created
// and mutated by the admin subsystem; this engine only reads them.
//
// Invariant (owned by the admin subsystem, not enforced here): at most one
// campaign per area carries Active at a time.
type Campaign struct {
	ID     string `json:"id" db:"id"`
	AreaID string `json:"area_id" db:"area_id"`
	Name   string `json:"name" db:"name"`

	Active        bool `json:"active" db:"active"`
	CallPermitted bool `json:"call_permitted" db:"call_permitted"`

	// NbMaxCall caps non-deleted call sessions per client within the campaign.
	NbMaxCall int `json:"nb_max_call" db:"nb_max_call"`

	// TimeBetweenCalls is the per-client cool-down. Stored in storage as
	// milliseconds (time_between_calls_ms).
	TimeBetweenCalls time.Duration `json:"time_between_calls" db:"-"`

	// Call-hour window, minutes since local midnight. The window is
	// configured on every campaign but only gates reservation when the
	// engine is told to enforce it.
	CallHoursStart int `json:"call_hours_start" db:"call_hours_start"`
	CallHoursEnd   int `json:"call_hours_end" db:"call_hours_end"`

	// Outcomes is the campaign's ordered outcome vocabulary.
	Outcomes []Outcome `json:"outcomes" db:"-"`

	Script string `json:"script" db:"script"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Outcome is one named result a caller can record for a session.
type Outcome struct {
	Label string `json:"label" db:"label"`

	// Recall marks outcomes after which the client should be called again
	// (subject to the cool-down), e.g. "no answer".
	Recall bool `json:"recall" db:"recall"`
}

// OutcomeRemove is the reserved sentinel outcome: the client record is
// invalid (wrong number, opted out) and must be removed from the campaign.
// It is always accepted, alongside the campaign's configured outcomes.
const OutcomeRemove = "remove"

// Callable reports whether the campaign accepts new sessions at all.
// Call hours are checked separately; see WithinCallHours.
func (c Campaign) Callable() bool {
	return c.Active && c.CallPermitted
}

// WithinCallHours reports whether now falls inside the campaign's call-hour
// window. A zero window (start == end == 0) means unrestricted. Windows that
// wrap past midnight (start > end) are supported.
func (c Campaign) WithinCallHours(now time.Time) bool {
	if c.CallHoursStart == 0 && c.CallHoursEnd == 0 {
		return true
	}
	minute := now.Hour()*60 + now.Minute()
	if c.CallHoursStart <= c.CallHoursEnd {
		return minute >= c.CallHoursStart && minute < c.CallHoursEnd
	}
	return minute >= c.CallHoursStart || minute < c.CallHoursEnd
}

// ValidOutcome reports whether label is one of the campaign's configured
// outcomes or the remove sentinel.
func (c Campaign) ValidOutcome(label string) bool {
	if label == OutcomeRemove {
		return true
	}
	for _, o := range c.Outcomes {
		if o.Label == label {
			return true
		}
	}
	return false
}
