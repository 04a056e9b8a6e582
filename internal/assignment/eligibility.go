package assignment

import (
	"time"

	"phonebank/internal/campaign"
)

// ClientCallable decides whether a client may be handed to a caller right
// now. Pure: all inputs are supplied, no I/O, no clock reads.
//
// A client is callable iff:
//   - it is not soft-deleted,
//   - it belongs to the campaign,
//   - no caller currently holds it,
//   - its non-deleted call count is strictly below the campaign ceiling,
//   - it has never been called, or the cool-down since its most recent call
//     has fully elapsed (selectable at exactly start + cool-down).
func ClientCallable(cand Candidate, camp campaign.Campaign, now time.Time) bool {
	cl := cand.Client
	if cl.Deleted {
		return false
	}
	if cl.CampaignID != camp.ID {
		return false
	}
	if cand.InProgress {
		return false
	}
	if cand.CallCount >= camp.NbMaxCall {
		return false
	}
	if cand.CallCount == 0 {
		return true
	}
	return !now.Before(cand.LastStartedAt.Add(camp.TimeBetweenCalls))
}
