package assignment

import (
	"context"
	"time"

	"phonebank/internal/campaign"
)

// Repository is the persistence contract for the assignment engine.
//
// Correctness note: CreateInProgress is the engine's single race window and
// MUST be a conditional write. Implementations apply "insert iff no
// in-progress call exists for the client in the campaign AND the client's
// non-deleted call count is below maxCalls" atomically, returning
// ErrReservationConflict when the condition fails. The engine never does a
// separate check-then-insert.
type Repository interface {
	// Callers.
	CallerByPhone(ctx context.Context, areaID, phone string) (Caller, bool, error)

	// Campaigns (read-only here; owned by the admin subsystem).
	ActiveCampaign(ctx context.Context, areaID string) (campaign.Campaign, bool, error)
	CampaignByID(ctx context.Context, id string) (campaign.Campaign, bool, error)

	// Clients.
	ClientByID(ctx context.Context, id string) (Client, bool, error)
	ClientByPhone(ctx context.Context, campaignID, phone string) (Client, bool, error)
	SoftDeleteClient(ctx context.Context, clientID string) error

	// Candidates returns every client enrolled in the campaign with its call
	// stats, ordered for selection: ranked sort groups first (ascending),
	// then fewest non-deleted calls, then oldest last call, then client ID.
	Candidates(ctx context.Context, campaignID string) ([]Candidate, error)

	// Calls.
	InProgressCallByCaller(ctx context.Context, callerID string) (Call, bool, error)
	TouchCall(ctx context.Context, callID string, at time.Time) error
	CreateInProgress(ctx context.Context, call Call, maxCalls int) error
	// FinishCall transitions the call out of in_progress iff it is still in
	// progress and owned by callerID; otherwise ErrNoActiveSession.
	FinishCall(ctx context.Context, callID, callerID string, status CallStatus, outcome, comment string, durationSeconds int, at time.Time) error
	// DeleteCall removes an in-progress call owned by callerID entirely
	// (give-up path); otherwise ErrNoActiveSession.
	DeleteCall(ctx context.Context, callID, callerID string) error

	// ClientHistory lists the client's calls in the campaign, oldest first.
	ClientHistory(ctx context.Context, clientID, campaignID string) ([]Call, error)
}
