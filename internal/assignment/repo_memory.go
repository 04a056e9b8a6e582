package assignment

import (
	"context"
	"sort"
	"sync"
	"time"

	"phonebank/internal/campaign"
)

// MemoryRepo is an in-memory repository for tests and early development.
// The mutex gives it the same atomicity the Postgres implementation gets
// from conditional writes: CreateInProgress checks and inserts under one
// critical section, so racing goroutines observe ErrReservationConflict
// exactly like racing requests observe a failed conditional insert.
type MemoryRepo struct {
	mu sync.Mutex

	Callers   []Caller
	Campaigns []campaign.Campaign
	Clients   []Client
	Calls     []Call
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) CallerByPhone(ctx context.Context, areaID, phone string) (Caller, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.Callers {
		if c.AreaID == areaID && c.Phone == phone {
			return c, true, nil
		}
	}
	return Caller{}, false, nil
}

func (r *MemoryRepo) UpdateCallerPin(ctx context.Context, callerID, pin string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.Callers {
		if r.Callers[i].ID == callerID {
			r.Callers[i].Pin = pin
			return nil
		}
	}
	return nil
}

func (r *MemoryRepo) ActiveCampaign(ctx context.Context, areaID string) (campaign.Campaign, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.Campaigns {
		if c.AreaID == areaID && c.Active {
			return c, true, nil
		}
	}
	return campaign.Campaign{}, false, nil
}

func (r *MemoryRepo) CampaignByID(ctx context.Context, id string) (campaign.Campaign, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.Campaigns {
		if c.ID == id {
			return c, true, nil
		}
	}
	return campaign.Campaign{}, false, nil
}

func (r *MemoryRepo) ClientByID(ctx context.Context, id string) (Client, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.Clients {
		if c.ID == id {
			return c, true, nil
		}
	}
	return Client{}, false, nil
}

func (r *MemoryRepo) ClientByPhone(ctx context.Context, campaignID, phone string) (Client, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.Clients {
		if c.CampaignID == campaignID && c.Phone == phone {
			return c, true, nil
		}
	}
	return Client{}, false, nil
}

func (r *MemoryRepo) SoftDeleteClient(ctx context.Context, clientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.Clients {
		if r.Clients[i].ID == clientID {
			r.Clients[i].Deleted = true
			return nil
		}
	}
	return nil
}

func (r *MemoryRepo) Candidates(ctx context.Context, campaignID string) ([]Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Candidate, 0)
	for _, cl := range r.Clients {
		if cl.CampaignID != campaignID {
			continue
		}
		cand := Candidate{Client: cl}
		for _, call := range r.Calls {
			if call.ClientID != cl.ID || call.CampaignID != campaignID {
				continue
			}
			if call.Status == CallStatusDeleted {
				continue
			}
			cand.CallCount++
			if call.StartedAt.After(cand.LastStartedAt) {
				cand.LastStartedAt = call.StartedAt
			}
			if call.Status == CallStatusInProgress {
				cand.InProgress = true
			}
		}
		out = append(out, cand)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		ra, rb := sortGroupRank(a.Client.SortGroup), sortGroupRank(b.Client.SortGroup)
		if ra != rb {
			return ra < rb
		}
		if a.CallCount != b.CallCount {
			return a.CallCount < b.CallCount
		}
		if !a.LastStartedAt.Equal(b.LastStartedAt) {
			return a.LastStartedAt.Before(b.LastStartedAt)
		}
		return a.Client.ID < b.Client.ID
	})
	return out, nil
}

// sortGroupRank orders ranked clients before unranked ones (sort_group 0).
func sortGroupRank(g int) int {
	if g == 0 {
		return int(^uint(0) >> 1)
	}
	return g
}

func (r *MemoryRepo) InProgressCallByCaller(ctx context.Context, callerID string) (Call, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.Calls {
		if c.CallerID == callerID && c.Status == CallStatusInProgress {
			return c, true, nil
		}
	}
	return Call{}, false, nil
}

func (r *MemoryRepo) TouchCall(ctx context.Context, callID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.Calls {
		if r.Calls[i].ID == callID {
			r.Calls[i].LastInteraction = at
			return nil
		}
	}
	return ErrNoActiveSession
}

func (r *MemoryRepo) CreateInProgress(ctx context.Context, call Call, maxCalls int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, c := range r.Calls {
		if c.ClientID != call.ClientID || c.CampaignID != call.CampaignID {
			continue
		}
		if c.Status == CallStatusInProgress {
			return ErrReservationConflict
		}
		if c.Status != CallStatusDeleted {
			count++
		}
	}
	if count >= maxCalls {
		return ErrReservationConflict
	}

	call.Status = CallStatusInProgress
	r.Calls = append(r.Calls, call)
	return nil
}

func (r *MemoryRepo) FinishCall(ctx context.Context, callID, callerID string, status CallStatus, outcome, comment string, durationSeconds int, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.Calls {
		c := &r.Calls[i]
		if c.ID != callID || c.CallerID != callerID || c.Status != CallStatusInProgress {
			continue
		}
		c.Status = status
		c.Outcome = outcome
		c.Comment = comment
		c.DurationSeconds = durationSeconds
		c.LastInteraction = at
		return nil
	}
	return ErrNoActiveSession
}

func (r *MemoryRepo) DeleteCall(ctx context.Context, callID, callerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.Calls {
		c := r.Calls[i]
		if c.ID != callID || c.CallerID != callerID || c.Status != CallStatusInProgress {
			continue
		}
		r.Calls = append(r.Calls[:i], r.Calls[i+1:]...)
		return nil
	}
	return ErrNoActiveSession
}

func (r *MemoryRepo) ClientHistory(ctx context.Context, clientID, campaignID string) ([]Call, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, 0)
	for _, c := range r.Calls {
		if c.ClientID == clientID && c.CampaignID == campaignID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out, nil
}
