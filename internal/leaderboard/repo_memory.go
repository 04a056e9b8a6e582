package leaderboard

import (
	"context"
	"errors"
	"sync"

	"phonebank/internal/assignment"
)

// MemoryRepo is an in-memory leaderboard source for tests and early
// development, fed with raw call and caller rows.
type MemoryRepo struct {
	mu sync.Mutex

	Calls   []assignment.Call
	Callers []assignment.Caller
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) CallCounts(ctx context.Context, campaignID string) ([]Entry, error) {
	if campaignID == "" {
		return nil, errors.New("campaign_id required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make(map[string]string, len(r.Callers))
	for _, c := range r.Callers {
		names[c.ID] = c.Name
	}

	counts := map[string]int{}
	for _, c := range r.Calls {
		if c.CampaignID != campaignID {
			continue
		}
		counts[c.CallerID]++
	}

	out := make([]Entry, 0, len(counts))
	for callerID, n := range counts {
		out = append(out, Entry{CallerID: callerID, CallerName: names[callerID], Calls: n})
	}
	return out, nil
}
