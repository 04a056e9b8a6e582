package reporting

import (
	"context"
	"errors"
	"sync"

	"phonebank/internal/assignment"
)

// MemoryRepo is a simple in-memory reporting repository for tests and early
// development.
type MemoryRepo struct {
	mu sync.Mutex

	Calls []assignment.Call
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) ListCalls(ctx context.Context, campaignID string) ([]assignment.Call, error) {
	if campaignID == "" {
		return nil, errors.New("campaign_id required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]assignment.Call, 0)
	for _, c := range r.Calls {
		if c.CampaignID == campaignID {
			out = append(out, c)
		}
	}
	return out, nil
}
