package reporting

import (
	"context"
	"errors"

	"phonebank/internal/assignment"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Repository abstracts data access for reporting.
//
// Read-only by design: reporting must never mutate session state. Calls are
// effectively immutable once out of in_progress, which makes these scans
// safe to run while callers work.
type Repository interface {
	ListCalls(ctx context.Context, campaignID string) ([]assignment.Call, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

// CampaignSummary aggregates sessions by outcome for one campaign:
// total sessions, unique clients reached, and per-outcome conversions.
func (s *Service) CampaignSummary(ctx context.Context, req CampaignSummaryRequest) (CampaignSummary, error) {
	if req.CampaignID == "" {
		return CampaignSummary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return CampaignSummary{}, errors.New("reporting: repository not configured")
	}

	rows, err := s.repo.ListCalls(ctx, req.CampaignID)
	if err != nil {
		return CampaignSummary{}, err
	}

	out := CampaignSummary{CampaignID: req.CampaignID, ByOutcome: map[string]int{}}
	clients := map[string]struct{}{}
	for _, c := range rows {
		out.TotalSessions++
		out.TotalDurationS += c.DurationSeconds
		clients[c.ClientID] = struct{}{}

		switch c.Status {
		case assignment.CallStatusInProgress:
			out.InProgress++
		case assignment.CallStatusDone:
			out.CompletedCalls++
			out.ByOutcome[c.Outcome]++
		case assignment.CallStatusDeleted:
			out.RemovedClients++
			out.ByOutcome[c.Outcome]++
		}
	}
	out.UniqueClients = len(clients)
	if out.TotalSessions > 0 {
		out.AverageDuration = out.TotalDurationS / out.TotalSessions
	}
	return out, nil
}
