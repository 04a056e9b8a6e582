package leaderboard

import (
	"context"
	"errors"
	"sort"
)

// Repository abstracts the read-only call counts the leaderboard needs.
// Counts cover every call row a caller has in the campaign, whatever its
// status: abandoned sessions leave no row, so they never score.
type Repository interface {
	CallCounts(ctx context.Context, campaignID string) ([]Entry, error)
}

// Entry is one caller's score within a campaign.
type Entry struct {
	CallerID   string `json:"caller_id"`
	CallerName string `json:"caller_name,omitempty"`
	Calls      int    `json:"calls"`

	// Rank is filled by the service, 1-based.
	Rank int `json:"rank"`
}

var ErrInvalidRequest = errors.New("leaderboard: invalid request")

// Service ranks callers by session volume. Read-only: it never touches
// session state.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

// TopCallers returns the first limit callers ordered by call count
// descending, ties broken by caller ID ascending for determinism.
func (s *Service) TopCallers(ctx context.Context, campaignID string, limit int) ([]Entry, error) {
	if campaignID == "" || limit <= 0 {
		return nil, ErrInvalidRequest
	}
	ranked, err := s.ranked(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// RankOf returns the caller's 1-based position, consistent with TopCallers
// even when the caller falls outside any truncated window: the rank is
// computed over the full population, 1 + the number of callers with
// strictly more calls (ID order breaks ties within a count).
func (s *Service) RankOf(ctx context.Context, campaignID, callerID string) (Entry, error) {
	if campaignID == "" || callerID == "" {
		return Entry{}, ErrInvalidRequest
	}
	ranked, err := s.ranked(ctx, campaignID)
	if err != nil {
		return Entry{}, err
	}
	for _, e := range ranked {
		if e.CallerID == callerID {
			return e, nil
		}
	}
	// A caller with no calls yet ranks after everyone on the board.
	return Entry{CallerID: callerID, Calls: 0, Rank: len(ranked) + 1}, nil
}

func (s *Service) ranked(ctx context.Context, campaignID string) ([]Entry, error) {
	if s.repo == nil {
		return nil, errors.New("leaderboard: repository not configured")
	}
	entries, err := s.repo.CallCounts(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Calls != entries[j].Calls {
			return entries[i].Calls > entries[j].Calls
		}
		return entries[i].CallerID < entries[j].CallerID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
