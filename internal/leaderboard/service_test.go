package leaderboard

import (
	"context"
	"testing"
	"time"

	"phonebank/internal/assignment"
)

func seededRepo() *MemoryRepo {
	repo := NewMemoryRepo()
	now := time.Unix(1700000000, 0).UTC()
	repo.Callers = []assignment.Caller{
		{ID: "a", Name: "Alice"},
		{ID: "b", Name: "Basil"},
		{ID: "c", Name: "Chen"},
		{ID: "d", Name: "Dana"},
	}
	mk := func(id, caller string, n int) {
		for i := 0; i < n; i++ {
			repo.Calls = append(repo.Calls, assignment.Call{
				ID: id + "-" + string(rune('0'+i)), CallerID: caller, CampaignID: "camp",
				Status: assignment.CallStatusDone, StartedAt: now,
			})
		}
	}
	mk("ka", "a", 5)
	mk("kb", "b", 3)
	mk("kc", "c", 3)
	mk("kd", "d", 1)
	return repo
}

func TestTopCallers_OrderAndTruncation(t *testing.T) {
	svc := NewService(seededRepo())

	top, err := svc.TopCallers(context.Background(), "camp", 2)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(top))
	}
	if top[0].CallerID != "a" || top[0].Rank != 1 {
		t.Fatalf("expected a first, got %+v", top[0])
	}
	// b and c tie on 3; caller id breaks the tie.
	if top[1].CallerID != "b" || top[1].Rank != 2 {
		t.Fatalf("expected b second, got %+v", top[1])
	}
}

func TestRankOf_ConsistentOutsideWindow(t *testing.T) {
	svc := NewService(seededRepo())

	// d is outside a top-2 window; its rank must match the full list.
	e, err := svc.RankOf(context.Background(), "camp", "d")
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if e.Rank != 4 || e.Calls != 1 {
		t.Fatalf("expected rank 4 with 1 call, got %+v", e)
	}

	// Tied caller ranks by position, consistent with TopCallers ordering.
	e, err = svc.RankOf(context.Background(), "camp", "c")
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if e.Rank != 3 {
		t.Fatalf("expected rank 3 for c, got %d", e.Rank)
	}
}

func TestRankOf_CallerWithoutCalls(t *testing.T) {
	svc := NewService(seededRepo())
	e, err := svc.RankOf(context.Background(), "camp", "nobody")
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if e.Rank != 5 || e.Calls != 0 {
		t.Fatalf("expected rank after the board with 0 calls, got %+v", e)
	}
}

func TestValidation(t *testing.T) {
	svc := NewService(seededRepo())
	if _, err := svc.TopCallers(context.Background(), "", 10); err != ErrInvalidRequest {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if _, err := svc.TopCallers(context.Background(), "camp", 0); err != ErrInvalidRequest {
		t.Fatalf("expected ErrInvalidRequest for zero limit, got %v", err)
	}
	if _, err := svc.RankOf(context.Background(), "camp", ""); err != ErrInvalidRequest {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}
