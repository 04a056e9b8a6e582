package assignment

import (
	"testing"
	"time"

	"phonebank/internal/campaign"
)

func TestClientCallable_Basics(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	camp := campaign.Campaign{ID: "camp", NbMaxCall: 3, TimeBetweenCalls: time.Hour}

	cand := Candidate{Client: Client{ID: "c1", CampaignID: "camp"}}
	if !ClientCallable(cand, camp, now) {
		t.Fatalf("fresh client should be callable")
	}

	cand.Client.Deleted = true
	if ClientCallable(cand, camp, now) {
		t.Fatalf("soft-deleted client must not be callable")
	}

	cand = Candidate{Client: Client{ID: "c1", CampaignID: "other"}}
	if ClientCallable(cand, camp, now) {
		t.Fatalf("client outside the campaign must not be callable")
	}

	cand = Candidate{Client: Client{ID: "c1", CampaignID: "camp"}, InProgress: true, CallCount: 1, LastStartedAt: now.Add(-2 * time.Hour)}
	if ClientCallable(cand, camp, now) {
		t.Fatalf("client held by another caller must not be callable")
	}
}

func TestClientCallable_CallCountCeiling(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	camp := campaign.Campaign{ID: "camp", NbMaxCall: 2, TimeBetweenCalls: 0}

	cand := Candidate{Client: Client{ID: "c1", CampaignID: "camp"}, CallCount: 2, LastStartedAt: now.Add(-24 * time.Hour)}
	if ClientCallable(cand, camp, now) {
		t.Fatalf("ceiling reached: not callable regardless of cool-down")
	}

	cand.CallCount = 1
	if !ClientCallable(cand, camp, now) {
		t.Fatalf("below ceiling with elapsed cool-down: callable")
	}
}

func TestClientCallable_CoolDownBoundary(t *testing.T) {
	start := time.Unix(1700000000, 0).UTC()
	camp := campaign.Campaign{ID: "camp", NbMaxCall: 5, TimeBetweenCalls: 30 * time.Minute}
	cand := Candidate{Client: Client{ID: "c1", CampaignID: "camp"}, CallCount: 1, LastStartedAt: start}

	if ClientCallable(cand, camp, start.Add(30*time.Minute-time.Nanosecond)) {
		t.Fatalf("not callable strictly before start + cool-down")
	}
	if !ClientCallable(cand, camp, start.Add(30*time.Minute)) {
		t.Fatalf("callable at exactly start + cool-down")
	}
	if !ClientCallable(cand, camp, start.Add(31*time.Minute)) {
		t.Fatalf("callable after the cool-down")
	}
}
