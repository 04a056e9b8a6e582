package reporting

// CampaignSummaryRequest requests aggregated session metrics for a campaign.
type CampaignSummaryRequest struct {
	CampaignID string `json:"campaign_id"`
}

// CampaignSummary aggregates a campaign's call sessions for the admin and
// export surfaces. Conversions are per-outcome counts; the outcome labels
// come from the campaign's own vocabulary.
type CampaignSummary struct {
	CampaignID string `json:"campaign_id"`

	TotalSessions   int `json:"total_sessions"`
	InProgress      int `json:"in_progress"`
	CompletedCalls  int `json:"completed_calls"`
	RemovedClients  int `json:"removed_clients"`
	UniqueClients   int `json:"unique_clients"`
	TotalDurationS  int `json:"total_duration_seconds"`
	AverageDuration int `json:"average_duration_seconds"`

	ByOutcome map[string]int `json:"by_outcome"`
}
