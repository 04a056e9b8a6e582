package reporting

import (
	"context"
	"database/sql"

	"phonebank/internal/assignment"
)

// PostgresRepo reads call rows for aggregation.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) ListCalls(ctx context.Context, campaignID string) ([]assignment.Call, error) {
	const q = `
SELECT id, client_id, caller_id, campaign_id, status, outcome, comment,
       duration_seconds, started_at, last_interaction
FROM calls
WHERE campaign_id = $1
ORDER BY started_at
`
	rows, err := r.db.QueryContext(ctx, q, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []assignment.Call
	for rows.Next() {
		var c assignment.Call
		if err := rows.Scan(
			&c.ID, &c.ClientID, &c.CallerID, &c.CampaignID, &c.Status,
			&c.Outcome, &c.Comment, &c.DurationSeconds, &c.StartedAt, &c.LastInteraction,
		); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
