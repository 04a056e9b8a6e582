package leaderboard

import (
	"context"
	"database/sql"
)

// PostgresRepo reads call counts with a single grouped query.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) CallCounts(ctx context.Context, campaignID string) ([]Entry, error) {
	const q = `
SELECT ca.caller_id, COALESCE(c.name, ''), COUNT(*)
FROM calls ca
LEFT JOIN callers c ON c.id = ca.caller_id
WHERE ca.campaign_id = $1
GROUP BY ca.caller_id, c.name
`
	rows, err := r.db.QueryContext(ctx, q, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.CallerID, &e.CallerName, &e.Calls); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
