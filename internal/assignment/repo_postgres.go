package assignment

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"phonebank/internal/campaign"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresRepo implements Repository over database/sql (pgx stdlib driver).
//
// NOTE: This repository assumes the following tables exist:
// - callers
// - campaigns, campaign_outcomes (position-ordered vocabulary)
// - clients (soft-deleted via deleted flag)
// - calls
//
// It also assumes the partial unique index that backs the reservation
// conditional insert:
//
//	CREATE UNIQUE INDEX calls_one_in_progress_per_client
//	ON calls (client_id, campaign_id) WHERE status = 'in_progress';
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) CallerByPhone(ctx context.Context, areaID, phone string) (Caller, bool, error) {
	const q = `
SELECT id, area_id, name, phone, pin, created_at
FROM callers
WHERE area_id = $1 AND phone = $2
`
	return r.scanCaller(r.db.QueryRowContext(ctx, q, areaID, phone))
}

func (r *PostgresRepo) scanCaller(row *sql.Row) (Caller, bool, error) {
	var c Caller
	if err := row.Scan(&c.ID, &c.AreaID, &c.Name, &c.Phone, &c.Pin, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Caller{}, false, nil
		}
		return Caller{}, false, err
	}
	return c, true, nil
}

func (r *PostgresRepo) UpdateCallerPin(ctx context.Context, callerID, pin string) error {
	const q = `UPDATE callers SET pin = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, callerID, pin)
	return err
}

func (r *PostgresRepo) ActiveCampaign(ctx context.Context, areaID string) (campaign.Campaign, bool, error) {
	const q = `
SELECT id, area_id, name, active, call_permitted, nb_max_call,
       time_between_calls_ms, call_hours_start, call_hours_end, script,
       created_at, updated_at
FROM campaigns
WHERE area_id = $1 AND active = TRUE
LIMIT 1
`
	return r.scanCampaign(ctx, r.db.QueryRowContext(ctx, q, areaID))
}

func (r *PostgresRepo) CampaignByID(ctx context.Context, id string) (campaign.Campaign, bool, error) {
	const q = `
SELECT id, area_id, name, active, call_permitted, nb_max_call,
       time_between_calls_ms, call_hours_start, call_hours_end, script,
       created_at, updated_at
FROM campaigns
WHERE id = $1
`
	return r.scanCampaign(ctx, r.db.QueryRowContext(ctx, q, id))
}

func (r *PostgresRepo) scanCampaign(ctx context.Context, row *sql.Row) (campaign.Campaign, bool, error) {
	var c campaign.Campaign
	var betweenMs int64
	err := row.Scan(
		&c.ID,
		&c.AreaID,
		&c.Name,
		&c.Active,
		&c.CallPermitted,
		&c.NbMaxCall,
		&betweenMs,
		&c.CallHoursStart,
		&c.CallHoursEnd,
		&c.Script,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return campaign.Campaign{}, false, nil
		}
		return campaign.Campaign{}, false, err
	}
	c.TimeBetweenCalls = time.Duration(betweenMs) * time.Millisecond

	outcomes, err := r.campaignOutcomes(ctx, c.ID)
	if err != nil {
		return campaign.Campaign{}, false, err
	}
	c.Outcomes = outcomes
	return c, true, nil
}

func (r *PostgresRepo) campaignOutcomes(ctx context.Context, campaignID string) ([]campaign.Outcome, error) {
	const q = `
SELECT label, recall
FROM campaign_outcomes
WHERE campaign_id = $1
ORDER BY position
`
	rows, err := r.db.QueryContext(ctx, q, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []campaign.Outcome
	for rows.Next() {
		var o campaign.Outcome
		if err := rows.Scan(&o.Label, &o.Recall); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) ClientByID(ctx context.Context, id string) (Client, bool, error) {
	const q = `
SELECT id, campaign_id, name, phone, city, sort_group, deleted, created_at
FROM clients
WHERE id = $1
`
	return scanClient(r.db.QueryRowContext(ctx, q, id))
}

func (r *PostgresRepo) ClientByPhone(ctx context.Context, campaignID, phone string) (Client, bool, error) {
	const q = `
SELECT id, campaign_id, name, phone, city, sort_group, deleted, created_at
FROM clients
WHERE campaign_id = $1 AND phone = $2
`
	return scanClient(r.db.QueryRowContext(ctx, q, campaignID, phone))
}

func scanClient(row *sql.Row) (Client, bool, error) {
	var c Client
	if err := row.Scan(&c.ID, &c.CampaignID, &c.Name, &c.Phone, &c.City, &c.SortGroup, &c.Deleted, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Client{}, false, nil
		}
		return Client{}, false, err
	}
	return c, true, nil
}

func (r *PostgresRepo) SoftDeleteClient(ctx context.Context, clientID string) error {
	const q = `UPDATE clients SET deleted = TRUE WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, clientID)
	return err
}

func (r *PostgresRepo) Candidates(ctx context.Context, campaignID string) ([]Candidate, error) {
	// Selection order: ranked sort groups first, then fewest prior calls,
	// then oldest last call, then client id for determinism.
	const q = `
SELECT cl.id, cl.campaign_id, cl.name, cl.phone, cl.city, cl.sort_group, cl.deleted, cl.created_at,
       COUNT(ca.id) FILTER (WHERE ca.status <> 'deleted')            AS call_count,
       COALESCE(MAX(ca.started_at), 'epoch'::timestamptz)            AS last_started_at,
       BOOL_OR(ca.status = 'in_progress') IS TRUE                    AS in_progress
FROM clients cl
LEFT JOIN calls ca ON ca.client_id = cl.id AND ca.campaign_id = cl.campaign_id
WHERE cl.campaign_id = $1 AND cl.deleted = FALSE
GROUP BY cl.id
ORDER BY CASE WHEN cl.sort_group = 0 THEN 2147483647 ELSE cl.sort_group END,
         call_count,
         last_started_at,
         cl.id
`
	rows, err := r.db.QueryContext(ctx, q, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Candidate
	for rows.Next() {
		var cand Candidate
		c := &cand.Client
		if err := rows.Scan(
			&c.ID, &c.CampaignID, &c.Name, &c.Phone, &c.City, &c.SortGroup, &c.Deleted, &c.CreatedAt,
			&cand.CallCount, &cand.LastStartedAt, &cand.InProgress,
		); err != nil {
			return nil, err
		}
		if cand.CallCount == 0 {
			cand.LastStartedAt = time.Time{}
		}
		out = append(out, cand)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) InProgressCallByCaller(ctx context.Context, callerID string) (Call, bool, error) {
	const q = `
SELECT id, client_id, caller_id, campaign_id, status, outcome, comment,
       duration_seconds, started_at, last_interaction
FROM calls
WHERE caller_id = $1 AND status = 'in_progress'
LIMIT 1
`
	var c Call
	err := r.db.QueryRowContext(ctx, q, callerID).Scan(
		&c.ID, &c.ClientID, &c.CallerID, &c.CampaignID, &c.Status,
		&c.Outcome, &c.Comment, &c.DurationSeconds, &c.StartedAt, &c.LastInteraction,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Call{}, false, nil
		}
		return Call{}, false, err
	}
	return c, true, nil
}

func (r *PostgresRepo) TouchCall(ctx context.Context, callID string, at time.Time) error {
	const q = `
UPDATE calls SET last_interaction = $2
WHERE id = $1 AND status = 'in_progress'
`
	res, err := r.db.ExecContext(ctx, q, callID, at)
	if err != nil {
		return err
	}
	return requireRow(res, ErrNoActiveSession)
}

// CreateInProgress is the reservation conditional write: one statement that
// inserts the in-progress call only while no other in-progress call exists
// for the client in the campaign and the client's non-deleted call count is
// below maxCalls. A racing caller makes the statement insert zero rows (or
// trip the partial unique index); both read as a reservation conflict.
func (r *PostgresRepo) CreateInProgress(ctx context.Context, call Call, maxCalls int) error {
	const q = `
INSERT INTO calls (id, client_id, caller_id, campaign_id, status, outcome, comment,
                   duration_seconds, started_at, last_interaction)
SELECT $1, $2, $3, $4, 'in_progress', '', '', 0, $5, $5
WHERE NOT EXISTS (
        SELECT 1 FROM calls
        WHERE client_id = $2 AND campaign_id = $4 AND status = 'in_progress'
      )
  AND (SELECT COUNT(*) FROM calls
       WHERE client_id = $2 AND campaign_id = $4 AND status <> 'deleted') < $6
`
	res, err := r.db.ExecContext(ctx, q,
		call.ID, call.ClientID, call.CallerID, call.CampaignID, call.StartedAt, maxCalls,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrReservationConflict
		}
		return err
	}
	return requireRow(res, ErrReservationConflict)
}

func (r *PostgresRepo) FinishCall(ctx context.Context, callID, callerID string, status CallStatus, outcome, comment string, durationSeconds int, at time.Time) error {
	const q = `
UPDATE calls
SET status = $3, outcome = $4, comment = $5, duration_seconds = $6, last_interaction = $7
WHERE id = $1 AND caller_id = $2 AND status = 'in_progress'
`
	res, err := r.db.ExecContext(ctx, q, callID, callerID, string(status), outcome, comment, durationSeconds, at)
	if err != nil {
		return err
	}
	return requireRow(res, ErrNoActiveSession)
}

func (r *PostgresRepo) DeleteCall(ctx context.Context, callID, callerID string) error {
	const q = `
DELETE FROM calls
WHERE id = $1 AND caller_id = $2 AND status = 'in_progress'
`
	res, err := r.db.ExecContext(ctx, q, callID, callerID)
	if err != nil {
		return err
	}
	return requireRow(res, ErrNoActiveSession)
}

func (r *PostgresRepo) ClientHistory(ctx context.Context, clientID, campaignID string) ([]Call, error) {
	const q = `
SELECT id, client_id, caller_id, campaign_id, status, outcome, comment,
       duration_seconds, started_at, last_interaction
FROM calls
WHERE client_id = $1 AND campaign_id = $2
ORDER BY started_at
`
	rows, err := r.db.QueryContext(ctx, q, clientID, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Call
	for rows.Next() {
		var c Call
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

func requireRow(res sql.Result, sentinel error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sentinel
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
