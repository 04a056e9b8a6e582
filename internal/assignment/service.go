package assignment

import (
	"context"
	"errors"
	"time"

	"phonebank/internal/campaign"

	"github.com/google/uuid"
)

// Service is the call assignment and session engine.
//
// Concurrency model: handlers run concurrently and hold no in-process locks;
// every write is a single conditional operation applied by the repository.
// Two callers racing for the same client are serialized by
// CreateInProgress; the loser observes ErrReservationConflict and candidate
// selection is re-run a bounded number of times.
//
// Session lifecycle: reserve opens a call in progress; the same caller
// reserving again resumes it (refreshing last_interaction); complete
// transitions it to done or deleted exactly once; give-up removes it without
// recording anything. An abandoned session stays resumable by its owner and
// blocks the client for everyone else until completed or given up; there is
// no automatic expiry, only the persisted last_interaction for external
// housekeeping.
type Service struct {
	repo  Repository
	clock func() time.Time

	maxRetries       int
	enforceCallHours bool
}

// Options tunes engine behavior; zero values get safe defaults.
type Options struct {
	ReserveMaxRetries int
	EnforceCallHours  bool
}

func NewService(repo Repository, opts Options) *Service {
	retries := opts.ReserveMaxRetries
	if retries <= 0 {
		retries = 3
	}
	return &Service{
		repo:             repo,
		clock:            time.Now,
		maxRetries:       retries,
		enforceCallHours: opts.EnforceCallHours,
	}
}

var (
	ErrInvalidArgument = errors.New("assignment: invalid argument")

	// Expected outcomes, not failures: the campaign is closed to calls, or
	// no client is eligible right now.
	ErrCampaignNotCallable = errors.New("assignment: campaign not callable")
	ErrNoCandidate         = errors.New("assignment: no eligible client")

	ErrNoActiveSession = errors.New("assignment: no active session")

	// ErrReservationConflict is returned by repositories when a conditional
	// insert loses a race. Internal: Reserve retries and never surfaces it.
	ErrReservationConflict = errors.New("assignment: reservation conflict")
)

// MaxCallDuration bounds client-reported call durations so corrupt values
// cannot skew stats.
const MaxCallDuration = 20 * time.Minute

// Reservation is what a caller receives when handed a client.
type Reservation struct {
	Call   Call   `json:"call"`
	Client Client `json:"client"`

	Script   string             `json:"script"`
	Outcomes []campaign.Outcome `json:"outcomes"`

	// Resumed marks an existing session returned to its owner; History then
	// holds the client's prior calls in the campaign so a reconnecting
	// caller sees what was already said.
	Resumed bool   `json:"resumed"`
	History []Call `json:"history,omitempty"`
}

// Reserve hands the caller an exclusive session: their own in-progress call
// if one exists, otherwise a fresh session on the best eligible client of
// the area's active campaign.
func (s *Service) Reserve(ctx context.Context, callerID, areaID string) (Reservation, error) {
	if callerID == "" || areaID == "" {
		return Reservation{}, ErrInvalidArgument
	}

	camp, ok, err := s.repo.ActiveCampaign(ctx, areaID)
	if err != nil {
		return Reservation{}, err
	}
	// "No active campaign" and "campaign paused" are the same outcome for
	// the caller.
	if !ok || !camp.Callable() {
		return Reservation{}, ErrCampaignNotCallable
	}
	now := s.clock().UTC()
	if s.enforceCallHours && !camp.WithinCallHours(now) {
		return Reservation{}, ErrCampaignNotCallable
	}

	// Resume path: a caller who reserves twice without finishing gets the
	// same client back.
	if existing, ok, err := s.repo.InProgressCallByCaller(ctx, callerID); err != nil {
		return Reservation{}, err
	} else if ok {
		return s.resume(ctx, existing, now)
	}

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		cands, err := s.repo.Candidates(ctx, camp.ID)
		if err != nil {
			return Reservation{}, err
		}

		var chosen *Candidate
		for i := range cands {
			if ClientCallable(cands[i], camp, now) {
				chosen = &cands[i]
				break
			}
		}
		if chosen == nil {
			return Reservation{}, ErrNoCandidate
		}

		call := Call{
			ID:              uuid.NewString(),
			ClientID:        chosen.Client.ID,
			CallerID:        callerID,
			CampaignID:      camp.ID,
			Status:          CallStatusInProgress,
			StartedAt:       now,
			LastInteraction: now,
		}
		err = s.repo.CreateInProgress(ctx, call, camp.NbMaxCall)
		if errors.Is(err, ErrReservationConflict) {
			// Lost the race for this client; pick again.
			continue
		}
		if err != nil {
			return Reservation{}, err
		}

		return Reservation{
			Call:     call,
			Client:   chosen.Client,
			Script:   camp.Script,
			Outcomes: camp.Outcomes,
		}, nil
	}

	// Every attempt lost its race; from the caller's view there is simply
	// no client available right now.
	return Reservation{}, ErrNoCandidate
}

func (s *Service) resume(ctx context.Context, call Call, now time.Time) (Reservation, error) {
	if err := s.repo.TouchCall(ctx, call.ID, now); err != nil {
		return Reservation{}, err
	}
	call.LastInteraction = now

	camp, ok, err := s.repo.CampaignByID(ctx, call.CampaignID)
	if err != nil {
		return Reservation{}, err
	}
	if !ok {
		return Reservation{}, ErrCampaignNotCallable
	}
	client, ok, err := s.repo.ClientByID(ctx, call.ClientID)
	if err != nil {
		return Reservation{}, err
	}
	if !ok {
		return Reservation{}, ErrNoActiveSession
	}
	history, err := s.repo.ClientHistory(ctx, call.ClientID, call.CampaignID)
	if err != nil {
		return Reservation{}, err
	}

	return Reservation{
		Call:     call,
		Client:   client,
		Script:   camp.Script,
		Outcomes: camp.Outcomes,
		Resumed:  true,
		History:  history,
	}, nil
}

// CompleteRequest closes a session. The client may be referenced by ID or by
// phone; it must match the caller's in-progress session.
type CompleteRequest struct {
	ClientID    string `json:"client_id,omitempty"`
	ClientPhone string `json:"client_phone,omitempty"`

	Outcome         string `json:"outcome"`
	Comment         string `json:"comment,omitempty"`
	DurationSeconds int    `json:"duration_seconds"`
}

// Complete transitions the caller's in-progress session to done, or to
// deleted when the outcome is the remove sentinel (which also soft-deletes
// the client so it is never selected again).
func (s *Service) Complete(ctx context.Context, callerID string, req CompleteRequest) (Call, error) {
	if callerID == "" {
		return Call{}, ErrInvalidArgument
	}
	if req.Outcome == "" {
		return Call{}, ErrInvalidArgument
	}
	if req.ClientID == "" && req.ClientPhone == "" {
		return Call{}, ErrInvalidArgument
	}
	if req.DurationSeconds < 0 {
		return Call{}, ErrInvalidArgument
	}

	call, ok, err := s.repo.InProgressCallByCaller(ctx, callerID)
	if err != nil {
		return Call{}, err
	}
	if !ok {
		return Call{}, ErrNoActiveSession
	}

	camp, ok, err := s.repo.CampaignByID(ctx, call.CampaignID)
	if err != nil {
		return Call{}, err
	}
	if !ok {
		return Call{}, ErrNoActiveSession
	}

	clientID := req.ClientID
	if clientID == "" {
		client, ok, err := s.repo.ClientByPhone(ctx, call.CampaignID, req.ClientPhone)
		if err != nil {
			return Call{}, err
		}
		if !ok {
			return Call{}, ErrNoActiveSession
		}
		clientID = client.ID
	}
	if clientID != call.ClientID {
		// The referenced client is not the one this caller holds.
		return Call{}, ErrNoActiveSession
	}

	if !camp.ValidOutcome(req.Outcome) {
		return Call{}, ErrInvalidArgument
	}

	duration := req.DurationSeconds
	if max := int(MaxCallDuration.Seconds()); duration > max {
		duration = max
	}

	status := CallStatusDone
	if req.Outcome == campaign.OutcomeRemove {
		status = CallStatusDeleted
	}

	now := s.clock().UTC()
	if err := s.repo.FinishCall(ctx, call.ID, callerID, status, req.Outcome, req.Comment, duration, now); err != nil {
		return Call{}, err
	}

	if status == CallStatusDeleted {
		if err := s.repo.SoftDeleteClient(ctx, call.ClientID); err != nil {
			return Call{}, err
		}
	}

	call.Status = status
	call.Outcome = req.Outcome
	call.Comment = req.Comment
	call.DurationSeconds = duration
	call.LastInteraction = now
	return call, nil
}

// GiveUp discards the caller's in-progress session without recording an
// outcome. The row is removed entirely, so the client is selectable again
// immediately, with no cool-down and no history of the abandoned attempt.
func (s *Service) GiveUp(ctx context.Context, callerID string) error {
	if callerID == "" {
		return ErrInvalidArgument
	}
	call, ok, err := s.repo.InProgressCallByCaller(ctx, callerID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoActiveSession
	}
	return s.repo.DeleteCall(ctx, call.ID, callerID)
}

// History exposes a client's call history within a campaign for the admin
// and reporting surfaces.
func (s *Service) History(ctx context.Context, clientID, campaignID string) ([]Call, error) {
	if clientID == "" || campaignID == "" {
		return nil, ErrInvalidArgument
	}
	return s.repo.ClientHistory(ctx, clientID, campaignID)
}
