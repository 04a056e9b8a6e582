package auth

import (
	"context"
	"errors"
	"testing"

	"phonebank/internal/assignment"
)

func callerStore() *assignment.MemoryRepo {
	repo := assignment.NewMemoryRepo()
	repo.Callers = []assignment.Caller{
		{ID: "caller-1", AreaID: "area", Phone: "+33600000001", Pin: "1234"},
	}
	return repo
}

func TestAuthenticate_Success(t *testing.T) {
	a := NewAuthenticator(callerStore(), nil, 5, 0)
	c, err := a.Authenticate(context.Background(), "area", "+33600000001", "1234")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if c.ID != "caller-1" {
		t.Fatalf("unexpected caller: %+v", c)
	}
}

func TestAuthenticate_RejectsBadPin(t *testing.T) {
	a := NewAuthenticator(callerStore(), nil, 5, 0)
	if _, err := a.Authenticate(context.Background(), "area", "+33600000001", "0000"); !errors.Is(err, ErrCredentialInvalid) {
		t.Fatalf("expected ErrCredentialInvalid, got %v", err)
	}
}

func TestAuthenticate_RejectsUnknownPhoneAndWrongArea(t *testing.T) {
	a := NewAuthenticator(callerStore(), nil, 5, 0)
	if _, err := a.Authenticate(context.Background(), "area", "+33600009999", "1234"); !errors.Is(err, ErrCredentialInvalid) {
		t.Fatalf("expected ErrCredentialInvalid for unknown phone, got %v", err)
	}
	if _, err := a.Authenticate(context.Background(), "other-area", "+33600000001", "1234"); !errors.Is(err, ErrCredentialInvalid) {
		t.Fatalf("expected ErrCredentialInvalid for wrong area, got %v", err)
	}
}

func TestAuthenticate_RejectsEmptyInput(t *testing.T) {
	a := NewAuthenticator(callerStore(), nil, 5, 0)
	if _, err := a.Authenticate(context.Background(), "", "+33600000001", "1234"); !errors.Is(err, ErrCredentialInvalid) {
		t.Fatalf("expected ErrCredentialInvalid for empty area, got %v", err)
	}
	if _, err := a.Authenticate(context.Background(), "area", "+33600000001", ""); !errors.Is(err, ErrCredentialInvalid) {
		t.Fatalf("expected ErrCredentialInvalid for empty pin, got %v", err)
	}
}
