package service

import (
	"context"
	"errors"
	"testing"

	"github.com/veluxora/auction-engine/internal/core/domain"
)

func TestRegistryServiceRegister(t *testing.T) {
	repo := newStubRegistryRepo()
	publisher := &stubPublisher{}
	svc := NewRegistryService(repo, publisher, discardLogger)
	svc.nowFn = fixedClock(0)

	p, err := svc.Register(context.Background(), "alice", "kyc-1a2b")
	if err != nil {
		t.Fatalf("Register: unexpected error: %v", err)
	}
	if p.ID != "alice" || p.KYCHash != "kyc-1a2b" {
		t.Errorf("unexpected participant: %+v", p)
	}
	if !p.RegisteredAt.Equal(baseTime) {
		t.Errorf("RegisteredAt = %v, want %v", p.RegisteredAt, baseTime)
	}

	if len(publisher.events) != 1 {
		t.Fatalf("published %d events, want 1", len(publisher.events))
	}
	ev := publisher.events[0]
	if ev.Type != domain.EventUserRegistered || ev.Actor != "alice" {
		t.Errorf("unexpected event: %+v", ev)
	}
}

func TestRegistryServiceRegisterTwice(t *testing.T) {
	svc := NewRegistryService(newStubRegistryRepo("alice"), &stubPublisher{}, discardLogger)

	if _, err := svc.Register(context.Background(), "alice", "kyc-2"); !errors.Is(err, domain.ErrAlreadyRegistered) {
		t.Fatalf("Register twice: got %v, want ErrAlreadyRegistered", err)
	}
}

func TestRegistryServiceIsRegistered(t *testing.T) {
	svc := NewRegistryService(newStubRegistryRepo("alice"), &stubPublisher{}, discardLogger)

	ok, err := svc.IsRegistered(context.Background(), "alice")
	if err != nil || !ok {
		t.Errorf("IsRegistered(alice) = %v, %v; want true, nil", ok, err)
	}

	ok, err = svc.IsRegistered(context.Background(), "mallory")
	if err != nil {
		t.Fatalf("IsRegistered(mallory): unexpected error: %v", err)
	}
	if ok {
		t.Error("IsRegistered(mallory) = true for an unknown identity")
	}
}
