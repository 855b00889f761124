package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRegistryFirstAndLast(t *testing.T) {
	r := NewPresenceRegistry()
	userID := uuid.New()

	if !r.Connect(userID, "a") {
		t.Error("first connection not reported as first")
	}
	if r.Connect(userID, "b") {
		t.Error("second connection reported as first")
	}
	if got := r.SessionCount(userID); got != 2 {
		t.Errorf("session count = %d, want 2", got)
	}

	last, known := r.Disconnect(userID, "a")
	if !known || last {
		t.Errorf("disconnect a: last=%v known=%v, want last=false known=true", last, known)
	}
	last, known = r.Disconnect(userID, "b")
	if !known || !last {
		t.Errorf("disconnect b: last=%v known=%v, want last=true known=true", last, known)
	}
	if r.IsOnline(userID) {
		t.Error("user still online after last disconnect")
	}
}

func TestRegistryStaleDisconnect(t *testing.T) {
	r := NewPresenceRegistry()
	userID := uuid.New()

	r.Connect(userID, "old")
	r.Disconnect(userID, "old")
	r.Connect(userID, "new")

	// A second disconnect of the old session must not clear the new one.
	last, known := r.Disconnect(userID, "old")
	if known || last {
		t.Errorf("stale disconnect: last=%v known=%v, want both false", last, known)
	}
	if !r.IsOnline(userID) {
		t.Error("stale disconnect took the user offline")
	}
}

func TestRegistryAnySession(t *testing.T) {
	r := NewPresenceRegistry()
	userID := uuid.New()

	if _, ok := r.AnySession(userID); ok {
		t.Error("AnySession reported a session for an offline user")
	}
	r.Connect(userID, "s1")
	id, ok := r.AnySession(userID)
	if !ok || id != "s1" {
		t.Errorf("AnySession = %q, %v; want s1, true", id, ok)
	}
}

func TestSchedulerFiresAndCancels(t *testing.T) {
	s := NewDeliveryScheduler()
	defer s.Stop()

	fired := make(chan struct{})
	s.Schedule("s1", 10*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled task never fired")
	}

	ran := make(chan struct{}, 1)
	s.Schedule("s2", 50*time.Millisecond, func() { ran <- struct{}{} })
	s.CancelSession("s2")

	select {
	case <-ran:
		t.Fatal("cancelled task still ran")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestSchedulerCancelIsSessionScoped(t *testing.T) {
	s := NewDeliveryScheduler()
	defer s.Stop()

	fired := make(chan struct{})
	s.Schedule("live", 20*time.Millisecond, func() { close(fired) })
	s.CancelSession("gone")

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("cancelling another session suppressed the task")
	}
}
