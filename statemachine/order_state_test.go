package statemachine

import (
	"errors"
	"strings"
	"testing"

	"foodonline-api/models"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to models.OrderStatus
		actor    Actor
		ok       bool
	}{
		{models.StatusNew, models.StatusAccepted, ActorVendor, true},
		{models.StatusNew, models.StatusAccepted, ActorCustomer, false},
		{models.StatusNew, models.StatusCancelled, ActorCustomer, true},
		{models.StatusAccepted, models.StatusCancelled, ActorCustomer, false},
		{models.StatusAccepted, models.StatusCompleted, ActorVendor, true},
		{models.StatusCompleted, models.StatusCancelled, ActorVendor, false},
		{models.StatusCancelled, models.StatusNew, ActorVendor, false},
	}
	for _, tt := range tests {
		err := CanTransition(tt.from, tt.to, tt.actor)
		if (err == nil) != tt.ok {
			t.Errorf("CanTransition(%s, %s, %s) err = %v, want ok=%v", tt.from, tt.to, tt.actor, err, tt.ok)
		}
	}
}

func TestCanTransition_ErrorNamesValidStates(t *testing.T) {
	err := CanTransition(models.StatusCompleted, models.StatusNew, ActorVendor)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if !strings.Contains(err.Error(), "terminal") {
		t.Fatalf("expected terminal-state message, got %v", err)
	}
	err = CanTransition(models.StatusNew, models.StatusCompleted, ActorVendor)
	if err == nil || !strings.Contains(err.Error(), "Accepted, Cancelled") {
		t.Fatalf("expected valid next states in message, got %v", err)
	}
}

func TestIsTerminal(t *testing.T) {
	if !IsTerminal(models.StatusCompleted) || !IsTerminal(models.StatusCancelled) {
		t.Error("Completed and Cancelled should be terminal")
	}
	if IsTerminal(models.StatusNew) {
		t.Error("New should not be terminal")
	}
}
