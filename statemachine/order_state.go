package statemachine

import (
	"errors"
	"fmt"
	"strings"

	"foodonline-api/models"
)

// ErrInvalidTransition wraps every rejected status change.
var ErrInvalidTransition = errors.New("invalid transition")

// Actor identifies who asks for a status change.
type Actor string

const (
	ActorVendor   Actor = "vendor"
	ActorCustomer Actor = "customer"
)

// Transition defines a valid status change and who can perform it
type Transition struct {
	From  models.OrderStatus `json:"from"`
	To    models.OrderStatus `json:"to"`
	Actor Actor              `json:"actor"`
}

var validTransitions = []Transition{
	{From: models.StatusNew, To: models.StatusAccepted, Actor: ActorVendor},
	{From: models.StatusNew, To: models.StatusCancelled, Actor: ActorVendor},
	{From: models.StatusNew, To: models.StatusCancelled, Actor: ActorCustomer},
	{From: models.StatusAccepted, To: models.StatusCompleted, Actor: ActorVendor},
	{From: models.StatusAccepted, To: models.StatusCancelled, Actor: ActorVendor},
}

var transitionSet = func() map[Transition]bool {
	m := make(map[Transition]bool, len(validTransitions))
	for _, t := range validTransitions {
		m[t] = true
	}
	return m
}()

// ValidTransitionsFrom returns all valid next statuses from a given status
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	seen := map[models.OrderStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// IsTerminal reports whether no transition leaves status.
func IsTerminal(status models.OrderStatus) bool {
	return len(ValidTransitionsFrom(status)) == 0
}

// CanTransition checks if actor may move an order from one status to another
func CanTransition(from, to models.OrderStatus, actor Actor) error {
	if transitionSet[Transition{From: from, To: to, Actor: actor}] {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s is not allowed for %s; valid from %s: %s",
		ErrInvalidTransition, from, to, actor, from, describeValidFrom(from))
}

func describeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	names := make([]string, len(nexts))
	for i, s := range nexts {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}
