package statemachine

import (
	"delivery-agent/models"
	"fmt"
)

// Transition defines a valid state change in the delivery lifecycle
type Transition struct {
	From models.OrderStatus
	To   models.OrderStatus
}

// validTransitions is the authoritative state machine definition. The two
// routes out of "ready" model the hand-off between the kitchen side and the
// two-stage delivery flow (pickup confirmation, then delivery confirmation).
var validTransitions = []Transition{
	{From: models.StatusPending, To: models.StatusConfirmed},
	{From: models.StatusConfirmed, To: models.StatusPreparing},
	{From: models.StatusPreparing, To: models.StatusReady},
	// Hand-off point: either the agent confirms pickup first, or the kitchen
	// marks the order straight out for delivery.
	{From: models.StatusReady, To: models.StatusPickedUp},
	{From: models.StatusReady, To: models.StatusOutForDelivery},
	{From: models.StatusPickedUp, To: models.StatusOutForDelivery},
	{From: models.StatusPickedUp, To: models.StatusInTransit},
	{From: models.StatusOutForDelivery, To: models.StatusInTransit},
	{From: models.StatusInTransit, To: models.StatusDelivered},
}

// transitionKey is used to look up valid transitions quickly
type transitionKey struct {
	From models.OrderStatus
	To   models.OrderStatus
}

// Build a lookup map for O(1) validation. Cancellation and refund are
// absorbing states reachable from every non-terminal status, so those edges
// are generated rather than listed.
var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To}] = true
	}
	nonTerminal := []models.OrderStatus{
		models.StatusPending, models.StatusConfirmed, models.StatusPreparing,
		models.StatusReady, models.StatusPickedUp, models.StatusOutForDelivery,
		models.StatusInTransit,
	}
	for _, from := range nonTerminal {
		m[transitionKey{from, models.StatusCancelled}] = true
		m[transitionKey{from, models.StatusRefunded}] = true
	}
	return m
}()

// InvalidTransitionError is returned when the requested status is not
// adjacent to the current one in the lifecycle graph.
type InvalidTransitionError struct {
	From models.OrderStatus
	To   models.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s → %s is not allowed; valid transitions from %s are: %s",
		e.From, e.To, e.From, describeValidFrom(e.From))
}

// TerminalOrderError is returned when the order has already reached a
// terminal status and nothing may move it again.
type TerminalOrderError struct {
	Status models.OrderStatus
}

func (e *TerminalOrderError) Error() string {
	return fmt.Sprintf("order is already %s (terminal state)", e.Status)
}

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	for _, t := range validTransitions {
		if t.From == status {
			nexts = append(nexts, t.To)
		}
	}
	if !status.IsTerminal() && status != models.StatusUnknown {
		nexts = append(nexts, models.StatusCancelled, models.StatusRefunded)
	}
	return nexts
}

// CanTransition checks whether an order may move from one state to another
func CanTransition(from, to models.OrderStatus) error {
	if from.IsTerminal() {
		return &TerminalOrderError{Status: from}
	}
	if transitionMap[transitionKey{From: from, To: to}] {
		return nil
	}
	return &InvalidTransitionError{From: from, To: to}
}

// Apply performs a locally requested transition (an agent action). On success
// it returns the updated order; on failure the input order is returned
// unchanged alongside the typed error, so callers can block the illegal
// action and show both statuses.
func Apply(order models.Order, next models.OrderStatus) (models.Order, error) {
	if err := CanTransition(order.Status, next); err != nil {
		return order, err
	}
	order.Status = next
	return order, nil
}

// ApplyRemote merges a status reported by the backend into the local
// projection. The server is authoritative: its value is adopted even when it
// sits behind a local optimistic status, which is the one path allowed to
// regress an order. The returned flag reports whether the remote value
// conflicted with the lifecycle graph, for diagnostics only.
func ApplyRemote(order models.Order, raw string) (models.Order, bool) {
	remote := models.ParseStatus(raw)
	if remote == order.Status {
		return order, false
	}
	// An unrecognized status never tramples a known one; the projection waits
	// for the server to report something this client understands.
	if remote == models.StatusUnknown && order.Status != models.StatusUnknown {
		return order, true
	}
	conflicted := order.Status != models.StatusUnknown &&
		CanTransition(order.Status, remote) != nil
	order.Status = remote
	return order, conflicted
}

func describeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	result := ""
	for i, s := range nexts {
		if i > 0 {
			result += ", "
		}
		result += string(s)
	}
	return result
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}
