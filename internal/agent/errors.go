package agent

import "errors"

// Sentinel errors for programmer mistakes: invalid state transitions and
// bad subscription identity. Operational conditions (fail-closed dispatch
// skips) are never errors; they are SKIP decisions.
var (
	ErrInvalidTransition  = errors.New("agent: invalid state transition")
	ErrEmptyModelID       = errors.New("agent: model_id must not be empty")
	ErrSubscriptionExists = errors.New("agent: subscription already exists")
	ErrUnknownSubscription = errors.New("agent: unknown subscription")
)
