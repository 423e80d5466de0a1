package push

import "context"

// Class is the delivery outcome bucket for a single token.
type Class string

const (
	// ClassOK means the provider accepted the message for the token.
	ClassOK Class = "OK"
	// ClassTransient means the failure may clear on a future attempt; the
	// token stays registered.
	ClassTransient Class = "TRANSIENT"
	// ClassPermanent means the token will never succeed again and must be
	// evicted from the device registry.
	ClassPermanent Class = "PERMANENT"
)

// TokenOutcome is the per-token result of one multicast send.
type TokenOutcome struct {
	Token string
	Class Class
	Code  string
	Err   error
}

// Gateway is the outbound push delivery port. One call is one multicast
// request: per-token failures are independent and reported per token, while a
// whole-call error (credential refresh failure, transport down) aborts the
// attempt with no outcomes.
type Gateway interface {
	Send(ctx context.Context, tokens []string, title, body string, data map[string]string) ([]TokenOutcome, error)
}
