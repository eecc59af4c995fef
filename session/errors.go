package session

import "errors"

// ErrSessionInvalid is the "please re-authenticate" signal: Validate was
// called with a revoked or unknown session. Not an exceptional condition.
var ErrSessionInvalid = errors.New("session invalid")

// ErrIDExhausted is returned when session id generation keeps colliding after
// the bounded number of retries. Practically unreachable with UUIDv4 ids;
// surfaced as fatal rather than looping forever.
var ErrIDExhausted = errors.New("could not generate a unique session id")
