package questions

import "errors"

// ErrRefillLimitExceeded is returned when a game's refill budget is spent.
var ErrRefillLimitExceeded = errors.New("questions: refill limit exceeded")

// ErrPoolExhausted is returned by Pop when the queue is empty at the time of
// the call, even if a background refill is still in flight.
var ErrPoolExhausted = errors.New("questions: pool exhausted")
