package domain

import (
	"errors"
	"fmt"
	"time"
)

// Terminal pipeline errors. Everything else is degrade-and-continue.
var (
	// ErrNoSeeds indicates the request carried no usable seed track ids.
	ErrNoSeeds = errors.New("domain: no seed tracks")
	// ErrNoCandidates indicates every mining strategy came back empty after
	// filtering, so assembly is impossible.
	ErrNoCandidates = errors.New("domain: no candidates found")
)

// Kind is the closed classification of upstream gateway failures. It is
// assigned once at the gateway boundary and inspected with KindOf; call
// sites never look at wire-level error shapes.
type Kind int

const (
	KindUnknown Kind = iota
	KindRateLimited
	KindNotFound
	KindInvalid
	KindUnavailable
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindNotFound:
		return "not_found"
	case KindInvalid:
		return "invalid"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// GatewayError is a tagged upstream failure.
type GatewayError struct {
	Kind       Kind
	Op         string        // gateway operation, e.g. "catalog.recommendations"
	RetryAfter time.Duration // populated for rate-limit responses when known
	Err        error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// KindOf extracts the failure kind from an error chain. Non-gateway errors
// report KindUnknown.
func KindOf(err error) Kind {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindUnknown
}
