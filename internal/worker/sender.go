package worker

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// DefaultSuccessRate is used when a simulated provider is given an out-of-range rate
const DefaultSuccessRate = 0.92

// ErrDeliveryFailed is returned by the simulated provider for an unlucky attempt
var ErrDeliveryFailed = errors.New("voicemail delivery failed: carrier rejected the drop")

// Delivery is one voicemail handed to a provider
type Delivery struct {
	DropID      string
	PhoneNumber string
	Script      string
	VoiceID     string
	CallerID    string
}

// VoicemailProvider delivers a voicemail and returns the provider's SID
type VoicemailProvider interface {
	Deliver(ctx context.Context, d Delivery) (string, error)
}

// simulatedProvider succeeds with a fixed probability after a short delay
type simulatedProvider struct {
	successRate float64
	minDelay    time.Duration
	maxDelay    time.Duration
	float       func() float64
}

// NewSimulatedProvider creates a provider that succeeds with probability
// successRate (0.0 to 1.0) after a delay in [minDelay, maxDelay).
func NewSimulatedProvider(successRate float64, minDelay, maxDelay time.Duration) VoicemailProvider {
	if successRate < 0 || successRate > 1.0 {
		successRate = DefaultSuccessRate
	}
	if maxDelay < minDelay {
		maxDelay = minDelay
	}

	return &simulatedProvider{
		successRate: successRate,
		minDelay:    minDelay,
		maxDelay:    maxDelay,
		float:       rand.Float64,
	}
}

// Deliver simulates a carrier round trip
func (s *simulatedProvider) Deliver(ctx context.Context, d Delivery) (string, error) {
	delay := s.minDelay
	if s.maxDelay > s.minDelay {
		delay += time.Duration(rand.Int63n(int64(s.maxDelay - s.minDelay)))
	}

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if s.float() >= s.successRate {
		return "", ErrDeliveryFailed
	}

	return "VM" + ulid.Make().String(), nil
}
