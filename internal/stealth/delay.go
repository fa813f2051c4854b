package stealth

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// DelayProfile defines a named delay configuration.
type DelayProfile string

const (
	ProfileNone       DelayProfile = "none"
	ProfileCautious   DelayProfile = "cautious"
	ProfileNormal     DelayProfile = "normal"
	ProfileAggressive DelayProfile = "aggressive"
)

// ParseDelayProfile validates a profile name.
func ParseDelayProfile(s string) (DelayProfile, error) {
	switch p := DelayProfile(s); p {
	case ProfileNone, ProfileCautious, ProfileNormal, ProfileAggressive:
		return p, nil
	}
	return "", fmt.Errorf("unknown delay profile %q", s)
}

// HumanDelay adds randomized jitter between outbound page requests.
type HumanDelay struct {
	MinDelay time.Duration
	MaxDelay time.Duration
}

// NewHumanDelay creates a delay generator for the given profile. The none
// profile never waits, which suits one-off imports triggered by an operator.
func NewHumanDelay(profile DelayProfile) *HumanDelay {
	switch profile {
	case ProfileNone:
		return &HumanDelay{}
	case ProfileCautious:
		return &HumanDelay{MinDelay: 2 * time.Second, MaxDelay: 5 * time.Second}
	case ProfileAggressive:
		return &HumanDelay{MinDelay: 200 * time.Millisecond, MaxDelay: 800 * time.Millisecond}
	default: // normal
		return &HumanDelay{MinDelay: 500 * time.Millisecond, MaxDelay: 2 * time.Second}
	}
}

// Wait sleeps for a random duration within the configured range.
func (h *HumanDelay) Wait(ctx context.Context) error {
	d := h.RequestDelay()
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RequestDelay returns a random delay within the range.
func (h *HumanDelay) RequestDelay() time.Duration {
	return h.randomBetween(h.MinDelay, h.MaxDelay)
}

func (h *HumanDelay) randomBetween(min, max time.Duration) time.Duration {
	if min >= max {
		return min
	}
	return min + time.Duration(rand.Int64N(int64(max-min)))
}
