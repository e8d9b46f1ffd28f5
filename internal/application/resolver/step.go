package resolver

import (
	"fmt"

	"crypto-valuation-service/internal/domain/interfaces"
)

// Step is one source call of a fallback chain
type Step struct {
	Source interfaces.RateSource
	Arg    string
	// Retry nil means a single attempt
	Retry *Policy
}

// Name is the provider name of the step
func (s Step) Name() string {
	return s.Source.Name()
}

// ID identifies the call, e.g. liqui(eth_btc); it becomes the quote source
func (s Step) ID() string {
	return fmt.Sprintf("%s(%s)", s.Source.Name(), s.Arg)
}

func (s Step) policy() Policy {
	if s.Retry == nil {
		return NoRetry()
	}
	return *s.Retry
}

// Chain is the ordered list of steps tried for one denominator
type Chain []Step

// StepInfo describes a step for introspection
type StepInfo struct {
	ID            string `json:"id"`
	Provider      string `json:"provider"`
	Arg           string `json:"arg"`
	MaxAttempts   int    `json:"max_attempts"`
	RetryUnusable bool   `json:"retry_unusable"`
}

// Info returns the introspection view of the step
func (s Step) Info() StepInfo {
	p := s.policy()
	return StepInfo{
		ID:            s.ID(),
		Provider:      s.Name(),
		Arg:           s.Arg,
		MaxAttempts:   int(p.Attempts()),
		RetryUnusable: p.RetryUnusable,
	}
}
