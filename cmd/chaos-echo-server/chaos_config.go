package main

import (
	"fmt"
	"strconv"
)

// Chaos mode names as they appear in configuration and in the X-Chaos
// response header.
const (
	chaosFailure    = "failure"
	chaosDelay      = "delay"
	chaosCorruption = "corruption"
)

// Corruption kinds.
const (
	corruptEmpty    = "empty"
	corruptTruncate = "truncate"
	corruptGarbage  = "garbage"
)

// delayRandom is the delay_ms value that selects a uniform random delay
// in [0, delay_max_ms).
const delayRandom = "random"

// ChaosConfig controls probabilistic fault injection. It is validated
// once at startup and immutable afterwards, so it is shared across
// requests without synchronization. An empty mode list disables chaos.
type ChaosConfig struct {
	Modes          []string `yaml:"modes"`
	FailureRate    float64  `yaml:"failure_rate"`
	FailureCodes   []int    `yaml:"failure_codes"`
	DelayRate      float64  `yaml:"delay_rate"`
	DelayMs        string   `yaml:"delay_ms"`
	DelayMaxMs     int      `yaml:"delay_max_ms"`
	CorruptionRate float64  `yaml:"corruption_rate"`
	CorruptionKind string   `yaml:"corruption_kind"`
	InformHeader   bool     `yaml:"inform_header"`
}

func (c *ChaosConfig) enabled() bool { return len(c.Modes) > 0 }

func (c *ChaosConfig) hasMode(mode string) bool {
	for _, m := range c.Modes {
		if m == mode {
			return true
		}
	}
	return false
}

func (c *ChaosConfig) hasFailure() bool    { return c.hasMode(chaosFailure) }
func (c *ChaosConfig) hasDelay() bool      { return c.hasMode(chaosDelay) }
func (c *ChaosConfig) hasCorruption() bool { return c.hasMode(chaosCorruption) }

// validate checks the sub-config of every enabled mode. It runs once at
// load time; the injector assumes a valid config at request time.
func (c *ChaosConfig) validate() error {
	for _, m := range c.Modes {
		switch m {
		case chaosFailure, chaosDelay, chaosCorruption:
		default:
			return fmt.Errorf("unknown chaos mode %q", m)
		}
	}

	if c.hasFailure() {
		if err := validateRate("chaos.failure_rate", c.FailureRate); err != nil {
			return err
		}
		if len(c.FailureCodes) == 0 {
			return fmt.Errorf("chaos failure mode requires at least one failure code")
		}
		for _, code := range c.FailureCodes {
			if code < 400 || code > 599 {
				return fmt.Errorf("chaos failure code %d outside [400,599]", code)
			}
		}
	}

	if c.hasDelay() {
		if err := validateRate("chaos.delay_rate", c.DelayRate); err != nil {
			return err
		}
		if c.DelayMs == delayRandom {
			if c.DelayMaxMs <= 0 {
				return fmt.Errorf("chaos.delay_max_ms must be positive when delay_ms is %q", delayRandom)
			}
		} else if ms, err := strconv.Atoi(c.DelayMs); err != nil || ms < 0 {
			return fmt.Errorf("chaos.delay_ms must be a non-negative integer or %q, got %q", delayRandom, c.DelayMs)
		}
	}

	if c.hasCorruption() {
		if err := validateRate("chaos.corruption_rate", c.CorruptionRate); err != nil {
			return err
		}
		switch c.CorruptionKind {
		case corruptEmpty, corruptTruncate, corruptGarbage:
		default:
			return fmt.Errorf("unknown chaos corruption kind %q", c.CorruptionKind)
		}
	}

	return nil
}

func validateRate(name string, rate float64) error {
	if rate < 0.01 || rate > 1.0 {
		return fmt.Errorf("%s must be in [0.01, 1.0], got %v", name, rate)
	}
	return nil
}
