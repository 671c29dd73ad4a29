package domain

import (
	"fmt"
	"strings"
)

// Domain is a topical category label attached to every utterance.
// The vocabulary is closed and known at build time.
type Domain string

// Corpus domains.
const (
	DomainAlarm      Domain = "alarm"
	DomainEvent      Domain = "event"
	DomainMessaging  Domain = "messaging"
	DomainMusic      Domain = "music"
	DomainNavigation Domain = "navigation"
	DomainReminder   Domain = "reminder"
	DomainTimer      Domain = "timer"
	DomainWeather    Domain = "weather"
)

// AllDomains returns the full domain vocabulary in alphabetical order.
func AllDomains() []Domain {
	return []Domain{
		DomainAlarm,
		DomainEvent,
		DomainMessaging,
		DomainMusic,
		DomainNavigation,
		DomainReminder,
		DomainTimer,
		DomainWeather,
	}
}

// IsValid returns true if the domain belongs to the vocabulary.
func (d Domain) IsValid() bool {
	for _, known := range AllDomains() {
		if d == known {
			return true
		}
	}
	return false
}

// String returns the string representation.
func (d Domain) String() string {
	return string(d)
}

// ParseDomain converts a string to a Domain.
// Surrounding whitespace is ignored; matching is case-sensitive.
func ParseDomain(s string) (Domain, error) {
	d := Domain(strings.TrimSpace(s))
	if !d.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownDomain, s)
	}
	return d, nil
}

// ParseDomains converts a list of strings to Domains, preserving order.
// Empty entries are skipped so that "timer,,weather" is accepted.
func ParseDomains(values []string) ([]Domain, error) {
	domains := make([]Domain, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		d, err := ParseDomain(v)
		if err != nil {
			return nil, err
		}
		domains = append(domains, d)
	}
	return domains, nil
}
