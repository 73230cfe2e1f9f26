// Package phone normalizes lead phone numbers. The sales team operates
// in Brazil, so numbers without a country code are parsed as BR.
package phone

import (
	"fmt"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used when a number carries no country code.
const DefaultRegion = "BR"

// Info holds the parsed representation of a phone number.
type Info struct {
	IsValid       bool   `json:"is_valid"`
	E164          string `json:"e164"`
	National      string `json:"national"`
	International string `json:"international"`
	Region        string `json:"region"`
}

// Parse parses a phone number against the default region.
func Parse(raw string) (*Info, error) {
	if raw == "" {
		return nil, fmt.Errorf("phone number cannot be empty")
	}

	parsed, err := phonenumbers.Parse(raw, DefaultRegion)
	if err != nil {
		return nil, fmt.Errorf("failed to parse phone number: %w", err)
	}

	return &Info{
		IsValid:       phonenumbers.IsValidNumber(parsed),
		E164:          phonenumbers.Format(parsed, phonenumbers.E164),
		National:      phonenumbers.Format(parsed, phonenumbers.NATIONAL),
		International: phonenumbers.Format(parsed, phonenumbers.INTERNATIONAL),
		Region:        phonenumbers.GetRegionCodeForNumber(parsed),
	}, nil
}

// Normalize returns the E.164 form of a valid number. Unparseable or
// invalid input is returned unchanged so lead data entry never blocks
// on phone formatting.
func Normalize(raw string) string {
	info, err := Parse(raw)
	if err != nil || !info.IsValid {
		return raw
	}
	return info.E164
}
