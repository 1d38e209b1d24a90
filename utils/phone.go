package utils

import (
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"

	"slotify/config"
)

// fallbackPhoneRegion applies when the config was never loaded.
const fallbackPhoneRegion = "US"

func phoneRegion() string {
	if region := config.AppConfig.PhoneRegion; region != "" {
		return region
	}
	return fallbackPhoneRegion
}

// NormalizePhone parses a raw phone string and returns its canonical E.164 form.
// Numbers without a country prefix are parsed against the configured region.
// Numbers that cannot be parsed or are not valid for their region are rejected.
func NormalizePhone(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("phone number is empty")
	}

	num, err := phonenumbers.Parse(trimmed, phoneRegion())
	if err != nil {
		return "", fmt.Errorf("unparseable phone number %q: %w", raw, err)
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", fmt.Errorf("invalid phone number %q", raw)
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}
