// Package validate holds the pure per-field validators. Each function takes
// raw user text and returns the normalized value or an error wrapping
// contract.ErrValidation with a user-facing reason.
package validate

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"

	contractx "github.com/sirinut/regibot/agent/contract"
	statex "github.com/sirinut/regibot/agent/state"
)

// DateLayout is the normalized date-of-birth form.
const DateLayout = "2006-01-02"

// dateLayouts are tried in order; the first successful parse wins, so an
// ambiguous string like "03/04/2020" resolves as DD/MM/YYYY.
var dateLayouts = [...]string{
	DateLayout,   // 2024-01-15
	"02/01/2006", // 15/01/2024
	"01/02/2006", // 01/15/2024
	"02-01-2006", // 15-01-2024
	"01-02-2006", // 01-15-2024
}

// Value validates raw input for the given field. now is only consulted for
// date of birth.
func Value(field statex.Field, raw string, now time.Time) (string, error) {
	switch field {
	case statex.FieldFullName:
		return FullName(raw)
	case statex.FieldEmail:
		return Email(raw)
	case statex.FieldPhoneNumber:
		return Phone(raw)
	case statex.FieldDateOfBirth:
		return DateOfBirth(raw, now)
	case statex.FieldAddress:
		return Address(raw)
	case statex.FieldUpdateSelection, statex.KeyUpdateTarget:
		return strings.TrimSpace(raw), nil
	default:
		return strings.TrimSpace(raw), nil
	}
}

func FullName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if len(name) < 2 {
		return "", fmt.Errorf("%w: name must be at least 2 characters", contractx.ErrValidation)
	}
	return name, nil
}

func Address(raw string) (string, error) {
	addr := strings.TrimSpace(raw)
	if len(addr) < 5 {
		return "", fmt.Errorf("%w: address must be at least 5 characters", contractx.ErrValidation)
	}
	return addr, nil
}

// Email checks RFC 5322 syntax and normalizes to the lower-cased, trimmed
// bare address. Display-name forms ("Alice <a@b.com>") and domains without
// a dot are rejected.
func Email(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		return "", fmt.Errorf("%w: invalid email address", contractx.ErrValidation)
	}
	at := strings.LastIndex(addr.Address, "@")
	if at < 0 || !strings.Contains(addr.Address[at+1:], ".") {
		return "", fmt.Errorf("%w: invalid email address", contractx.ErrValidation)
	}
	return strings.ToLower(addr.Address), nil
}

// Phone parses an internationally valid number and normalizes to E.164.
func Phone(raw string) (string, error) {
	num, err := phonenumbers.Parse(strings.TrimSpace(raw), "")
	if err != nil {
		return "", fmt.Errorf("%w: invalid phone format, use international format (e.g. +1234567890)", contractx.ErrValidation)
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", fmt.Errorf("%w: invalid phone number", contractx.ErrValidation)
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// DateOfBirth parses raw against the accepted layouts and enforces the
// birth-date constraints: strictly in the past, age at least 13, year at
// least 1900. The normalized form is YYYY-MM-DD.
func DateOfBirth(raw string, now time.Time) (string, error) {
	trimmed := strings.TrimSpace(raw)

	var parsed time.Time
	ok := false
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, trimmed); err == nil {
			parsed = d
			ok = true
			break
		}
	}
	if !ok {
		return "", fmt.Errorf("%w: invalid date format, use YYYY-MM-DD, DD/MM/YYYY, or MM/DD/YYYY", contractx.ErrValidation)
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if !parsed.Before(today) {
		return "", fmt.Errorf("%w: date of birth must be in the past", contractx.ErrValidation)
	}
	if age(parsed, today) < 13 {
		return "", fmt.Errorf("%w: you must be at least 13 years old", contractx.ErrValidation)
	}
	if parsed.Year() < 1900 {
		return "", fmt.Errorf("%w: date of birth must be after 1900", contractx.ErrValidation)
	}

	return parsed.Format(DateLayout), nil
}

// Reason strips the sentinel prefix from a validation error, leaving only
// the user-facing text.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	return strings.TrimPrefix(err.Error(), contractx.ErrValidation.Error()+": ")
}

func age(birth, today time.Time) int {
	years := today.Year() - birth.Year()
	if today.Month() < birth.Month() ||
		(today.Month() == birth.Month() && today.Day() < birth.Day()) {
		years--
	}
	return years
}
