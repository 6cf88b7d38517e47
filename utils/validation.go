// utils/validation.go
package utils

import (
	"net/mail"
	"regexp"
	"strings"
)

var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

// NormalizePhone strips the separators people type into phone fields
func NormalizePhone(phone string) string {
	cleaned := strings.ReplaceAll(phone, " ", "")
	cleaned = strings.ReplaceAll(cleaned, "-", "")
	cleaned = strings.ReplaceAll(cleaned, "(", "")
	cleaned = strings.ReplaceAll(cleaned, ")", "")
	return cleaned
}

// ValidatePhone checks if a phone number is in a valid international format
func ValidatePhone(phone string) bool {
	// Allows + prefix followed by up to 15 digits
	return phonePattern.MatchString(NormalizePhone(phone))
}

// ValidateEmailAddress checks a bare address such as jane@example.com
func ValidateEmailAddress(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == strings.TrimSpace(email)
}
