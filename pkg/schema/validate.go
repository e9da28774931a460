package schema

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	// MinMessageLength is the minimum number of characters after trimming
	MinMessageLength = 2

	// MaxMessageLength is the maximum number of characters in a message
	MaxMessageLength = 2000
)

var (
	reSessionID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

	// Lower-case fragments which are refused outright
	suspiciousPatterns = []string{
		"ignore previous instructions",
		"ignore all previous",
		"disregard previous",
		"forget everything",
		"new instructions",
		"system:",
		"<script",
		"javascript:",
		"eval(",
		"exec(",
	}
)

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// ValidateMessage checks a user message before it is passed to a generator.
// The returned error text is safe to show to the user.
func ValidateMessage(message string) error {
	trimmed := strings.TrimSpace(message)
	switch {
	case trimmed == "":
		return errors.New("Message cannot be empty.")
	case utf8.RuneCountInString(trimmed) < MinMessageLength:
		return errors.New("Message is too short. Please provide a meaningful message.")
	case utf8.RuneCountInString(message) > MaxMessageLength:
		return fmt.Errorf("Message is too long. Maximum length is %d characters.", MaxMessageLength)
	}

	lower := strings.ToLower(message)
	for _, pattern := range suspiciousPatterns {
		if strings.Contains(lower, pattern) {
			return errors.New("Your message contains content that cannot be processed. Please rephrase.")
		}
	}

	return nil
}

// ValidateSessionID checks that a session identifier is safe to use as a
// storage key
func ValidateSessionID(id string) error {
	if id == "" {
		return errors.New("Session ID must be provided.")
	}
	if !reSessionID.MatchString(id) {
		return errors.New("Session ID contains invalid characters.")
	}
	return nil
}
