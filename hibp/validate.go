package hibp

import (
	"fmt"
	"strings"
)

// ValidateEmail checks an address against RFC-5321-influenced rules before
// any outbound request is made. Rules run in a fixed order so the same bad
// input always produces the same message.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)

	if email == "" {
		return fmt.Errorf("Email cannot be empty")
	}
	if len(email) > 254 {
		return fmt.Errorf("Email is too long (max 254 characters)")
	}
	if strings.Contains(email, "..") {
		return fmt.Errorf("Email cannot contain consecutive dots")
	}
	if strings.HasPrefix(email, ".") || strings.HasSuffix(email, ".") {
		return fmt.Errorf("Email cannot start or end with a dot")
	}

	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || strings.Contains(domain, "@") {
		return fmt.Errorf("Email must have exactly one @ symbol")
	}

	if len(local) > 64 {
		return fmt.Errorf("Local part of email is too long (max 64 characters)")
	}
	if strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") {
		return fmt.Errorf("Local part cannot start or end with a dot")
	}
	for _, r := range local {
		if !isLocalChar(r) {
			return fmt.Errorf("Email contains invalid characters")
		}
	}

	if len(domain) < 3 {
		return fmt.Errorf("Domain must be at least 3 characters long")
	}
	if len(domain) > 255 {
		return fmt.Errorf("Domain is too long (max 255 characters)")
	}
	if strings.Contains(domain, "--") || strings.Contains(domain, "..") {
		return fmt.Errorf("Domain contains invalid character sequences")
	}
	if strings.HasPrefix(domain, "-") || strings.HasSuffix(domain, "-") ||
		strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return fmt.Errorf("Domain cannot start or end with a hyphen or dot")
	}

	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return fmt.Errorf("Domain must have a valid TLD")
	}

	tld := labels[len(labels)-1]
	if len(tld) < 2 || len(tld) > 6 {
		return fmt.Errorf("Top-level domain must be 2-6 characters")
	}
	if !isAlpha(tld) {
		return fmt.Errorf("Top-level domain must only contain letters")
	}

	for _, label := range labels {
		if label == "" {
			return fmt.Errorf("Domain contains empty labels")
		}
		if len(label) > 63 {
			return fmt.Errorf("Domain label is too long (max 63 characters)")
		}
		for _, r := range label {
			if !isLabelChar(r) {
				return fmt.Errorf("Domain labels can only contain letters, numbers, and hyphens")
			}
		}
		if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return fmt.Errorf("Domain labels cannot start or end with hyphens")
		}
	}

	return nil
}

func isLocalChar(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '.' || r == '_' || r == '%' || r == '-' || r == '+':
		return true
	}
	return false
}

func isLabelChar(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '-':
		return true
	}
	return false
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return s != ""
}
