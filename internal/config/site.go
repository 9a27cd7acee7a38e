package config

import (
	"strings"

	"github.com/sitectl/sitectl/internal/errors"
)

// Site is the per-domain input for one invocation: the validated domain and
// whether www traffic is redirected to the canonical host through dedicated
// listener blocks. It is not persisted separately from the generated artifact.
type Site struct {
	Domain      string
	WWWRedirect bool
}

// NewSite validates the domain and returns the site options.
func NewSite(domain string, wwwRedirect bool) (Site, error) {
	if err := ValidateDomain(domain); err != nil {
		return Site{}, err
	}
	return Site{Domain: domain, WWWRedirect: wwwRedirect}, nil
}

// WWWDomain returns the www-prefixed hostname.
func (s Site) WWWDomain() string {
	return "www." + s.Domain
}

// ValidateDomain checks a hostname against a conservative RFC 1035 grammar:
// dot-separated labels of 1-63 alphanumeric-or-hyphen characters, no leading
// or trailing hyphen, at least two labels, at most 253 characters total.
func ValidateDomain(domain string) error {
	if domain == "" {
		return errors.InvalidDomain(domain, "domain cannot be empty")
	}
	if len(domain) > 253 {
		return errors.InvalidDomain(domain, "domain exceeds 253 characters")
	}
	if strings.HasPrefix(domain, "www.") {
		return errors.InvalidDomain(domain, "use the bare domain; www handling is controlled by the redirect option")
	}

	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return errors.InvalidDomain(domain, "domain must contain at least two labels")
	}

	for _, label := range labels {
		if len(label) == 0 {
			return errors.InvalidDomain(domain, "empty label")
		}
		if len(label) > 63 {
			return errors.InvalidDomain(domain, "label exceeds 63 characters")
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return errors.InvalidDomain(domain, "label cannot start or end with a hyphen")
		}
		for _, c := range label {
			if !isAlphaNumeric(c) && c != '-' {
				return errors.InvalidDomain(domain, "label contains an invalid character")
			}
		}
	}

	return nil
}

func isAlphaNumeric(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
