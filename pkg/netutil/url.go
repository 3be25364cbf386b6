// Package netutil validates network addresses before anything is dialed.
package netutil

import (
	"net"
	"net/url"

	"github.com/pkg/errors"
	"golang.org/x/net/idna"
)

const maxDomainNameSize = 253

// ValidateHttpUrl checks that value is an absolute http or https URL with a
// valid host. No network access is performed.
func ValidateHttpUrl(value string, requireSecureConnection bool) error {
	parsed, err := url.Parse(value)
	if err != nil {
		return err
	}

	if requireSecureConnection && parsed.Scheme != "https" {
		return errors.New("url scheme must be https")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.New("url scheme must be http or https")
	}

	host := parsed.Hostname()
	if len(host) == 0 {
		return errors.New("host component missing")
	}
	if net.ParseIP(host) != nil {
		return nil
	}
	if err := ValidateDomainName(host); err != nil {
		return errors.Wrap(err, "host is not a valid domain name")
	}
	return nil
}

// ValidateDomainName validates the string value as a domain name
func ValidateDomainName(value string) error {
	if len(value) == 0 {
		return errors.New("domain name is empty")
	}
	if len(value) > maxDomainNameSize {
		return errors.New("domain name length exceeds limit")
	}
	if _, err := idna.Registration.ToASCII(value); err != nil {
		return errors.Wrap(err, "domain name is invalid")
	}
	return nil
}
