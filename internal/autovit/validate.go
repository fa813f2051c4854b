package autovit

import (
	"net/url"
	"strings"

	"github.com/lukman83/autovit-sync/internal/apperr"
)

var allowedHosts = map[string]bool{
	"autovit.ro":     true,
	"www.autovit.ro": true,
}

// AllowedHost reports whether host (without port) may be fetched.
func AllowedHost(host string) bool {
	return allowedHosts[strings.ToLower(host)]
}

// ValidateURL checks that raw is an https URL on an allowed host and returns
// it parsed.
func ValidateURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, apperr.New(apperr.KindValidation, "URL-ul Autovit este obligatoriu")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "URL-ul trebuie să fie de pe domeniul autovit.ro", err)
	}
	if u.Scheme != "https" || !AllowedHost(u.Hostname()) {
		return nil, apperr.New(apperr.KindValidation, "URL-ul trebuie să fie de pe domeniul autovit.ro")
	}
	return u, nil
}
