package postgres

import (
	"fmt"
	"net/url"
)

// Endpoint is the host/credentials/service-name style descriptor of the
// destination.
type Endpoint struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN renders the endpoint as a postgres URL.
func (e Endpoint) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(e.User, e.Password),
		Host:   e.Host,
		Path:   "/" + e.Database,
	}
	if e.Port != "" {
		u.Host = fmt.Sprintf("%s:%s", e.Host, e.Port)
	}
	if e.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {e.SSLMode}}.Encode()
	}
	return u.String()
}
