package solidserver

import (
	backend "github.com/NectGmbH/solidserver-backend"
)

// Config contains the target configuration for a SOLIDserver appliance.
// Loading it (flags, env, whatever) is the caller's business, the backend
// only insists that it is complete.
type Config struct {
	// Host is the IP or hostname of the SOLIDserver API.
	Host string

	// Space is the name of the SOLIDserver space all zones live in.
	Space string

	// Username is the API username for basic auth.
	Username string

	// Password is the API password for basic auth.
	Password string

	// SSL indicates whether to use HTTPS for API communication.
	SSL bool

	// VerifySSL indicates whether the API certificate should be verified.
	VerifySSL bool
}

// Validate checks that all required fields are set.
func (c Config) Validate() error {
	if c.Host == "" {
		return backend.Errorf("missing solidserver host in configuration")
	}

	if c.Space == "" {
		return backend.Errorf("missing solidserver space in configuration")
	}

	if c.Username == "" {
		return backend.Errorf("missing solidserver username in configuration")
	}

	if c.Password == "" {
		return backend.Errorf("missing solidserver password in configuration")
	}

	return nil
}
