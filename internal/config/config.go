// Package config loads the canopy configuration file.
//
// Example:
//
//	backend:
//	  endpoint: http://one.example.com:2633/RPC2
//	  username: canopy
//	  timeout: 30s
//	  zone_id: 0
//	network:
//	  external_network_id: 0
//	  router_template_id: 12
//	  phydev: bond0
//	  pool: 10.0.0.0/16
//	  subnet_prefix_len: 24
//	polling:
//	  instance: {timeout: 5m, interval: 5s}
//	quota:
//	  network_id: "0"
//
// Secrets are usually not written to the file: CANOPY_BACKEND_ENDPOINT,
// CANOPY_BACKEND_USERNAME and CANOPY_BACKEND_PASSWORD override the backend
// section.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/sapcc/go-bits/errext"
	"github.com/sapcc/go-bits/osext"
	"gopkg.in/yaml.v3"

	"github.com/jbweber/canopy/internal/network"
	"github.com/jbweber/canopy/internal/poll"
	"github.com/jbweber/canopy/internal/quota"
)

// DefaultPath is read when no --config flag is given.
const DefaultPath = "/etc/canopy/config.yaml"

// Defaults applied to fields left empty.
const (
	DefaultRPCTimeout    = 30 * time.Second
	DefaultRouterTimeout = 600 * time.Second
)

// Config is the complete canopy configuration.
type Config struct {
	Backend BackendConfig `yaml:"backend"`

	// Network is optional. Without it tenants are created without a
	// network.
	Network *network.Config `yaml:"network,omitempty"`

	Polling PollingConfig `yaml:"polling"`
	Quota   QuotaConfig   `yaml:"quota"`
}

// BackendConfig describes the control plane endpoint.
type BackendConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Username string        `yaml:"username"`
	Password string        `yaml:"password,omitempty"`
	Timeout  time.Duration `yaml:"timeout"`
	ZoneID   int           `yaml:"zone_id"`
}

// PollingConfig bounds the waits for state transitions.
type PollingConfig struct {
	// Instance bounds the wait for an instance to reach RUNNING.
	Instance WaitConfig `yaml:"instance"`
	// Router bounds the wait for a router appliance to run or to be gone.
	Router WaitConfig `yaml:"router"`
	// Power bounds the wait for an instance to power off before a resize.
	Power WaitConfig `yaml:"power"`
}

// WaitConfig is the timeout and check interval of one kind of wait.
type WaitConfig struct {
	Timeout  time.Duration `yaml:"timeout"`
	Interval time.Duration `yaml:"interval"`
}

// Options converts the wait into poll options reporting to obs.
func (w WaitConfig) Options(obs poll.Observer) poll.Options {
	return poll.Options{Timeout: w.Timeout, Interval: w.Interval, Observer: obs}
}

// QuotaConfig sets the IDs used in DATASTORE and NETWORK quota clauses.
type QuotaConfig struct {
	DatastoreID string `yaml:"datastore_id,omitempty"`
	NetworkID   string `yaml:"network_id,omitempty"`
}

// Options converts the section into quota codec options.
func (q QuotaConfig) Options() quota.Options {
	return quota.Options{DatastoreID: q.DatastoreID, NetworkID: q.NetworkID}
}

// LoadFromFile reads, defaults and validates the configuration at path.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Load(data)
}

// Load parses a configuration document. Unknown keys are rejected.
func Load(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	c.Backend.Endpoint = osext.GetenvOrDefault("CANOPY_BACKEND_ENDPOINT", c.Backend.Endpoint)
	c.Backend.Username = osext.GetenvOrDefault("CANOPY_BACKEND_USERNAME", c.Backend.Username)
	c.Backend.Password = osext.GetenvOrDefault("CANOPY_BACKEND_PASSWORD", c.Backend.Password)
}

func (c *Config) applyDefaults() {
	if c.Backend.Timeout == 0 {
		c.Backend.Timeout = DefaultRPCTimeout
	}
	c.Polling.Instance.applyDefaults(poll.DefaultTimeout)
	c.Polling.Router.applyDefaults(DefaultRouterTimeout)
	c.Polling.Power.applyDefaults(poll.DefaultTimeout)
}

func (w *WaitConfig) applyDefaults(timeout time.Duration) {
	if w.Timeout == 0 {
		w.Timeout = timeout
	}
	if w.Interval == 0 {
		w.Interval = poll.DefaultInterval
	}
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var errs errext.ErrorSet

	if c.Backend.Endpoint == "" {
		errs.Addf("backend.endpoint is required")
	} else if u, err := url.Parse(c.Backend.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
		errs.Addf("backend.endpoint %q is not an absolute URL", c.Backend.Endpoint)
	}
	if c.Backend.Username == "" {
		errs.Addf("backend.username is required")
	}
	if c.Backend.Timeout < 0 {
		errs.Addf("backend.timeout must be positive")
	}
	if c.Backend.ZoneID < 0 {
		errs.Addf("backend.zone_id must be non-negative")
	}

	waits := []struct {
		name string
		WaitConfig
	}{
		{"instance", c.Polling.Instance},
		{"router", c.Polling.Router},
		{"power", c.Polling.Power},
	}
	for _, w := range waits {
		name := w.name
		if w.Timeout <= 0 {
			errs.Addf("polling.%s.timeout must be positive", name)
		}
		if w.Interval <= 0 {
			errs.Addf("polling.%s.interval must be positive", name)
		} else if w.Interval > w.Timeout {
			errs.Addf("polling.%s.interval must not exceed the timeout", name)
		}
	}

	if c.Network != nil {
		if err := c.Network.Validate(); err != nil {
			errs.Add(err)
		}
	}

	if errs.IsEmpty() {
		return nil
	}
	return fmt.Errorf("invalid configuration: %s", errs.Join(", "))
}
