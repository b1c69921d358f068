// Package vmcontext builds the CONTEXT block of an instantiation template.
//
// The guest's contextualization agent reads this block on boot: it
// configures networking from the NIC leases, installs SSH keys and, when
// present, runs the embedded cloud-config user-data.
//
// See https://docs.opennebula.io/stable/management_and_operations/references/template.html#context-section
package vmcontext

import (
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/ssh"
	"gopkg.in/yaml.v3"

	"github.com/jbweber/canopy/internal/one"
)

// Options describe what the guest should be configured with.
type Options struct {
	// SSHKey holds one or more authorized keys, one per line.
	SSHKey string

	// FQDN sets the hostname; the hostname is everything before the first dot.
	FQDN string

	// RootPasswordHash is a crypt(3) hash set for root via cloud-config.
	RootPasswordHash string
}

// UserData is the cloud-config passed as USER_DATA.
type UserData struct {
	Hostname        string    `yaml:"hostname,omitempty"`
	FQDN            string    `yaml:"fqdn,omitempty"`
	Chpasswd        *Chpasswd `yaml:"chpasswd,omitempty"`
	SSHPasswordAuth bool      `yaml:"ssh_pwauth"`
}

// Chpasswd configures user password settings.
type Chpasswd struct {
	Expire bool   `yaml:"expire"`
	List   string `yaml:"list"`
}

// Pairs returns the attributes of the CONTEXT vector.
func Pairs(opts Options) ([]one.Pair, error) {
	pairs := []one.Pair{one.P("NETWORK", "YES")}

	if key := strings.TrimSpace(opts.SSHKey); key != "" {
		if err := ValidateSSHKeys(key); err != nil {
			return nil, err
		}
		pairs = append(pairs, one.P("SSH_PUBLIC_KEY", key))
	}

	if opts.FQDN != "" {
		pairs = append(pairs, one.P("SET_HOSTNAME", Hostname(opts.FQDN)))
	}

	if opts.FQDN != "" || opts.RootPasswordHash != "" {
		userData, err := GenerateUserData(opts)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs,
			one.P("USER_DATA_ENCODING", "base64"),
			one.P("USER_DATA", base64.StdEncoding.EncodeToString([]byte(userData))),
		)
	}

	return pairs, nil
}

// Apply adds the CONTEXT vector to tpl.
func Apply(tpl *one.Template, opts Options) error {
	pairs, err := Pairs(opts)
	if err != nil {
		return err
	}
	tpl.AddVector("CONTEXT", pairs...)
	return nil
}

// GenerateUserData renders the cloud-config including the "#cloud-config"
// header.
func GenerateUserData(opts Options) (string, error) {
	userData := UserData{
		FQDN:            strings.ToLower(opts.FQDN),
		SSHPasswordAuth: false,
	}
	if opts.FQDN != "" {
		userData.Hostname = Hostname(opts.FQDN)
	}
	if opts.RootPasswordHash != "" {
		userData.Chpasswd = &Chpasswd{
			Expire: false,
			List:   "root:" + opts.RootPasswordHash,
		}
	}

	yamlBytes, err := yaml.Marshal(&userData)
	if err != nil {
		return "", fmt.Errorf("failed to marshal user-data to YAML: %w", err)
	}
	return "#cloud-config\n" + string(yamlBytes), nil
}

// Hostname extracts the short hostname from an FQDN.
func Hostname(fqdn string) string {
	return strings.ToLower(strings.SplitN(fqdn, ".", 2)[0])
}

// ValidateSSHKeys checks every non-empty line of keys with the
// authorized_keys parser.
func ValidateSSHKeys(keys string) error {
	for i, line := range strings.Split(keys, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if _, _, _, _, err := ssh.ParseAuthorizedKey([]byte(line)); err != nil {
			return fmt.Errorf("ssh key line %d is not a valid SSH public key: %w", i+1, err)
		}
	}
	return nil
}
