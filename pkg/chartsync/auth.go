package chartsync

import (
	"fmt"
	"os"

	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"github.com/portolan-hq/tilegate/pkg/config"
)

// AuthProvider supplies credentials for Git operations.
type AuthProvider interface {
	// GetAuth returns the transport auth method, or nil for anonymous access.
	GetAuth() (transport.AuthMethod, error)

	// Type returns the provider type ("token", "ssh", "none").
	Type() string
}

// TokenAuth authenticates HTTPS remotes with a personal access token.
type TokenAuth struct {
	token string
}

// NewTokenAuth creates a token-based auth provider.
func NewTokenAuth(token string) (*TokenAuth, error) {
	if token == "" {
		return nil, fmt.Errorf("token cannot be empty")
	}
	return &TokenAuth{token: token}, nil
}

// GetAuth returns HTTP basic auth using the token as password.
// GitHub, GitLab, and Bitbucket all accept this form.
func (t *TokenAuth) GetAuth() (transport.AuthMethod, error) {
	return &githttp.BasicAuth{
		Username: "git",
		Password: t.token,
	}, nil
}

// Type returns "token".
func (t *TokenAuth) Type() string {
	return "token"
}

// SSHAuth authenticates SSH remotes with a private key file.
type SSHAuth struct {
	keyPath    string
	passphrase string
}

// NewSSHAuth creates an SSH key-based auth provider.
func NewSSHAuth(keyPath, passphrase string) (*SSHAuth, error) {
	if keyPath == "" {
		return nil, fmt.Errorf("SSH key path cannot be empty")
	}
	return &SSHAuth{keyPath: keyPath, passphrase: passphrase}, nil
}

// GetAuth loads the private key and returns SSH public key auth.
func (s *SSHAuth) GetAuth() (transport.AuthMethod, error) {
	info, err := os.Stat(s.keyPath)
	if err != nil {
		return nil, fmt.Errorf("SSH key file not accessible: %w", err)
	}

	if mode := info.Mode().Perm(); mode&0077 != 0 {
		return nil, fmt.Errorf("SSH key file permissions too open (%o), should be 0600", mode)
	}

	keys, err := gitssh.NewPublicKeysFromFile("git", s.keyPath, s.passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to load SSH key: %w", err)
	}
	return keys, nil
}

// Type returns "ssh".
func (s *SSHAuth) Type() string {
	return "ssh"
}

// NoAuth is used for public repositories.
type NoAuth struct{}

// GetAuth returns nil, allowing anonymous access.
func (n *NoAuth) GetAuth() (transport.AuthMethod, error) {
	return nil, nil
}

// Type returns "none".
func (n *NoAuth) Type() string {
	return "none"
}

// NewAuthProvider builds a provider from the sync auth configuration.
// Token and passphrase values expand ${VAR} environment references.
func NewAuthProvider(cfg *config.SyncAuthConfig) (AuthProvider, error) {
	switch cfg.Type {
	case "token":
		if cfg.Token == "" {
			return nil, fmt.Errorf("token auth requires non-empty token")
		}
		return NewTokenAuth(os.ExpandEnv(cfg.Token))
	case "ssh":
		if cfg.SSHKeyPath == "" {
			return nil, fmt.Errorf("ssh auth requires ssh_key_path")
		}
		return NewSSHAuth(cfg.SSHKeyPath, os.ExpandEnv(cfg.SSHKeyPassphrase))
	case "none", "":
		return &NoAuth{}, nil
	default:
		return nil, fmt.Errorf("unknown auth type: %s", cfg.Type)
	}
}
