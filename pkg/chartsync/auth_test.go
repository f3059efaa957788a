package chartsync

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/portolan-hq/tilegate/pkg/config"
)

func TestNewTokenAuth(t *testing.T) {
	if _, err := NewTokenAuth(""); err == nil {
		t.Error("expected error for empty token")
	}

	auth, err := NewTokenAuth("ghp_testtoken")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if auth.Type() != "token" {
		t.Errorf("Type() = %q, want %q", auth.Type(), "token")
	}
}

func TestTokenAuth_GetAuth(t *testing.T) {
	auth, err := NewTokenAuth("ghp_testtoken")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	method, err := auth.GetAuth()
	if err != nil {
		t.Fatalf("GetAuth() error: %v", err)
	}

	basic, ok := method.(*githttp.BasicAuth)
	if !ok {
		t.Fatalf("GetAuth() returned %T, want *http.BasicAuth", method)
	}
	if basic.Username != "git" {
		t.Errorf("Username = %q, want %q", basic.Username, "git")
	}
	if basic.Password != "ghp_testtoken" {
		t.Errorf("Password = %q, want token", basic.Password)
	}
}

func TestNewSSHAuth(t *testing.T) {
	if _, err := NewSSHAuth("", ""); err == nil {
		t.Error("expected error for empty key path")
	}

	auth, err := NewSSHAuth("/home/user/.ssh/id_rsa", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if auth.Type() != "ssh" {
		t.Errorf("Type() = %q, want %q", auth.Type(), "ssh")
	}
}

func TestSSHAuth_GetAuth(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		wantErr string
	}{
		{
			name: "missing key file",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "no_such_key")
			},
			wantErr: "not accessible",
		},
		{
			name: "permissions too open",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "id_rsa")
				if err := os.WriteFile(path, []byte("not a real key"), 0644); err != nil {
					t.Fatal(err)
				}
				return path
			},
			wantErr: "permissions too open",
		},
		{
			name: "invalid key content",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "id_rsa")
				if err := os.WriteFile(path, []byte("not a real key"), 0600); err != nil {
					t.Fatal(err)
				}
				return path
			},
			wantErr: "failed to load SSH key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth, err := NewSSHAuth(tt.setup(t), "")
			if err != nil {
				t.Fatalf("NewSSHAuth() error: %v", err)
			}

			_, err = auth.GetAuth()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestNoAuth(t *testing.T) {
	auth := &NoAuth{}
	if auth.Type() != "none" {
		t.Errorf("Type() = %q, want %q", auth.Type(), "none")
	}

	method, err := auth.GetAuth()
	if err != nil {
		t.Errorf("GetAuth() error: %v", err)
	}
	if method != nil {
		t.Errorf("GetAuth() = %v, want nil", method)
	}
}

func TestNewAuthProvider(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.SyncAuthConfig
		wantType string
		wantErr  string
	}{
		{
			name:     "token",
			cfg:      config.SyncAuthConfig{Type: "token", Token: "ghp_test"},
			wantType: "token",
		},
		{
			name:    "token without token",
			cfg:     config.SyncAuthConfig{Type: "token"},
			wantErr: "token auth requires non-empty token",
		},
		{
			name:     "ssh",
			cfg:      config.SyncAuthConfig{Type: "ssh", SSHKeyPath: "/home/user/.ssh/id_rsa"},
			wantType: "ssh",
		},
		{
			name:    "ssh without key path",
			cfg:     config.SyncAuthConfig{Type: "ssh"},
			wantErr: "ssh auth requires ssh_key_path",
		},
		{
			name:     "none",
			cfg:      config.SyncAuthConfig{Type: "none"},
			wantType: "none",
		},
		{
			name:     "empty defaults to none",
			cfg:      config.SyncAuthConfig{},
			wantType: "none",
		},
		{
			name:    "unknown type",
			cfg:     config.SyncAuthConfig{Type: "kerberos"},
			wantErr: "unknown auth type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewAuthProvider(&tt.cfg)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error = %q, want substring %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if provider.Type() != tt.wantType {
				t.Errorf("Type() = %q, want %q", provider.Type(), tt.wantType)
			}
		})
	}
}

func TestNewAuthProvider_EnvExpansion(t *testing.T) {
	t.Setenv("TILEGATE_TEST_TOKEN", "expanded-secret")

	provider, err := NewAuthProvider(&config.SyncAuthConfig{
		Type:  "token",
		Token: "${TILEGATE_TEST_TOKEN}",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, ok := provider.(*TokenAuth)
	if !ok {
		t.Fatalf("provider is %T, want *TokenAuth", provider)
	}
	if token.token != "expanded-secret" {
		t.Errorf("token = %q, want expanded value", token.token)
	}

	t.Setenv("TILEGATE_TEST_PASSPHRASE", "open-sesame")

	provider, err = NewAuthProvider(&config.SyncAuthConfig{
		Type:             "ssh",
		SSHKeyPath:       "/home/user/.ssh/id_rsa",
		SSHKeyPassphrase: "${TILEGATE_TEST_PASSPHRASE}",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ssh, ok := provider.(*SSHAuth)
	if !ok {
		t.Fatalf("provider is %T, want *SSHAuth", provider)
	}
	if ssh.passphrase != "open-sesame" {
		t.Errorf("passphrase = %q, want expanded value", ssh.passphrase)
	}
}
