package internal

import (
	"strings"
	"testing"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestLedgerConfig_RequiresURL(t *testing.T) {
	cfg := LedgerConfig{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("missing base URL should fail")
	}
	cfg.BaseURL = "not a url"
	if err := cfg.Validate(); err == nil {
		t.Fatal("malformed base URL should fail")
	}
	cfg.BaseURL = "http://ledger.example:9090"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid URL rejected: %v", err)
	}
}

func TestEditorConfig_DebounceBounds(t *testing.T) {
	cfg := EditorConfig{DebounceMS: 5}
	if err := cfg.Validate(); err == nil {
		t.Error("sub-10ms debounce should fail")
	}
	cfg.DebounceMS = 300
	if err := cfg.Validate(); err != nil {
		t.Errorf("default debounce rejected: %v", err)
	}
}

func TestImporterConfig_EnabledByPath(t *testing.T) {
	var cfg ImporterConfig
	if cfg.Enabled() {
		t.Error("empty path should disable the importer")
	}
	cfg.Path = "./dropbox"
	if !cfg.Enabled() {
		t.Error("non-empty path should enable the importer")
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}
