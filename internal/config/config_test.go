package config

import (
	"os"
	"testing"
	"time"
)

func TestRequireEnv(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		value     string
		shouldSet bool
		wantPanic bool
	}{
		{
			name:      "variable set",
			key:       "TEST_VAR",
			value:     "test_value",
			shouldSet: true,
			wantPanic: false,
		},
		{
			name:      "variable not set",
			key:       "TEST_VAR_MISSING",
			shouldSet: false,
			wantPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			if tt.wantPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Errorf("requireEnv() should have panicked")
					}
				}()
			}

			result := requireEnv(tt.key)
			if !tt.wantPanic && result != tt.value {
				t.Errorf("requireEnv() = %v, want %v", result, tt.value)
			}
		})
	}
}

func TestParseBackend(t *testing.T) {
	tests := []struct {
		in        string
		want      Backend
		wantPanic bool
	}{
		{in: "sqlite", want: BackendSQLite},
		{in: " Redis ", want: BackendRedis},
		{in: "memory", want: BackendMemory},
		{in: "indexeddb", wantPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if tt.wantPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Errorf("parseBackend(%q) should have panicked", tt.in)
					}
				}()
			}
			if got := parseBackend(tt.in); got != tt.want {
				t.Errorf("parseBackend(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PATHWAYS_STORE_BACKEND", "")
	t.Setenv("PATHWAYS_LISTEN_PORT", "")

	cfg := Load()
	if cfg.Backend != BackendSQLite {
		t.Errorf("Backend = %v, want sqlite", cfg.Backend)
	}
	if cfg.ListenPort != ":8080" {
		t.Errorf("ListenPort = %v", cfg.ListenPort)
	}
	if cfg.AutoCommitInterval != 0 || cfg.LinkCheckInterval != 0 {
		t.Errorf("background jobs should be disabled by default: %+v", cfg)
	}
	if cfg.RedisPrefix != "pathways:" {
		t.Errorf("RedisPrefix = %v", cfg.RedisPrefix)
	}
}

func TestLoadRedisRequiresAddr(t *testing.T) {
	t.Setenv("PATHWAYS_STORE_BACKEND", "redis")
	t.Setenv("PATHWAYS_REDIS_ADDR", "")

	defer func() {
		if r := recover(); r == nil {
			t.Error("Load() should panic without PATHWAYS_REDIS_ADDR")
		}
	}()
	Load()
}

func TestLoadRedis(t *testing.T) {
	t.Setenv("PATHWAYS_STORE_BACKEND", "redis")
	t.Setenv("PATHWAYS_REDIS_ADDR", "localhost:6379")
	t.Setenv("PATHWAYS_REDIS_DB", "2")
	t.Setenv("PATHWAYS_ALLOWED_CIDRS", "10.0.0.0/8, '127.0.0.1'")

	cfg := Load()
	if cfg.RedisAddr != "localhost:6379" || cfg.RedisDB != 2 {
		t.Errorf("redis config = %q db %d", cfg.RedisAddr, cfg.RedisDB)
	}
	if len(cfg.AllowedCIDRS) != 2 || cfg.AllowedCIDRS[1] != "127.0.0.1" {
		t.Errorf("AllowedCIDRS = %v", cfg.AllowedCIDRS)
	}
}

func TestLoadAllowedHosts(t *testing.T) {
	t.Setenv("PATHWAYS_STORE_BACKEND", "memory")
	t.Setenv("PATHWAYS_ALLOWED_HOSTS", "localhost, *.lan ,")

	cfg := Load()
	if len(cfg.AllowedHosts) != 2 || cfg.AllowedHosts[0] != "localhost" || cfg.AllowedHosts[1] != "*.lan" {
		t.Errorf("AllowedHosts = %q", cfg.AllowedHosts)
	}
}

func TestRedacted(t *testing.T) {
	cfg := Config{RedisUser: "admin", RedisPassword: "hunter2"}
	r := cfg.Redacted()
	if r.RedisPassword == "hunter2" || r.RedisUser == "admin" {
		t.Errorf("Redacted() leaked credentials: %+v", r)
	}
	if cfg.RedisPassword != "hunter2" {
		t.Error("Redacted() modified the original")
	}
	if empty := (Config{}).Redacted(); empty.RedisPassword != "" {
		t.Error("Redacted() should leave empty values empty")
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      time.Duration
		expected time.Duration
	}{
		{
			name:     "valid duration",
			key:      "TEST_DURATION",
			value:    "5s",
			def:      1 * time.Second,
			expected: 5 * time.Second,
		},
		{
			name:     "invalid duration uses default",
			key:      "TEST_DURATION_INVALID",
			value:    "invalid",
			def:      10 * time.Second,
			expected: 10 * time.Second,
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_DURATION_MISSING",
			value:    "",
			def:      15 * time.Second,
			expected: 15 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			result := mustDuration(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustDuration() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      bool
		expected bool
	}{
		{
			name:     "true value",
			key:      "TEST_BOOL",
			value:    "true",
			def:      false,
			expected: true,
		},
		{
			name:     "false value",
			key:      "TEST_BOOL_FALSE",
			value:    "false",
			def:      true,
			expected: false,
		},
		{
			name:     "invalid value uses default",
			key:      "TEST_BOOL_INVALID",
			value:    "invalid",
			def:      true,
			expected: true,
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_BOOL_MISSING",
			value:    "",
			def:      false,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			result := mustBool(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustBool() = %v, want %v", result, tt.expected)
			}
		})
	}
}
