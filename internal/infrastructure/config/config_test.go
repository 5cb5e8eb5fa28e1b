package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// validJWTSecret meets the 32-character minimum requirement.
const validJWTSecret = "test-secret-key-at-least-32-chars!"

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Security.JWT.Secret = validJWTSecret
	return cfg
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
site:
  id: "test-site"
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
mqtt:
  enabled: true
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
  topic_prefix: "tartan"
api:
  host: "0.0.0.0"
  port: 8080
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
houses:
  - name: "alpha"
    username: "alice"
    password_hash: "$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA"
    lock_passcode: "1234"
    alarm_passcode: "4321"
    target_temp: 72
  - name: "beta"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Site.ID != "test-site" {
		t.Errorf("Site.ID = %q, want %q", cfg.Site.ID, "test-site")
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}
	if !cfg.MQTT.Enabled || cfg.MQTT.Broker.Host != "localhost" {
		t.Errorf("MQTT = %+v, want enabled on localhost", cfg.MQTT)
	}
	if len(cfg.Houses) != 2 {
		t.Fatalf("len(Houses) = %d, want 2", len(cfg.Houses))
	}

	alpha := cfg.Houses[0]
	if alpha.TargetTemp != 72 || alpha.LockPasscode != "1234" {
		t.Errorf("alpha = %+v", alpha)
	}

	beta := cfg.Houses[1]
	if beta.TargetTemp != defaultTargetTemp || beta.AlarmDelay != defaultAlarmDelay ||
		beta.NightStart != defaultNightStart || beta.NightEnd != defaultNightEnd {
		t.Errorf("beta defaults not applied: %+v", beta)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path/config.yaml"); err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "invalid: [yaml: content")
	if _, err := Load(configPath); err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	configPath := writeConfig(t, `
site:
  id: ""
database:
  path: "/tmp/test.db"
api:
  port: 8080
`)
	if _, err := Load(configPath); err == nil {
		t.Error("Load() expected validation error for empty site.id, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid config"},
		{name: "missing site ID", mutate: func(c *Config) { c.Site.ID = "" }, wantErr: "site.id"},
		{name: "missing database path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: "database.path"},
		{name: "invalid QoS", mutate: func(c *Config) { c.MQTT.QoS = 3 }, wantErr: "mqtt.qos"},
		{name: "missing topic prefix", mutate: func(c *Config) {
			c.MQTT.Enabled = true
			c.MQTT.TopicPrefix = ""
		}, wantErr: "topic_prefix"},
		{name: "invalid port low", mutate: func(c *Config) { c.API.Port = 0 }, wantErr: "api.port"},
		{name: "invalid port high", mutate: func(c *Config) { c.API.Port = 70000 }, wantErr: "api.port"},
		{name: "missing JWT secret", mutate: func(c *Config) { c.Security.JWT.Secret = "" }, wantErr: "jwt.secret is required"},
		{name: "JWT secret too short", mutate: func(c *Config) { c.Security.JWT.Secret = "short" }, wantErr: "at least 32"},
		{name: "history interval", mutate: func(c *Config) { c.History.Interval = 0 }, wantErr: "history.interval"},
		{name: "negative tick", mutate: func(c *Config) { c.Simulation.TickInterval = -1 }, wantErr: "tick_interval"},
		{name: "unnamed house", mutate: func(c *Config) {
			c.Houses = []HouseConfig{{Username: "x"}}
		}, wantErr: "houses[0].name"},
		{name: "duplicate house", mutate: func(c *Config) {
			c.Houses = []HouseConfig{{Name: "alpha"}, {Name: "alpha"}}
		}, wantErr: "duplicated"},
		{name: "duplicate username", mutate: func(c *Config) {
			c.Houses = []HouseConfig{
				{Name: "alpha", Username: "alice", PasswordHash: "h"},
				{Name: "beta", Username: "alice", PasswordHash: "h"},
			}
		}, wantErr: "username"},
		{name: "username without hash", mutate: func(c *Config) {
			c.Houses = []HouseConfig{{Name: "alpha", Username: "alice"}}
		}, wantErr: "password_hash"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_HouseByUsername(t *testing.T) {
	cfg := validConfig()
	cfg.Houses = []HouseConfig{
		{Name: "alpha", Username: "alice", PasswordHash: "h"},
		{Name: "beta"},
	}

	h, ok := cfg.HouseByUsername("alice")
	if !ok || h.Name != "alpha" {
		t.Errorf("HouseByUsername(alice) = %+v, %v", h, ok)
	}
	if _, ok := cfg.HouseByUsername(""); ok {
		t.Error("HouseByUsername(\"\") matched a house without a user")
	}
	if _, ok := cfg.HouseByUsername("mallory"); ok {
		t.Error("HouseByUsername(mallory) matched")
	}
}

func TestConfig_GetTimeouts(t *testing.T) {
	cfg := &Config{
		API: APIConfig{
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 45,
				Idle:  60,
			},
		},
		Security: SecurityConfig{JWT: JWTConfig{AccessTokenTTL: 15}},
	}

	if got := cfg.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30", got)
	}
	if got := cfg.GetWriteTimeout().Seconds(); got != 45 {
		t.Errorf("GetWriteTimeout() = %v, want 45", got)
	}
	if got := cfg.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60", got)
	}
	if got := cfg.GetAccessTokenTTL().Minutes(); got != 15 {
		t.Errorf("GetAccessTokenTTL() = %v, want 15", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("TARTAN_DATABASE_PATH", "/custom/path.db")
	t.Setenv("TARTAN_MQTT_HOST", "mqtt.example.com")
	t.Setenv("TARTAN_MQTT_USERNAME", "testuser")
	t.Setenv("TARTAN_MQTT_PASSWORD", "testpass")
	t.Setenv("TARTAN_API_HOST", "192.168.1.1")
	t.Setenv("TARTAN_API_PORT", "9090")
	t.Setenv("TARTAN_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("TARTAN_JWT_SECRET", "jwt-secret")

	applyEnvOverrides(cfg)

	checks := []struct {
		name, got, want string
	}{
		{"Database.Path", cfg.Database.Path, "/custom/path.db"},
		{"MQTT.Broker.Host", cfg.MQTT.Broker.Host, "mqtt.example.com"},
		{"MQTT.Auth.Username", cfg.MQTT.Auth.Username, "testuser"},
		{"MQTT.Auth.Password", cfg.MQTT.Auth.Password, "testpass"},
		{"API.Host", cfg.API.Host, "192.168.1.1"},
		{"InfluxDB.Token", cfg.InfluxDB.Token, "secret-token"},
		{"Security.JWT.Secret", cfg.Security.JWT.Secret, "jwt-secret"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.name, c.got, c.want)
		}
	}
	if cfg.API.Port != 9090 {
		t.Errorf("API.Port = %d, want 9090", cfg.API.Port)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Site.ID == "" {
		t.Error("defaultConfig should have non-empty Site.ID")
	}
	if cfg.Database.Path == "" {
		t.Error("defaultConfig should have non-empty Database.Path")
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("defaultConfig MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
	if cfg.MQTT.TopicPrefix != "tartan" {
		t.Errorf("defaultConfig MQTT.TopicPrefix = %q, want tartan", cfg.MQTT.TopicPrefix)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("defaultConfig API.Port = %d, want 8080", cfg.API.Port)
	}
}

func TestLoad_SampleConfig(t *testing.T) {
	t.Setenv("TARTAN_JWT_SECRET", validJWTSecret)

	cfg, err := Load(filepath.Join("..", "..", "..", "configs", "config.yaml"))
	if err != nil {
		t.Fatalf("Load(sample) error = %v", err)
	}
	if len(cfg.Houses) != 1 || cfg.Houses[0].Name != "main" {
		t.Errorf("Houses = %+v, want one house named main", cfg.Houses)
	}
	if cfg.Houses[0].NightStart != "2230" {
		t.Errorf("NightStart = %q, want 2230", cfg.Houses[0].NightStart)
	}
}
