package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(`
http:
  addr: ":8080"
postgres:
  dsn: "postgres://localhost/clinic"
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.WS.MaxMessageSize != 64<<10 {
		t.Fatalf("maxMessageSize default: %d", cfg.WS.MaxMessageSize)
	}
	if cfg.Chat.MaxMessageLength != 4000 {
		t.Fatalf("maxMessageLength default: %d", cfg.Chat.MaxMessageLength)
	}
	if cfg.Redis.Channel != "clinic:notifications" {
		t.Fatalf("redis channel default: %q", cfg.Redis.Channel)
	}
	if cfg.Logging.Service != "realtime-service" || cfg.Logging.Backend != "std" || cfg.Logging.Env != "dev" {
		t.Fatalf("logging defaults: %+v", cfg.Logging)
	}
	if got := cfg.WS.PingEvery(); got != 15*time.Second {
		t.Fatalf("ping default: %v", got)
	}
	if got := cfg.WS.WriteTimeout(); got != 5*time.Second {
		t.Fatalf("write wait default: %v", got)
	}
}

func TestParse_Required(t *testing.T) {
	cases := map[string]string{
		"no http":     "postgres:\n  dsn: x\n",
		"no postgres": "http:\n  addr: ':1'\n",
		"jwt no iss":  "http:\n  addr: ':1'\npostgres:\n  dsn: x\nauth:\n  jwtPublicKeyPath: /k.pem\n",
	}
	for name, raw := range cases {
		if _, err := Parse([]byte(raw)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestParseDurationOr(t *testing.T) {
	if d := parseDurationOr(time.Second, "bogus"); d != time.Second {
		t.Fatalf("bad input should fall back, got %v", d)
	}
	if d := parseDurationOr(time.Second, "-5s"); d != time.Second {
		t.Fatalf("negative should fall back, got %v", d)
	}
	if d := parseDurationOr(time.Second, "250ms"); d != 250*time.Millisecond {
		t.Fatalf("got %v", d)
	}
}

func TestLoadConfig_FromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	raw := "http:\n  addr: ':9000'\npostgres:\n  dsn: x\nws:\n  pingInterval: 3s\n"
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_PATH", path)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr != ":9000" || cfg.WS.PingEvery() != 3*time.Second {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}
