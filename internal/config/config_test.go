package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("FINAPI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func TestDefaults(t *testing.T) {
	t.Setenv("FINAPI_AUTH_JWTSECRET", "s3cret")

	cfg, err := decode(newViper())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.Path != "data/finapi.db" {
		t.Fatalf("database=%+v", cfg.Database)
	}
	if cfg.Auth.TokenTTLMinutes != 1440 {
		t.Fatalf("ttl=%d want=1440", cfg.Auth.TokenTTLMinutes)
	}
	if cfg.MySQL.ConnMaxLifetime != time.Hour || cfg.MySQL.Port != 3306 {
		t.Fatalf("mysql=%+v", cfg.MySQL)
	}
	if cfg.Archive.Bucket != "" || cfg.Archive.URLTTLMinutes != 15 {
		t.Fatalf("archive=%+v", cfg.Archive)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FINAPI_AUTH_JWTSECRET", "s3cret")
	t.Setenv("FINAPI_DATABASE_DRIVER", "Postgres")
	t.Setenv("FINAPI_DATABASE_DSN", "postgres://localhost/finapi")
	t.Setenv("FINAPI_MYSQL_CONNMAXLIFETIME", "90s")
	t.Setenv("FINAPI_LOG_FORMAT", "json")

	cfg, err := decode(newViper())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Database.Driver != "postgres" || cfg.Database.DSN != "postgres://localhost/finapi" {
		t.Fatalf("database=%+v", cfg.Database)
	}
	if cfg.MySQL.ConnMaxLifetime != 90*time.Second {
		t.Fatalf("connmaxlifetime=%s", cfg.MySQL.ConnMaxLifetime)
	}
	if cfg.Log.Format != "json" {
		t.Fatalf("log format=%q", cfg.Log.Format)
	}
}

func TestDecodeRejects(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secret":   {},
		"unknown driver":   {"FINAPI_AUTH_JWTSECRET": "x", "FINAPI_DATABASE_DRIVER": "oracle"},
		"postgres w/o dsn": {"FINAPI_AUTH_JWTSECRET": "x", "FINAPI_DATABASE_DRIVER": "postgres"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("FINAPI_AUTH_JWTSECRET", "")
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := decode(newViper()); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadDotEnvKeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\nFINAPI_TEST_A=\"from-file\"\nFINAPI_TEST_B=file\nbroken\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FINAPI_TEST_B", "from-env")
	t.Setenv("FINAPI_TEST_A", "")
	os.Unsetenv("FINAPI_TEST_A")

	loadDotEnv(path)
	t.Cleanup(func() { os.Unsetenv("FINAPI_TEST_A") })

	if got := os.Getenv("FINAPI_TEST_A"); got != "from-file" {
		t.Fatalf("A=%q", got)
	}
	if got := os.Getenv("FINAPI_TEST_B"); got != "from-env" {
		t.Fatalf("B=%q", got)
	}
}
