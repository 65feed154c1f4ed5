package mysql

import (
	"os"
	"strconv"
	"testing"

	"github.com/sirupsen/logrus"

	"finapi/internal/repository/repotest"
)

// Set FINAPI_TEST_MYSQL_HOST (and optionally _PORT, _USER, _PASSWORD, _DB)
// to run against a scratch schema.
func testClient(t *testing.T) *Client {
	t.Helper()
	host := os.Getenv("FINAPI_TEST_MYSQL_HOST")
	if host == "" {
		t.Skip("FINAPI_TEST_MYSQL_HOST not set")
	}
	port, _ := strconv.Atoi(os.Getenv("FINAPI_TEST_MYSQL_PORT"))
	if port == 0 {
		port = 3306
	}
	cfg := Config{
		Host:           host,
		Port:           port,
		User:           envOr("FINAPI_TEST_MYSQL_USER", "root"),
		Password:       os.Getenv("FINAPI_TEST_MYSQL_PASSWORD"),
		DBName:         envOr("FINAPI_TEST_MYSQL_DB", "finapi_test"),
		LogLevel:       "silent",
		ConnectRetries: 1,
	}
	client, err := NewClient(cfg, logrus.New())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		_ = client.DB().Migrator().DropTable(&sqlStatement{}, &sqlUser{})
		client.Close()
	})
	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestUserRepository(t *testing.T) {
	client := testClient(t)
	repotest.Users(t, NewUserRepository(client))
}

func TestStatementRepository(t *testing.T) {
	client := testClient(t)
	repotest.Statements(t, NewUserRepository(client), NewStatementRepository(client))
}

func TestDSN(t *testing.T) {
	cfg := Config{Host: "db", Port: 3307, User: "u", Password: "p", DBName: "ledger"}
	want := "u:p@tcp(db:3307)/ledger?charset=utf8mb4&parseTime=True&loc=UTC"
	if got := cfg.DSN(); got != want {
		t.Fatalf("dsn=%q want=%q", got, want)
	}
}
