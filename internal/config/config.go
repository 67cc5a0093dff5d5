package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	PostgresAddress  string
	PostgresPort     string
	PostgresDB       string
	PostgresUsername string
	PostgresPassword string

	HTTPPort string
	LogLevel string

	// Location every bucket and due date is computed in.
	Timezone *time.Location

	PaymentHorizonDays int
	SyncMaxRetries     int
	SyncPageSize       int
	OperatorWorkers    int

	PlaidClientID string
	PlaidSecret   string
	PlaidEnv      string

	TokenEncryptionKey string
	TokenSigningKey    string

	ElasticsearchURL string
}

// PostgresURL builds the lib/pq connection string.
func (c *Config) PostgresURL() string {
	return "postgres://" + c.PostgresUsername + ":" +
		c.PostgresPassword + "@" + c.PostgresAddress + ":" +
		c.PostgresPort + "/" + c.PostgresDB + "?sslmode=disable"
}

func ProcessEnvironmentVariables() (*Config, error) {
	// In all cases the default behavior should be for the docker compose setup
	env := Config{
		PostgresAddress:    "localhost",
		PostgresPort:       "5433",
		PostgresDB:         "postgres",
		PostgresUsername:   "postgres",
		PostgresPassword:   "testpassword",
		HTTPPort:           "9446",
		LogLevel:           "info",
		PaymentHorizonDays: 15,
		SyncMaxRetries:     5,
		SyncPageSize:       500,
		OperatorWorkers:    4,
		PlaidEnv:           "sandbox",
		ElasticsearchURL:   "http://localhost:9200",
	}

	setString(&env.PostgresAddress, "POSTGRES_ADDRESS")
	setString(&env.PostgresPort, "POSTGRES_PORT")
	setString(&env.PostgresDB, "POSTGRES_DB")
	setString(&env.PostgresUsername, "POSTGRES_USERNAME")
	setString(&env.PostgresPassword, "POSTGRES_PASSWORD")
	setString(&env.HTTPPort, "HTTP_PORT")
	setString(&env.LogLevel, "LOG_LEVEL")
	setString(&env.PlaidClientID, "PLAID_CLIENT_ID")
	setString(&env.PlaidSecret, "PLAID_SECRET")
	setString(&env.PlaidEnv, "PLAID_ENV")
	setString(&env.TokenEncryptionKey, "TOKEN_ENCRYPTION_KEY")
	setString(&env.TokenSigningKey, "TOKEN_SIGNING_KEY")
	setString(&env.ElasticsearchURL, "ELASTICSEARCH_URL")

	for name, target := range map[string]*int{
		"PAYMENT_HORIZON_DAYS": &env.PaymentHorizonDays,
		"SYNC_MAX_RETRIES":     &env.SyncMaxRetries,
		"SYNC_PAGE_SIZE":       &env.SyncPageSize,
		"OPERATOR_WORKERS":     &env.OperatorWorkers,
	} {
		if err := setInt(target, name); err != nil {
			return nil, err
		}
	}

	timezone := "America/New_York"
	setString(&timezone, "TIMEZONE")
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE %q: %w", timezone, err)
	}
	env.Timezone = loc

	return &env, nil
}

func setString(target *string, name string) {
	value := os.Getenv(name)
	if len(value) != 0 {
		*target = value
	}
}

func setInt(target *int, name string) error {
	value := os.Getenv(name)
	if len(value) == 0 {
		return nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s must be an integer: %w", name, err)
	}
	if parsed < 0 {
		return fmt.Errorf("%s must not be negative", name)
	}
	*target = parsed
	return nil
}
