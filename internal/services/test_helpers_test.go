package services_test

import (
	"github.com/algospace/algospace-api/config"
	"github.com/algospace/algospace-api/pkg/logger"
)

func init() {
	// Initialize logger for tests
	if err := logger.Initialize(logger.Config{
		Level:       "debug",
		Environment: "development",
	}); err != nil {
		panic(err)
	}
}

// testConfig returns a config suitable for unit tests. Trigger URLs are left
// empty so no webhook calls fire.
func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:    "8081",
			GinMode: "debug",
			AppEnv:  "development",
		},
		Auth: config.AuthConfig{
			JWTSecret:                   "test-secret",
			JWTIssuer:                   "algospace-test",
			RegistrationTokenTTLMinutes: 60,
			ProfileTokenTTLHours:        2,
			SessionTTLHours:             720,
		},
		Payment: config.PaymentConfig{
			KeyID:     "key_test",
			KeySecret: "secret_test",
		},
	}
}
