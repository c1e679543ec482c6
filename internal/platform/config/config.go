package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Server captures process-level configuration. It is read once in main and injected.
type Server struct {
	Addr          string
	AdminAPIToken string
	LogLevel      string
	DatabaseURL   string
	Redis         RedisConfig
	SMS           SMSGateway
	Tenant        Tenant
}

// RedisConfig configures the optional Redis backing. An empty URL disables it.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// SMSGateway configures delivery of onboarding messages.
type SMSGateway struct {
	Endpoint string
	Token    string
	SenderID string
	LoginURL string
	Timeout  time.Duration
}

// Tenant tunes the registration saga.
type Tenant struct {
	StepTimeout          time.Duration
	CompensationAttempts uint
}

const (
	defaultAddr                 = ":8080"
	defaultSMSEndpoint          = "https://app.text.lk/api/v3/sms/send"
	defaultSenderID             = "GymDesk"
	defaultLoginURL             = "https://app.gymdesk.lk/login"
	defaultSMSTimeout           = 8 * time.Second
	defaultStepTimeout          = 10 * time.Second
	defaultCompensationAttempts = 3
)

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	smsTimeout, err := durationEnv("SMS_GATEWAY_TIMEOUT", defaultSMSTimeout)
	if err != nil {
		return Server{}, err
	}
	stepTimeout, err := durationEnv("TENANT_STEP_TIMEOUT", defaultStepTimeout)
	if err != nil {
		return Server{}, err
	}
	attempts, err := uintEnv("TENANT_COMPENSATION_ATTEMPTS", defaultCompensationAttempts)
	if err != nil {
		return Server{}, err
	}
	if attempts == 0 {
		return Server{}, fmt.Errorf("TENANT_COMPENSATION_ATTEMPTS must be at least 1")
	}
	// The notify step runs under the step timeout, so the gateway must give up first.
	if smsTimeout > stepTimeout {
		return Server{}, fmt.Errorf("SMS_GATEWAY_TIMEOUT (%s) must not exceed TENANT_STEP_TIMEOUT (%s)", smsTimeout, stepTimeout)
	}

	return Server{
		Addr:          stringEnv("GYMDESK_ADDR", defaultAddr),
		AdminAPIToken: os.Getenv("ADMIN_API_TOKEN"),
		LogLevel:      stringEnv("LOG_LEVEL", "info"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		SMS: SMSGateway{
			Endpoint: stringEnv("SMS_GATEWAY_ENDPOINT", defaultSMSEndpoint),
			Token:    os.Getenv("SMS_GATEWAY_TOKEN"),
			SenderID: stringEnv("SMS_SENDER_ID", defaultSenderID),
			LoginURL: stringEnv("TENANT_LOGIN_URL", defaultLoginURL),
			Timeout:  smsTimeout,
		},
		Tenant: Tenant{
			StepTimeout:          stepTimeout,
			CompensationAttempts: attempts,
		},
	}, nil
}

func stringEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, raw)
	}
	return d, nil
}

func uintEnv(key string, fallback uint) (uint, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return uint(n), nil
}
