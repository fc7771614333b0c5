package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ServiceName     string
	CoreDatabaseURL string
	TemporalAddress string
	HTTPListenAddr  string
	MetricsAddr     string
	LogLevel        string

	TemporalTLSCert       string
	TemporalTLSKey        string
	TemporalTLSCACert     string
	TemporalTLSServerName string

	// APIKeyHashes are bcrypt hashes of accepted X-API-Key values.
	APIKeyHashes   []string
	AllowAnonymous bool

	AWSRegion          string
	AWSEndpointURL     string
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	// CloudFormationRoleARN is passed as the stack service role when set.
	CloudFormationRoleARN string
	// CredentialParamPrefix is the SSM path holding the GitHub App credentials.
	CredentialParamPrefix string

	// GitHub App fallbacks used when the credential store has no value.
	GitHubAppID          string
	GitHubInstallationID string
	GitHubPrivateKey     string
	GitHubAPIURL         string
	GitHubWebhookSecret  string
	GitHubTokenTTL       time.Duration

	// PipelinePollSource controls PollForSourceChanges on generated pipelines.
	// Deployments only start pipelines while it is enabled.
	PipelinePollSource bool
	InstanceType       string

	DeployConcurrency int
	BackendTimeout    time.Duration

	ScheduleUTCOffsetHours int
	SweepCron              string
	ReadinessSyncCron      string
	// ScheduleSuspendCompute stops/starts the environment host alongside the
	// scheduled status transitions.
	ScheduleSuspendCompute bool
}

func Load() (*Config, error) {
	cfg := &Config{
		ServiceName:     getEnv("SERVICE_NAME", ""),
		CoreDatabaseURL: getEnv("CORE_DATABASE_URL", ""),
		TemporalAddress: getEnv("TEMPORAL_ADDRESS", "localhost:7233"),
		HTTPListenAddr:  getEnv("HTTP_LISTEN_ADDR", ":8090"),
		MetricsAddr:     getEnv("METRICS_ADDR", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),

		TemporalTLSCert:       getEnv("TEMPORAL_TLS_CERT", ""),
		TemporalTLSKey:        getEnv("TEMPORAL_TLS_KEY", ""),
		TemporalTLSCACert:     getEnv("TEMPORAL_TLS_CA_CERT", ""),
		TemporalTLSServerName: getEnv("TEMPORAL_TLS_SERVER_NAME", ""),

		APIKeyHashes: getEnvList("API_KEY_HASHES"),

		AWSRegion:          getEnv("AWS_REGION", "ap-northeast-2"),
		AWSEndpointURL:     getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),

		CloudFormationRoleARN: getEnv("CLOUDFORMATION_ROLE_ARN", ""),
		CredentialParamPrefix: getEnv("CREDENTIAL_PARAM_PREFIX", "/branchbox/config/github"),

		GitHubAppID:          getEnv("GITHUB_APP_ID", ""),
		GitHubInstallationID: getEnv("GITHUB_INSTALLATION_ID", ""),
		GitHubPrivateKey:     getEnv("GITHUB_PRIVATE_KEY", ""),
		GitHubAPIURL:         getEnv("GITHUB_API_URL", ""),
		GitHubWebhookSecret:  getEnv("GITHUB_WEBHOOK_SECRET", ""),

		InstanceType:      getEnv("INSTANCE_TYPE", "t3.medium"),
		SweepCron:         getEnv("SWEEP_CRON", "0 * * * *"),
		ReadinessSyncCron: getEnv("READINESS_SYNC_CRON", "*/5 * * * *"),
	}

	var err error
	if cfg.AllowAnonymous, err = getEnvBool("ALLOW_ANONYMOUS", false); err != nil {
		return nil, err
	}
	if cfg.PipelinePollSource, err = getEnvBool("PIPELINE_POLL_SOURCE", true); err != nil {
		return nil, err
	}
	if cfg.ScheduleSuspendCompute, err = getEnvBool("SCHEDULE_SUSPEND_COMPUTE", false); err != nil {
		return nil, err
	}
	if cfg.DeployConcurrency, err = getEnvInt("DEPLOY_CONCURRENCY", 3); err != nil {
		return nil, err
	}
	if cfg.ScheduleUTCOffsetHours, err = getEnvInt("SCHEDULE_UTC_OFFSET_HOURS", 9); err != nil {
		return nil, err
	}
	if cfg.BackendTimeout, err = getEnvDuration("BACKEND_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.GitHubTokenTTL, err = getEnvDuration("GITHUB_TOKEN_TTL", 50*time.Minute); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the fields required by the given binary are set.
func (c *Config) Validate(role string) error {
	var missing []string
	require := func(name, value string) {
		if value == "" {
			missing = append(missing, name)
		}
	}

	switch role {
	case "branchbox-api":
		require("CORE_DATABASE_URL", c.CoreDatabaseURL)
		require("HTTP_LISTEN_ADDR", c.HTTPListenAddr)
		require("AWS_REGION", c.AWSRegion)
	case "worker":
		require("CORE_DATABASE_URL", c.CoreDatabaseURL)
		require("TEMPORAL_ADDRESS", c.TemporalAddress)
		require("AWS_REGION", c.AWSRegion)
		require("SWEEP_CRON", c.SweepCron)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}

	if (c.TemporalTLSCert == "") != (c.TemporalTLSKey == "") {
		return fmt.Errorf("TEMPORAL_TLS_CERT and TEMPORAL_TLS_KEY must both be set")
	}
	if role == "branchbox-api" && len(c.APIKeyHashes) == 0 && !c.AllowAnonymous {
		return fmt.Errorf("API_KEY_HASHES is empty; set ALLOW_ANONYMOUS=true to run without API keys")
	}
	if c.DeployConcurrency < 1 {
		return fmt.Errorf("DEPLOY_CONCURRENCY must be at least 1")
	}
	if c.ScheduleUTCOffsetHours < -12 || c.ScheduleUTCOffsetHours > 14 {
		return fmt.Errorf("SCHEDULE_UTC_OFFSET_HOURS must be between -12 and 14")
	}
	if c.BackendTimeout <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return b, nil
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}
