// internal/pkg/config/secrets.go
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretsManager resolves sensitive configuration values.
type SecretsManager interface {
	GetSecret(ctx context.Context, key string) (string, error)
	GetSecrets(ctx context.Context, keys []string) (map[string]string, error)
	RefreshSecrets(ctx context.Context) error
}

// AWSSecretsManager reads one JSON secret from AWS Secrets Manager and
// serves individual keys out of it, caching the document briefly so
// every lookup does not hit the API.
type AWSSecretsManager struct {
	client     *secretsmanager.Client
	secretName string
	ttl        time.Duration
	logger     *slog.Logger

	mu        sync.RWMutex
	cache     map[string]string
	lastFetch time.Time
}

func NewAWSSecretsManager(region, secretName string, logger *slog.Logger) (*AWSSecretsManager, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSecretsManager{
		client:     secretsmanager.NewFromConfig(cfg),
		secretName: secretName,
		ttl:        5 * time.Minute,
		cache:      make(map[string]string),
		logger:     logger,
	}, nil
}

func (sm *AWSSecretsManager) GetSecret(ctx context.Context, key string) (string, error) {
	secrets, err := sm.GetSecrets(ctx, []string{key})
	if err != nil {
		return "", err
	}
	val, ok := secrets[key]
	if !ok {
		return "", fmt.Errorf("secret key %s not found", key)
	}
	return val, nil
}

func (sm *AWSSecretsManager) GetSecrets(ctx context.Context, keys []string) (map[string]string, error) {
	if cached, ok := sm.fromCache(keys); ok {
		sm.logger.Debug("returning cached secrets")
		return cached, nil
	}

	sm.logger.Info("fetching secrets from AWS Secrets Manager",
		slog.String("secret_name", sm.secretName))

	result, err := sm.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(sm.secretName),
		VersionStage: aws.String("AWSCURRENT"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get secret value: %w", err)
	}

	var document map[string]string
	if err := json.Unmarshal([]byte(*result.SecretString), &document); err != nil {
		return nil, fmt.Errorf("failed to parse secret JSON: %w", err)
	}

	sm.mu.Lock()
	sm.cache = document
	sm.lastFetch = time.Now()
	sm.mu.Unlock()

	found := make(map[string]string, len(keys))
	for _, key := range keys {
		val, ok := document[key]
		if !ok {
			sm.logger.Warn("secret key not found in AWS Secrets Manager",
				slog.String("key", key))
			continue
		}
		found[key] = val
	}
	return found, nil
}

// fromCache answers the request from the cached document when it is
// fresh and holds every requested key.
func (sm *AWSSecretsManager) fromCache(keys []string) (map[string]string, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if time.Since(sm.lastFetch) >= sm.ttl || len(sm.cache) == 0 {
		return nil, false
	}

	cached := make(map[string]string, len(keys))
	for _, key := range keys {
		val, ok := sm.cache[key]
		if !ok {
			return nil, false
		}
		cached[key] = val
	}
	return cached, true
}

// RefreshSecrets drops the cache and refetches the document.
func (sm *AWSSecretsManager) RefreshSecrets(ctx context.Context) error {
	sm.mu.Lock()
	sm.cache = make(map[string]string)
	sm.lastFetch = time.Time{}
	sm.mu.Unlock()

	_, err := sm.GetSecrets(ctx, []string{})
	return err
}

// EnvSecretsManager serves secrets straight from environment variables,
// for development and tests.
type EnvSecretsManager struct{}

func NewEnvSecretsManager() *EnvSecretsManager {
	return &EnvSecretsManager{}
}

func (em *EnvSecretsManager) GetSecret(ctx context.Context, key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("environment variable %s not set", key)
	}
	return val, nil
}

func (em *EnvSecretsManager) GetSecrets(ctx context.Context, keys []string) (map[string]string, error) {
	secrets := make(map[string]string, len(keys))
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			secrets[key] = val
		}
	}
	return secrets, nil
}

func (em *EnvSecretsManager) RefreshSecrets(ctx context.Context) error {
	return nil
}

// NewSecretsManager picks the secrets backend from configuration.
func NewSecretsManager(cfg *Config, logger *slog.Logger) (SecretsManager, error) {
	if cfg.AWS.UseSecretsManager {
		return NewAWSSecretsManager(cfg.AWS.Region, cfg.AWS.SecretName, logger)
	}
	return NewEnvSecretsManager(), nil
}

// ApplySecrets overrides sensitive config fields from the secrets backend.
// Keys absent from the backend leave the existing values in place.
func ApplySecrets(ctx context.Context, cfg *Config, sm SecretsManager) error {
	secrets, err := sm.GetSecrets(ctx, []string{"DB_PASSWORD", "REDIS_PASSWORD"})
	if err != nil {
		return fmt.Errorf("failed to fetch secrets: %w", err)
	}

	if v, ok := secrets["DB_PASSWORD"]; ok {
		cfg.Database.Password = v
	}
	if v, ok := secrets["REDIS_PASSWORD"]; ok {
		cfg.Redis.Password = v
		cfg.Asynq.RedisPassword = v
	}

	return nil
}
