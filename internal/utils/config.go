package utils

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Config is loaded once at startup from config.yaml with environment
// variables taking precedence. Requests never mutate it.
type Config struct {
	Port     string `yaml:"PORT"`
	LogLevel string `yaml:"LOG_LEVEL"`

	// Document database configuration
	MongoURI      string `yaml:"MONGO_URI"`
	MongoDatabase string `yaml:"MONGO_DATABASE"`

	// AWS configuration shared by S3 and Cognito
	AWSRegion    string `yaml:"AWS_REGION"`
	AWSAccessKey string `yaml:"AWS_ACCESS_KEY"`
	AWSSecretKey string `yaml:"AWS_SECRET_KEY"`

	// Object storage configuration
	AWSS3Bucket         string `yaml:"AWS_S3_BUCKET"`
	AWSCloudfrontDomain string `yaml:"AWS_CLOUDFRONT_DOMAIN"`

	// Identity provider configuration
	CognitoUserPoolID string `yaml:"AWS_COGNITO_USER_POOL_ID"`
	CognitoClientID   string `yaml:"AWS_COGNITO_CLIENT_ID"`

	// Upper bound on live identity-provider calls, in seconds.
	AuthStatusTimeoutSeconds int `yaml:"AUTH_STATUS_TIMEOUT_SECONDS"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:                     "8080",
		LogLevel:                 "info",
		MongoDatabase:            "recipes",
		AuthStatusTimeoutSeconds: 5,
	}

	if file, err := os.ReadFile("config.yaml"); err == nil {
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("parsing config.yaml: %w", err)
		}
	}

	overrideFromEnv(&cfg.Port, "PORT")
	overrideFromEnv(&cfg.LogLevel, "LOG_LEVEL")
	overrideFromEnv(&cfg.MongoURI, "MONGO_URI")
	overrideFromEnv(&cfg.MongoDatabase, "MONGO_DATABASE")
	overrideFromEnv(&cfg.AWSRegion, "AWS_REGION")
	overrideFromEnv(&cfg.AWSAccessKey, "AWS_ACCESS_KEY")
	overrideFromEnv(&cfg.AWSSecretKey, "AWS_SECRET_KEY")
	overrideFromEnv(&cfg.AWSS3Bucket, "AWS_S3_BUCKET")
	overrideFromEnv(&cfg.AWSCloudfrontDomain, "AWS_CLOUDFRONT_DOMAIN")
	overrideFromEnv(&cfg.CognitoUserPoolID, "AWS_COGNITO_USER_POOL_ID")
	overrideFromEnv(&cfg.CognitoClientID, "AWS_COGNITO_CLIENT_ID")

	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI is not configured")
	}
	return cfg, nil
}

func (c *Config) AuthStatusTimeout() time.Duration {
	return time.Duration(c.AuthStatusTimeoutSeconds) * time.Second
}

// CognitoIssuer is the expected iss claim of every accepted token.
func (c *Config) CognitoIssuer() string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", c.AWSRegion, c.CognitoUserPoolID)
}

// CognitoJWKSURL is the identity provider's signing-key set endpoint.
func (c *Config) CognitoJWKSURL() string {
	return c.CognitoIssuer() + "/.well-known/jwks.json"
}

func overrideFromEnv(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}
