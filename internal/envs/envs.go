// Package envs reads binary configuration from the environment, after
// loading an optional .env file.
package envs

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/joho/godotenv"

	"github.com/jacentio/constellation/store"
)

const (
	tableNameEnv         = "CONSTELLATION_TABLE"
	partitionKeyAttrEnv  = "CONSTELLATION_PARTITION_KEY"
	indexSuffixEnv       = "CONSTELLATION_INDEX_SUFFIX"
	dynamoEndpointEnv    = "DYNAMODB_ENDPOINT"
	logLevelEnv          = "LOG_LEVEL"
	lineChannelSecretEnv = "LINE_CHANNEL_SECRET"
	lineChannelTokenEnv  = "LINE_CHANNEL_TOKEN"
)

// Env is the configuration shared by every binary.
type Env struct {
	TableName        string
	PartitionKeyAttr string
	IndexSuffix      string

	// DynamoEndpoint overrides the DynamoDB endpoint, e.g. for DynamoDB Local.
	DynamoEndpoint string

	LogLevel string

	LineChannelSecret string
	LineChannelToken  string
}

// Load reads a .env file when present, then the environment. Variables
// already set in the environment win over the file. Explicit files must exist.
func Load(files ...string) (Env, error) {
	if err := godotenv.Load(files...); err != nil {
		if len(files) > 0 || !errors.Is(err, fs.ErrNotExist) {
			return Env{}, err
		}
	}
	return FromEnviron(), nil
}

// FromEnviron reads the process environment only.
func FromEnviron() Env {
	return Env{
		TableName:         os.Getenv(tableNameEnv),
		PartitionKeyAttr:  os.Getenv(partitionKeyAttrEnv),
		IndexSuffix:       os.Getenv(indexSuffixEnv),
		DynamoEndpoint:    os.Getenv(dynamoEndpointEnv),
		LogLevel:          os.Getenv(logLevelEnv),
		LineChannelSecret: os.Getenv(lineChannelSecretEnv),
		LineChannelToken:  os.Getenv(lineChannelTokenEnv),
	}
}

// StoreConfig returns the store configuration; unset values take store defaults.
func (e Env) StoreConfig() store.Config {
	return store.Config{
		TableName:        e.TableName,
		PartitionKeyAttr: e.PartitionKeyAttr,
		IndexSuffix:      e.IndexSuffix,
	}
}

// LineEnabled reports whether the LINE webhook is configured.
func (e Env) LineEnabled() bool {
	return e.LineChannelSecret != "" && e.LineChannelToken != ""
}

// Level parses LogLevel, defaulting to Info.
func (e Env) Level() slog.Level {
	switch strings.ToLower(e.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger returns a JSON logger writing to w at the configured level.
func (e Env) Logger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: e.Level()}))
}

// DynamoDB creates a DynamoDB client from the default AWS configuration.
func (e Env) DynamoDB(ctx context.Context) (*dynamodb.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if e.DynamoEndpoint != "" {
			o.BaseEndpoint = aws.String(e.DynamoEndpoint)
		}
	}), nil
}
