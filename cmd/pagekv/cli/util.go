package cli

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hupe1980/pagekv"
	"github.com/hupe1980/pagekv/blobstore"
	"github.com/hupe1980/pagekv/blobstore/minio"
	"github.com/hupe1980/pagekv/blobstore/s3"
	"github.com/hupe1980/pagekv/resource"
)

const (
	// Wrap is the number of characters to wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// InitConfig loads .env files and wires environment variables into viper.
func InitConfig() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix("pagekv")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// parseLogLevel maps debug, info, warn and error to slog levels.
func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// EngineOptions builds the engine options from the bound configuration.
func EngineOptions(extra ...pagekv.Option) ([]pagekv.Option, error) {
	level, err := parseLogLevel(viper.GetString("log-level"))
	if err != nil {
		return nil, err
	}

	opts := []pagekv.Option{
		pagekv.WithLogLevel(level),
		pagekv.WithDirectIO(viper.GetBool("direct-io")),
	}
	if viper.GetBool("sync") {
		opts = append(opts, pagekv.WithDurability(pagekv.DurabilitySync))
	}
	if viper.GetBool("skip-unreadable") {
		opts = append(opts, pagekv.WithRecoveryPolicy(pagekv.RecoverySkip))
	}
	if rate := viper.GetInt64("rate-limit"); rate > 0 {
		opts = append(opts, pagekv.WithResourceController(resource.NewController(resource.Config{
			IOLimitBytesPerSec:   rate,
			MaxBackgroundWorkers: 1,
		})))
	}
	return append(opts, extra...), nil
}

// OpenEngine opens the directory named by --dir.
func OpenEngine(extra ...pagekv.Option) (*pagekv.Engine, error) {
	opts, err := EngineOptions(extra...)
	if err != nil {
		return nil, err
	}
	dir := viper.GetString("dir")
	if dir == "" {
		return nil, fmt.Errorf("no directory given (use --dir or PAGEKV_DIR)")
	}
	return pagekv.Open(dir, opts...)
}

// DecodeArg turns a command argument into bytes, hex-decoding it with --hex.
func DecodeArg(s string) ([]byte, error) {
	if viper.GetBool("hex") {
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("invalid hex %q: %w", s, err)
		}
		return b, nil
	}
	return []byte(s), nil
}

// EncodeOutput renders bytes for printing, hex-encoding them with --hex.
func EncodeOutput(b []byte) string {
	if viper.GetBool("hex") {
		return hex.EncodeToString(b)
	}
	return string(b)
}

// SetupBlobStoreFlags adds the flags that select a backup destination.
func SetupBlobStoreFlags(cmd *cobra.Command) {
	key := "backup-dir"
	cmd.PersistentFlags().String(key, ".", WrapString("Local directory for backups (used when no S3 bucket or MinIO endpoint is set)"))

	key = "s3-bucket"
	cmd.PersistentFlags().String(key, "", WrapString("S3 bucket for backups; credentials come from the default AWS chain"))
	key = "s3-prefix"
	cmd.PersistentFlags().String(key, "", WrapString("Key prefix inside the S3 bucket"))
	key = "s3-region"
	cmd.PersistentFlags().String(key, "", WrapString("AWS region override"))
	key = "s3-endpoint"
	cmd.PersistentFlags().String(key, "", WrapString("Custom S3-compatible endpoint URL (enables path-style addressing)"))

	key = "minio-endpoint"
	cmd.PersistentFlags().String(key, "", WrapString("MinIO endpoint (host:port) for backups"))
	key = "minio-bucket"
	cmd.PersistentFlags().String(key, "pagekv", WrapString("MinIO bucket, created if missing"))
	key = "minio-prefix"
	cmd.PersistentFlags().String(key, "", WrapString("Object prefix inside the MinIO bucket"))
	key = "minio-access-key"
	cmd.PersistentFlags().String(key, "", WrapString("MinIO access key"))
	key = "minio-secret-key"
	cmd.PersistentFlags().String(key, "", WrapString("MinIO secret key"))
	key = "minio-secure"
	cmd.PersistentFlags().Bool(key, true, WrapString("Use TLS for MinIO"))
}

// GetBlobStore creates the backup destination from configuration.
func GetBlobStore(ctx context.Context) (blobstore.BlobStore, string, error) {
	if bucket := viper.GetString("s3-bucket"); bucket != "" {
		var opts []s3.Option
		if p := viper.GetString("s3-prefix"); p != "" {
			opts = append(opts, s3.WithPrefix(p))
		}
		if r := viper.GetString("s3-region"); r != "" {
			opts = append(opts, s3.WithRegion(r))
		}
		if ep := viper.GetString("s3-endpoint"); ep != "" {
			opts = append(opts, s3.WithEndpoint(ep), s3.WithPathStyle())
		}
		store, err := s3.New(ctx, bucket, opts...)
		return store, "s3://" + bucket, err
	}

	if endpoint := viper.GetString("minio-endpoint"); endpoint != "" {
		bucket := viper.GetString("minio-bucket")
		store, err := minio.Dial(ctx,
			endpoint,
			viper.GetString("minio-access-key"),
			viper.GetString("minio-secret-key"),
			viper.GetBool("minio-secure"),
			bucket,
			viper.GetString("minio-prefix"),
		)
		return store, "minio://" + endpoint + "/" + bucket, err
	}

	dir := viper.GetString("backup-dir")
	return blobstore.NewLocalStore(dir), dir, nil
}
