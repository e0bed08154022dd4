package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"knowledgebase/internal/config"
)

const defaultConfigFile = "kbctl.yaml"

// loadConfig starts from the server's environment configuration and applies
// any keys set in the YAML file or as KB_* environment variables.
func loadConfig(path string) (*config.Config, error) {
	cfg := config.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("KB")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	switch {
	case path != "":
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	default:
		if _, err := os.Stat(defaultConfigFile); err == nil {
			v.SetConfigFile(defaultConfigFile)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read %s: %w", defaultConfigFile, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	applyOverrides(cfg, v)
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database_url is not set (DATABASE_URL or config file)")
	}
	return cfg, nil
}

func applyOverrides(cfg *config.Config, v *viper.Viper) {
	setString := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	setString("database_url", &cfg.DatabaseURL)
	setString("table_prefix", &cfg.TablePrefix)
	setString("blob_backend", &cfg.BlobBackend)
	setString("blob_dir", &cfg.BlobDir)
	setString("blob_base_url", &cfg.BlobBaseURL)
	setString("blob_signing_key", &cfg.BlobSigningKey)
	setString("s3_endpoint", &cfg.S3Endpoint)
	setString("s3_access_key", &cfg.S3AccessKey)
	setString("s3_secret_key", &cfg.S3SecretKey)
	setString("s3_bucket", &cfg.S3Bucket)

	if v.IsSet("s3_use_ssl") {
		cfg.S3UseSSL = v.GetBool("s3_use_ssl")
	}
	if v.IsSet("cascade_concurrency") {
		cfg.CascadeConcurrency = v.GetInt("cascade_concurrency")
	}
}
