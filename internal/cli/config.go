package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/frontdesk/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	// Config keys.
	cfgKeyFeed                 = "feed"
	cfgKeyServerURL            = "server_url"
	cfgKeyOrigin               = "origin"
	cfgKeyHandshakeContent     = "handshake_content"
	cfgKeyNATSURL              = "nats_url"
	cfgKeyNATSSubject          = "nats_subject"
	cfgKeyReconnectMaxInterval = "reconnect_max_interval"
	cfgKeyLogLevel             = "log_level"
	cfgKeyLogFormat            = "log_format"
)

// defaultConfig is written to config.yaml by init and backs every key
// config.yaml leaves unset.
func defaultConfig() types.Config {
	return types.Config{
		Feed:                 types.FeedWebSocket,
		ServerURL:            types.DefaultServerURL,
		Origin:               types.DefaultOrigin,
		HandshakeContent:     types.DefaultHandshakeContent,
		NATSSubject:          types.DefaultNATSSubject,
		ReconnectMaxInterval: types.DefaultReconnectMaxInterval,
		LogLevel:             types.DefaultLogLevel,
		LogFormat:            types.DefaultLogFormat,
	}
}

// loadConfig reads config.yaml from configDir using Viper. A missing
// config.yaml is not an error; defaults apply.
func loadConfig(configDir string) (*viper.Viper, error) {
	d := defaultConfig()
	v := viper.New()
	v.SetDefault(cfgKeyFeed, d.Feed)
	v.SetDefault(cfgKeyServerURL, d.ServerURL)
	v.SetDefault(cfgKeyOrigin, d.Origin)
	v.SetDefault(cfgKeyHandshakeContent, d.HandshakeContent)
	v.SetDefault(cfgKeyNATSURL, "")
	v.SetDefault(cfgKeyNATSSubject, d.NATSSubject)
	v.SetDefault(cfgKeyReconnectMaxInterval, d.ReconnectMaxInterval)
	v.SetDefault(cfgKeyLogLevel, d.LogLevel)
	v.SetDefault(cfgKeyLogFormat, d.LogFormat)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// decodeConfig unmarshals v into a validated Config.
func decodeConfig(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// writeConfigIfMissing creates config.yaml with cfg if the file does not
// exist. It reports whether a file was written.
func writeConfigIfMissing(path string, cfg types.Config) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}

// configureLogger applies level and format to log.
func configureLogger(log *logrus.Logger, level, format string) error {
	if level == "" {
		level = types.DefaultLogLevel
	}
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	log.SetLevel(lvl)

	switch format {
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("%w: %q", types.ErrLogFormatUnknown, format)
	}
	return nil
}
