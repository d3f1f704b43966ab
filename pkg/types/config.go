package types

import (
	"errors"
	"strings"
)

// Config holds the frontdesk client settings loaded from config.yaml.
type Config struct {
	Feed             string `json:"feed" yaml:"feed" mapstructure:"feed"`
	ServerURL        string `json:"server_url" yaml:"server_url" mapstructure:"server_url"`
	Origin           string `json:"origin" yaml:"origin" mapstructure:"origin"`
	HandshakeContent string `json:"handshake_content" yaml:"handshake_content" mapstructure:"handshake_content"`
	NATSURL          string `json:"nats_url" yaml:"nats_url,omitempty" mapstructure:"nats_url"`
	NATSSubject      string `json:"nats_subject" yaml:"nats_subject,omitempty" mapstructure:"nats_subject"`
	// ReconnectMaxInterval caps the reconnect backoff, in seconds. Zero
	// means DefaultReconnectMaxInterval.
	ReconnectMaxInterval int    `json:"reconnect_max_interval" yaml:"reconnect_max_interval" mapstructure:"reconnect_max_interval"`
	LogLevel             string `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
	LogFormat            string `json:"log_format" yaml:"log_format" mapstructure:"log_format"`
	MetricsAddr          string `json:"metrics_addr" yaml:"metrics_addr,omitempty" mapstructure:"metrics_addr"`
	DataDir              string `json:"data_dir" yaml:"data_dir,omitempty" mapstructure:"data_dir"`
	RecordPath           string `json:"record_path" yaml:"record_path,omitempty" mapstructure:"record_path"`
}

// Supported feeds.
const (
	FeedWebSocket = "websocket"
	FeedNATS      = "nats"
)

// Defaults applied when config.yaml leaves a key unset.
const (
	DefaultServerURL            = "ws://127.0.0.15:8080"
	DefaultOrigin               = "http://localhost/"
	DefaultHandshakeContent     = "Hello from frontdesk"
	DefaultNATSSubject          = "frontdesk.sync"
	DefaultReconnectMaxInterval = 30
	DefaultLogLevel             = "info"
	DefaultLogFormat            = "text"
)

// Config validation errors.
var (
	ErrFeedUnknown      = errors.New("unknown feed")
	ErrServerURLEmpty   = errors.New("server_url must not be empty")
	ErrNATSURLEmpty     = errors.New("nats_url must not be empty")
	ErrNATSSubjectEmpty = errors.New("nats_subject must not be empty")
	ErrReconnectInvalid = errors.New("reconnect_max_interval must not be negative")
	ErrLogFormatUnknown = errors.New("unknown log format")
)

// knownFeeds lists the feeds that Validate accepts.
var knownFeeds = map[string]bool{
	FeedWebSocket: true,
	FeedNATS:      true,
}

// Validate checks that the Config is well-formed. An empty Feed means
// websocket. It returns a sentinel error from this package on failure.
func (c Config) Validate() error {
	feed := c.Feed
	if feed == "" {
		feed = FeedWebSocket
	}
	if !knownFeeds[feed] {
		return ErrFeedUnknown
	}
	switch feed {
	case FeedWebSocket:
		if strings.TrimSpace(c.ServerURL) == "" {
			return ErrServerURLEmpty
		}
	case FeedNATS:
		if strings.TrimSpace(c.NATSURL) == "" {
			return ErrNATSURLEmpty
		}
		if strings.TrimSpace(c.NATSSubject) == "" {
			return ErrNATSSubjectEmpty
		}
	}
	if c.ReconnectMaxInterval < 0 {
		return ErrReconnectInvalid
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return ErrLogFormatUnknown
	}
	return nil
}
