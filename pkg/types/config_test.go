package types

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "unknown feed returns ErrFeedUnknown",
			config:  Config{Feed: "mqtt", ServerURL: DefaultServerURL},
			wantErr: ErrFeedUnknown,
		},
		{
			name:    "empty feed defaults to websocket and needs a server url",
			config:  Config{},
			wantErr: ErrServerURLEmpty,
		},
		{
			name:    "valid websocket config",
			config:  Config{Feed: FeedWebSocket, ServerURL: DefaultServerURL},
			wantErr: nil,
		},
		{
			name:    "nats feed without url",
			config:  Config{Feed: FeedNATS, NATSSubject: DefaultNATSSubject},
			wantErr: ErrNATSURLEmpty,
		},
		{
			name:    "nats feed without subject",
			config:  Config{Feed: FeedNATS, NATSURL: "nats://127.0.0.1:4222"},
			wantErr: ErrNATSSubjectEmpty,
		},
		{
			name:    "valid nats config ignores server url",
			config:  Config{Feed: FeedNATS, NATSURL: "nats://127.0.0.1:4222", NATSSubject: DefaultNATSSubject},
			wantErr: nil,
		},
		{
			name:    "negative reconnect interval",
			config:  Config{ServerURL: DefaultServerURL, ReconnectMaxInterval: -1},
			wantErr: ErrReconnectInvalid,
		},
		{
			name:    "zero reconnect interval means the default",
			config:  Config{ServerURL: DefaultServerURL, ReconnectMaxInterval: 0},
			wantErr: nil,
		},
		{
			name:    "unknown log format",
			config:  Config{ServerURL: DefaultServerURL, LogFormat: "xml"},
			wantErr: ErrLogFormatUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}
