package export

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/telhawk-systems/apilog-generator/internal/config"
	"github.com/telhawk-systems/apilog-generator/internal/dataset"
)

// RunIDHeader carries the run ID on every published message.
const RunIDHeader = "Apigen-Run-Id"

// publisher is the subset of *nats.Conn the sink needs.
type publisher interface {
	PublishMsg(m *nats.Msg) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// NATSSink publishes each record as JSON on a per-category subject.
type NATSSink struct {
	conn          publisher
	subjectPrefix string
}

// NewNATSSink connects to cfg.URL.
func NewNATSSink(cfg config.NATSConfig) (*NATSSink, error) {
	conn, err := nats.Connect(cfg.URL,
		nats.Name("apigen"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(3),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSSink{conn: conn, subjectPrefix: cfg.SubjectPrefix}, nil
}

func (s *NATSSink) Name() string { return "nats" }

// Subject returns the subject a record of category is published on.
func (s *NATSSink) Subject(category string) string {
	token := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(category), " ", "_"))
	return s.subjectPrefix + "." + token
}

// Export publishes every record, then flushes so delivery to the server is
// confirmed before returning.
func (s *NATSSink) Export(ctx context.Context, ds *dataset.Dataset) error {
	for i, r := range ds.Records {
		if err := ctx.Err(); err != nil {
			return err
		}

		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal record %d: %w", i, err)
		}

		msg := nats.NewMsg(s.Subject(r.Category))
		msg.Data = data
		msg.Header.Set(RunIDHeader, ds.RunID)

		if err := s.conn.PublishMsg(msg); err != nil {
			return fmt.Errorf("publish record %d: %w", i, err)
		}
	}

	if err := s.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

func (s *NATSSink) Close() error {
	s.conn.Close()
	return nil
}
