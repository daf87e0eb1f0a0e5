// Package notify publishes board announcements: leader changes and
// checkpoint closures.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/okian/squares/internal/domain/types"
	"github.com/okian/squares/pkg/logger"
)

// Publisher delivers announcements.
type Publisher interface {
	Publish(ctx context.Context, a types.Announcement) error
	Close() error
}

// natsConn is the part of *nats.Conn the publisher uses.
type natsConn interface {
	PublishMsg(m *nats.Msg) error
	Drain() error
}

// NATSPublisher publishes JSON announcements to
// <subject>.<pool_id>.<kind>.
type NATSPublisher struct {
	conn    natsConn
	subject string
	log     logger.Logger
}

const (
	natsMaxReconnects = -1
	natsReconnectWait = 2 * time.Second
)

// ConnectNATS dials url and returns a publisher rooted at subject.
func ConnectNATS(url, subject string, log logger.Logger) (*NATSPublisher, error) {
	if log == nil {
		log = logger.NewNop()
	}
	ctx := context.Background()
	opts := []nats.Option{
		nats.Name("squares-livesync"),
		nats.MaxReconnects(natsMaxReconnects),
		nats.ReconnectWait(natsReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn(ctx, "NATS disconnected", logger.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info(ctx, "NATS reconnected", logger.String("url", nc.ConnectedUrl()))
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Error(ctx, "NATS error", logger.Error(err))
		}),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return NewNATSPublisher(nc, subject, log), nil
}

// NewNATSPublisher wraps an existing connection.
func NewNATSPublisher(conn natsConn, subject string, log logger.Logger) *NATSPublisher {
	if log == nil {
		log = logger.NewNop()
	}
	return &NATSPublisher{conn: conn, subject: strings.TrimSuffix(subject, "."), log: log}
}

// Subject returns the subject an announcement is published on.
func (p *NATSPublisher) Subject(a types.Announcement) string {
	return p.subject + "." + subjectToken(a.PoolID) + "." + a.Kind
}

// Publish sends a; the announcement id doubles as the message id header.
func (p *NATSPublisher) Publish(ctx context.Context, a types.Announcement) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal announcement: %w", err)
	}
	msg := &nats.Msg{
		Subject: p.Subject(a),
		Data:    data,
		Header:  nats.Header{},
	}
	msg.Header.Set(nats.MsgIdHdr, a.ID)
	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s: %w", msg.Subject, err)
	}
	return nil
}

// Close drains the connection.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

// subjectToken keeps a pool id from adding subject levels or wildcards.
func subjectToken(id string) string {
	return strings.NewReplacer(".", "_", " ", "_", "*", "_", ">", "_").Replace(id)
}

// LogPublisher writes announcements to the log. It is used when no NATS
// server is configured.
type LogPublisher struct {
	log logger.Logger
}

// NewLogPublisher creates a log-only publisher.
func NewLogPublisher(log logger.Logger) *LogPublisher {
	if log == nil {
		log = logger.NewNop()
	}
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(ctx context.Context, a types.Announcement) error {
	p.log.Info(ctx, "announcement",
		logger.String("pool_id", a.PoolID),
		logger.String("kind", a.Kind),
		logger.String("checkpoint", a.Checkpoint),
		logger.String("key", a.Key),
		logger.Any("owners", a.Owners),
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
