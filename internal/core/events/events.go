package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	UserRegistered  = "users.registered"
	AdCreated       = "ads.created"
	AdUpdated       = "ads.updated"
	AdDeleted       = "ads.deleted"
	WishlistAdded   = "wishlist.added"
	WishlistRemoved = "wishlist.removed"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data any) error
	Close()
}

type Envelope struct {
	Subject    string    `json:"subject"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
}

func NewNATS(url, prefix string, l *zap.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("classifieds-api"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				l.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			l.Info("nats reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, err
	}
	return &NATSPublisher{conn: conn, prefix: prefix}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, subject string, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full := Subject(p.prefix, subject)
	b, err := json.Marshal(Envelope{Subject: full, OccurredAt: time.Now().UTC(), Data: data})
	if err != nil {
		return err
	}
	return p.conn.Publish(full, b)
}

func (p *NATSPublisher) Close() { _ = p.conn.Drain() }

func Subject(prefix, subject string) string {
	if prefix == "" {
		return subject
	}
	return prefix + "." + subject
}

// Nop 未配置 NATS 时使用
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }
func (Nop) Close()                                     {}

// Emit 事件发送失败只记日志，不影响主流程
func Emit(ctx context.Context, p Publisher, l *zap.Logger, subject string, data any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, subject, data); err != nil {
		l.Warn("publish event failed", zap.String("subject", subject), zap.Error(err))
	}
}
