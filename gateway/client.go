package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"golang.org/x/sync/errgroup"

	"github.com/tessara/questdrive/backoff"
	"github.com/tessara/questdrive/event"
	"github.com/tessara/questdrive/quest"
)

// defaultPingInterval is the keepalive cadence.
const defaultPingInterval = 30 * time.Second

// RegistrySink receives quest data mirrored off the socket. The
// in-memory registry satisfies it; hosts with their own registry can
// leave it unset and consume the bus topics instead.
type RegistrySink interface {
	Put(q *quest.Quest)
	SetStatus(questID string, st *quest.Status) bool
}

// DialFunc establishes the underlying connection. The default performs
// a WebSocket handshake against the configured URL.
type DialFunc func(ctx context.Context) (net.Conn, error)

// Client is the gateway WebSocket client. Run connects, serves frames,
// and reconnects with jittered backoff until the context ends.
type Client struct {
	bus    event.Bus
	codec  Codec
	logger *slog.Logger
	sink   RegistrySink

	dial         DialFunc
	reconnect    backoff.Strategy
	pingInterval time.Duration

	// writeMu serializes frame writes; pings and future outbound frames
	// share one connection.
	writeMu sync.Mutex
	conn    net.Conn

	seq atomic.Int64
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithCodec sets the wire format. Defaults to JSON.
func WithCodec(codec Codec) ClientOption {
	return func(c *Client) { c.codec = codec }
}

// WithLogger sets the client's logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// WithRegistrySink mirrors quest snapshots and status updates into the
// given sink before the corresponding topic is published.
func WithRegistrySink(sink RegistrySink) ClientOption {
	return func(c *Client) { c.sink = sink }
}

// WithReconnect sets the reconnect delay strategy. Defaults to
// backoff.DefaultReconnect.
func WithReconnect(s backoff.Strategy) ClientOption {
	return func(c *Client) { c.reconnect = s }
}

// WithPingInterval sets the keepalive cadence.
func WithPingInterval(d time.Duration) ClientOption {
	return func(c *Client) { c.pingInterval = d }
}

// WithDialer replaces the connection dialer. Intended for tests and
// hosts that tunnel the socket themselves.
func WithDialer(dial DialFunc) ClientOption {
	return func(c *Client) { c.dial = dial }
}

// NewClient creates a gateway client for the given socket URL,
// publishing onto the given bus. Nothing connects until Run.
func NewClient(url string, bus event.Bus, opts ...ClientOption) *Client {
	c := &Client{
		bus:          bus,
		codec:        &JSONCodec{},
		logger:       slog.Default(),
		reconnect:    backoff.DefaultReconnect(),
		pingInterval: defaultPingInterval,
	}
	c.dial = func(ctx context.Context) (net.Conn, error) {
		conn, _, _, err := ws.Dial(ctx, url)
		return conn, err
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run connects and serves frames until ctx ends, reconnecting after
// every connection loss. It always returns ctx's error.
func (c *Client) Run(ctx context.Context) error {
	attempt := 0
	for {
		conn, err := c.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			attempt++
			delay := c.reconnect.Delay(attempt)
			c.logger.Warn("gateway dial failed",
				slog.String("error", err.Error()),
				slog.Int("attempt", attempt),
				slog.Duration("retry_in", delay),
			)
			if !sleepCtx(ctx, delay) {
				return ctx.Err()
			}
			continue
		}
		attempt = 0

		err = c.serve(ctx, conn)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		attempt++
		delay := c.reconnect.Delay(attempt)
		c.logger.Warn("gateway connection lost",
			slog.String("error", err.Error()),
			slog.Duration("retry_in", delay),
		)
		if !sleepCtx(ctx, delay) {
			return ctx.Err()
		}
	}
}

// serve drives one connection: the read loop and the ping loop run
// until either fails, then the connection is torn down.
func (c *Client) serve(ctx context.Context, conn net.Conn) error {
	c.writeMu.Lock()
	c.conn = conn
	c.writeMu.Unlock()
	defer conn.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Unblocks the reader when the group winds down.
		<-gctx.Done()
		conn.Close()
		return nil
	})
	g.Go(func() error { return c.readLoop(conn) })
	g.Go(func() error { return c.pingLoop(gctx) })
	return g.Wait()
}

func (c *Client) readLoop(conn net.Conn) error {
	for {
		data, _, err := wsutil.ReadServerData(conn)
		if err != nil {
			return fmt.Errorf("gateway read: %w", err)
		}
		c.handle(data)
	}
}

func (c *Client) pingLoop(ctx context.Context) error {
	t := time.NewTicker(c.pingInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			frame := PingFrame{Op: OpPing, Seq: c.seq.Add(1)}
			if err := c.write(frame); err != nil {
				return fmt.Errorf("gateway ping: %w", err)
			}
		}
	}
}

// handle decodes one inbound message and republishes it. Malformed
// frames are logged and dropped; one bad message must not cost the
// connection.
func (c *Client) handle(data []byte) {
	var env Envelope
	if err := c.codec.Unmarshal(data, &env); err != nil {
		c.logger.Warn("gateway: invalid frame", slog.String("error", err.Error()))
		return
	}

	switch env.Op {
	case OpPong:
		// Keepalive answer.

	case OpReady:
		c.bus.Publish(event.TopicConnectionOpen, nil)

	case OpQuestsFetch:
		var f QuestsFrame
		if err := c.codec.Unmarshal(data, &f); err != nil {
			c.logger.Warn("gateway: bad quests frame", slog.String("error", err.Error()))
			return
		}
		if c.sink != nil {
			for _, q := range f.Data.Quests {
				c.sink.Put(q)
			}
		}
		c.bus.Publish(event.TopicQuestsFetched, nil)

	case OpStatusUpdate:
		var f StatusFrame
		if err := c.codec.Unmarshal(data, &f); err != nil {
			c.logger.Warn("gateway: bad status frame", slog.String("error", err.Error()))
			return
		}
		if c.sink != nil {
			c.sink.SetStatus(f.Data.QuestID, f.Data.Status)
		}
		c.bus.Publish(event.TopicQuestStatusChanged, event.QuestStatusChanged{QuestID: f.Data.QuestID})

	case OpHeartbeatAck:
		var f HeartbeatFrame
		if err := c.codec.Unmarshal(data, &f); err != nil {
			c.logger.Warn("gateway: bad heartbeat frame", slog.String("error", err.Error()))
			return
		}
		c.bus.Publish(event.TopicHeartbeatSuccess, event.HeartbeatSuccess{
			QuestID: f.Data.QuestID,
			Status:  f.Data.Status,
		})

	default:
		c.logger.Debug("gateway: unknown op", slog.String("op", env.Op))
	}
}

// write encodes and sends one frame. JSON goes out as a text message,
// everything else as binary.
func (c *Client) write(v any) error {
	data, err := c.codec.Marshal(v)
	if err != nil {
		return err
	}
	op := ws.OpBinary
	if c.codec.Name() == CodecNameJSON {
		op = ws.OpText
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return wsutil.WriteClientMessage(c.conn, op, data)
}

// sleepCtx waits for d, returning false if ctx ends first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
