package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/gigtune/gigtune/internal/bus"
	"github.com/gigtune/gigtune/internal/model"
	"github.com/gigtune/gigtune/internal/status"
	"github.com/gorilla/websocket"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// ErrNotConnected is returned by sends issued while no connection is live.
var ErrNotConnected = errors.New("realtime channel is not connected")

// MessageHandler receives every receive_message event.
type MessageHandler func(conversationID string, msg model.Message)

// DataHandler receives every data_updated event.
type DataHandler func()

// Config controls dialing and reconnection.
type Config struct {
	URL            string
	MaxReconnects  uint64
	ReconnectDelay time.Duration
	WriteTimeout   time.Duration
	PingInterval   time.Duration
	PongWait       time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxReconnects == 0 {
		c.MaxReconnects = 5
	}
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 5 * time.Second
	}
	if c.PingInterval <= 0 {
		c.PingInterval = 25 * time.Second
	}
	if c.PongWait <= c.PingInterval {
		c.PongWait = 2 * c.PingInterval
	}
	return c
}

// Channel holds one websocket per logged-in user. The room set outlives
// individual connections and is re-announced every time a connection is
// established. Each inbound event kind has a single handler slot.
type Channel struct {
	cfg     Config
	dialer  *websocket.Dialer
	machine *status.Machine
	logger  *zap.Logger

	mu        sync.Mutex
	userID    int
	conn      *websocket.Conn
	rooms     []string
	onMessage MessageHandler
	onData    DataHandler
	cancel    context.CancelFunc
	done      chan struct{}

	writeMu sync.Mutex
}

func New(cfg Config, b *bus.Bus, logger *zap.Logger) *Channel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Channel{
		cfg:     cfg.withDefaults(),
		dialer:  &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		machine: status.NewConnectionMachine(b),
		logger:  logger.Named("realtime"),
	}
}

// State returns the current connection state.
func (c *Channel) State() status.State {
	return c.machine.Current()
}

// UserID returns the user the channel was opened for, or 0 when closed.
func (c *Channel) UserID() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

// OnMessage installs h as the receive_message handler, replacing any previous one.
func (c *Channel) OnMessage(h MessageHandler) {
	c.mu.Lock()
	c.onMessage = h
	c.mu.Unlock()
}

// OnDataUpdated installs h as the data_updated handler, replacing any previous one.
func (c *Channel) OnDataUpdated(h DataHandler) {
	c.mu.Lock()
	c.onData = h
	c.mu.Unlock()
}

// Open starts connecting for userID in the background. Opening for the user
// already connected is a no-op; opening for another user closes first.
func (c *Channel) Open(ctx context.Context, userID int) error {
	if userID <= 0 {
		return fmt.Errorf("%w: user id %d", model.ErrInvalidInput, userID)
	}
	c.mu.Lock()
	if c.userID == userID && c.cancel != nil {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()
	c.Close()

	u, err := c.endpoint(userID)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	c.mu.Lock()
	c.userID = userID
	c.cancel = cancel
	c.done = done
	c.mu.Unlock()

	go c.run(runCtx, u, done)
	return nil
}

// Close tears the connection down immediately and abandons any pending
// reconnect. It blocks until the background loop has exited.
func (c *Channel) Close() {
	c.mu.Lock()
	cancel, done, conn := c.cancel, c.done, c.conn
	c.cancel, c.done = nil, nil
	c.userID = 0
	c.rooms = nil
	// Cancelled under mu so connect cannot store a conn after this point.
	if cancel != nil {
		cancel()
	}
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	if conn != nil {
		_ = conn.Close()
	}
	<-done
}

// JoinConversations replaces the room set. The set is announced now if a
// connection is live, and again on every later connect.
func (c *Channel) JoinConversations(ids []string) {
	c.mu.Lock()
	c.rooms = slices.Clone(ids)
	c.mu.Unlock()

	if len(ids) == 0 {
		return
	}
	if err := c.emit(EventJoinConversations, ids); err != nil && !errors.Is(err, ErrNotConnected) {
		c.logger.Warn("failed to join conversations", zap.Error(err))
	}
}

// Rooms returns a copy of the current room set.
func (c *Channel) Rooms() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.rooms)
}

// SendMessage emits send_message. Delivery is not acknowledged; the backend
// broadcasts accepted messages back through receive_message.
func (c *Channel) SendMessage(conversationID string, draft model.MessageDraft) error {
	return c.emit(EventSendMessage, Outgoing{ConversationID: conversationID, Message: draft})
}

func (c *Channel) endpoint(userID int) (string, error) {
	u, err := url.Parse(c.cfg.URL)
	if err != nil {
		return "", fmt.Errorf("parse socket url: %w", err)
	}
	q := u.Query()
	q.Set("userId", strconv.Itoa(userID))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Channel) emit(event string, data any) error {
	env, err := encode(event, data)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event, err)
	}
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	if err := conn.WriteJSON(env); err != nil {
		return fmt.Errorf("write %s: %w", event, err)
	}
	return nil
}

func (c *Channel) run(ctx context.Context, endpoint string, done chan struct{}) {
	defer close(done)
	for {
		conn, err := c.connect(ctx, endpoint)
		if err != nil {
			if ctx.Err() == nil {
				c.logger.Warn("giving up on realtime connection", zap.Error(err))
			}
			return
		}
		c.serve(ctx, conn)
		if ctx.Err() != nil {
			return
		}
		c.logger.Info("realtime connection lost, reconnecting")
	}
}

// connect dials with bounded exponential backoff. Each attempt walks the
// machine through CONNECTING and back to DISCONNECTED on failure.
func (c *Channel) connect(ctx context.Context, endpoint string) (*websocket.Conn, error) {
	backoff := retry.NewExponential(c.cfg.ReconnectDelay)
	backoff = retry.WithCappedDuration(30*time.Second, backoff)
	backoff = retry.WithMaxRetries(c.cfg.MaxReconnects, backoff)

	var conn *websocket.Conn
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := c.machine.Transition(status.Connecting); err != nil {
			return err
		}
		ws, _, err := c.dialer.DialContext(ctx, endpoint, nil)
		if err != nil {
			_ = c.machine.Transition(status.Disconnected)
			c.logger.Debug("dial failed", zap.Int("attempt", attempt), zap.Error(err))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return retry.RetryableError(err)
		}
		conn = ws
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if ctx.Err() != nil {
		c.mu.Unlock()
		_ = conn.Close()
		_ = c.machine.Transition(status.Disconnected)
		return nil, ctx.Err()
	}
	c.conn = conn
	rooms := slices.Clone(c.rooms)
	c.mu.Unlock()

	_ = c.machine.Transition(status.Connected)
	c.logger.Info("realtime connected", zap.Int("attempts", attempt))
	if len(rooms) > 0 {
		if err := c.emit(EventJoinConversations, rooms); err != nil {
			c.logger.Warn("failed to announce rooms", zap.Error(err))
		}
	}
	return conn, nil
}

// serve reads frames until the connection fails or ctx is cancelled.
// Cancellation closes conn, which unblocks the pending read.
func (c *Channel) serve(ctx context.Context, conn *websocket.Conn) {
	pingCtx, stopPing := context.WithCancel(ctx)
	defer func() {
		stopPing()
		c.mu.Lock()
		if c.conn == conn {
			c.conn = nil
		}
		c.mu.Unlock()
		_ = conn.Close()
		_ = c.machine.Transition(status.Disconnected)
	}()

	_ = conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})
	go c.ping(pingCtx, conn)
	go func() {
		<-pingCtx.Done()
		_ = conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				c.logger.Debug("read failed", zap.Error(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.logger.Warn("dropping malformed frame", zap.Error(err))
			continue
		}
		c.dispatch(env)
	}
}

func (c *Channel) ping(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			deadline := time.Now().Add(c.cfg.WriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (c *Channel) dispatch(env Envelope) {
	switch env.Event {
	case EventReceiveMessage:
		var in Incoming
		if err := json.Unmarshal(env.Data, &in); err != nil {
			c.logger.Warn("dropping malformed message event", zap.Error(err))
			return
		}
		c.mu.Lock()
		h := c.onMessage
		c.mu.Unlock()
		if h != nil {
			h(in.ConversationID, in.Message)
		}
	case EventDataUpdated:
		c.mu.Lock()
		h := c.onData
		c.mu.Unlock()
		if h != nil {
			h()
		}
	default:
		c.logger.Debug("ignoring event", zap.String("event", env.Event))
	}
}
