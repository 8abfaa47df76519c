package signal

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dkeye/callhub/internal/app/orch"
	"github.com/dkeye/callhub/internal/config"
	"github.com/dkeye/callhub/internal/core"
	"github.com/dkeye/callhub/internal/domain"
	"github.com/dkeye/callhub/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
)

// ClientTokenKey is where the HTTP layer leaves the cookie token in the gin context.
const ClientTokenKey = "client_token"

var ErrShutdownTimeout = errors.New("connections still open after shutdown timeout")

type Options struct {
	ReadLimit      int64
	PingPeriod     time.Duration
	PongWait       time.Duration
	WriteWait      time.Duration
	SendBuffer     int
	AllowedOrigins []string
	RateLimit      int
	RateInterval   time.Duration
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ReadLimit:      cfg.ReadLimit,
		PingPeriod:     cfg.PingPeriod,
		PongWait:       cfg.PongWait,
		WriteWait:      cfg.WriteWait,
		SendBuffer:     cfg.SendBuffer,
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimit:      cfg.RateLimit.Messages,
		RateInterval:   cfg.RateLimit.Interval,
	}
}

type SignalWSController struct {
	Orch     *orch.Orchestrator
	Sessions *Sessions
	Metrics  *observability.Metrics

	opts     Options
	upgrader websocket.Upgrader
	limiter  *ConnRateLimiter
	wg       conc.WaitGroup
}

func NewSignalWSController(o *orch.Orchestrator, sessions *Sessions, metrics *observability.Metrics, opts Options) *SignalWSController {
	return &SignalWSController{
		Orch:     o,
		Sessions: sessions,
		Metrics:  metrics,
		opts:     opts,
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(opts.AllowedOrigins),
		},
		limiter: NewConnRateLimiter(opts.RateLimit, opts.RateInterval),
	}
}

// WsSignalConn owns one gorilla connection. Only writePump writes to it.
type WsSignalConn struct {
	id   domain.ConnectionID
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newWsSignalConn(id domain.ConnectionID, ws *websocket.Conn, buffer int) *WsSignalConn {
	buffer = max(buffer, 1)
	return &WsSignalConn{
		id:   id,
		conn: ws,
		send: make(chan core.Frame, buffer),
	}
}

func (c *WsSignalConn) ID() domain.ConnectionID { return c.id }

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// HandleSignal upgrades the request and starts both pumps. It returns immediately;
// the pumps outlive the gin handler.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	id := domain.NewConnectionID()
	token := c.GetString(ClientTokenKey)

	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("client_token", token).Msg("ws upgrade")
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(id)).Str("client_token", token).Msg("new WS connection")

	conn := newWsSignalConn(id, ws, ctl.opts.SendBuffer)
	ctl.sendConnected(conn)
	ctl.Sessions.Add(id, conn)
	ctl.Metrics.ConnOpened()

	ctx, cancel := context.WithCancel(ctx)
	ctl.wg.Go(func() { ctl.writePump(ctx, conn) })
	ctl.wg.Go(func() {
		defer cancel()
		ctl.readPump(ctx, conn)
	})
}

// Shutdown closes every connection and waits for the pumps to finish.
func (ctl *SignalWSController) Shutdown(ctx context.Context) error {
	n := ctl.Sessions.CloseAll()
	log.Info().Str("module", "signal").Int("connections", n).Msg("closing connections")

	done := make(chan struct{})
	go func() {
		ctl.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ErrShutdownTimeout
	}
}
