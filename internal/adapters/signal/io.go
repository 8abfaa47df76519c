package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dkeye/callhub/internal/app/orch"
	"github.com/dkeye/callhub/internal/core"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	defer c.Close()

	var ping <-chan time.Time
	if ctl.opts.PingPeriod > 0 {
		ticker := time.NewTicker(ctl.opts.PingPeriod)
		defer ticker.Stop()
		ping = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Str("conn", string(c.id)).Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Str("conn", string(c.id)).Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(ctl.writeDeadline()); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("writePump write error")
				return
			}
		case <-ping:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, ctl.writeDeadline()); err != nil {
				log.Debug().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("ping failed")
				return
			}
		}
	}
}

// writeDeadline is zero, meaning none, when WriteWait is unset.
func (ctl *SignalWSController) writeDeadline() time.Time {
	if ctl.opts.WriteWait <= 0 {
		return time.Time{}
	}
	return time.Now().Add(ctl.opts.WriteWait)
}

// readPump is the only producer of events for its connection, so they reach the
// coordinator in arrival order and Disconnect is always last.
func (ctl *SignalWSController) readPump(ctx context.Context, c *WsSignalConn) {
	defer func() {
		ctl.Sessions.Remove(c.id)
		ctl.limiter.Forget(c.id)
		c.Close()
		ctl.Metrics.ConnClosed()
		if err := ctl.Orch.Dispatch(orch.Disconnect{From: c.id}); err != nil {
			log.Error().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("disconnect dispatch")
		}
		log.Info().Str("module", "signal").Str("conn", string(c.id)).Msg("readPump closing")
	}()

	if ctl.opts.ReadLimit > 0 {
		c.conn.SetReadLimit(ctl.opts.ReadLimit)
	}
	if ctl.opts.PongWait > 0 {
		_ = c.conn.SetReadDeadline(time.Now().Add(ctl.opts.PongWait))
		c.conn.SetPongHandler(func(string) error {
			return c.conn.SetReadDeadline(time.Now().Add(ctl.opts.PongWait))
		})
	}

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Str("conn", string(c.id)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
					log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("readPump read error")
				}
				return
			}
			ctl.handleSignal(c, data)
		}
	}
}

func (ctl *SignalWSController) handleSignal(c *WsSignalConn, data []byte) {
	if !ctl.limiter.Allow(c.id) {
		log.Warn().Str("module", "signal").Str("conn", string(c.id)).Msg("rate limited")
		ctl.sendError(c, codeRateLimited)
		return
	}

	var env core.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("bad json")
		ctl.sendError(c, codeBadJSON)
		return
	}

	if env.Type == typePing {
		ctl.handlePing(c)
		return
	}

	ev, err := decodeEvent(c.id, env)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.id)).Str("type", string(env.Type)).Msg("rejected message")
		ctl.sendError(c, errorCode(err))
		return
	}
	// Faults are logged by the coordinator and never reported to the client.
	_ = ctl.Orch.Dispatch(ev)
}

func (ctl *SignalWSController) sendJSON(c *WsSignalConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}
