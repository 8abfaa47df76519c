package signal

import (
	"github.com/dkeye/callhub/internal/core"
	"github.com/dkeye/callhub/internal/domain"
)

// Transport-level messages. They never reach the coordinator.
const (
	typeConnected core.EventType = "connected"
	typePing      core.EventType = "ping"
	typePong      core.EventType = "pong"
	typeError     core.EventType = "error"
)

const (
	codeRateLimited  = "rate_limited"
	codeBadJSON      = "bad_json"
	codeBadPayload   = "bad_payload"
	codeUnknownEvent = "unknown_event"
)

type connectedPayload struct {
	ConnectionID domain.ConnectionID `json:"connectionId"`
}

type errorPayload struct {
	Error string `json:"error"`
}

// controlMessage has the same shape as core.Envelope with a typed payload.
type controlMessage struct {
	Type    core.EventType `json:"type"`
	Payload any            `json:"payload,omitempty"`
}

// sendConnected tells the client the id other clients will address it by.
func (ctl *SignalWSController) sendConnected(conn *WsSignalConn) {
	ctl.sendJSON(conn, controlMessage{Type: typeConnected, Payload: connectedPayload{ConnectionID: conn.id}})
}

func (ctl *SignalWSController) handlePing(conn *WsSignalConn) {
	ctl.sendJSON(conn, controlMessage{Type: typePong})
}

func (ctl *SignalWSController) sendError(conn *WsSignalConn, code string) {
	ctl.sendJSON(conn, controlMessage{Type: typeError, Payload: errorPayload{Error: code}})
}
