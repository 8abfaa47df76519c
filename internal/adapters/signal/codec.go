package signal

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dkeye/callhub/internal/app/orch"
	"github.com/dkeye/callhub/internal/core"
	"github.com/dkeye/callhub/internal/domain"
)

var (
	ErrUnknownEvent = errors.New("unknown event")
	ErrBadPayload   = errors.New("bad payload")
)

type loginPayload struct {
	DisplayName  string          `json:"displayName"`
	LocationHint json.RawMessage `json:"locationHint"`
}

type chatPayload struct {
	MessageID            string          `json:"messageId"`
	ReceiverConnectionID string          `json:"receiverConnectionId"`
	Content              json.RawMessage `json:"content"`
}

type roomCreatePayload struct {
	RendezvousID string `json:"rendezvousId"`
	NewRoomID    string `json:"newRoomId"`
}

type roomJoinPayload struct {
	RoomID       string `json:"roomId"`
	RendezvousID string `json:"rendezvousId"`
}

type roomLeavePayload struct {
	RoomID string `json:"roomId"`
}

// decodeEvent turns a client envelope into a coordinator event for conn.
func decodeEvent(conn domain.ConnectionID, env core.Envelope) (orch.Event, error) {
	switch env.Type {
	case core.EventLogin:
		var p loginPayload
		if err := unmarshalPayload(env, &p); err != nil {
			return nil, err
		}
		return orch.Login{From: conn, DisplayName: p.DisplayName, LocationHint: p.LocationHint}, nil
	case core.EventChatMessage:
		var p chatPayload
		if err := unmarshalPayload(env, &p); err != nil {
			return nil, err
		}
		return orch.ChatMessage{
			From:      conn,
			MessageID: p.MessageID,
			Receiver:  domain.ConnectionID(p.ReceiverConnectionID),
			Content:   p.Content,
		}, nil
	case core.EventRoomCreate:
		var p roomCreatePayload
		if err := unmarshalPayload(env, &p); err != nil {
			return nil, err
		}
		return orch.RoomCreate{
			From:       conn,
			Rendezvous: domain.RendezvousID(p.RendezvousID),
			NewRoomID:  domain.RoomID(p.NewRoomID),
		}, nil
	case core.EventRoomJoin:
		var p roomJoinPayload
		if err := unmarshalPayload(env, &p); err != nil {
			return nil, err
		}
		return orch.RoomJoin{
			From:       conn,
			RoomID:     domain.RoomID(p.RoomID),
			Rendezvous: domain.RendezvousID(p.RendezvousID),
		}, nil
	case core.EventRoomLeave:
		var p roomLeavePayload
		if err := unmarshalPayload(env, &p); err != nil {
			return nil, err
		}
		return orch.RoomLeave{From: conn, RoomID: domain.RoomID(p.RoomID)}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Type)
	}
}

func unmarshalPayload(env core.Envelope, v any) error {
	if len(env.Payload) == 0 {
		return fmt.Errorf("%w: %s without payload", ErrBadPayload, env.Type)
	}
	if err := json.Unmarshal(env.Payload, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrBadPayload, env.Type, err)
	}
	return nil
}

func errorCode(err error) string {
	if errors.Is(err, ErrUnknownEvent) {
		return codeUnknownEvent
	}
	return codeBadPayload
}
