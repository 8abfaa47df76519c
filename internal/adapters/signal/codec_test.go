package signal

import (
	"encoding/json"
	"testing"

	"github.com/dkeye/callhub/internal/app/orch"
	"github.com/dkeye/callhub/internal/core"
	"github.com/stretchr/testify/require"
)

func envelope(t *testing.T, raw string) core.Envelope {
	t.Helper()
	var env core.Envelope
	require.NoError(t, json.Unmarshal([]byte(raw), &env))
	return env
}

func TestDecodeEvent(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want orch.Event
	}{
		{
			name: "login",
			raw:  `{"type":"login","payload":{"displayName":"ann","locationHint":{"city":"Lyon"}}}`,
			want: orch.Login{From: "c1", DisplayName: "ann", LocationHint: json.RawMessage(`{"city":"Lyon"}`)},
		},
		{
			name: "chat message",
			raw:  `{"type":"chat-message","payload":{"messageId":"m1","receiverConnectionId":"c2","content":"hi"}}`,
			want: orch.ChatMessage{From: "c1", MessageID: "m1", Receiver: "c2", Content: json.RawMessage(`"hi"`)},
		},
		{
			name: "room create",
			raw:  `{"type":"room-create","payload":{"rendezvousId":"rv1","newRoomId":"r1"}}`,
			want: orch.RoomCreate{From: "c1", Rendezvous: "rv1", NewRoomID: "r1"},
		},
		{
			name: "room join",
			raw:  `{"type":"room-join","payload":{"roomId":"r1","rendezvousId":"rv2"}}`,
			want: orch.RoomJoin{From: "c1", RoomID: "r1", Rendezvous: "rv2"},
		},
		{
			name: "room leave",
			raw:  `{"type":"room-leave","payload":{"roomId":"r1"}}`,
			want: orch.RoomLeave{From: "c1", RoomID: "r1"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := require.New(t)

			ev, err := decodeEvent("c1", envelope(t, tc.raw))

			req.NoError(err)
			req.Equal(tc.want, ev)
		})
	}
}

func TestDecodeEvent_Rejects(t *testing.T) {
	req := require.New(t)

	// Clients cannot forge a disconnect
	_, err := decodeEvent("c1", envelope(t, `{"type":"disconnect"}`))
	req.ErrorIs(err, ErrUnknownEvent)
	req.Equal(codeUnknownEvent, errorCode(err))

	_, err = decodeEvent("c1", envelope(t, `{"type":"room-leave"}`))
	req.ErrorIs(err, ErrBadPayload)

	_, err = decodeEvent("c1", envelope(t, `{"type":"room-join","payload":{"roomId":7}}`))
	req.ErrorIs(err, ErrBadPayload)
	req.Equal(codeBadPayload, errorCode(err))
}

func TestDecodeEvent_Relays_Chat_Content_Untouched(t *testing.T) {
	req := require.New(t)

	ev, err := decodeEvent("c1", envelope(t, `{"type":"chat-message","payload":{"messageId":"m1","receiverConnectionId":"c2","content":{"text":"hi","emoji":[1,2]}}}`))

	req.NoError(err)
	req.JSONEq(`{"text":"hi","emoji":[1,2]}`, string(ev.(orch.ChatMessage).Content))

	out, err := core.Encode(core.Outbound{
		Type:    core.EventChatMessage,
		Payload: orch.ChatPayload{SenderConnectionID: "c1", Content: ev.(orch.ChatMessage).Content, MessageID: "m1"},
	})
	req.NoError(err)
	req.JSONEq(`{"type":"chat-message","payload":{"senderConnectionId":"c1","content":{"text":"hi","emoji":[1,2]},"messageId":"m1"}}`, string(out))
}
