package orch

import (
	"encoding/json"
	"testing"

	"github.com/dkeye/callhub/internal/app"
	"github.com/dkeye/callhub/internal/core"
	"github.com/dkeye/callhub/internal/domain"
	"github.com/dkeye/callhub/internal/mocks"
	"github.com/dkeye/callhub/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type sent struct {
	to    domain.ConnectionID
	frame core.Envelope
}

func recordSends(t *testing.T, sender *mocks.MockSender, log *[]sent) {
	sender.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(to domain.ConnectionID, frame core.Frame) error {
		var env core.Envelope
		require.NoError(t, json.Unmarshal(frame, &env))
		*log = append(*log, sent{to: to, frame: env})
		return nil
	}).AnyTimes()
}

func TestDispatch_Delivers_In_Order(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockSender(ctrl)
	o := New(sender, app.SimplePolicy{}, observability.NewMetrics(prometheus.NewRegistry()))
	var got []sent
	recordSends(t, sender, &got)

	req.NoError(o.Dispatch(Login{From: "c1", DisplayName: "ann", LocationHint: json.RawMessage(`{"lat":1}`)}))

	req.Len(got, 2)
	req.Equal(domain.ConnectionID("c1"), got[0].to)
	req.Equal(core.EventOnlineUsers, got[0].frame.Type)
	req.JSONEq(`[{"connectionId":"c1","displayName":"ann","locationHint":{"lat":1}}]`, string(got[0].frame.Payload))
	req.Equal(core.EventVideoRooms, got[1].frame.Type)
	req.JSONEq(`{}`, string(got[1].frame.Payload))
}

func TestDispatch_Wire_Shapes(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockSender(ctrl)
	o := New(sender, app.SimplePolicy{}, nil)
	var got []sent
	recordSends(t, sender, &got)

	req.NoError(o.Dispatch(Login{From: "c1", DisplayName: "ann"}))
	req.NoError(o.Dispatch(Login{From: "c2", DisplayName: "bob"}))
	req.NoError(o.Dispatch(RoomCreate{From: "c1", Rendezvous: "rv1", NewRoomID: "r1"}))
	got = nil

	// When c2 joins
	req.NoError(o.Dispatch(RoomJoin{From: "c2", RoomID: "r1", Rendezvous: "rv2"}))

	req.Len(got, 3)
	req.Equal(domain.ConnectionID("c1"), got[0].to)
	req.Equal(core.EventVideoRoomInit, got[0].frame.Type)
	req.JSONEq(`{"newParticipantRendezvousId":"rv2"}`, string(got[0].frame.Payload))
	req.JSONEq(`{"r1":{"participants":[
		{"connectionId":"c1","displayName":"ann","rendezvousId":"rv1"},
		{"connectionId":"c2","displayName":"bob","rendezvousId":"rv2"}]}}`, string(got[1].frame.Payload))
	got = nil

	// When c2 drops
	req.NoError(o.Dispatch(Disconnect{From: "c2"}))

	req.Len(got, 3)
	req.Equal(core.EventVideoCallDisconnect, got[0].frame.Type)
	req.Empty(got[0].frame.Payload)
	req.Equal(core.EventUserDisconnected, got[2].frame.Type)
	req.JSONEq(`"c2"`, string(got[2].frame.Payload))
}

func TestDispatch_Fault_Sends_Nothing(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockSender(ctrl)
	o := New(sender, app.SimplePolicy{}, nil)

	// The sender must never be called
	sender.EXPECT().Send(gomock.Any(), gomock.Any()).Times(0)

	err := o.Dispatch(RoomCreate{From: "c1", Rendezvous: "rv1", NewRoomID: "r1"})

	req.ErrorIs(err, ErrNotLoggedIn)
	req.Empty(o.RoomDirectory())
}

func TestDispatch_Recovers_Handler_Panic(t *testing.T) {
	req := require.New(t)
	// An orchestrator without registries panics on first access
	o := &Orchestrator{}

	var err error
	req.NotPanics(func() {
		err = o.Dispatch(Login{From: "c1", DisplayName: "ann"})
	})
	req.ErrorIs(err, ErrHandlerPanic)
}

func TestDispatch_Backpressure_Kicks(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockSender(ctrl)
	o := New(sender, app.SimplePolicy{}, nil)

	gomock.InOrder(
		sender.EXPECT().Send(domain.ConnectionID("c1"), gomock.Any()).Return(nil).Times(2),
		sender.EXPECT().Send(domain.ConnectionID("c1"), gomock.Any()).Return(core.ErrBackpressure),
		sender.EXPECT().Kick(domain.ConnectionID("c1")),
	)

	req.NoError(o.Dispatch(Login{From: "c1", DisplayName: "ann"}))
	req.NoError(o.Dispatch(ChatMessage{From: "c1", MessageID: "m1", Receiver: "c1", Content: json.RawMessage(`"note"`)}))
}

func TestDispatch_Backpressure_On_Snapshots_Keeps_Connection(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockSender(ctrl)
	o := New(sender, app.SimplePolicy{}, nil)

	sender.EXPECT().Send(domain.ConnectionID("c1"), gomock.Any()).Return(core.ErrBackpressure).Times(2)
	sender.EXPECT().Kick(gomock.Any()).Times(0)

	req.NoError(o.Dispatch(Login{From: "c1", DisplayName: "ann"}))
	req.Len(o.OnlineUsers(), 1)
}

func TestDispatch_Backpressure_Drops(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockSender(ctrl)
	o := New(sender, app.DropPolicy{}, nil)

	sender.EXPECT().Send(domain.ConnectionID("c1"), gomock.Any()).Return(core.ErrBackpressure).Times(2)
	sender.EXPECT().Kick(gomock.Any()).Times(0)

	req.NoError(o.Dispatch(Login{From: "c1", DisplayName: "ann"}))
	// The registry is unaffected by delivery problems
	req.Len(o.OnlineUsers(), 1)
}

func TestDispatch_Closed_Connection_Is_Not_Kicked(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockSender(ctrl)
	o := New(sender, app.SimplePolicy{}, nil)

	sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(core.ErrConnClosed).Times(2)
	sender.EXPECT().Kick(gomock.Any()).Times(0)

	req.NoError(o.Dispatch(Login{From: "c1", DisplayName: "ann"}))
}
