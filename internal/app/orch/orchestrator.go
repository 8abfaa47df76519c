package orch

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dkeye/callhub/internal/app"
	"github.com/dkeye/callhub/internal/core"
	"github.com/dkeye/callhub/internal/domain"
	"github.com/dkeye/callhub/internal/observability"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotLoggedIn    = errors.New("connection has no identity")
	ErrAlreadyInRoom  = errors.New("connection is already in a room")
	ErrHandlerPanic   = errors.New("handler panicked")
	ErrUnhandledEvent = errors.New("unhandled event")
)

// Orchestrator is the single writer of both registries.
// Dispatch runs one event to completion, including delivery of what it produced,
// before the next one starts.
type Orchestrator struct {
	Connections *app.ConnectionRegistry
	Rooms       *app.RoomRegistry
	Sender      core.Sender
	Policy      app.Policy
	Metrics     *observability.Metrics

	mu sync.Mutex
}

func New(sender core.Sender, policy app.Policy, metrics *observability.Metrics) *Orchestrator {
	return &Orchestrator{
		Connections: app.NewConnectionRegistry(),
		Rooms:       app.NewRoomRegistry(),
		Sender:      sender,
		Policy:      policy,
		Metrics:     metrics,
	}
}

// Dispatch handles ev and hands the resulting frames to the Sender.
// Faults are logged and returned; nothing is sent for a faulted event.
func (o *Orchestrator) Dispatch(ev Event) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	kind := string(ev.Kind())
	o.Metrics.Event(kind)

	outs, err := o.handleSafely(ev)
	if err != nil {
		o.Metrics.Fault(kind)
		log.Error().Err(err).Str("module", "orch").Str("conn", string(ev.Conn())).Str("event", kind).Msg("event rejected")
		return err
	}
	o.deliver(outs)
	o.Metrics.State(o.Connections.Len(), o.Rooms.Len())
	return nil
}

func (o *Orchestrator) handleSafely(ev Event) (outs []core.Outbound, err error) {
	defer func() {
		if r := recover(); r != nil {
			outs = nil
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	return o.Handle(ev)
}

// Handle applies ev to the registries and returns what should be sent, in order.
// It does not lock; callers other than Dispatch must serialize access themselves.
func (o *Orchestrator) Handle(ev Event) ([]core.Outbound, error) {
	switch e := ev.(type) {
	case Login:
		return o.onLogin(e), nil
	case ChatMessage:
		return o.onChatMessage(e), nil
	case RoomCreate:
		return o.onRoomCreate(e)
	case RoomJoin:
		return o.onRoomJoin(e)
	case RoomLeave:
		return o.onRoomLeave(e), nil
	case Disconnect:
		return o.onDisconnect(e), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnhandledEvent, ev)
	}
}

func (o *Orchestrator) deliver(outs []core.Outbound) {
	for _, out := range outs {
		if len(out.Recipients) == 0 {
			continue
		}
		frame, err := core.Encode(out)
		if err != nil {
			log.Error().Err(err).Str("module", "orch").Str("event", string(out.Type)).Msg("encode failed")
			continue
		}
		for _, to := range out.Recipients {
			if err := o.Sender.Send(to, frame); err != nil {
				o.onSendFailure(to, out.Type, err)
			}
		}
	}
}

func (o *Orchestrator) onSendFailure(to domain.ConnectionID, event core.EventType, err error) {
	o.Metrics.Dropped(string(event))
	if !errors.Is(err, core.ErrBackpressure) {
		log.Debug().Err(err).Str("module", "orch").Str("conn", string(to)).Str("event", string(event)).Msg("frame not delivered")
		return
	}
	if o.Policy == nil {
		return
	}
	action := o.Policy.OnBackPressure(to, event)
	log.Warn().Str("module", "orch").Str("conn", string(to)).Str("event", string(event)).Stringer("action", action).Msg("backpressure")
	switch action {
	case app.KickMember:
		o.Metrics.Kick()
		o.Sender.Kick(to)
	case app.DropFrame, app.NoAction:
	}
}

// OnlineUsers is the same list an online-users broadcast would carry right now.
func (o *Orchestrator) OnlineUsers() []domain.Identity {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.Connections.List()
}

// RoomDirectory is the same map a video-rooms broadcast would carry right now.
func (o *Orchestrator) RoomDirectory() map[domain.RoomID]domain.Room {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.Rooms.List()
}
