package signal

import (
	"testing"

	"github.com/dkeye/callhub/internal/core"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	frames []core.Frame
	full   bool
	closed bool
}

func (f *fakeConn) TrySend(frame core.Frame) error {
	if f.closed {
		return core.ErrConnClosed
	}
	if f.full {
		return core.ErrBackpressure
	}
	f.frames = append(f.frames, frame)
	return nil
}

func (f *fakeConn) Close() { f.closed = true }

func TestSessions_Send(t *testing.T) {
	req := require.New(t)
	sessions := NewSessions()
	conn := &fakeConn{}
	sessions.Add("c1", conn)

	req.NoError(sessions.Send("c1", core.Frame(`{"type":"pong"}`)))
	req.Len(conn.frames, 1)

	req.ErrorIs(sessions.Send("c2", core.Frame("x")), ErrUnknownConnection)

	conn.full = true
	req.ErrorIs(sessions.Send("c1", core.Frame("x")), core.ErrBackpressure)
}

func TestSessions_Kick_And_CloseAll(t *testing.T) {
	req := require.New(t)
	sessions := NewSessions()
	c1, c2 := &fakeConn{}, &fakeConn{}
	sessions.Add("c1", c1)
	sessions.Add("c2", c2)

	sessions.Kick("c1")
	sessions.Kick("unknown")
	req.True(c1.closed)
	req.False(c2.closed)

	req.Equal(2, sessions.CloseAll())
	req.True(c2.closed)

	sessions.Remove("c1")
	req.Equal(1, sessions.Len())
}
