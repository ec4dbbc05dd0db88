package player

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Solo/pkg/proto"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Connection is an interface that abstracts the websocket connection.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (int, []byte, error)
	Close() error
}

// Player is the human at the other end of a websocket, bound to one session.
type Player struct {
	SessionID string
	Conn      Connection

	writeMu sync.Mutex

	timerMu sync.Mutex
	pending *time.Timer
}

// NewPlayer creates a player for sessionID on conn.
func NewPlayer(sessionID string, conn Connection) *Player {
	return &Player{
		SessionID: sessionID,
		Conn:      conn,
	}
}

// Send writes msg as a JSON text frame. Safe for concurrent use.
func (p *Player) Send(msg *proto.ServerToClientMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("error marshalling message: %w", err)
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return p.Conn.WriteMessage(websocket.TextMessage, data)
}

// Schedule runs f after d with a context that outlives the connection,
// replacing any callback that has not fired yet.
func (p *Player) Schedule(ctx context.Context, d time.Duration, f func(context.Context)) {
	ctx = context.WithoutCancel(ctx)

	p.timerMu.Lock()
	defer p.timerMu.Unlock()
	if p.pending != nil {
		p.pending.Stop()
	}
	p.pending = time.AfterFunc(d, func() { f(ctx) })
}

// CancelScheduled drops a callback that has not fired yet. It reports
// whether one was dropped.
func (p *Player) CancelScheduled() bool {
	p.timerMu.Lock()
	defer p.timerMu.Unlock()
	if p.pending == nil {
		return false
	}
	stopped := p.pending.Stop()
	p.pending = nil
	return stopped
}
