package server

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Solo/internal/game"
	"ctchen222/Tic-Tac-Toe-Solo/internal/hub"
	"ctchen222/Tic-Tac-Toe-Solo/internal/repository"
	"ctchen222/Tic-Tac-Toe-Solo/internal/session"
	"ctchen222/Tic-Tac-Toe-Solo/pkg/proto"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// firstEmpty always answers with the first empty cell in row-major order.
type firstEmpty struct{}

func (firstEmpty) CalculateNextMove(_ context.Context, grid game.Grid, _ game.Player) (game.Move, error) {
	cells := grid.EmptyCells()
	if len(cells) == 0 {
		return game.Move{}, game.ErrBoardFull
	}
	return cells[0], nil
}

func newTestServer(t *testing.T, delay time.Duration) (*httptest.Server, *hub.Hub) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h, err := hub.NewHub(repository.NewMemorySessionRepository(0), firstEmpty{}, hub.Options{})
	require.NoError(t, err)

	srv := NewServer(h, Options{ComputerMoveDelay: delay})
	ts := httptest.NewServer(srv.Engine())
	t.Cleanup(ts.Close)
	return ts, h
}

func dial(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws" + query
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) proto.ServerToClientMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg proto.ServerToClientMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func move(t *testing.T, conn *websocket.Conn, row, col int) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(proto.ClientToServerMessage{Type: proto.TypeMove, Position: []int{row, col}}))
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t, 0)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWebSocket_PlayTurn(t *testing.T) {
	ts, _ := newTestServer(t, 0)
	conn := dial(t, ts, "")

	hello := read(t, conn)
	assert.Equal(t, proto.TypeUpdate, hello.Type)
	require.NotEmpty(t, hello.GameID)
	assert.Equal(t, game.StatusContinue, hello.Status)
	assert.Equal(t, session.Human, hello.Next)
	require.NotNil(t, hello.Board)
	assert.Equal(t, game.Grid{}, *hello.Board)

	move(t, conn, 1, 1)

	human := read(t, conn)
	assert.Equal(t, proto.TypeUpdate, human.Type)
	assert.Equal(t, session.Human, human.Board[1][1])
	assert.Equal(t, session.Computer, human.Next)
	assert.Nil(t, human.ComputerMove)

	computer := read(t, conn)
	assert.Equal(t, proto.TypeUpdate, computer.Type)
	require.NotNil(t, computer.ComputerMove)
	assert.Equal(t, game.Move{Row: 0, Col: 0}, *computer.ComputerMove)
	assert.Equal(t, session.Computer, computer.Board[0][0])
	assert.Equal(t, session.Human, computer.Next)
}

func TestWebSocket_HumanWin(t *testing.T) {
	ts, _ := newTestServer(t, 0)
	conn := dial(t, ts, "")
	read(t, conn)

	for _, col := range []int{0, 1} {
		move(t, conn, 1, col)
		read(t, conn)
		read(t, conn)
	}
	move(t, conn, 1, 2)

	msg := read(t, conn)
	assert.Equal(t, game.StatusWin, msg.Status)
	assert.Equal(t, session.Human, msg.Winner)
	assert.Equal(t, &game.WinningLine{Kind: game.Row, Index: 1}, msg.Line)
	assert.Equal(t, game.Empty, msg.Next)

	move(t, conn, 2, 2)
	errMsg := read(t, conn)
	assert.Equal(t, proto.TypeError, errMsg.Type)
	assert.Contains(t, errMsg.Reason, game.ErrGameOver.Error())
}

func TestWebSocket_RejectsInputDuringComputerTurn(t *testing.T) {
	ts, h := newTestServer(t, time.Hour)
	conn := dial(t, ts, "")
	id := read(t, conn).GameID

	move(t, conn, 1, 1)
	read(t, conn)

	move(t, conn, 2, 2)
	msg := read(t, conn)
	assert.Equal(t, proto.TypeError, msg.Type)
	assert.Contains(t, msg.Reason, session.ErrComputerTurnPending.Error())

	state, err := h.State(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, game.Empty, state.Board[2][2])

	require.NoError(t, conn.WriteJSON(proto.ClientToServerMessage{Type: proto.TypeNewGame}))
	reset := read(t, conn)
	assert.Equal(t, proto.TypeUpdate, reset.Type)
	assert.Equal(t, game.Grid{}, *reset.Board)
	assert.Equal(t, session.Human, reset.Next)
}

func TestWebSocket_InvalidMessages(t *testing.T) {
	ts, _ := newTestServer(t, 0)
	conn := dial(t, ts, "")
	read(t, conn)

	frames := []string{
		`not json`,
		`{"type":"rematch"}`,
		`{"type":"move"}`,
		`{"type":"move","position":[3,0]}`,
	}
	for _, frame := range frames {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))
		msg := read(t, conn)
		assert.Equal(t, proto.TypeError, msg.Type, frame)
		assert.Contains(t, msg.Reason, ErrInvalidMessage.Error(), frame)
	}
}

func TestWebSocket_ResumeSession(t *testing.T) {
	ts, h := newTestServer(t, time.Hour)
	ctx := context.Background()

	state, err := h.CreateSession(ctx)
	require.NoError(t, err)
	_, _, err = h.PlayHuman(ctx, state.ID, 0, 2)
	require.NoError(t, err)

	conn := dial(t, ts, "?gameId="+state.ID)
	msg := read(t, conn)
	assert.Equal(t, state.ID, msg.GameID)
	assert.Equal(t, session.Human, msg.Board[0][2])
	assert.Equal(t, session.Computer, msg.Next)
}

func TestWebSocket_UnknownSession(t *testing.T) {
	ts, _ := newTestServer(t, 0)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?gameId=nope"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)

	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.True(t, errors.Is(err, websocket.ErrBadHandshake))
}

func TestDecodeMessage(t *testing.T) {
	msg, err := decodeMessage([]byte(`{"type":"move","position":[2,1]}`))
	require.NoError(t, err)
	assert.Equal(t, proto.TypeMove, msg.Type)
	assert.Equal(t, []int{2, 1}, msg.Position)

	_, err = decodeMessage([]byte(`{"type":"new_game","position":[9]}`))
	assert.ErrorIs(t, err, ErrInvalidMessage)
}
