package server

import (
	"ctchen222/Tic-Tac-Toe-Solo/internal/api/controller"
	"ctchen222/Tic-Tac-Toe-Solo/internal/api/response"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("server")

// Options tunes the websocket transport.
type Options struct {
	// ComputerMoveDelay paces the computer's reply on websocket sessions.
	ComputerMoveDelay time.Duration
}

type Server struct {
	games    controller.GameService
	api      *controller.GameController
	upgrader websocket.Upgrader
	opts     Options
}

func NewServer(games controller.GameService, opts Options) *Server {
	return &Server{
		games: games,
		api:   controller.NewGameController(games),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		opts: opts,
	}
}

// Engine builds the gin router serving the REST API and the websocket endpoint.
func (s *Server) Engine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		response.SuccessResponse(c, gin.H{"status": "ok"})
	})

	games := r.Group("/api/games")
	{
		games.POST("", s.api.Create)
		games.GET("/:id", s.api.Get)
		games.DELETE("/:id", s.api.Delete)
		games.POST("/:id/moves", s.api.Move)
		games.POST("/:id/computer", s.api.Computer)
		games.POST("/:id/reset", s.api.Reset)
	}

	r.GET("/ws", s.handleWebSocket)
	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.DebugContext(c.Request.Context(), "http request",
			"http.method", c.Request.Method,
			"http.route", c.FullPath(),
			"http.status", c.Writer.Status(),
			"http.duration", time.Since(start),
		)
	}
}
