package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/qe-backend/internal/pkg"
	"github.com/rocketscienceinc/qe-backend/internal/usecase"
)

const shutdownTimeout = 5 * time.Second

type handlerFunc func(ctx context.Context, current *client, msg *Message) error

type Server struct {
	logger      *slog.Logger
	gameUseCase usecase.GameUseCase
	clock       quartz.Clock
	upgrader    websocket.Upgrader

	connectionsMutex sync.RWMutex
	connections      map[string]*client

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, gameUseCase usecase.GameUseCase, clock quartz.Clock) *Server {
	server := &Server{
		logger:      logger.With("component", "websocket"),
		gameUseCase: gameUseCase,
		clock:       clock,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},

		connections: make(map[string]*client),
	}

	server.handlers = map[string]handlerFunc{
		"connect":    server.handleConnect,
		"game:new":   server.handleNewGame,
		"game:join":  server.handleJoinGame,
		"game:bot":   server.handleAddBot,
		"game:quit":  server.handleQuitGame,
		"game:start": server.handleStartGame,
		"game:bid":   server.handleBid,
		"game:peek":  server.handlePeek,
		"game:flip":  server.handleFlip,
		"game:state": server.handleState,
	}

	return server
}

// Handler serves the WebSocket endpoint.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Handler(ctx),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - upgrades the connection and identifies the user from
// the session cookie.
func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	secret, found := pkg.SessionSecret(req)
	if !found {
		log.Info("session cookie not found, new one created")
	}

	header := http.Header{}
	header.Add("Set-Cookie", pkg.SessionCookie(secret, that.clock.Now()).String())

	conn, err := that.upgrader.Upgrade(writer, req, header)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	current := &client{userID: pkg.UserIDFromSecret(secret), conn: conn, clock: that.clock}
	that.register(current)

	defer func() {
		that.unregister(current)

		if err = conn.Close(); err != nil {
			log.Debug("failed to close connection", "error", err)
		}
	}()

	log.Info("WebSocket connection established", "userID", current.userID)

	if err = that.handleMessages(ctx, current); err != nil {
		log.Error("error handling messages", "error", err)
	}
}

// handleMessages - processes messages from the client until it goes away.
func (that *Server) handleMessages(ctx context.Context, current *client) error {
	log := that.logger.With("method", "handleMessages", "userID", current.userID)

	for {
		var message Message
		if err := current.conn.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				return fmt.Errorf("failed to read message: %w", err)
			}

			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				log.Warn("failed to unmarshal message", "error", err)
				continue
			}

			return nil
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)

			if err := current.sendErrorResponse(message.Action, "unknown action", nil); err != nil {
				return err
			}
			continue
		}

		if err := handler(ctx, current, &message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

func (that *Server) register(current *client) {
	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	that.connections[current.userID] = current
}

// unregister forgets the client unless a newer connection replaced it.
func (that *Server) unregister(current *client) {
	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	if that.connections[current.userID] == current {
		delete(that.connections, current.userID)
	}
}

func (that *Server) connection(userID string) (*client, bool) {
	that.connectionsMutex.RLock()
	defer that.connectionsMutex.RUnlock()

	current, ok := that.connections[userID]
	return current, ok
}
