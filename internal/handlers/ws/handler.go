// Package ws serves canvas clients over websockets and exposes the room
// directory over plain HTTP.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/KirkDiggler/sketchroom/internal/common/uuid"
	"github.com/KirkDiggler/sketchroom/internal/models"
	"github.com/KirkDiggler/sketchroom/internal/protocol"
	"github.com/KirkDiggler/sketchroom/internal/services/session"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
)

// Handler upgrades client connections and feeds their commands to the session service
type Handler struct {
	cfg      Config
	log      *slog.Logger
	sessions session.Service
	uuid     uuid.UUID
	upgrader websocket.Upgrader
}

// New creates a new websocket handler
func New(cfg *Config) (*Handler, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.Logger == nil {
		return nil, ErrNilLogger
	}
	if cfg.SessionService == nil {
		return nil, ErrNilSessionService
	}
	if cfg.UUIDGenerator == nil {
		return nil, ErrNilUUIDGenerator
	}

	c := *cfg
	if c.SendBuffer <= 0 {
		c.SendBuffer = DefaultSendBuffer
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = DefaultMaxMessageSize
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.PongTimeout <= 0 {
		c.PongTimeout = DefaultPongTimeout
	}

	h := &Handler{
		cfg:      c,
		log:      c.Logger,
		sessions: c.SessionService,
		uuid:     c.UUIDGenerator,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	return h, nil
}

// Routes returns the HTTP surface
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", h.serveWS)
	mux.HandleFunc("GET /up", h.serveHealth)
	mux.HandleFunc("GET /rooms", h.serveRooms)
	mux.HandleFunc("GET /rooms/{id}/evictions", h.serveEvictions)
	return mux
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if len(h.cfg.AllowedOrigins) == 0 {
		return true
	}
	return lo.Contains(h.cfg.AllowedOrigins, r.Header.Get("Origin"))
}

func (h *Handler) serveHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) serveRooms(w http.ResponseWriter, r *http.Request) {
	out, err := h.sessions.ListRooms(r.Context(), &session.ListRoomsInput{})
	if err != nil {
		h.log.Error("Failed to list rooms", "error", err)
		http.Error(w, "failed to list rooms", http.StatusInternalServerError)
		return
	}
	rooms := out.Rooms
	if rooms == nil {
		rooms = []*models.RoomSummary{}
	}
	h.writeJSON(w, rooms)
}

func (h *Handler) serveEvictions(w http.ResponseWriter, r *http.Request) {
	out, err := h.sessions.ListEvictions(r.Context(), &session.ListEvictionsInput{RoomID: r.PathValue("id")})
	if err != nil {
		h.log.Error("Failed to list evictions", "room", r.PathValue("id"), "error", err)
		http.Error(w, "failed to list evictions", http.StatusInternalServerError)
		return
	}
	records := out.Records
	if records == nil {
		records = []*models.EvictionRecord{}
	}
	h.writeJSON(w, records)
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Warn("Failed to write response", "error", err)
	}
}

func (h *Handler) serveWS(w http.ResponseWriter, r *http.Request) {
	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("Upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	c := newConn(h.uuid.NewUUID(), socket, h.log, &h.cfg)
	go c.writePump()

	h.log.Debug("Connection opened", "conn", c.ID(), "remote", r.RemoteAddr)
	h.readLoop(c, r.URL.Query().Get("room"))
}

// readLoop runs until the client goes away, then removes it from its room
func (h *Handler) readLoop(c *conn, roomID string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		if _, err := h.sessions.Leave(context.Background(), &session.LeaveInput{ConnID: c.ID()}); err != nil {
			h.log.Warn("Failed to leave", "conn", c.ID(), "error", err)
		}
		_ = c.Close("")
		<-c.done
		h.log.Debug("Connection closed", "conn", c.ID())
	}()

	c.ws.SetReadLimit(h.cfg.MaxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(h.cfg.PongTimeout))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(h.cfg.PongTimeout))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debug("Unexpected close", "conn", c.ID(), "error", err)
			}
			return
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(h.cfg.PongTimeout))

		cmd, err := protocol.Decode(data)
		if err != nil {
			h.log.Warn("Ignoring malformed command", "conn", c.ID(), "error", err)
			continue
		}
		if err := h.dispatch(ctx, c, roomID, cmd); err != nil {
			h.logCommandError(c, cmd, err)
		}
	}
}

// dispatch hands one decoded command to the session service
func (h *Handler) dispatch(ctx context.Context, c *conn, roomID string, cmd protocol.Command) error {
	var err error
	switch cmd := cmd.(type) {
	case *protocol.Join:
		room := cmd.RoomID
		if room == "" {
			room = roomID
		}
		_, err = h.sessions.Join(ctx, &session.JoinInput{
			Conn:        c,
			RoomID:      room,
			AgeVerified: cmd.AgeVerified,
		})
	case *protocol.Draw:
		_, err = h.sessions.Draw(ctx, &session.DrawInput{
			ConnID: c.ID(),
			PathID: cmd.PathID,
			Point:  models.Point{X: cmd.X, Y: cmd.Y},
			Color:  cmd.Color,
			Width:  cmd.Width,
		})
	case *protocol.DrawUpdate:
		_, err = h.sessions.UpdateDrawing(ctx, &session.UpdateDrawingInput{
			ConnID: c.ID(),
			PathID: cmd.PathID,
			Points: cmd.Points,
		})
	case *protocol.Text:
		_, err = h.sessions.AddText(ctx, &session.AddTextInput{
			ConnID:  c.ID(),
			Content: cmd.Content,
			X:       cmd.X,
			Y:       cmd.Y,
			Color:   cmd.Color,
			Size:    cmd.Size,
		})
	case *protocol.Erase:
		_, err = h.sessions.Erase(ctx, &session.EraseInput{
			ConnID: c.ID(),
			X:      cmd.X,
			Y:      cmd.Y,
			Radius: cmd.Radius,
		})
	case *protocol.VoteRemove:
		_, err = h.sessions.CastVote(ctx, &session.CastVoteInput{
			ConnID:       c.ID(),
			TargetNumber: cmd.TargetID,
		})
	case *protocol.CreateSection:
		_, err = h.sessions.CreateSection(ctx, &session.CreateSectionInput{
			ConnID:         c.ID(),
			InviteeNumbers: cmd.InviteeIDs,
		})
	case *protocol.AcceptSectionInvitation:
		_, err = h.sessions.AcceptInvitation(ctx, &session.AcceptInvitationInput{
			ConnID:    c.ID(),
			SectionID: cmd.SectionID,
		})
	default:
		h.log.Error("Unhandled command", "conn", c.ID(), "type", cmd.Type())
	}
	return err
}

// logCommandError logs at a level matching how expected the failure is.
// The client has already been told about policy failures.
func (h *Handler) logCommandError(c *conn, cmd protocol.Command, err error) {
	var sessionErr session.SessionError
	if errors.As(err, &sessionErr) {
		h.log.Debug("Command rejected", "conn", c.ID(), "type", cmd.Type(), "error", err)
		return
	}
	h.log.Info("Command failed", "conn", c.ID(), "type", cmd.Type(), "error", err)
}
