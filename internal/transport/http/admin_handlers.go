package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pkarpov/linechat/internal/chat"
	"github.com/pkarpov/linechat/internal/store"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 500
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RoomResponse represents a room in API responses.
type RoomResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Access  string `json:"access"`
	Members int    `json:"members"`
}

// EventResponse represents one audit event in API responses.
type EventResponse struct {
	Kind      string `json:"kind"`
	Actor     string `json:"actor"`
	RoomID    string `json:"room_id,omitempty"`
	Detail    string `json:"detail,omitempty"`
	CreatedAt string `json:"created_at"`
}

// AdminHandlers provides the read-only observation endpoints.
type AdminHandlers struct {
	svc   *chat.Service
	store store.Store
	log   *zerolog.Logger
}

// NewAdminHandlers creates the admin handlers instance.
func NewAdminHandlers(svc *chat.Service, st store.Store, logger *zerolog.Logger) *AdminHandlers {
	return &AdminHandlers{svc: svc, store: st, log: logger}
}

// ListRooms returns every live room.
// GET /api/rooms
func (h *AdminHandlers) ListRooms(c *gin.Context) {
	rooms := h.svc.Registry().List()

	response := make([]RoomResponse, 0, len(rooms))
	for id, room := range rooms {
		access := "public"
		if room.Private() {
			access = "private"
		}
		response = append(response, RoomResponse{
			ID:      id,
			Name:    room.Name(),
			Access:  access,
			Members: room.MemberCount(),
		})
	}
	c.JSON(http.StatusOK, response)
}

// ListUsers returns the online display names.
// GET /api/users
func (h *AdminHandlers) ListUsers(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.ListOnlineUsers())
}

// ListEvents returns the newest audit events.
// GET /api/events?limit=N
func (h *AdminHandlers) ListEvents(c *gin.Context) {
	limit := defaultEventLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
			return
		}
		limit = min(parsed, maxEventLimit)
	}

	events, err := h.store.RecentEvents(c.Request.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list events")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]EventResponse, 0, len(events))
	for _, ev := range events {
		response = append(response, EventResponse{
			Kind:      string(ev.Kind),
			Actor:     ev.Actor,
			RoomID:    ev.RoomID,
			Detail:    ev.Detail,
			CreatedAt: ev.CreatedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, response)
}
