package handlers

import (
	"net/http"
	"time"

	"github.com/algospace/algospace-api/internal/collab"
	"github.com/algospace/algospace-api/internal/middleware"
	"github.com/algospace/algospace-api/internal/models"
	"github.com/algospace/algospace-api/internal/repository"
	"github.com/algospace/algospace-api/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// SessionHandler upgrades interview participants into a collaboration room
type SessionHandler struct {
	hub           *collab.Hub
	interviewRepo repository.InterviewRepository
	upgrader      websocket.Upgrader
}

// NewSessionHandler creates a new SessionHandler. allowedOrigins guards the
// websocket handshake the same way CORS guards the REST surface.
func NewSessionHandler(hub *collab.Hub, interviewRepo repository.InterviewRepository, allowedOrigins []string) *SessionHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return &SessionHandler{
		hub:           hub,
		interviewRepo: interviewRepo,
		upgrader: websocket.Upgrader{
			ReadBufferSize:   4096,
			WriteBufferSize:  4096,
			HandshakeTimeout: 10 * time.Second,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				return allowed[origin]
			},
		},
	}
}

// Connect handles GET /api/v1/session/:room/ws
// The caller must be the candidate or the interviewer of the scheduled
// interview that owns the room slug.
func (h *SessionHandler) Connect(c *gin.Context) {
	session, err := middleware.GetSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	roomSlug := c.Param("room")
	interview, err := h.interviewRepo.GetInterviewByRoomSlug(c.Request.Context(), roomSlug)
	if err != nil {
		respondError(c, http.StatusNotFound, "Session not found", err)
		return
	}

	var role string
	switch session.UserID {
	case interview.CandidateID:
		role = "candidate"
	case interview.InterviewerID:
		role = "interviewer"
	default:
		respondError(c, http.StatusForbidden, "Not a participant of this session", nil)
		return
	}

	if interview.Status != models.InterviewScheduled {
		respondError(c, http.StatusConflict, "Session is not active", nil)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the handshake failure response
		attachError(c, err)
		return
	}

	// A room can shut down between lookup and join when its last client
	// leaves, so retry against a fresh instance. A full room accepts the
	// join, sends an in-band error and closes the connection.
	for {
		room := h.hub.Room(roomSlug)
		client := collab.NewClient(room, conn, session.UserID, role)
		if room.Join(client) {
			go client.WritePump()
			go client.ReadPump()
			break
		}
	}

	logger.Info("Session participant connected",
		zap.String("room", roomSlug),
		zap.String("user_id", session.UserID),
		zap.String("role", role))
}
