package collab

import (
	"context"
	"encoding/json"
	"time"

	"github.com/algospace/algospace-api/pkg/logger"
	"github.com/algospace/algospace-api/pkg/metrics"
	"go.uber.org/zap"
)

const (
	// An interview room seats exactly one candidate and one interviewer
	maxRoomClients = 2

	// Upper bound on a single sandbox execution, including polling
	executionTimeout = 30 * time.Second

	defaultLanguage = "javascript"
	defaultTheme    = "dark"
)

// Runner executes code on behalf of a room. Implemented by the execution
// service so the room never talks to the sandbox engine directly.
type Runner interface {
	Run(ctx context.Context, language, code string) (output, status string, err error)
}

type inbound struct {
	client *Client
	msg    Message
}

// Room is a collaborative interview session. All session state is owned by
// the run loop goroutine; clients and the hub only communicate through
// channels, so no locking is needed around state.
type Room struct {
	slug   string
	hub    *Hub
	runner Runner

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	inbound    chan inbound
	results    chan Message
	done       chan struct{}

	// Authoritative session state
	seq      uint64
	code     string
	language string
	locked   bool
	theme    string
}

func newRoom(slug string, hub *Hub, runner Runner) *Room {
	return &Room{
		slug:       slug,
		hub:        hub,
		runner:     runner,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inbound),
		results:    make(chan Message, 4),
		done:       make(chan struct{}),
		language:   defaultLanguage,
		theme:      defaultTheme,
	}
}

// Slug returns the room identifier
func (r *Room) Slug() string {
	return r.slug
}

// Join registers a client with the room. Returns false if the room shut
// down between lookup and join, in which case the caller should fetch a
// fresh room from the hub.
func (r *Room) Join(c *Client) bool {
	select {
	case r.register <- c:
		return true
	case <-r.done:
		return false
	}
}

func (r *Room) leave(c *Client) {
	select {
	case r.unregister <- c:
	case <-r.done:
	}
}

func (r *Room) deliver(c *Client, msg Message) {
	select {
	case r.inbound <- inbound{client: c, msg: msg}:
	case <-r.done:
	}
}

func (r *Room) run() {
	metrics.CollabRooms.Inc()
	defer metrics.CollabRooms.Dec()

	started := false
	for {
		select {
		case client := <-r.register:
			if r.handleRegister(client) {
				started = true
			}

		case client := <-r.unregister:
			if _, ok := r.clients[client]; ok {
				delete(r.clients, client)
				close(client.send)
				metrics.CollabClients.Dec()
				logger.Info("Client left session room",
					zap.String("room", r.slug),
					zap.String("user_id", client.userID))

				r.broadcast(Message{Type: TypePeerLeft, Sender: client.userID, Role: client.role})
			}

		case in := <-r.inbound:
			r.handleMessage(in.client, in.msg)

		case result := <-r.results:
			r.broadcast(result)
		}

		// Slow-consumer evictions inside broadcast can empty the room too,
		// so the teardown check runs after every event
		if started && len(r.clients) == 0 {
			r.hub.removeRoom(r.slug)
			close(r.done)
			return
		}
	}
}

func (r *Room) handleRegister(client *Client) bool {
	if len(r.clients) >= maxRoomClients {
		client.sendMessage(Message{Type: TypeError, Error: "room is full"})
		close(client.send)
		return false
	}

	r.clients[client] = true
	metrics.CollabClients.Inc()
	logger.Info("Client joined session room",
		zap.String("room", r.slug),
		zap.String("user_id", client.userID))

	// Snapshot so a late joiner converges immediately instead of waiting
	// for the next edit
	client.sendMessage(Message{
		Type:     TypeSessionState,
		Seq:      r.seq,
		Code:     r.code,
		Language: r.language,
		Locked:   boolPtr(r.locked),
		Theme:    r.theme,
	})

	r.broadcastExcept(client, Message{Type: TypePeerJoined, Sender: client.userID, Role: client.role})
	return true
}

func (r *Room) handleMessage(client *Client, msg Message) {
	// Messages can trail in from a client the loop already rejected or
	// evicted; its send channel is closed, so drop them
	if !r.clients[client] {
		return
	}

	switch msg.Type {
	case TypeRoleAnnounce:
		// The role is fixed at join from the interview record; the
		// announce is informational for peers, never an escalation
		r.broadcastExcept(client, Message{Type: TypeRoleAnnounce, Sender: client.userID, Role: client.role})
		metrics.CollabMessages.WithLabelValues(string(msg.Type), "ok").Inc()

	case TypeCodeUpdate:
		// The lock is enforced here, not trusted from clients
		if r.locked && client.role != "interviewer" {
			client.sendMessage(Message{Type: TypeError, Error: "editor is locked"})
			metrics.CollabMessages.WithLabelValues(string(msg.Type), "rejected").Inc()
			return
		}
		r.code = msg.Code
		if msg.Language != "" {
			r.language = msg.Language
		}
		r.broadcast(Message{
			Type:     TypeCodeUpdate,
			Sender:   client.userID,
			Code:     r.code,
			Language: r.language,
		})
		metrics.CollabMessages.WithLabelValues(string(msg.Type), "ok").Inc()

	case TypeLockCode:
		if client.role != "interviewer" {
			client.sendMessage(Message{Type: TypeError, Error: "only the interviewer can lock the editor"})
			metrics.CollabMessages.WithLabelValues(string(msg.Type), "rejected").Inc()
			return
		}
		if msg.Locked != nil {
			r.locked = *msg.Locked
		} else {
			r.locked = !r.locked
		}
		r.broadcast(Message{Type: TypeLockCode, Sender: client.userID, Locked: boolPtr(r.locked)})
		metrics.CollabMessages.WithLabelValues(string(msg.Type), "ok").Inc()

	case TypeRunCode:
		r.startExecution(client)
		metrics.CollabMessages.WithLabelValues(string(msg.Type), "ok").Inc()

	case TypeToggleTheme:
		if msg.Theme != "" {
			r.theme = msg.Theme
		}
		r.broadcast(Message{Type: TypeToggleTheme, Sender: client.userID, Theme: r.theme})
		metrics.CollabMessages.WithLabelValues(string(msg.Type), "ok").Inc()

	case TypeRequestScreenShare:
		r.broadcastExcept(client, Message{Type: TypeRequestScreenShare, Sender: client.userID, Role: client.role})
		metrics.CollabMessages.WithLabelValues(string(msg.Type), "ok").Inc()

	default:
		logger.Warn("Unknown session message type",
			zap.String("room", r.slug),
			zap.String("type", string(msg.Type)))
		metrics.CollabMessages.WithLabelValues(string(msg.Type), "unknown").Inc()
	}
}

// startExecution runs the current code asynchronously. The result comes
// back through the results channel so the run loop stamps and broadcasts it.
func (r *Room) startExecution(client *Client) {
	if r.runner == nil {
		client.sendMessage(Message{Type: TypeError, Error: "code execution is not configured"})
		return
	}

	language := r.language
	code := r.code
	sender := client.userID

	r.broadcast(Message{Type: TypeCodeOutput, Sender: sender, Status: "running"})

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), executionTimeout)
		defer cancel()

		output, status, err := r.runner.Run(ctx, language, code)
		result := Message{Type: TypeCodeOutput, Sender: sender, Status: status, Output: output}
		if err != nil {
			logger.Error("Session code execution failed",
				zap.String("room", r.slug),
				zap.String("language", language),
				zap.Error(err))
			result.Status = "error"
			result.Error = "execution failed"
		}

		select {
		case r.results <- result:
		case <-r.done:
		}
	}()
}

// broadcast stamps the message with the next sequence number and fans it
// out to every client in the room
func (r *Room) broadcast(msg Message) {
	r.seq++
	msg.Seq = r.seq
	payload, err := json.Marshal(msg)
	if err != nil {
		logger.Error("Failed to marshal session message", zap.Error(err))
		return
	}

	for client := range r.clients {
		select {
		case client.send <- payload:
		default:
			// Slow consumer, drop the connection
			close(client.send)
			delete(r.clients, client)
			metrics.CollabClients.Dec()
		}
	}
}

func (r *Room) broadcastExcept(except *Client, msg Message) {
	r.seq++
	msg.Seq = r.seq
	payload, err := json.Marshal(msg)
	if err != nil {
		logger.Error("Failed to marshal session message", zap.Error(err))
		return
	}

	for client := range r.clients {
		if client == except {
			continue
		}
		select {
		case client.send <- payload:
		default:
			close(client.send)
			delete(r.clients, client)
			metrics.CollabClients.Dec()
		}
	}
}
