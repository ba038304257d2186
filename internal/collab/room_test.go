package collab

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/algospace/algospace-api/pkg/logger"
)

func init() {
	_ = logger.Initialize(logger.Config{Level: "error", Environment: "development"})
}

// stubRunner returns a fixed result for every execution
type stubRunner struct {
	output string
	status string
	err    error
}

func (s *stubRunner) Run(ctx context.Context, language, code string) (string, string, error) {
	return s.output, s.status, s.err
}

func newTestClient(userID, role string) *Client {
	return &Client{
		send:   make(chan []byte, 256),
		userID: userID,
		role:   role,
	}
}

func recv(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case payload, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		var msg Message
		require.NoError(t, json.Unmarshal(payload, &msg))
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}
	}
}

func recvType(t *testing.T, c *Client, want MessageType) Message {
	t.Helper()
	msg := recv(t, c)
	require.Equal(t, want, msg.Type)
	return msg
}

func joinPair(t *testing.T, room *Room) (candidate, interviewer *Client) {
	t.Helper()
	candidate = newTestClient("cand-1", "candidate")
	interviewer = newTestClient("int-1", "interviewer")

	require.True(t, room.Join(candidate))
	recvType(t, candidate, TypeSessionState)

	require.True(t, room.Join(interviewer))
	recvType(t, interviewer, TypeSessionState)
	recvType(t, candidate, TypePeerJoined)

	return candidate, interviewer
}

func TestJoinSendsSnapshot(t *testing.T) {
	hub := NewHub(nil)
	room := hub.Room("snapshot-room")

	client := newTestClient("cand-1", "candidate")
	require.True(t, room.Join(client))

	msg := recvType(t, client, TypeSessionState)
	assert.Equal(t, "javascript", msg.Language)
	assert.Equal(t, "dark", msg.Theme)
	require.NotNil(t, msg.Locked)
	assert.False(t, *msg.Locked)
	assert.Empty(t, msg.Code)
}

func TestCodeUpdateBroadcastsWithMonotonicSeq(t *testing.T) {
	hub := NewHub(nil)
	room := hub.Room("edit-room")
	candidate, interviewer := joinPair(t, room)

	room.deliver(candidate, Message{Type: TypeCodeUpdate, Code: "print(1)", Language: "python"})
	first := recvType(t, candidate, TypeCodeUpdate)
	assert.Equal(t, "print(1)", first.Code)
	assert.Equal(t, "python", first.Language)
	assert.Equal(t, "cand-1", first.Sender)

	peerCopy := recvType(t, interviewer, TypeCodeUpdate)
	assert.Equal(t, first.Seq, peerCopy.Seq)

	room.deliver(candidate, Message{Type: TypeCodeUpdate, Code: "print(2)"})
	second := recvType(t, candidate, TypeCodeUpdate)
	assert.Greater(t, second.Seq, first.Seq)
	// Language sticks from the previous update
	assert.Equal(t, "python", second.Language)
}

func TestLateJoinerGetsCurrentState(t *testing.T) {
	hub := NewHub(nil)
	room := hub.Room("late-room")

	first := newTestClient("cand-1", "candidate")
	require.True(t, room.Join(first))
	recvType(t, first, TypeSessionState)

	room.deliver(first, Message{Type: TypeCodeUpdate, Code: "x = 42", Language: "python"})
	recvType(t, first, TypeCodeUpdate)

	late := newTestClient("int-1", "interviewer")
	require.True(t, room.Join(late))

	snapshot := recvType(t, late, TypeSessionState)
	assert.Equal(t, "x = 42", snapshot.Code)
	assert.Equal(t, "python", snapshot.Language)
}

func TestLockBlocksCandidateEdits(t *testing.T) {
	hub := NewHub(nil)
	room := hub.Room("lock-room")
	candidate, interviewer := joinPair(t, room)

	room.deliver(interviewer, Message{Type: TypeLockCode, Locked: boolPtr(true)})
	lockMsg := recvType(t, candidate, TypeLockCode)
	require.NotNil(t, lockMsg.Locked)
	assert.True(t, *lockMsg.Locked)
	recvType(t, interviewer, TypeLockCode)

	// Candidate edit is rejected in-band
	room.deliver(candidate, Message{Type: TypeCodeUpdate, Code: "sneaky"})
	errMsg := recvType(t, candidate, TypeError)
	assert.Equal(t, "editor is locked", errMsg.Error)

	// Interviewer can still edit while locked
	room.deliver(interviewer, Message{Type: TypeCodeUpdate, Code: "allowed"})
	update := recvType(t, candidate, TypeCodeUpdate)
	assert.Equal(t, "allowed", update.Code)
}

func TestLockIsInterviewerOnly(t *testing.T) {
	hub := NewHub(nil)
	room := hub.Room("lock-auth-room")
	candidate, interviewer := joinPair(t, room)

	room.deliver(candidate, Message{Type: TypeLockCode, Locked: boolPtr(true)})
	errMsg := recvType(t, candidate, TypeError)
	assert.Contains(t, errMsg.Error, "interviewer")

	// Lock state did not change, so the interviewer saw nothing
	room.deliver(interviewer, Message{Type: TypeToggleTheme, Theme: "light"})
	recvType(t, interviewer, TypeToggleTheme)
}

func TestRoomFullRejectsThirdClient(t *testing.T) {
	hub := NewHub(nil)
	room := hub.Room("full-room")
	joinPair(t, room)

	third := newTestClient("cand-2", "candidate")
	require.True(t, room.Join(third))

	errMsg := recvType(t, third, TypeError)
	assert.Equal(t, "room is full", errMsg.Error)

	// The send channel is closed so the connection winds down
	select {
	case _, ok := <-third.send:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("expected send channel to be closed")
	}
}

func TestRejectedClientMessagesAreDropped(t *testing.T) {
	hub := NewHub(nil)
	room := hub.Room("reject-room")
	candidate, interviewer := joinPair(t, room)

	third := newTestClient("cand-2", "candidate")
	require.True(t, room.Join(third))
	recvType(t, third, TypeError)

	// Messages trailing in from the rejected client are dropped, not answered
	room.deliver(third, Message{Type: TypeLockCode, Locked: boolPtr(true)})
	room.deliver(third, Message{Type: TypeCodeUpdate, Code: "intruder"})

	// The room keeps serving its two participants
	room.deliver(interviewer, Message{Type: TypeToggleTheme, Theme: "light"})
	msg := recvType(t, candidate, TypeToggleTheme)
	assert.Equal(t, "light", msg.Theme)
	recvType(t, interviewer, TypeToggleTheme)
}

func TestRoleAnnounceCannotEscalate(t *testing.T) {
	hub := NewHub(nil)
	room := hub.Room("escalate-room")
	candidate, interviewer := joinPair(t, room)

	// The claimed role is ignored; peers see the role from the join
	room.deliver(candidate, Message{Type: TypeRoleAnnounce, Role: "interviewer"})
	announce := recvType(t, interviewer, TypeRoleAnnounce)
	assert.Equal(t, "candidate", announce.Role)

	// And it does not unlock interviewer-only controls
	room.deliver(candidate, Message{Type: TypeLockCode, Locked: boolPtr(true)})
	errMsg := recvType(t, candidate, TypeError)
	assert.Contains(t, errMsg.Error, "interviewer")
}

func TestRoomTearsDownAfterSlowConsumerEviction(t *testing.T) {
	hub := NewHub(nil)
	room := hub.Room("evict-room")

	// A zero-capacity send channel makes the first broadcast evict the client
	slow := &Client{send: make(chan []byte), userID: "cand-1", role: "candidate"}
	require.True(t, room.Join(slow))

	room.deliver(slow, Message{Type: TypeCodeUpdate, Code: "x"})

	require.Eventually(t, func() bool {
		return hub.RoomCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRoomTearsDownWhenEmpty(t *testing.T) {
	hub := NewHub(nil)
	room := hub.Room("teardown-room")
	candidate, interviewer := joinPair(t, room)

	room.leave(candidate)
	recvType(t, interviewer, TypePeerLeft)
	room.leave(interviewer)

	require.Eventually(t, func() bool {
		return hub.RoomCount() == 0
	}, 2*time.Second, 10*time.Millisecond)

	// A fresh join after teardown gets a brand-new room
	again := hub.Room("teardown-room")
	assert.NotSame(t, room, again)
}

func TestJoinFailsAfterShutdown(t *testing.T) {
	hub := NewHub(nil)
	room := hub.Room("gone-room")

	only := newTestClient("cand-1", "candidate")
	require.True(t, room.Join(only))
	recvType(t, only, TypeSessionState)
	room.leave(only)

	require.Eventually(t, func() bool {
		return hub.RoomCount() == 0
	}, 2*time.Second, 10*time.Millisecond)

	late := newTestClient("int-1", "interviewer")
	assert.False(t, room.Join(late))
}

func TestRunCodeBroadcastsResult(t *testing.T) {
	hub := NewHub(&stubRunner{output: "3\n", status: "success"})
	room := hub.Room("exec-room")
	candidate, interviewer := joinPair(t, room)

	room.deliver(candidate, Message{Type: TypeCodeUpdate, Code: "print(1+2)", Language: "python"})
	recvType(t, candidate, TypeCodeUpdate)
	recvType(t, interviewer, TypeCodeUpdate)

	room.deliver(candidate, Message{Type: TypeRunCode})

	running := recvType(t, candidate, TypeCodeOutput)
	assert.Equal(t, "running", running.Status)
	recvType(t, interviewer, TypeCodeOutput)

	result := recvType(t, candidate, TypeCodeOutput)
	assert.Equal(t, "success", result.Status)
	assert.Equal(t, "3\n", result.Output)

	peerResult := recvType(t, interviewer, TypeCodeOutput)
	assert.Equal(t, result.Seq, peerResult.Seq)
}

func TestRunCodeWithoutRunner(t *testing.T) {
	hub := NewHub(nil)
	room := hub.Room("no-runner-room")
	candidate, _ := joinPair(t, room)

	room.deliver(candidate, Message{Type: TypeRunCode})
	errMsg := recvType(t, candidate, TypeError)
	assert.Contains(t, errMsg.Error, "not configured")
}

func TestRoleAnnounceReachesPeer(t *testing.T) {
	hub := NewHub(nil)
	room := hub.Room("role-room")
	candidate, interviewer := joinPair(t, room)

	room.deliver(candidate, Message{Type: TypeRoleAnnounce, Role: "candidate"})
	announce := recvType(t, interviewer, TypeRoleAnnounce)
	assert.Equal(t, "cand-1", announce.Sender)
	assert.Equal(t, "candidate", announce.Role)
}
