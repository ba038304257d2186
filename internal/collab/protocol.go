package collab

// MessageType identifies a session protocol message
type MessageType string

const (
	// Client-originated messages
	TypeRoleAnnounce       MessageType = "role_announce"
	TypeCodeUpdate         MessageType = "code_update"
	TypeLockCode           MessageType = "lock_code"
	TypeRunCode            MessageType = "run_code"
	TypeToggleTheme        MessageType = "toggle_theme"
	TypeRequestScreenShare MessageType = "request_screen_share"

	// Server-originated messages
	TypeSessionState MessageType = "session_state"
	TypeCodeOutput   MessageType = "code_output"
	TypePeerJoined   MessageType = "peer_joined"
	TypePeerLeft     MessageType = "peer_left"
	TypeError        MessageType = "error"
)

// Message is the wire envelope for session traffic. The server stamps every
// state-bearing broadcast with a monotonically increasing per-room sequence
// number; clients apply messages in sequence order.
type Message struct {
	Type   MessageType `json:"type"`
	Seq    uint64      `json:"seq,omitempty"`
	Sender string      `json:"sender,omitempty"`
	Role   string      `json:"role,omitempty"`

	// Editor state
	Code     string `json:"code,omitempty"`
	Language string `json:"language,omitempty"`
	Locked   *bool  `json:"locked,omitempty"`
	Theme    string `json:"theme,omitempty"`

	// Execution results
	Output string `json:"output,omitempty"`
	Status string `json:"status,omitempty"`

	Error string `json:"error,omitempty"`
}

// boolPtr is a convenience for the Locked field
func boolPtr(b bool) *bool {
	return &b
}
