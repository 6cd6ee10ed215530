package ws

import "errors"

// Application close codes. 4000-4003 are in the private-use range; 1000 and
// 1011 are the standard normal-closure and internal-error codes.
const (
	CloseNormal         = 1000
	CloseInternalError  = 1011
	CloseRoomNotFound   = 4000
	CloseAuthFailed     = 4001
	CloseNotParticipant = 4003
)

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrNotParticipant = errors.New("not a participant of this room")
)

// inboundChat is a frame received on the chat channel. At least one of the
// two fields must be present.
type inboundChat struct {
	Message *string `json:"message,omitempty"`
	Image   *string `json:"image,omitempty"` // base64, optionally a data: URL
}

// chatSender identifies the author of a chat message on the wire.
type chatSender struct {
	ID           int64   `json:"id"`
	Username     string  `json:"username"`
	ProfileImage *string `json:"profile_image,omitempty"`
}

// outboundChatMessage is the wire shape of one chat message. It is sent as
// the top-level frame; control frames like chat_ended carry a type field
// instead.
type outboundChatMessage struct {
	ID        int64      `json:"id"`
	Sender    chatSender `json:"sender"`
	Content   *string    `json:"content,omitempty"`
	ImageURL  *string    `json:"image_url,omitempty"`
	Timestamp string     `json:"timestamp"`
}

// inboundSignal is a frame received on the call signaling channel. Everything
// except Type is opaque to the relay.
type inboundSignal struct {
	Type string `json:"type"`
}

// signalTypes is the set of frame types the call relay forwards.
var signalTypes = map[string]struct{}{
	"offer":        {},
	"answer":       {},
	"candidate":    {},
	"track_status": {},
}
