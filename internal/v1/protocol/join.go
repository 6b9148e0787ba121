package protocol

import (
	"encoding/json"
	"fmt"
)

// ProtocolVersion is the wire protocol generation this server speaks.
// Clients announce theirs in the join handshake; a mismatch is refused
// so old clients can prompt for a reload.
const ProtocolVersion = 1

// Join handshake limits.
const (
	RoomNameMinLen = 3
	RoomNameMaxLen = 32
	UsernameMinLen = 1
	UsernameMaxLen = 32
)

// Close codes used when a join handshake is refused. 1011 is the
// registered internal-error code; the 4xxx range is application
// defined.
const (
	CloseWebsocketError        = 1011
	CloseRoomMissing           = 4000
	CloseRoomInvalidLength     = 4002
	CloseUsernameMissing       = 4010
	CloseUsernameInvalidLength = 4012
	CloseColorInvalid          = 4021
	ClosePasswordRequired      = 4030
	ClosePasswordIncorrect     = 4033
	CloseProtocolError         = 4999
)

// JoinError is a refused join handshake: a close code plus the JSON
// reason sent in the close frame. The websocket protocol caps close
// reasons at 123 bytes; every shape here fits.
type JoinError struct {
	code   int
	reason any
}

// Code returns the websocket close code.
func (e *JoinError) Code() int { return e.code }

// Reason serializes the close reason payload.
func (e *JoinError) Reason() []byte {
	data, err := json.Marshal(e.reason)
	if err != nil {
		return []byte(`{"type":"websocket_error"}`)
	}
	return data
}

func (e *JoinError) Error() string {
	return fmt.Sprintf("join refused: close %d %s", e.code, e.Reason())
}

type closeReason struct {
	Type string `json:"type"`
}

type protocolErrorReason struct {
	Type   string `json:"type"`
	Server int    `json:"server"`
}

type invalidLengthReason struct {
	Type         string `json:"type"`
	MinLen       int    `json:"min_len"`
	MaxLen       int    `json:"max_len"`
	SpecifiedLen int    `json:"specified_len"`
}

// ErrWebsocketError covers internal failures during the handshake.
func ErrWebsocketError() *JoinError {
	return &JoinError{code: CloseWebsocketError, reason: closeReason{Type: "websocket_error"}}
}

// ErrProtocolMismatch reports the server's protocol version so the
// client can decide whether to reload or give up.
func ErrProtocolMismatch() *JoinError {
	return &JoinError{code: CloseProtocolError, reason: protocolErrorReason{Type: "protocol_error", Server: ProtocolVersion}}
}

// ErrRoomMissing refuses a join with no room name.
func ErrRoomMissing() *JoinError {
	return &JoinError{code: CloseRoomMissing, reason: closeReason{Type: "room_missing"}}
}

// ErrRoomInvalidLength refuses an out-of-bounds room name.
func ErrRoomInvalidLength(specified int) *JoinError {
	return &JoinError{code: CloseRoomInvalidLength, reason: invalidLengthReason{
		Type:         "room_invalid_length",
		MinLen:       RoomNameMinLen,
		MaxLen:       RoomNameMaxLen,
		SpecifiedLen: specified,
	}}
}

// ErrUsernameMissing refuses a join with no username.
func ErrUsernameMissing() *JoinError {
	return &JoinError{code: CloseUsernameMissing, reason: closeReason{Type: "username_missing"}}
}

// ErrUsernameInvalidLength refuses an out-of-bounds username.
func ErrUsernameInvalidLength(specified int) *JoinError {
	return &JoinError{code: CloseUsernameInvalidLength, reason: invalidLengthReason{
		Type:         "username_invalid_length",
		MinLen:       UsernameMinLen,
		MaxLen:       UsernameMaxLen,
		SpecifiedLen: specified,
	}}
}

// ErrColorInvalid refuses an unparseable requested color.
func ErrColorInvalid() *JoinError {
	return &JoinError{code: CloseColorInvalid, reason: closeReason{Type: "color_invalid"}}
}

// ErrPasswordRequired refuses a join that offered no password to a
// protected room.
func ErrPasswordRequired() *JoinError {
	return &JoinError{code: ClosePasswordRequired, reason: closeReason{Type: "password_required"}}
}

// ErrPasswordIncorrect refuses a join whose password did not match.
func ErrPasswordIncorrect() *JoinError {
	return &JoinError{code: ClosePasswordIncorrect, reason: closeReason{Type: "password_incorrect"}}
}
