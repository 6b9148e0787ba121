package protocol

import (
	"encoding/json"

	"github.com/google/uuid"
)

// ErrorCode classifies a refused command.
type ErrorCode string

const (
	ErrorNoPermission     ErrorCode = "no_permission"
	ErrorRoomDoesNotExist ErrorCode = "room_does_not_exist"
	ErrorUserDoesNotExist ErrorCode = "user_does_not_exist"
)

type commandError struct {
	Code ErrorCode `json:"code"`
}

type errorReply struct {
	ID    uuid.UUID    `json:"id"`
	Error commandError `json:"error"`
}

// EncodeError serializes the reply for a refused command. Only
// commands that carried an id get one; callers skip the reply
// entirely for id-less commands.
func EncodeError(id uuid.UUID, code ErrorCode) ([]byte, error) {
	return json.Marshal(errorReply{ID: id, Error: commandError{Code: code}})
}
