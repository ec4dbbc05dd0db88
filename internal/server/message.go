package server

import (
	"ctchen222/Tic-Tac-Toe-Solo/internal/validator"
	"ctchen222/Tic-Tac-Toe-Solo/pkg/proto"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrInvalidMessage = errors.New("invalid message")

// decodeMessage parses and validates a client frame.
func decodeMessage(raw []byte) (proto.ClientToServerMessage, error) {
	var message proto.ClientToServerMessage
	if err := json.Unmarshal(raw, &message); err != nil {
		return message, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if err := validator.GetValidator().Struct(message); err != nil {
		return message, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return message, nil
}
