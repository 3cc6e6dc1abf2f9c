package realtime

import (
	"encoding/json"
	"fmt"

	"downtime-tracker/domain"
)

// Inbound is the closed set of client -> server messages. Parsing either
// yields one of these variants or an explicit error, never a partially
// typed value.
type Inbound interface {
	inbound()
}

type JoinMachine struct {
	MachineID int
}

type LeaveMachine struct {
	MachineID int
}

func (JoinMachine) inbound()  {}
func (LeaveMachine) inbound() {}

// ErrMalformedMessage marks a frame that is not parseable at all.
var ErrMalformedMessage = fmt.Errorf("invalid message format")

// UnknownTypeError marks a well-formed frame whose type discriminator is not
// part of the protocol. The offending type is kept for the error reply.
type UnknownTypeError struct {
	Type string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown message type: %s", e.Type)
}

type inboundEnvelope struct {
	Type      string `json:"type"`
	MachineID int    `json:"machineId"`
}

// ParseInbound decodes one client frame into its tagged variant.
func ParseInbound(data []byte) (Inbound, error) {
	var envelope inboundEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, ErrMalformedMessage
	}

	switch envelope.Type {
	case "join_machine":
		return JoinMachine{MachineID: envelope.MachineID}, nil
	case "leave_machine":
		return LeaveMachine{MachineID: envelope.MachineID}, nil
	default:
		return nil, &UnknownTypeError{Type: envelope.Type}
	}
}

// Server -> client control frames. These shapes only hold primitives, so
// marshalling cannot fail.

func connectedFrame(p domain.Principal) []byte {
	frame, _ := json.Marshal(struct {
		Type     string      `json:"type"`
		UserID   int         `json:"userId"`
		UserRole domain.Role `json:"userRole"`
		Message  string      `json:"message"`
	}{"connected", p.UserID, p.Role, "WebSocket connection established"})
	return frame
}

func joinedMachineFrame(machineID int) []byte {
	frame, _ := json.Marshal(struct {
		Type      string `json:"type"`
		MachineID int    `json:"machineId"`
	}{"joined_machine", machineID})
	return frame
}

func errorFrame(message string) []byte {
	frame, _ := json.Marshal(struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}{"error", message})
	return frame
}
