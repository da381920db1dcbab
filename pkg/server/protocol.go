package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
)

// Message types.
const (
	// Client to server.
	MsgClick   = "click"
	MsgInput   = "input"
	MsgSubmit  = "submit"
	MsgHover   = "hover"
	MsgConfirm = "confirm"
	MsgSettle  = "settle"

	// Server to client. MsgConfirm is used in both directions.
	MsgHello    = "hello"
	MsgHTML     = "html"
	MsgNavigate = "navigate"
	MsgError    = "error"
)

// ErrBadMessage is returned for client messages that cannot be handled.
var ErrBadMessage = errors.New("server: bad message")

// ClientMessage is a message from the browser.
type ClientMessage struct {
	Type     string `json:"type"`
	Target   string `json:"target,omitempty"`
	Value    string `json:"value,omitempty"`
	Enter    bool   `json:"enter,omitempty"`
	ID       string `json:"id,omitempty"`
	Accepted bool   `json:"accepted,omitempty"`
}

// DecodeClientMessage parses and checks a client message.
func DecodeClientMessage(data []byte) (ClientMessage, error) {
	var m ClientMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("%w: %v", ErrBadMessage, err)
	}
	switch m.Type {
	case MsgClick, MsgInput, MsgSubmit, MsgHover, MsgSettle:
		if m.Target == "" {
			return m, fmt.Errorf("%w: %s without target", ErrBadMessage, m.Type)
		}
	case MsgConfirm:
		if m.ID == "" {
			return m, fmt.Errorf("%w: confirm without id", ErrBadMessage)
		}
	default:
		return m, fmt.Errorf("%w: unknown type %q", ErrBadMessage, m.Type)
	}
	return m, nil
}

// ServerMessage is a message to the browser.
type ServerMessage struct {
	Type    string `json:"type"`
	Session string `json:"session,omitempty"`
	HTML    string `json:"html,omitempty"`

	// Confirm prompt.
	ID      string `json:"id,omitempty"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message,omitempty"`

	// Native submission.
	Method string     `json:"method,omitempty"`
	Action string     `json:"action,omitempty"`
	Values url.Values `json:"values,omitempty"`

	Error string `json:"error,omitempty"`

	// final marks the last message of a session.
	final bool
}
