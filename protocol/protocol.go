/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package protocol defines the JSON envelopes exchanged over a room's
// websocket channel.
package protocol

import "encoding/json"

// Inbound message types.
const (
	MsgHostJoined   = "HOST_JOINED"
	MsgJoin         = "JOIN"
	MsgStartGame    = "START_GAME"
	MsgAnswerSubmit = "ANSWER_SUBMIT"
	MsgKick         = "KICK"
	MsgCloseRoom    = "CLOSE_ROOM"
	MsgPing         = "PING"
)

// Outbound message types.
const (
	MsgRoomState        = "ROOM_STATE"
	MsgQuestionStarted  = "QUESTION_STARTED"
	MsgQuestionResolved = "QUESTION_RESOLVED"
	MsgTeamEliminated   = "TEAM_ELIMINATED"
	MsgGameOver         = "GAME_OVER"
	MsgRoomClosed       = "ROOM_CLOSED"
	MsgAnswerAck        = "ANSWER_ACK"
	MsgTeamAnswered     = "TEAM_ANSWERED"
	MsgError            = "ERROR"
	MsgPong             = "PONG"
)

// Envelope wraps every message on the wire.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}
