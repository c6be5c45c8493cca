/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package protocol

// Payloads sent by clients.

type HostJoined struct {
	HostKey string `json:"hostKey"`
}

type Join struct {
	DisplayName string `json:"displayName"`
	TeamID      string `json:"teamId,omitempty"`
}

type AnswerSubmit struct {
	QuestionID string `json:"questionId"`
	ChoiceID   string `json:"choiceId"`
}

type Kick struct {
	PlayerID string `json:"playerId"`
}
