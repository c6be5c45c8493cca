/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package protocol

import "time"

// Payloads sent by the server.

type PlayerSnapshot struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	TeamID      string `json:"teamId"`
	Connected   bool   `json:"connected"`
}

type TeamSnapshot struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	HP           int              `json:"hp"`
	MaxHP        int              `json:"maxHp"`
	Score        int              `json:"score"`
	Alive        bool             `json:"alive"`
	Forfeited    bool             `json:"forfeited,omitempty"`
	EliminatedAt int              `json:"eliminatedAt,omitempty"`
	Roster       []PlayerSnapshot `json:"roster"`
}

// QuestionView is a question with its correct answer withheld.
type QuestionView struct {
	ID      string       `json:"id"`
	Prompt  string       `json:"prompt"`
	Choices []ChoiceView `json:"choices"`
}

type ChoiceView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// RoomState is the full snapshot of a room.
type RoomState struct {
	Code                string         `json:"code"`
	Phase               string         `json:"phase"`
	Teams               []TeamSnapshot `json:"teams"`
	QuestionNumber      int            `json:"questionNumber"`
	TotalQuestions      int            `json:"totalQuestions"`
	Question            *QuestionView  `json:"question,omitempty"`
	DeadlineAt          *time.Time     `json:"deadlineAt,omitempty"`
	Answered            []string       `json:"answered,omitempty"`
	HostConnected       bool           `json:"hostConnected"`
	EliminationConfetti bool           `json:"eliminationConfetti"`
	CreatedAt           time.Time      `json:"createdAt"`
	Winner              string         `json:"winner,omitempty"`
}

// Self tells a connection who it is within the room.
type Self struct {
	Role     string `json:"role"`
	PlayerID string `json:"playerId,omitempty"`
	TeamID   string `json:"teamId,omitempty"`
}

type RoomStateMessage struct {
	Room RoomState `json:"room"`
	You  Self      `json:"you"`
}

type QuestionStarted struct {
	QuestionNumber int          `json:"questionNumber"`
	TotalQuestions int          `json:"totalQuestions"`
	Question       QuestionView `json:"question"`
	TimeLimitMs    int          `json:"timeLimitMs"`
	DeadlineAt     time.Time    `json:"deadlineAt"`
}

type Hit struct {
	From   string `json:"from"`
	Amount int    `json:"amount"`
}

type TeamResult struct {
	TeamID      string `json:"teamId"`
	Answered    bool   `json:"answered"`
	Correct     bool   `json:"correct"`
	ElapsedMs   int    `json:"elapsedMs,omitempty"`
	Points      int    `json:"points"`
	Score       int    `json:"score"`
	HP          int    `json:"hp"`
	HPDelta     int    `json:"hpDelta"`
	DamageTaken int    `json:"damageTaken"`
	Healed      int    `json:"healed"`
	Buffed      bool   `json:"buffed,omitempty"`
	Hits        []Hit  `json:"hits,omitempty"`
}

type QuestionResolved struct {
	QuestionNumber  int          `json:"questionNumber"`
	QuestionID      string       `json:"questionId"`
	CorrectAnswerID string       `json:"correctAnswerId"`
	Results         []TeamResult `json:"results"`
}

type TeamEliminated struct {
	TeamID         string `json:"teamId"`
	Name           string `json:"name"`
	QuestionNumber int    `json:"questionNumber"`
	Confetti       bool   `json:"confetti"`
}

type Standing struct {
	Rank   int    `json:"rank"`
	TeamID string `json:"teamId"`
	Name   string `json:"name"`
	HP     int    `json:"hp"`
	Score  int    `json:"score"`
	Alive  bool   `json:"alive"`
}

type GameOver struct {
	Reason    string     `json:"reason"`
	Winner    string     `json:"winner,omitempty"`
	Standings []Standing `json:"standings"`
}

type RoomClosed struct {
	Reason string `json:"reason"`
}

type AnswerAck struct {
	QuestionID string `json:"questionId"`
	Accepted   bool   `json:"accepted"`
	Code       string `json:"code,omitempty"`
}

type TeamAnswered struct {
	TeamID   string `json:"teamId"`
	Answered int    `json:"answered"`
	Alive    int    `json:"alive"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
