/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package royale

import "errors"

// Client-facing conditions. None of them leave a room in a modified state.
var (
	ErrInvalidConfig    = errors.New("invalid room configuration")
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomClosed       = errors.New("room is closed")
	ErrTeamFull         = errors.New("team is full")
	ErrNotHost          = errors.New("only the host may do that")
	ErrAlreadyAnswered  = errors.New("team already answered this question")
	ErrTooLate          = errors.New("answer arrived after the deadline")
	ErrCapacityExceeded = errors.New("room capacity exceeded")
	ErrEmptyRoster      = errors.New("at least two teams need players")
	ErrGameInProgress   = errors.New("game already in progress")
	ErrInvalidTeam      = errors.New("no such team")
	ErrInvalidAnswer    = errors.New("no such choice")
	ErrNotPlayer        = errors.New("connection has not joined a team")
	ErrInvalidPhase     = errors.New("not allowed in the current phase")
	ErrNameTaken        = errors.New("display name already in use")
	ErrInvalidName      = errors.New("display name must be 1 to 32 characters")
)

var codes = []struct {
	err  error
	code string
}{
	{ErrInvalidConfig, "INVALID_CONFIG"},
	{ErrRoomNotFound, "ROOM_NOT_FOUND"},
	{ErrRoomClosed, "ROOM_CLOSED"},
	{ErrTeamFull, "TEAM_FULL"},
	{ErrNotHost, "NOT_HOST"},
	{ErrAlreadyAnswered, "ALREADY_ANSWERED"},
	{ErrTooLate, "TOO_LATE"},
	{ErrCapacityExceeded, "CAPACITY_EXCEEDED"},
	{ErrEmptyRoster, "EMPTY_ROSTER"},
	{ErrGameInProgress, "GAME_IN_PROGRESS"},
	{ErrInvalidTeam, "INVALID_TEAM"},
	{ErrInvalidAnswer, "INVALID_ANSWER"},
	{ErrNotPlayer, "NOT_PLAYER"},
	{ErrInvalidPhase, "INVALID_PHASE"},
	{ErrNameTaken, "NAME_TAKEN"},
	{ErrInvalidName, "INVALID_NAME"},
}

// Code returns the wire code for err, or "INTERNAL" for anything outside the
// taxonomy.
func Code(err error) string {
	if err == nil {
		return ""
	}

	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}

	return "INTERNAL"
}
