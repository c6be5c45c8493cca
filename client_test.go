/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/quizroyale/protocol"
	"github.com/Seednode/quizroyale/royale"
)

const socketWait = 2 * time.Second

type socket struct {
	t    *testing.T
	conn *websocket.Conn
}

func (s *testServer) dial(t *testing.T, code, token string) *socket {
	t.Helper()

	u := "ws" + strings.TrimPrefix(s.URL, "http") + "/api/rooms/" + code + "/ws"
	if token != "" {
		u += "?token=" + token
	}

	conn, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { _ = conn.Close() })

	return &socket{t: t, conn: conn}
}

func (s *socket) send(typ string, payload any) {
	s.t.Helper()
	require.NoError(s.t, s.conn.WriteMessage(websocket.TextMessage, protocol.MustEncode(typ, payload)))
}

// next reads until a message of type typ arrives. Any ERROR seen on the way
// fails the test unless typ is ERROR.
func next[T any](s *socket, typ string) T {
	s.t.Helper()

	deadline := time.Now().Add(socketWait)
	for {
		require.NoError(s.t, s.conn.SetReadDeadline(deadline))

		_, data, err := s.conn.ReadMessage()
		require.NoError(s.t, err, "waiting for %s", typ)

		env, err := protocol.DecodeEnvelope(data)
		require.NoError(s.t, err)

		if env.Type == protocol.MsgError && typ != protocol.MsgError {
			require.FailNowf(s.t, "unexpected error", "waiting for %s: %s", typ, env.Payload)
		}
		if env.Type != typ {
			continue
		}

		v, err := protocol.DecodePayload[T](env)
		require.NoError(s.t, err)
		return v
	}
}

func duelConfig() royale.GameConfig {
	return royale.GameConfig{
		NumTeams:                2,
		MaxHPPerTeam:            100,
		TimePerQuestionMs:       60000,
		PlayersPerTeamMax:       2,
		BaseScore:               100,
		SpeedBonusMax:           50,
		AttackDamagePercent:     50,
		BuffHealPercent:         0,
		MaxDamagePerTurnPercent: 100,
	}
}

func TestSocketAttachIdentity(t *testing.T) {
	s := newTestServer(t)
	created := s.createRoom(t, map[string]any{"config": duelConfig(), "questions": testQuestions(2)})

	viewer := s.dial(t, created.Code, "")
	first := next[protocol.RoomStateMessage](viewer, protocol.MsgRoomState)
	assert.Equal(t, royale.RoleViewer, first.You.Role)
	assert.Equal(t, created.Code, first.Room.Code)

	viewer.send(protocol.MsgHostJoined, protocol.HostJoined{HostKey: "wrong"})
	e := next[protocol.Error](viewer, protocol.MsgError)
	assert.Equal(t, "NOT_HOST", e.Code)

	viewer.send(protocol.MsgHostJoined, protocol.HostJoined{HostKey: created.HostKey})
	state := next[protocol.RoomStateMessage](viewer, protocol.MsgRoomState)
	assert.Equal(t, royale.RoleHost, state.You.Role)
	assert.True(t, state.Room.HostConnected)
}

func TestSocketPingAndUnknownTypes(t *testing.T) {
	s := newTestServer(t)
	created := s.createRoom(t, nil)

	c := s.dial(t, created.Code, "")
	next[protocol.RoomStateMessage](c, protocol.MsgRoomState)

	c.send("DANCE", map[string]string{"style": "tango"})
	c.send(protocol.MsgPing, nil)
	next[struct{}](c, protocol.MsgPong)

	require.NoError(t, c.conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	e := next[protocol.Error](c, protocol.MsgError)
	assert.Equal(t, "BAD_REQUEST", e.Code)

	c.send(protocol.MsgJoin, "not an object")
	e = next[protocol.Error](c, protocol.MsgError)
	assert.Equal(t, "BAD_REQUEST", e.Code)
}

func TestSocketUnknownRoom(t *testing.T) {
	s := newTestServer(t)

	u := "ws" + strings.TrimPrefix(s.URL, "http") + "/api/rooms/NOPE00/ws"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSocketGameToLastTeamStanding(t *testing.T) {
	s := newTestServer(t)
	created := s.createRoom(t, map[string]any{"config": duelConfig(), "questions": testQuestions(3)})

	host := s.dial(t, created.Code, "")
	next[protocol.RoomStateMessage](host, protocol.MsgRoomState)
	host.send(protocol.MsgHostJoined, protocol.HostJoined{HostKey: created.HostKey})
	next[protocol.RoomStateMessage](host, protocol.MsgRoomState)

	ann := s.dial(t, created.Code, "")
	next[protocol.RoomStateMessage](ann, protocol.MsgRoomState)
	ann.send(protocol.MsgJoin, protocol.Join{DisplayName: "ann", TeamID: "a"})

	var annState protocol.RoomStateMessage
	for annState.You.PlayerID == "" {
		annState = next[protocol.RoomStateMessage](ann, protocol.MsgRoomState)
	}
	assert.Equal(t, "A", annState.You.TeamID)

	bob := s.dial(t, created.Code, "")
	next[protocol.RoomStateMessage](bob, protocol.MsgRoomState)
	bob.send(protocol.MsgJoin, protocol.Join{DisplayName: "bob", TeamID: "B"})

	var bobState protocol.RoomStateMessage
	for bobState.You.PlayerID == "" {
		bobState = next[protocol.RoomStateMessage](bob, protocol.MsgRoomState)
	}
	assert.Equal(t, "B", bobState.You.TeamID)

	// Players cannot start the game.
	ann.send(protocol.MsgStartGame, nil)
	e := next[protocol.Error](ann, protocol.MsgError)
	assert.Equal(t, "NOT_HOST", e.Code)

	host.send(protocol.MsgStartGame, nil)

	for round := 1; round <= 2; round++ {
		started := next[protocol.QuestionStarted](ann, protocol.MsgQuestionStarted)
		assert.Equal(t, round, started.QuestionNumber)
		next[protocol.QuestionStarted](bob, protocol.MsgQuestionStarted)

		ann.send(protocol.MsgAnswerSubmit, protocol.AnswerSubmit{QuestionID: started.Question.ID, ChoiceID: "a"})
		ack := next[protocol.AnswerAck](ann, protocol.MsgAnswerAck)
		assert.True(t, ack.Accepted)

		// A second answer from the same team changes nothing.
		ann.send(protocol.MsgAnswerSubmit, protocol.AnswerSubmit{QuestionID: started.Question.ID, ChoiceID: "b"})
		ack = next[protocol.AnswerAck](ann, protocol.MsgAnswerAck)
		assert.False(t, ack.Accepted)
		assert.Equal(t, "ALREADY_ANSWERED", ack.Code)

		bob.send(protocol.MsgAnswerSubmit, protocol.AnswerSubmit{QuestionID: started.Question.ID, ChoiceID: "b"})
		next[protocol.AnswerAck](bob, protocol.MsgAnswerAck)

		resolved := next[protocol.QuestionResolved](host, protocol.MsgQuestionResolved)
		assert.Equal(t, "a", resolved.CorrectAnswerID)
		require.Len(t, resolved.Results, 2)

		for _, res := range resolved.Results {
			switch res.TeamID {
			case "A":
				assert.True(t, res.Correct)
				assert.Equal(t, 100, res.HP)
			case "B":
				assert.False(t, res.Correct)
				assert.Equal(t, 100-50*round, res.HP)
			}
		}
	}

	eliminated := next[protocol.TeamEliminated](host, protocol.MsgTeamEliminated)
	assert.Equal(t, "B", eliminated.TeamID)
	assert.Equal(t, 2, eliminated.QuestionNumber)

	over := next[protocol.GameOver](bob, protocol.MsgGameOver)
	assert.Equal(t, royale.ReasonLastTeamStanding, over.Reason)
	assert.Equal(t, "A", over.Winner)
	require.Len(t, over.Standings, 2)
	assert.Equal(t, "A", over.Standings[0].TeamID)
	assert.Equal(t, 1, over.Standings[0].Rank)

	room, err := s.app.rooms.Lookup(created.Code)
	require.NoError(t, err)
	assert.Equal(t, string(royale.PhaseGameOver), room.Snapshot().Phase)
}

func TestSocketReconnectWithToken(t *testing.T) {
	s := newTestServer(t)
	created := s.createRoom(t, map[string]any{"config": duelConfig(), "questions": testQuestions(2)})

	first := s.dial(t, created.Code, "")
	next[protocol.RoomStateMessage](first, protocol.MsgRoomState)
	first.send(protocol.MsgJoin, protocol.Join{DisplayName: "ann"})

	var state protocol.RoomStateMessage
	for state.You.PlayerID == "" {
		state = next[protocol.RoomStateMessage](first, protocol.MsgRoomState)
	}
	token := state.You.PlayerID

	require.NoError(t, first.conn.Close())

	room, err := s.app.rooms.Lookup(created.Code)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		for _, team := range room.Snapshot().Teams {
			for _, p := range team.Roster {
				if p.ID == token {
					return !p.Connected
				}
			}
		}
		return false
	}, socketWait, 10*time.Millisecond)

	second := s.dial(t, created.Code, token)
	back := next[protocol.RoomStateMessage](second, protocol.MsgRoomState)
	assert.Equal(t, token, back.You.PlayerID)
	assert.Equal(t, state.You.TeamID, back.You.TeamID)
	assert.Equal(t, royale.RolePlayer, back.You.Role)
}

func TestSocketRoomClosedByHost(t *testing.T) {
	s := newTestServer(t)
	created := s.createRoom(t, nil)

	host := s.dial(t, created.Code, "")
	next[protocol.RoomStateMessage](host, protocol.MsgRoomState)
	host.send(protocol.MsgHostJoined, protocol.HostJoined{HostKey: created.HostKey})
	next[protocol.RoomStateMessage](host, protocol.MsgRoomState)

	viewer := s.dial(t, created.Code, "")
	next[protocol.RoomStateMessage](viewer, protocol.MsgRoomState)

	host.send(protocol.MsgCloseRoom, nil)

	closed := next[protocol.RoomClosed](viewer, protocol.MsgRoomClosed)
	assert.Equal(t, royale.ReasonHostClosed, closed.Reason)

	require.Eventually(t, func() bool {
		_, err := s.app.rooms.Lookup(created.Code)
		return err != nil
	}, socketWait, 10*time.Millisecond)
}
