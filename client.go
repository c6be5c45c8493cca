/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"

	"github.com/Seednode/quizroyale/protocol"
	"github.com/Seednode/quizroyale/royale"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

var (
	errClientClosed = errors.New("client closed")
	errSendBlocked  = errors.New("client send buffer full")
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one websocket connection attached to a room. The room writes to
// it through Send, which never blocks.
type Client struct {
	id    string
	conn  *websocket.Conn
	room  *royale.Room
	log   logrus.FieldLogger
	token string

	send      chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, room *royale.Room, token string, log logrus.FieldLogger) *Client {
	id := uuid.NewString()

	return &Client{
		id:     id,
		conn:   conn,
		room:   room,
		token:  token,
		send:   make(chan []byte, sendBuffer),
		closed: make(chan struct{}),
		log: log.WithFields(logrus.Fields{
			"room": room.Code(),
			"conn": id,
		}),
	}
}

func (c *Client) ID() string {
	return c.id
}

func (c *Client) Send(msg []byte) error {
	select {
	case <-c.closed:
		return errClientClosed
	default:
	}

	select {
	case c.send <- msg:
		return nil
	default:
		return errSendBlocked
	}
}

// Close stops the write pump after it flushes whatever is already queued.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
	})
	return nil
}

func (c *Client) sendError(err error) {
	_ = c.Send(protocol.MustEncode(protocol.MsgError, protocol.Error{
		Code:    errorCode(err),
		Message: err.Error(),
	}))
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.room.Detach(c.id)
		_ = c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.WithError(err).Debug("websocket read failed")
			}
			return
		}

		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

		env, err := protocol.DecodeEnvelope(data)
		if err != nil {
			c.sendError(badRequest("%v", err))
			continue
		}

		c.dispatch(ctx, env)
	}
}

func (c *Client) dispatch(ctx context.Context, env protocol.Envelope) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	var err error

	switch env.Type {
	case protocol.MsgHostJoined:
		var p protocol.HostJoined
		if p, err = decode[protocol.HostJoined](env); err == nil {
			_, err = c.room.Attach(ctx, c, royale.AttachRequest{
				Role:    royale.RoleHost,
				HostKey: p.HostKey,
			})
		}

	case protocol.MsgJoin:
		var p protocol.Join
		if p, err = decode[protocol.Join](env); err == nil {
			var player royale.Player
			player, err = c.room.JoinConn(ctx, c.id, royale.JoinRequest{
				DisplayName: p.DisplayName,
				TeamID:      strings.ToUpper(p.TeamID),
				PlayerID:    c.token,
			})
			if err == nil {
				c.token = player.ID
			}
		}

	case protocol.MsgStartGame:
		err = c.room.Start(ctx, c.id)

	case protocol.MsgAnswerSubmit:
		var p protocol.AnswerSubmit
		if p, err = decode[protocol.AnswerSubmit](env); err == nil {
			// The room acknowledges answers itself, accepted or not.
			if aerr := c.room.Answer(ctx, c.id, p.QuestionID, p.ChoiceID); aerr != nil {
				c.log.WithField("code", errorCode(aerr)).Debug("answer rejected")
			}
		}

	case protocol.MsgKick:
		var p protocol.Kick
		if p, err = decode[protocol.Kick](env); err == nil {
			err = c.room.Kick(ctx, c.id, p.PlayerID)
		}

	case protocol.MsgCloseRoom:
		err = c.room.HostClose(ctx, c.id, "")

	case protocol.MsgPing:
		err = c.Send(protocol.MustEncode(protocol.MsgPong, nil))

	default:
		c.log.WithField("type", env.Type).Debug("ignoring unknown message type")
	}

	if err != nil && !errors.Is(err, errClientClosed) {
		c.sendError(err)
	}
}

func decode[T any](env protocol.Envelope) (T, error) {
	p, err := protocol.DecodePayload[T](env)
	if err != nil {
		return p, badRequest("%v", err)
	}
	return p, nil
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				_ = c.Close()
				return
			}

		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				_ = c.Close()
				return
			}

		case <-c.closed:
			c.flush()
			_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// flush writes whatever was queued before the client closed.
func (c *Client) flush() {
	for {
		select {
		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *Client) write(messageType int, data []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}

// serveRoomSocket upgrades to a websocket attached to room :code. A token
// query parameter from an earlier join reattaches that player.
func serveRoomSocket(a *app) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		room, err := a.rooms.Lookup(ps.ByName("code"))
		if err != nil {
			a.writeError(w, r, err)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			a.log.WithError(err).WithField("ip", realIP(r)).Debug("websocket upgrade failed")
			return
		}

		token := r.URL.Query().Get("token")
		c := newClient(conn, room, token, a.log)

		go c.writePump()

		role := royale.RoleViewer
		if token != "" {
			role = royale.RolePlayer
		}

		ctx, cancel := context.WithTimeout(r.Context(), commandTimeout)
		_, err = room.Attach(ctx, c, royale.AttachRequest{Role: role, PlayerID: token})
		cancel()
		if err != nil {
			c.sendError(err)
			_ = c.Close()
			return
		}

		c.log.WithField("ip", realIP(r)).Debug("websocket attached")

		c.readPump(r.Context())
	}
}
