/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package royale

import (
	"github.com/sirupsen/logrus"

	"github.com/Seednode/quizroyale/protocol"
)

const (
	RoleHost   = "host"
	RolePlayer = "player"
	RoleViewer = "viewer"
)

// Conn is one live transport connection. Send must not block; a full or
// broken connection returns an error and is dropped by the room.
type Conn interface {
	ID() string
	Send([]byte) error
	Close() error
}

type attachment struct {
	conn     Conn
	role     string
	playerID string
}

// connections maps live connections to their identity within one room.
// Only the room goroutine uses it.
type connections struct {
	byID map[string]*attachment
}

func newConnections() *connections {
	return &connections{byID: make(map[string]*attachment)}
}

func (c *connections) attach(conn Conn, role, playerID string) *attachment {
	a := &attachment{conn: conn, role: role, playerID: playerID}
	c.byID[conn.ID()] = a
	return a
}

func (c *connections) get(id string) (*attachment, bool) {
	a, ok := c.byID[id]
	return a, ok
}

func (c *connections) detach(id string) (*attachment, bool) {
	a, ok := c.byID[id]
	if ok {
		delete(c.byID, id)
	}
	return a, ok
}

// forPlayer returns every connection bound to playerID.
func (c *connections) forPlayer(playerID string) []*attachment {
	var out []*attachment
	for _, a := range c.byID {
		if a.playerID == playerID {
			out = append(out, a)
		}
	}
	return out
}

func (c *connections) hostConnected() bool {
	for _, a := range c.byID {
		if a.role == RoleHost {
			return true
		}
	}
	return false
}

func (c *connections) len() int {
	return len(c.byID)
}

func (a *attachment) self(l *TeamLedger) protocol.Self {
	s := protocol.Self{Role: a.role, PlayerID: a.playerID}
	if p, ok := l.Player(a.playerID); ok {
		s.TeamID = p.TeamID
	}
	return s
}

// fanOut delivers msg to every attachment and returns the ids whose send
// failed. One failure never stops delivery to the rest.
func (c *connections) fanOut(msg []byte) []string {
	var failed []string
	for id, a := range c.byID {
		if err := a.conn.Send(msg); err != nil {
			failed = append(failed, id)
		}
	}
	return failed
}

// broadcast encodes one event and sends it to every connection.
func (r *Room) broadcast(t string, payload any) {
	msg, err := r.encode(t, payload)
	if err != nil {
		r.log.WithError(err).WithField("type", t).Error("encoding broadcast")
		return
	}

	r.publish()
	r.drop(r.conns.fanOut(msg))
}

// broadcastState sends ROOM_STATE to each connection with its own identity.
func (r *Room) broadcastState() {
	state := r.buildState()
	r.snapshot.Store(&state)

	var failed []string
	for id, a := range r.conns.byID {
		msg, err := r.encode(protocol.MsgRoomState, protocol.RoomStateMessage{
			Room: state,
			You:  a.self(r.ledger),
		})
		if err != nil {
			r.log.WithError(err).WithField("conn", id).Error("encoding room state")
			continue
		}

		if err := a.conn.Send(msg); err != nil {
			failed = append(failed, id)
		}
	}

	r.drop(failed)
}

func (r *Room) sendTo(a *attachment, t string, payload any) {
	msg, err := r.encode(t, payload)
	if err != nil {
		r.log.WithError(err).WithField("type", t).Error("encoding message")
		return
	}

	if err := a.conn.Send(msg); err != nil {
		r.drop([]string{a.conn.ID()})
	}
}

// drop detaches connections whose send failed. Their players are released
// but nobody is told until the next state change.
func (r *Room) drop(ids []string) {
	for _, id := range ids {
		a, ok := r.conns.detach(id)
		if !ok {
			continue
		}

		r.log.WithFields(logrus.Fields{
			"conn":   id,
			"player": a.playerID,
		}).Warn("send failed, dropping connection")

		r.metrics.BroadcastFailed()
		r.metrics.ConnectionDetached()

		_ = a.conn.Close()

		if a.playerID != "" {
			r.release(a.playerID)
		}
	}
}
