/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package royale

import (
	"context"
	"time"

	"github.com/Seednode/quizroyale/protocol"
)

// JoinRequest asks for a roster slot. PlayerID, when set, is the token of an
// earlier join and reattaches to that slot.
type JoinRequest struct {
	DisplayName string
	TeamID      string
	PlayerID    string
}

// AttachRequest identifies a new connection. A host attach must carry the
// room's host key; anything else attaches as a viewer, bound to PlayerID
// when that player exists.
type AttachRequest struct {
	Role     string
	HostKey  string
	PlayerID string
}

// AnswerSubmission is one team's answer. At is when the answer was received;
// the zero value means now.
type AnswerSubmission struct {
	TeamID     string
	PlayerID   string
	QuestionID string
	ChoiceID   string
	At         time.Time
}

type result[T any] struct {
	val T
	err error
}

type none = struct{}

type joinCmd struct {
	req    JoinRequest
	connID string
	reply  chan result[Player]
}

type attachCmd struct {
	conn  Conn
	req   AttachRequest
	reply chan result[protocol.Self]
}

type detachCmd struct {
	connID string
}

type startCmd struct {
	connID string
	reply  chan result[none]
}

type answerCmd struct {
	sub    AnswerSubmission
	connID string
	reply  chan result[none]
}

type kickCmd struct {
	connID   string
	playerID string
	reply    chan result[none]
}

type hostCloseCmd struct {
	connID  string
	hostKey string
	reply   chan result[none]
}

type closeCmd struct {
	reason string
}

type graceExpired struct {
	playerID string
	gen      int
}

func newReply[T any]() chan result[T] {
	return make(chan result[T], 1)
}

// call posts cmd to the room and waits for its reply.
func call[T any](ctx context.Context, r *Room, cmd any, reply chan result[T]) (T, error) {
	var zero T

	if err := r.post(ctx, cmd); err != nil {
		return zero, err
	}

	select {
	case res := <-reply:
		return res.val, res.err
	case <-r.done:
		select {
		case res := <-reply:
			return res.val, res.err
		default:
			return zero, ErrRoomClosed
		}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (r *Room) post(ctx context.Context, cmd any) error {
	select {
	case r.inbox <- cmd:
		return nil
	case <-r.done:
		return ErrRoomClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}
