/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package royale

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Seednode/quizroyale/logging"
	"github.com/Seednode/quizroyale/metrics"
	"github.com/Seednode/quizroyale/protocol"
)

type Phase string

const (
	PhaseLobby    Phase = "LOBBY"
	PhaseActive   Phase = "QUESTION_ACTIVE"
	PhaseResolved Phase = "QUESTION_RESOLVED"
	PhaseGameOver Phase = "GAME_OVER"
)

// Reasons reported in GAME_OVER and ROOM_CLOSED.
const (
	ReasonLastTeamStanding   = "last_team_standing"
	ReasonAllEliminated      = "all_eliminated"
	ReasonQuestionsExhausted = "questions_exhausted"

	ReasonHostClosed = "closed_by_host"
	ReasonIdle       = "idle_timeout"
	ReasonShutdown   = "server_shutdown"
	ReasonKicked     = "kicked"
)

const maxDisplayName = 32

type Options struct {
	Logger  logrus.FieldLogger
	Metrics *metrics.Metrics
	Now     func() time.Time

	// RevealDelay is how long a resolved question stays on screen before
	// the next one starts.
	RevealDelay time.Duration

	// PlayerGrace is how long a disconnected lobby player keeps their
	// slot. Zero keeps it forever.
	PlayerGrace time.Duration

	// OnClose is invoked when the host ends the room, so the owner can
	// remove and stop it.
	OnClose func(code, reason string)
}

type submission struct {
	playerID  string
	choiceID  string
	elapsedMs int
}

// Room is one game. All state below the inbox is owned by the goroutine
// running Run; everything else talks to it through commands.
type Room struct {
	code      string
	hostKey   string
	cfg       GameConfig
	createdAt time.Time

	log     logrus.FieldLogger
	metrics *metrics.Metrics
	now     func() time.Time
	reveal  time.Duration
	grace   time.Duration
	onClose func(code, reason string)
	encode  func(t string, payload any) ([]byte, error)

	inbox chan any
	done  chan struct{}

	phase       Phase
	ledger      *TeamLedger
	cursor      *QuestionCursor
	conns       *connections
	answers     map[string]submission
	answerOrder []string
	deadline    *time.Timer
	deadlineAt  time.Time
	revealTimer *time.Timer
	graceTimers map[string]*time.Timer
	graceGen    map[string]int
	winner      string
	closed      bool

	snapshot     atomic.Pointer[protocol.RoomState]
	lastActivity atomic.Int64
}

// NewRoom validates cfg and bank and returns a room in the lobby. The caller
// starts it with Run.
func NewRoom(code, hostKey string, cfg GameConfig, bank []Question, opts Options) (*Room, error) {
	cfg, err := cfg.Normalize()
	if err != nil {
		return nil, err
	}

	if err := ValidateBank(bank); err != nil {
		return nil, err
	}

	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	r := &Room{
		code:        code,
		hostKey:     hostKey,
		cfg:         cfg,
		createdAt:   opts.Now(),
		log:         opts.Logger.WithField("room", code),
		metrics:     opts.Metrics,
		now:         opts.Now,
		reveal:      opts.RevealDelay,
		grace:       opts.PlayerGrace,
		onClose:     opts.OnClose,
		encode:      protocol.Encode,
		inbox:       make(chan any, 256),
		done:        make(chan struct{}),
		phase:       PhaseLobby,
		ledger:      NewTeamLedger(cfg),
		cursor:      NewQuestionCursor(bank),
		conns:       newConnections(),
		answers:     make(map[string]submission),
		graceTimers: make(map[string]*time.Timer),
		graceGen:    make(map[string]int),
	}

	r.touch()
	r.publish()

	return r, nil
}

func (r *Room) Code() string {
	return r.code
}

func (r *Room) Config() GameConfig {
	return r.cfg
}

func (r *Room) CreatedAt() time.Time {
	return r.createdAt
}

// Snapshot returns the last published state. Callers must treat its slices
// as read-only.
func (r *Room) Snapshot() protocol.RoomState {
	return *r.snapshot.Load()
}

func (r *Room) LastActivity() time.Time {
	return time.Unix(0, r.lastActivity.Load())
}

// Done is closed once the room has shut down.
func (r *Room) Done() <-chan struct{} {
	return r.done
}

// CheckHostKey reports whether key is this room's host key.
func (r *Room) CheckHostKey(key string) bool {
	return subtle.ConstantTimeCompare([]byte(key), []byte(r.hostKey)) == 1
}

func (r *Room) Join(ctx context.Context, req JoinRequest) (Player, error) {
	reply := newReply[Player]()
	return call(ctx, r, joinCmd{req: req, reply: reply}, reply)
}

// JoinConn joins and binds the player to an attached connection.
func (r *Room) JoinConn(ctx context.Context, connID string, req JoinRequest) (Player, error) {
	reply := newReply[Player]()
	return call(ctx, r, joinCmd{req: req, connID: connID, reply: reply}, reply)
}

func (r *Room) Attach(ctx context.Context, conn Conn, req AttachRequest) (protocol.Self, error) {
	reply := newReply[protocol.Self]()
	return call(ctx, r, attachCmd{conn: conn, req: req, reply: reply}, reply)
}

// Detach never blocks past the room's shutdown.
func (r *Room) Detach(connID string) {
	_ = r.post(context.Background(), detachCmd{connID: connID})
}

func (r *Room) Start(ctx context.Context, connID string) error {
	reply := newReply[none]()
	_, err := call(ctx, r, startCmd{connID: connID, reply: reply}, reply)
	return err
}

// Answer submits on behalf of the team bound to connID. The connection also
// receives an ANSWER_ACK.
func (r *Room) Answer(ctx context.Context, connID, questionID, choiceID string) error {
	reply := newReply[none]()
	cmd := answerCmd{
		connID: connID,
		sub: AnswerSubmission{
			QuestionID: questionID,
			ChoiceID:   choiceID,
			At:         r.now(),
		},
		reply: reply,
	}
	_, err := call(ctx, r, cmd, reply)
	return err
}

func (r *Room) Submit(ctx context.Context, sub AnswerSubmission) error {
	reply := newReply[none]()
	_, err := call(ctx, r, answerCmd{sub: sub, reply: reply}, reply)
	return err
}

func (r *Room) Kick(ctx context.Context, connID, playerID string) error {
	reply := newReply[none]()
	_, err := call(ctx, r, kickCmd{connID: connID, playerID: playerID, reply: reply}, reply)
	return err
}

// HostClose ends the room when connID is a host connection or hostKey
// matches.
func (r *Room) HostClose(ctx context.Context, connID, hostKey string) error {
	reply := newReply[none]()
	_, err := call(ctx, r, hostCloseCmd{connID: connID, hostKey: hostKey, reply: reply}, reply)
	return err
}

// Close sends ROOM_CLOSED to every connection and stops the room. It
// returns once the room goroutine has exited.
func (r *Room) Close(reason string) {
	if err := r.post(context.Background(), closeCmd{reason: reason}); err != nil {
		return
	}
	<-r.done
}

func (r *Room) Run() {
	defer r.stopTimers()

	for !r.closed {
		select {
		case cmd := <-r.inbox:
			r.handle(cmd)
		case <-timerC(r.deadline):
			r.deadline = nil
			r.resolve("deadline")
		case <-timerC(r.revealTimer):
			r.revealTimer = nil
			r.nextQuestion()
		}

		r.publish()
	}
}

func timerC(t *time.Timer) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.C
}

func (r *Room) handle(cmd any) {
	switch c := cmd.(type) {
	case joinCmd:
		p, err := r.join(c.req, c.connID)
		r.publish()
		c.reply <- result[Player]{val: p, err: err}

	case attachCmd:
		self, err := r.attach(c.conn, c.req)
		r.publish()
		c.reply <- result[protocol.Self]{val: self, err: err}

	case detachCmd:
		r.detach(c.connID)

	case startCmd:
		err := r.start(c.connID)
		r.publish()
		c.reply <- result[none]{err: err}

	case answerCmd:
		r.answer(c)

	case kickCmd:
		err := r.kick(c.connID, c.playerID)
		r.publish()
		c.reply <- result[none]{err: err}

	case hostCloseCmd:
		err := r.hostClose(c.connID, c.hostKey)
		r.publish()
		c.reply <- result[none]{err: err}

	case closeCmd:
		r.shutdown(c.reason)

	case graceExpired:
		r.expireGrace(c)

	default:
		r.log.WithField("command", fmt.Sprintf("%T", cmd)).Warn("dropping unknown room command")
	}
}

func (r *Room) join(req JoinRequest, connID string) (Player, error) {
	if r.phase == PhaseGameOver {
		return Player{}, fmt.Errorf("%w: game is over", ErrRoomClosed)
	}

	if connID != "" {
		if a, ok := r.conns.get(connID); ok && a.role == RoleHost {
			return Player{}, fmt.Errorf("%w: host connections cannot join a team", ErrNotPlayer)
		}
	}

	if req.PlayerID != "" {
		if p, ok := r.ledger.Player(req.PlayerID); ok {
			return r.rejoin(p, connID), nil
		}
	}

	name := strings.TrimSpace(req.DisplayName)
	if name == "" || utf8.RuneCountInString(name) > maxDisplayName {
		return Player{}, ErrInvalidName
	}

	if req.TeamID != "" {
		if _, ok := r.ledger.Team(req.TeamID); !ok {
			return Player{}, fmt.Errorf("%w: %q", ErrInvalidTeam, req.TeamID)
		}

		if p, ok := r.ledger.PlayerByName(req.TeamID, name); ok {
			if p.Connected {
				return Player{}, fmt.Errorf("%w: %s", ErrNameTaken, name)
			}
			return r.rejoin(p, connID), nil
		}
	}

	if r.phase != PhaseLobby {
		return Player{}, ErrGameInProgress
	}

	if r.ledger.NameInUse(name) {
		return Player{}, fmt.Errorf("%w: %s", ErrNameTaken, name)
	}

	teamID := req.TeamID
	if teamID == "" {
		t, ok := r.ledger.OpenTeam()
		if !ok {
			return Player{}, fmt.Errorf("%w: every team is full", ErrTeamFull)
		}
		teamID = t.ID
	}

	p := &Player{ID: uuid.NewString(), DisplayName: name}
	if err := r.ledger.AddPlayer(teamID, p); err != nil {
		return Player{}, err
	}

	r.log.WithFields(logrus.Fields{
		"player": p.ID,
		"team":   p.TeamID,
		"name":   p.DisplayName,
	}).Info("player joined")

	if !r.bind(connID, p) {
		r.scheduleRemoval(p.ID)
	}

	r.touch()
	r.broadcastState()

	return *p, nil
}

func (r *Room) rejoin(p *Player, connID string) Player {
	if r.bind(connID, p) {
		r.log.WithFields(logrus.Fields{
			"player": p.ID,
			"team":   p.TeamID,
		}).Info("player reattached")

		r.touch()
		r.broadcastState()
	}

	return *p
}

// bind ties an attached connection to p and reports whether one was found.
func (r *Room) bind(connID string, p *Player) bool {
	a, ok := r.conns.get(connID)
	if !ok {
		return false
	}

	if a.playerID != "" && a.playerID != p.ID {
		previous := a.playerID
		a.playerID = ""
		r.release(previous)
	}

	a.role = RolePlayer
	a.playerID = p.ID
	p.Connected = true
	r.cancelRemoval(p.ID)

	return true
}

// release marks a player disconnected once their last connection is gone.
func (r *Room) release(playerID string) {
	if len(r.conns.forPlayer(playerID)) > 0 {
		return
	}

	p, ok := r.ledger.Player(playerID)
	if !ok {
		return
	}

	p.Connected = false

	if r.phase == PhaseLobby {
		r.scheduleRemoval(playerID)
	}
}

func (r *Room) attach(conn Conn, req AttachRequest) (protocol.Self, error) {
	if req.Role == RoleHost && !r.CheckHostKey(req.HostKey) {
		return protocol.Self{}, ErrNotHost
	}

	a, existing := r.conns.get(conn.ID())
	if !existing {
		a = r.conns.attach(conn, RoleViewer, "")
		r.metrics.ConnectionAttached()
	}

	switch req.Role {
	case RoleHost:
		if a.playerID != "" {
			previous := a.playerID
			a.playerID = ""
			r.release(previous)
		}
		a.role = RoleHost

		r.log.WithField("conn", conn.ID()).Info("host attached")

	default:
		if p, ok := r.ledger.Player(req.PlayerID); ok && r.phase != PhaseGameOver {
			r.bind(conn.ID(), p)
		}

		r.log.WithFields(logrus.Fields{
			"conn":   conn.ID(),
			"player": a.playerID,
		}).Debug("connection attached")
	}

	r.touch()
	r.broadcastState()

	return a.self(r.ledger), nil
}

func (r *Room) detach(connID string) {
	a, ok := r.conns.detach(connID)
	if !ok {
		return
	}

	r.metrics.ConnectionDetached()

	r.log.WithFields(logrus.Fields{
		"conn":   connID,
		"role":   a.role,
		"player": a.playerID,
	}).Debug("connection detached")

	if a.playerID != "" {
		r.release(a.playerID)
	}

	r.broadcastState()
}

func (r *Room) scheduleRemoval(playerID string) {
	if r.grace <= 0 {
		return
	}

	r.cancelRemoval(playerID)

	gen := r.graceGen[playerID]
	done := r.done

	r.graceTimers[playerID] = time.AfterFunc(r.grace, func() {
		select {
		case r.inbox <- graceExpired{playerID: playerID, gen: gen}:
		case <-done:
		}
	})
}

func (r *Room) cancelRemoval(playerID string) {
	if t, ok := r.graceTimers[playerID]; ok {
		t.Stop()
		delete(r.graceTimers, playerID)
	}
	r.graceGen[playerID]++
}

func (r *Room) expireGrace(c graceExpired) {
	if c.gen != r.graceGen[c.playerID] {
		return
	}
	delete(r.graceTimers, c.playerID)

	if r.phase != PhaseLobby {
		return
	}

	p, ok := r.ledger.Player(c.playerID)
	if !ok || p.Connected {
		return
	}

	r.ledger.RemovePlayer(p.ID)

	r.log.WithFields(logrus.Fields{
		"player": p.ID,
		"team":   p.TeamID,
	}).Info("removed disconnected player")

	r.broadcastState()
}

func (r *Room) isHost(connID string) bool {
	a, ok := r.conns.get(connID)
	return ok && a.role == RoleHost
}

func (r *Room) start(connID string) error {
	if !r.isHost(connID) {
		return ErrNotHost
	}

	if r.phase != PhaseLobby {
		return ErrGameInProgress
	}

	staffed := 0
	for _, t := range r.ledger.Teams() {
		if len(t.Roster) > 0 {
			staffed++
		}
	}
	if staffed < 2 {
		return fmt.Errorf("%w: %d team(s) have players", ErrEmptyRoster, staffed)
	}

	r.ledger.ForfeitEmpty()
	r.cancelAllRemovals()

	r.log.WithFields(logrus.Fields{
		"teams":     staffed,
		"questions": r.cursor.Total(),
	}).Info("game started")

	r.touch()
	r.nextQuestion()

	return nil
}

func (r *Room) nextQuestion() {
	q, ok := r.cursor.Advance(r.now())
	if !ok {
		r.finish(ReasonQuestionsExhausted)
		return
	}

	limit := r.cfg.TimeLimit()

	r.phase = PhaseActive
	r.answers = make(map[string]submission)
	r.answerOrder = nil
	r.deadlineAt = r.cursor.StartedAt().Add(limit)
	r.deadline = time.NewTimer(limit)

	r.log.WithFields(logrus.Fields{
		"question": q.ID,
		"number":   r.cursor.Number(),
	}).Debug("question started")

	r.broadcast(protocol.MsgQuestionStarted, protocol.QuestionStarted{
		QuestionNumber: r.cursor.Number(),
		TotalQuestions: r.cursor.Total(),
		Question:       q.View(),
		TimeLimitMs:    r.cfg.TimePerQuestionMs,
		DeadlineAt:     r.deadlineAt,
	})
}

func (r *Room) answer(c answerCmd) {
	sub := c.sub

	var from *attachment
	if c.connID != "" {
		a, ok := r.conns.get(c.connID)
		if !ok {
			r.rejectAnswer(c, nil, ErrNotPlayer)
			return
		}
		p, ok := r.ledger.Player(a.playerID)
		if !ok {
			r.rejectAnswer(c, a, ErrNotPlayer)
			return
		}

		from = a
		sub.TeamID = p.TeamID
		sub.PlayerID = p.ID
	}

	complete, err := r.record(sub)
	if err != nil {
		r.rejectAnswer(c, from, err)
		return
	}

	r.metrics.AnswerRecorded("ACCEPTED")

	if from != nil {
		r.sendTo(from, protocol.MsgAnswerAck, protocol.AnswerAck{
			QuestionID: sub.QuestionID,
			Accepted:   true,
		})
	}

	r.publish()
	c.reply <- result[none]{}

	if complete {
		r.resolve("all_answered")
	}
}

func (r *Room) rejectAnswer(c answerCmd, from *attachment, err error) {
	code := Code(err)
	r.metrics.AnswerRecorded(code)

	if from != nil {
		r.sendTo(from, protocol.MsgAnswerAck, protocol.AnswerAck{
			QuestionID: c.sub.QuestionID,
			Code:       code,
		})
	}

	r.publish()
	c.reply <- result[none]{err: err}
}

// record validates and stores a submission, and reports whether every
// living team has now answered.
func (r *Room) record(sub AnswerSubmission) (bool, error) {
	switch r.phase {
	case PhaseActive:
	case PhaseLobby:
		return false, fmt.Errorf("%w: game has not started", ErrInvalidPhase)
	default:
		return false, ErrTooLate
	}

	q, _ := r.cursor.Current()
	if sub.QuestionID != "" && sub.QuestionID != q.ID {
		return false, fmt.Errorf("%w: question %s is not active", ErrTooLate, sub.QuestionID)
	}

	t, ok := r.ledger.Team(sub.TeamID)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrInvalidTeam, sub.TeamID)
	}
	if !t.Alive() {
		return false, fmt.Errorf("%w: %s is eliminated", ErrInvalidTeam, t.Name)
	}

	at := sub.At
	if at.IsZero() {
		at = r.now()
	}

	elapsed := at.Sub(r.cursor.StartedAt())
	if elapsed > r.cfg.TimeLimit() {
		return false, ErrTooLate
	}

	if _, answered := r.answers[t.ID]; answered {
		return false, ErrAlreadyAnswered
	}

	if !q.HasChoice(sub.ChoiceID) {
		return false, fmt.Errorf("%w: %q", ErrInvalidAnswer, sub.ChoiceID)
	}

	r.answers[t.ID] = submission{
		playerID:  sub.PlayerID,
		choiceID:  sub.ChoiceID,
		elapsedMs: max(int(elapsed.Milliseconds()), 0),
	}
	r.answerOrder = append(r.answerOrder, t.ID)
	r.touch()

	alive := len(r.ledger.Alive())

	r.broadcast(protocol.MsgTeamAnswered, protocol.TeamAnswered{
		TeamID:   t.ID,
		Answered: len(r.answers),
		Alive:    alive,
	})

	return len(r.answers) >= alive, nil
}

// resolve scores and settles the active question. Whichever of the deadline
// and the last answer arrives first wins; the other finds the phase changed.
func (r *Room) resolve(trigger string) {
	if r.phase != PhaseActive {
		return
	}

	if r.deadline != nil {
		r.deadline.Stop()
		r.deadline = nil
	}

	q, _ := r.cursor.Current()
	number := r.cursor.Number()

	alive := r.ledger.Alive()
	outcomes := make([]Outcome, 0, len(alive))

	for _, t := range alive {
		o := Outcome{TeamID: t.ID}

		if s, ok := r.answers[t.ID]; ok {
			o.Answered = true
			o.Correct = q.IsCorrect(s.choiceID)
			o.ElapsedMs = s.elapsedMs
			o.Points = Score(o.Correct, s.elapsedMs, r.cfg)
		}

		outcomes = append(outcomes, o)
	}

	outcomes = SelectBuff(r.cfg, outcomes, number)
	deltas := Resolve(outcomes, r.ledger.HP(), r.cfg)

	for _, o := range outcomes {
		r.ledger.AddScore(o.TeamID, o.Points)
	}

	eliminated := r.ledger.Apply(deltas, number)

	r.phase = PhaseResolved

	byTeam := make(map[string]Delta, len(deltas))
	for _, d := range deltas {
		byTeam[d.TeamID] = d
	}

	results := make([]protocol.TeamResult, 0, len(outcomes))
	for _, o := range outcomes {
		t, _ := r.ledger.Team(o.TeamID)
		d := byTeam[o.TeamID]

		hits := make([]protocol.Hit, len(d.Hits))
		for i, h := range d.Hits {
			hits[i] = protocol.Hit{From: h.From, Amount: h.Amount}
		}

		results = append(results, protocol.TeamResult{
			TeamID:      o.TeamID,
			Answered:    o.Answered,
			Correct:     o.Correct,
			ElapsedMs:   o.ElapsedMs,
			Points:      o.Points,
			Score:       t.Score,
			HP:          t.HP,
			HPDelta:     d.HPDelta,
			DamageTaken: d.DamageTaken,
			Healed:      d.Healed,
			Buffed:      o.Buffed,
			Hits:        hits,
		})
	}

	r.log.WithFields(logrus.Fields{
		"question": q.ID,
		"number":   number,
		"trigger":  trigger,
		"answered": len(r.answers),
	}).Debug("question resolved")

	r.metrics.QuestionResolved(trigger)

	r.broadcast(protocol.MsgQuestionResolved, protocol.QuestionResolved{
		QuestionNumber:  number,
		QuestionID:      q.ID,
		CorrectAnswerID: q.CorrectAnswerID,
		Results:         results,
	})

	for _, t := range eliminated {
		r.log.WithFields(logrus.Fields{
			"team":     t.ID,
			"question": number,
		}).Info("team eliminated")

		r.metrics.TeamEliminated()

		r.broadcast(protocol.MsgTeamEliminated, protocol.TeamEliminated{
			TeamID:         t.ID,
			Name:           t.Name,
			QuestionNumber: number,
			Confetti:       r.cfg.EliminationConfetti,
		})
	}

	r.touch()

	switch remaining := len(r.ledger.Alive()); {
	case remaining == 1:
		r.finish(ReasonLastTeamStanding)
	case remaining == 0:
		r.finish(ReasonAllEliminated)
	case r.cursor.Exhausted():
		r.finish(ReasonQuestionsExhausted)
	case r.reveal > 0:
		r.revealTimer = time.NewTimer(r.reveal)
	default:
		r.nextQuestion()
	}
}

func (r *Room) finish(reason string) {
	r.stopTimers()
	r.cancelAllRemovals()

	r.phase = PhaseGameOver

	standings := r.standings()
	if len(standings) > 0 {
		r.winner = standings[0].TeamID
	}

	r.log.WithFields(logrus.Fields{
		"reason": reason,
		"winner": r.winner,
	}).Info("game over")

	r.metrics.GameFinished(reason)

	r.broadcast(protocol.MsgGameOver, protocol.GameOver{
		Reason:    reason,
		Winner:    r.winner,
		Standings: standings,
	})

	r.touch()
}

func (r *Room) kick(connID, playerID string) error {
	if !r.isHost(connID) {
		return ErrNotHost
	}

	p, ok := r.ledger.RemovePlayer(playerID)
	if !ok {
		return fmt.Errorf("%w: unknown player %q", ErrNotPlayer, playerID)
	}

	r.cancelRemoval(p.ID)

	msg, err := r.encode(protocol.MsgRoomClosed, protocol.RoomClosed{Reason: ReasonKicked})
	if err != nil {
		return err
	}

	for _, a := range r.conns.forPlayer(p.ID) {
		_ = a.conn.Send(msg)
		_ = a.conn.Close()

		r.conns.detach(a.conn.ID())
		r.metrics.ConnectionDetached()
	}

	r.log.WithFields(logrus.Fields{
		"player": p.ID,
		"team":   p.TeamID,
	}).Info("player kicked")

	r.touch()
	r.broadcastState()

	return nil
}

func (r *Room) hostClose(connID, hostKey string) error {
	if !r.isHost(connID) && !r.CheckHostKey(hostKey) {
		return ErrNotHost
	}

	if r.onClose != nil {
		go r.onClose(r.code, ReasonHostClosed)
		return nil
	}

	r.shutdown(ReasonHostClosed)

	return nil
}

func (r *Room) shutdown(reason string) {
	if r.closed {
		return
	}

	r.stopTimers()
	r.cancelAllRemovals()

	msg, err := r.encode(protocol.MsgRoomClosed, protocol.RoomClosed{Reason: reason})
	if err != nil {
		r.log.WithError(err).Error("encoding room closed")
	}

	for id, a := range r.conns.byID {
		if msg != nil {
			_ = a.conn.Send(msg)
		}
		_ = a.conn.Close()

		r.conns.detach(id)
		r.metrics.ConnectionDetached()
	}

	r.closed = true
	close(r.done)

	r.log.WithField("reason", reason).Info("room closed")
}

func (r *Room) stopTimers() {
	if r.deadline != nil {
		r.deadline.Stop()
		r.deadline = nil
	}
	if r.revealTimer != nil {
		r.revealTimer.Stop()
		r.revealTimer = nil
	}
}

func (r *Room) cancelAllRemovals() {
	for id := range r.graceTimers {
		r.cancelRemoval(id)
	}
}

func (r *Room) touch() {
	r.lastActivity.Store(r.now().UnixNano())
}
