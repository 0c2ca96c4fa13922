package game

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"trivia-lobby-backend/internal/protocol"
)

var ErrLobbyFull = errors.New("lobby full")
var ErrAlreadySeated = errors.New("player already seated")
var ErrNotEnoughPlayers = errors.New("not enough players")
var ErrNotRunning = errors.New("game not running")
var ErrNotPaused = errors.New("game not paused")

type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusPaused
	StatusEnded
)

// Broadcaster delivers an encoded message to every reachable member.
// Unreachable ids are skipped; a broadcast never fails the caller.
type Broadcaster interface {
	Broadcast(ids []string, msg protocol.ServerMessage)
}

// TimerSink receives phase-timer expirations. Implementations must route
// the call back onto the loop that owns the lobby; the timer goroutine
// itself never mutates lobby state.
type TimerSink interface {
	PhaseExpired(lobbyID string, gen int)
}

// Lobby owns a set of players, an optional controller, and the round/phase
// state machine. All methods assume single-writer access; serialization is
// the caller's job.
type Lobby struct {
	ID           string
	ControllerID string

	players map[string]*Player
	order   []string // join order

	rules     Rules
	questions QuestionSource
	sink      TimerSink
	log       *zap.Logger

	status    Status
	round     int
	phase     int
	conns     Broadcaster
	timer     *time.Timer
	timerGen  int
	deadline  time.Time
	remaining time.Duration
}

func newLobby(id, controllerID string, rules Rules, questions QuestionSource, sink TimerSink, log *zap.Logger) *Lobby {
	return &Lobby{
		ID:           id,
		ControllerID: controllerID,
		players:      make(map[string]*Player),
		rules:        rules,
		questions:    questions,
		sink:         sink,
		log:          log,
	}
}

func (l *Lobby) Status() Status { return l.status }
func (l *Lobby) Round() int     { return l.round }
func (l *Lobby) Phase() int     { return l.phase }

func (l *Lobby) PlayerCount() int { return len(l.players) }

func (l *Lobby) HasPlayer(id string) bool {
	_, ok := l.players[id]
	return ok
}

// Empty reports whether the lobby holds no players and no controller, which
// makes it eligible for reclamation by the registry.
func (l *Lobby) Empty() bool {
	return len(l.players) == 0 && l.ControllerID == ""
}

func (l *Lobby) AddPlayer(p *Player) error {
	if _, ok := l.players[p.ID]; ok {
		return ErrAlreadySeated
	}
	if len(l.players) >= l.rules.MaxPlayers {
		return ErrLobbyFull
	}
	l.players[p.ID] = p
	l.order = append(l.order, p.ID)
	l.log.Info("player added", zap.String("player", p.ID), zap.String("name", p.Name))
	return nil
}

func (l *Lobby) RemovePlayer(id string) bool {
	if _, ok := l.players[id]; !ok {
		return false
	}
	delete(l.players, id)
	for i, pid := range l.order {
		if pid == id {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	l.log.Info("player removed", zap.String("player", id))
	return true
}

// Roster returns the players in join order.
func (l *Lobby) Roster() []protocol.PlayerInfo {
	roster := make([]protocol.PlayerInfo, 0, len(l.order))
	for _, id := range l.order {
		p := l.players[id]
		roster = append(roster, protocol.PlayerInfo{ID: p.ID, Name: p.Name, Score: p.Score})
	}
	return roster
}

// MemberIDs lists every broadcast recipient: seated players plus the
// controller, when one exists.
func (l *Lobby) MemberIDs() []string {
	ids := make([]string, 0, len(l.order)+1)
	ids = append(ids, l.order...)
	if l.ControllerID != "" {
		ids = append(ids, l.ControllerID)
	}
	return ids
}

// Start begins the game: round and phase reset to zero, the connection set
// binds, and the first round begins. Fails without state change when the
// lobby is below the minimum player count.
func (l *Lobby) Start(b Broadcaster) error {
	if len(l.players) < l.rules.MinPlayers {
		return ErrNotEnoughPlayers
	}
	l.stopTimer()
	l.round, l.phase = 0, 0
	l.conns = b
	l.status = StatusRunning
	l.log.Info("game started", zap.Int("players", len(l.players)))
	l.startRound()
	return nil
}

func (l *Lobby) startRound() {
	def := l.rules.Rounds[l.round]
	l.broadcast(protocol.ServerMessage{
		Type:  protocol.TypeStartRound,
		Round: &protocol.RoundInfo{Index: l.round, Name: def.Name, Points: def.Points},
	})
	l.phase = 0
	l.startPhase()
}

func (l *Lobby) startPhase() bool {
	if l.conns == nil {
		return false
	}
	def := l.rules.Phases[l.phase]
	msg := protocol.ServerMessage{
		Type:  protocol.TypeStartPhase,
		Phase: &protocol.PhaseInfo{Index: l.phase, Name: def.Name, DurationSec: int(def.Duration / time.Second)},
	}
	if def.Name == PhaseQuestion && l.questions != nil {
		q := l.questions.Question(l.round)
		msg.Question = &q
	}
	l.broadcast(msg)
	l.armTimer(def.Duration)
	l.log.Debug("phase started", zap.Int("round", l.round), zap.Int("phase", l.phase))
	return true
}

// PhaseExpired is the re-entry point for a fired phase timer, routed back
// through the owning loop. Stale generations are dropped: a timer armed
// before a pause, restart, or teardown must never advance the game.
func (l *Lobby) PhaseExpired(gen int) {
	if gen != l.timerGen || l.status != StatusRunning {
		return
	}
	l.timer = nil
	l.endPhase()
}

func (l *Lobby) endPhase() {
	l.phase++
	if l.phase >= len(l.rules.Phases) {
		l.endRound()
		return
	}
	done := l.rules.Phases[l.phase-1]
	l.broadcast(protocol.ServerMessage{
		Type:  protocol.TypeEndPhase,
		Phase: &protocol.PhaseInfo{Index: l.phase - 1, Name: done.Name, DurationSec: int(done.Duration / time.Second)},
	})
	l.startPhase()
}

func (l *Lobby) endRound() {
	l.round++
	if l.round >= len(l.rules.Rounds) {
		l.end()
		return
	}
	done := l.rules.Rounds[l.round-1]
	l.broadcast(protocol.ServerMessage{
		Type:  protocol.TypeEndRound,
		Round: &protocol.RoundInfo{Index: l.round - 1, Name: done.Name},
	})
	l.startRound()
}

func (l *Lobby) end() {
	l.status = StatusEnded
	l.stopTimer()
	l.broadcast(protocol.ServerMessage{Type: protocol.TypeGameEnd, Players: l.Roster()})
	l.conns = nil
	l.log.Info("game ended", zap.Int("rounds", len(l.rules.Rounds)))
}

// Pause stops the pending phase timer and stores the remaining duration.
func (l *Lobby) Pause() error {
	if l.status != StatusRunning || l.timer == nil {
		return ErrNotRunning
	}
	l.timer.Stop()
	l.timer = nil
	l.timerGen++ // an in-flight fire is now stale
	l.remaining = time.Until(l.deadline)
	if l.remaining < 0 {
		l.remaining = 0
	}
	l.status = StatusPaused
	l.log.Info("game paused", zap.Duration("remaining", l.remaining))
	return nil
}

// Resume re-arms the phase timer for the duration left at pause time.
func (l *Lobby) Resume() error {
	if l.status != StatusPaused {
		return ErrNotPaused
	}
	l.status = StatusRunning
	l.armTimer(l.remaining)
	l.log.Info("game resumed", zap.Duration("remaining", l.remaining))
	return nil
}

// Close cancels any pending timer and releases the connection set. Called
// by the registry on delete and at shutdown.
func (l *Lobby) Close() {
	l.stopTimer()
	l.timerGen++
	l.conns = nil
	l.status = StatusEnded
}

func (l *Lobby) armTimer(d time.Duration) {
	l.stopTimer()
	l.timerGen++
	gen := l.timerGen
	l.deadline = time.Now().Add(d)
	l.timer = time.AfterFunc(d, func() { l.sink.PhaseExpired(l.ID, gen) })
}

func (l *Lobby) stopTimer() {
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
}

func (l *Lobby) broadcast(msg protocol.ServerMessage) {
	if l.conns == nil {
		return
	}
	l.conns.Broadcast(l.MemberIDs(), msg)
}
