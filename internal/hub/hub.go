package hub

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"trivia-lobby-backend/internal/config"
	"trivia-lobby-backend/internal/conn"
	"trivia-lobby-backend/internal/game"
	"trivia-lobby-backend/internal/protocol"
)

type Msg interface{ isHubMsg() }

// Register announces a freshly accepted connection.
type Register struct{ C conn.Conn }

// Disconnect reports a closed or errored transport; cleanup is silent.
type Disconnect struct{ C conn.Conn }

// Pong marks a connection alive for the current heartbeat window.
type Pong struct{ C conn.Conn }

// Request carries one decoded client frame.
type Request struct {
	C   conn.Conn
	Msg protocol.ClientMessage
}

// PhaseTimerFired re-enters a lobby's expired phase timer on the hub loop.
type PhaseTimerFired struct {
	LobbyID string
	Gen     int
}

// GetStats reflects internal state without data races; test-only.
type GetStats struct{ Reply chan Stats }

type Shutdown struct{}

func (Register) isHubMsg()        {}
func (Disconnect) isHubMsg()      {}
func (Pong) isHubMsg()            {}
func (Request) isHubMsg()         {}
func (PhaseTimerFired) isHubMsg() {}
func (GetStats) isHubMsg()        {}
func (Shutdown) isHubMsg()        {}

type Stats struct {
	Sessions int
	Lobbies  int
	Bound    int
}

// session is the binding between a network connection and a game identity.
// id stays empty until a successful handshake.
type session struct {
	id           string
	lobbyID      string
	isController bool
	alive        bool
}

// Hub is the single event loop of the server: every connection event,
// client request, heartbeat sweep, and phase-timer fire is serialized onto
// one goroutine, so lobby and registry state need no locks.
type Hub struct {
	inbox    chan Msg
	sessions map[conn.Conn]*session
	games    *game.Server
	registry *conn.Registry
	cfg      config.Config
	log      *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewHub(parent context.Context, cfg config.Config, rules game.Rules, questions game.QuestionSource, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:    make(chan Msg, 64),
		sessions: make(map[conn.Conn]*session),
		registry: conn.NewRegistry(log.Named("conn")),
		cfg:      cfg,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
	}
	h.games = game.NewServer(rules, questions, h, log.Named("game"))
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- Msg { return h.inbox }

// PhaseExpired implements game.TimerSink: timer goroutines post back into
// the loop instead of mutating lobby state.
func (h *Hub) PhaseExpired(lobbyID string, gen int) {
	select {
	case h.inbox <- PhaseTimerFired{LobbyID: lobbyID, Gen: gen}:
	case <-h.ctx.Done():
	}
}

func (h *Hub) loop() {
	heartbeat := time.NewTicker(h.cfg.HeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case <-heartbeat.C:
			h.sweep()

		case m := <-h.inbox:
			switch msg := m.(type) {
			case Register:
				h.sessions[msg.C] = &session{alive: true}
				h.log.Info("client connected", zap.String("addr", msg.C.RemoteAddr()))

			case Pong:
				if s := h.sessions[msg.C]; s != nil {
					s.alive = true
				}

			case Disconnect:
				h.drop(msg.C, false)

			case Request:
				h.dispatch(msg.C, msg.Msg)

			case PhaseTimerFired:
				if lb, ok := h.games.Lobby(msg.LobbyID); ok {
					lb.PhaseExpired(msg.Gen)
				}

			case GetStats:
				msg.Reply <- Stats{
					Sessions: len(h.sessions),
					Lobbies:  h.games.LobbyCount(),
					Bound:    h.registry.Len(),
				}

			case Shutdown:
				h.shutdown()
				return
			}
		}
	}
}

// sweep reaps connections that have not ponged since the previous sweep
// and pings the rest. A connection silent for a full heartbeat period is
// therefore guaranteed to be terminated.
func (h *Hub) sweep() {
	for c, s := range h.sessions {
		if !s.alive {
			h.log.Info("reaping unresponsive connection", zap.String("addr", c.RemoteAddr()))
			h.drop(c, true)
			continue
		}
		s.alive = false
		c.Ping()
	}
	h.log.Debug("heartbeat sweep complete", zap.Int("sessions", len(h.sessions)))
}

// drop performs silent-departure cleanup: unbind, unseat, roster update to
// whoever remains. No kick is sent; disconnect is not leave.
func (h *Hub) drop(c conn.Conn, terminate bool) {
	s, ok := h.sessions[c]
	if !ok {
		return
	}
	delete(h.sessions, c)
	if terminate {
		c.Close("heartbeat timeout")
	}
	if s.id == "" {
		return
	}
	h.registry.Unbind(s.id)

	lb, ok := h.games.Lobby(s.lobbyID)
	if !ok {
		return
	}
	if s.isController {
		// Clearing the controller id lets an emptied lobby be reclaimed;
		// seated players keep playing.
		lb.ControllerID = ""
		if lb.Empty() {
			h.games.DeleteLobby(lb.ID)
		}
		return
	}
	if h.games.DeletePlayer(s.lobbyID, s.id) {
		if lb, ok := h.games.Lobby(s.lobbyID); ok {
			h.registry.Broadcast(lb.MemberIDs(), rosterMsg(lb))
		}
	}
}

func (h *Hub) dispatch(c conn.Conn, m protocol.ClientMessage) {
	switch m.Type {
	case protocol.TypeHandshake:
		h.handshake(c, m)
	case protocol.TypeStart:
		h.start(c, m)
	case protocol.TypeLeave:
		h.leave(c, m)
	case protocol.TypePlay:
		h.play(c, m)
	case protocol.TypePause:
		h.pause(c, m)
	default:
		// Well-formed but unrecognized: forward-compatible no-op.
		h.log.Info("unrecognized request type dropped",
			zap.String("type", m.Type), zap.String("addr", c.RemoteAddr()))
	}
}

// handshake selects one of three branches by field presence: create a
// lobby as a fresh controller, join an existing lobby as a player, or fail
// with lobby_missing.
func (h *Hub) handshake(c conn.Conn, m protocol.ClientMessage) {
	s := h.sessions[c]
	if s == nil {
		return
	}

	switch {
	case !m.HasLobby() && !m.HasName():
		controllerID := uuid.NewString()
		lb, err := h.games.CreateLobby(controllerID)
		if err != nil {
			h.log.Error("lobby creation failed", zap.Error(err))
			c.Send(protocol.ServerMessage{Type: protocol.TypeHandshakeAck, Code: protocol.CodeCreateFailed})
			return
		}
		h.registry.Bind(controllerID, c)
		s.id, s.lobbyID, s.isController = controllerID, lb.ID, true
		c.Send(protocol.ServerMessage{
			Type:         protocol.TypeHandshakeAck,
			Code:         protocol.CodeCreated,
			LobbyID:      lb.ID,
			ControllerID: controllerID,
		})

	case m.HasLobby():
		lb, ok := h.games.Lobby(m.LobbyID)
		if !ok {
			h.log.Warn("handshake for unknown lobby", zap.String("lobby", m.LobbyID))
			c.Send(protocol.ServerMessage{Type: protocol.TypeHandshakeAck, Code: protocol.CodeLobbyMissing})
			return
		}
		p := h.games.CreatePlayer(m.Name)
		if err := lb.AddPlayer(p); err != nil {
			c.Send(protocol.ServerMessage{Type: protocol.TypeHandshakeAck, Code: protocol.CodeLobbyFull})
			return
		}
		h.registry.Bind(p.ID, c)
		s.id, s.lobbyID = p.ID, lb.ID
		c.Send(protocol.ServerMessage{
			Type:     protocol.TypeHandshakeAck,
			Code:     protocol.CodeJoined,
			LobbyID:  lb.ID,
			PlayerID: p.ID,
		})
		h.registry.Broadcast(lb.MemberIDs(), rosterMsg(lb))

	default:
		// A name with no lobby id selects neither form.
		c.Send(protocol.ServerMessage{Type: protocol.TypeHandshakeAck, Code: protocol.CodeInvalidRequest})
	}
}

// validated enforces the playerId+lobbyId requirement common to every
// request except the handshake.
func (h *Hub) validated(c conn.Conn, m protocol.ClientMessage) bool {
	if m.PlayerID == "" || m.LobbyID == "" {
		h.log.Warn("request with missing fields",
			zap.String("type", m.Type), zap.String("addr", c.RemoteAddr()))
		c.Send(protocol.Ack(m.Type, protocol.CodeInvalidRequest))
		return false
	}
	return true
}

func (h *Hub) start(c conn.Conn, m protocol.ClientMessage) {
	if !h.validated(c, m) {
		return
	}
	lb, ok := h.games.Lobby(m.LobbyID)
	if !ok {
		c.Send(protocol.Ack(m.Type, protocol.CodeLobbyMissing))
		return
	}
	if err := lb.Start(h.registry); err != nil {
		c.Send(protocol.Ack(m.Type, protocol.CodeNotEnoughPlayers))
		return
	}
	c.Send(protocol.Ack(m.Type, protocol.CodeOK))
}

func (h *Hub) leave(c conn.Conn, m protocol.ClientMessage) {
	if !h.validated(c, m) {
		return
	}
	lb, ok := h.games.Lobby(m.LobbyID)
	if !ok {
		c.Send(protocol.Ack(m.Type, protocol.CodeLobbyMissing))
		return
	}

	if m.PlayerID == lb.ControllerID {
		// Controller leave terminates the lobby for every member.
		for _, info := range lb.Roster() {
			if pc, ok := h.registry.Lookup(info.ID); ok {
				pc.Send(protocol.ServerMessage{Type: protocol.TypeKick})
			}
			h.registry.Unbind(info.ID)
			h.clearSessionFor(info.ID)
		}
		h.registry.Unbind(lb.ControllerID)
		h.clearSessionFor(lb.ControllerID)
		h.games.DeleteLobby(lb.ID)
		c.Send(protocol.Ack(m.Type, protocol.CodeOK))
		return
	}

	if !lb.HasPlayer(m.PlayerID) {
		c.Send(protocol.Ack(m.Type, protocol.CodePlayerMissing))
		return
	}
	h.registry.Unbind(m.PlayerID)
	h.clearSessionFor(m.PlayerID)
	h.games.DeletePlayer(m.LobbyID, m.PlayerID)
	c.Send(protocol.Ack(m.Type, protocol.CodeOK))
	if lb, ok := h.games.Lobby(m.LobbyID); ok {
		h.registry.Broadcast(lb.MemberIDs(), rosterMsg(lb))
	}
}

func (h *Hub) play(c conn.Conn, m protocol.ClientMessage) {
	if !h.validated(c, m) {
		return
	}
	lb, ok := h.games.Lobby(m.LobbyID)
	if !ok {
		c.Send(protocol.Ack(m.Type, protocol.CodeLobbyMissing))
		return
	}
	if err := lb.Resume(); err != nil {
		c.Send(protocol.Ack(m.Type, protocol.CodeNotPaused))
		return
	}
	c.Send(protocol.Ack(m.Type, protocol.CodeOK))
}

func (h *Hub) pause(c conn.Conn, m protocol.ClientMessage) {
	if !h.validated(c, m) {
		return
	}
	lb, ok := h.games.Lobby(m.LobbyID)
	if !ok {
		c.Send(protocol.Ack(m.Type, protocol.CodeLobbyMissing))
		return
	}
	if err := lb.Pause(); err != nil {
		c.Send(protocol.Ack(m.Type, protocol.CodeNotRunning))
		return
	}
	c.Send(protocol.Ack(m.Type, protocol.CodeOK))
}

// clearSessionFor detaches a game identity from whichever connection holds
// it, so a later Disconnect for that connection has nothing left to clean.
func (h *Hub) clearSessionFor(id string) {
	for _, s := range h.sessions {
		if s.id == id {
			s.id, s.lobbyID, s.isController = "", "", false
			return
		}
	}
}

func (h *Hub) shutdown() {
	for c := range h.sessions {
		c.Close("server shutting down")
		delete(h.sessions, c)
	}
	h.games.Close()
	h.cancel()
	h.log.Info("hub terminated")
}

func rosterMsg(lb *game.Lobby) protocol.ServerMessage {
	return protocol.ServerMessage{
		Type:    protocol.TypeUpdateLobby,
		LobbyID: lb.ID,
		Players: lb.Roster(),
	}
}
