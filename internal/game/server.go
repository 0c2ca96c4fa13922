package game

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Server is the lobby registry: it creates and destroys lobbies and
// players and routes operations by lobby id. Single-writer, like Lobby.
type Server struct {
	lobbies   map[string]*Lobby
	rules     Rules
	questions QuestionSource
	sink      TimerSink
	log       *zap.Logger
}

func NewServer(rules Rules, questions QuestionSource, sink TimerSink, log *zap.Logger) *Server {
	return &Server{
		lobbies:   make(map[string]*Lobby),
		rules:     rules,
		questions: questions,
		sink:      sink,
		log:       log,
	}
}

// CreateLobby allocates a fresh unique lobby code and registers an empty
// lobby under it. Codes that collide with a live lobby are regenerated.
func (s *Server) CreateLobby(controllerID string) (*Lobby, error) {
	for {
		code, err := newLobbyCode()
		if err != nil {
			return nil, err
		}
		if _, taken := s.lobbies[code]; taken {
			s.log.Debug("lobby code collision, regenerating", zap.String("code", code))
			continue
		}
		lb := newLobby(code, controllerID, s.rules, s.questions, s.sink,
			s.log.Named("lobby").With(zap.String("lobby", code)))
		s.lobbies[code] = lb
		s.log.Info("lobby created", zap.String("lobby", code), zap.String("controller", controllerID))
		return lb, nil
	}
}

// DeleteLobby removes the lobby if present, cancelling any pending phase
// timer. Idempotent.
func (s *Server) DeleteLobby(id string) bool {
	lb, ok := s.lobbies[id]
	if !ok {
		return false
	}
	lb.Close()
	delete(s.lobbies, id)
	s.log.Info("lobby deleted", zap.String("lobby", id))
	return true
}

// CreatePlayer is a pure factory; seating the player is a separate step.
func (s *Server) CreatePlayer(name string) *Player {
	p := &Player{ID: uuid.NewString(), Name: name}
	s.log.Info("player created", zap.String("player", p.ID), zap.String("name", name))
	return p
}

// DeletePlayer removes the player from the named lobby and reclaims the
// lobby once it is empty and controller-less.
func (s *Server) DeletePlayer(lobbyID, playerID string) bool {
	lb, ok := s.lobbies[lobbyID]
	if !ok {
		return false
	}
	removed := lb.RemovePlayer(playerID)
	if lb.Empty() {
		s.DeleteLobby(lobbyID)
	}
	return removed
}

func (s *Server) Lobby(id string) (*Lobby, bool) {
	lb, ok := s.lobbies[id]
	return lb, ok
}

func (s *Server) LobbyCount() int { return len(s.lobbies) }

// Close tears down every lobby; pending timers are cancelled.
func (s *Server) Close() {
	for id, lb := range s.lobbies {
		lb.Close()
		delete(s.lobbies, id)
	}
}
