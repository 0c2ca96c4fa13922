package protocol

// Request types accepted from clients. Frames carrying any other type are
// dropped without a response.
const (
	TypeHandshake = "handshake"
	TypeStart     = "start"
	TypeLeave     = "leave"
	TypePlay      = "play"
	TypePause     = "pause"
)

// Response and broadcast types sent to clients.
const (
	TypeHandshakeAck = "handshake_ack"
	TypeStartAck     = "start_ack"
	TypeLeaveAck     = "leave_ack"
	TypePlayAck      = "play_ack"
	TypePauseAck     = "pause_ack"
	TypeUpdateLobby  = "update_lobby"
	TypeKick         = "kick"
	TypeStartRound   = "start_round"
	TypeEndRound     = "end_round"
	TypeStartPhase   = "start_phase"
	TypeEndPhase     = "end_phase"
	TypeGameEnd      = "game_end"
)

type Code string

const (
	CodeOK               Code = "ok"
	CodeCreated          Code = "created"
	CodeJoined           Code = "joined"
	CodeInvalidRequest   Code = "invalid_request"
	CodeLobbyMissing     Code = "lobby_missing"
	CodePlayerMissing    Code = "player_missing"
	CodeLobbyFull        Code = "lobby_full"
	CodeNotEnoughPlayers Code = "not_enough_players"
	CodeCreateFailed     Code = "create_failed"
	CodeNotRunning       Code = "not_running"
	CodeNotPaused        Code = "not_paused"
)

type ClientMessage struct {
	Type     string `json:"type"`
	Name     string `json:"name,omitempty"`
	LobbyID  string `json:"lobbyId,omitempty"`
	PlayerID string `json:"playerId,omitempty"`
}

// HasName and HasLobby drive handshake branch selection: a handshake with
// neither field is the create-lobby form.
func (m ClientMessage) HasName() bool  { return m.Name != "" }
func (m ClientMessage) HasLobby() bool { return m.LobbyID != "" }

type PlayerInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

type RoundInfo struct {
	Index  int            `json:"index"`
	Name   string         `json:"name"`
	Points map[string]int `json:"points,omitempty"`
}

type PhaseInfo struct {
	Index       int    `json:"index"`
	Name        string `json:"name"`
	DurationSec int    `json:"durationSec"`
}

type Question struct {
	Category string   `json:"category"`
	Prompt   string   `json:"prompt"`
	Choices  []string `json:"choices,omitempty"`
}

type ServerMessage struct {
	Type         string       `json:"type"`
	Code         Code         `json:"code,omitempty"`
	LobbyID      string       `json:"lobbyId,omitempty"`
	PlayerID     string       `json:"playerId,omitempty"`
	ControllerID string       `json:"controllerId,omitempty"`
	Players      []PlayerInfo `json:"players,omitempty"`
	Round        *RoundInfo   `json:"round,omitempty"`
	Phase        *PhaseInfo   `json:"phase,omitempty"`
	Question     *Question    `json:"question,omitempty"`
}

// Ack builds the response envelope for a request type, echoing the request's
// type with an _ack suffix.
func Ack(reqType string, code Code) ServerMessage {
	return ServerMessage{Type: reqType + "_ack", Code: code}
}
