package game

// Player is one seated participant. A player belongs to at most one lobby
// at a time; the seating itself lives on the Lobby.
type Player struct {
	ID    string
	Name  string
	Score int
}
