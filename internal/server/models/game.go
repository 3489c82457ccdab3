package models

// Position is the zero-based place of the game in the latest update request.
type LikedGame struct {
	ID       int64
	UUID     string
	GameID   int64
	Position int
}

type PlayGame struct {
	ID       int64
	UUID     string
	GameID   int64
	Main     bool
	Position int
}

// PlayGameInput is one entry of a played games replacement list.
type PlayGameInput struct {
	GameID int64
}

// IndexedPlayGame is a played game with its position in the stored order.
type IndexedPlayGame struct {
	Index  int
	GameID int64
	Main   bool
}
