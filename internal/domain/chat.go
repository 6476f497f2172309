package domain

// ChatMessage id is assigned by the store on append. Messages are displayed
// ordered by SentAt ascending, which is not necessarily insertion order.
type ChatMessage struct {
	ID       int64  `json:"id"`
	AuthorID string `json:"author_id"`
	Username string `json:"username"`
	Text     string `json:"text"`
	SentAt   int64  `json:"sent_at"`
}

// Presence is ephemeral: the store drops it when the participant's
// connection goes away, not this system's logic.
type Presence struct {
	ParticipantID string `json:"participant_id" redis:"participant_id"`
	Username      string `json:"username" redis:"username"`
	LastSeen      int64  `json:"last_seen" redis:"last_seen"`
}
