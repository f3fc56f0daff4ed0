package types

// Voter is a platform identity casting votes in the chat stream.
type Voter struct {
	Username   string `json:"username"`
	Platform   string `json:"platform"`
	Channel    string `json:"channel"`
	Subscriber bool   `json:"subscriber"`
}

// PlayerID returns the canonical identity key for this voter.
// Identity is platform+username only. Channel and subscriber status are
// attributes; a player voting from two channels must count as one voter.
func (v Voter) PlayerID() string {
	return v.Platform + ":" + v.Username
}

// SameVoter reports whether two voters are the same player.
func SameVoter(a, b Voter) bool {
	return a.PlayerID() == b.PlayerID()
}
