package election

// Candidate is a votable proposed action. Implementations must be immutable
// value types so they can be used as vote payloads and identity keys.
type Candidate interface {
	// Label is the stable display form of the candidate.
	Label() string

	// Key is the candidate's identity. Two candidates with the same key are
	// the same candidate regardless of how they were parsed.
	Key() string
}
