package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlayerID(t *testing.T) {
	v := Voter{Username: "mike", Platform: "twitch", Channel: "somestream"}
	assert.Equal(t, "twitch:mike", v.PlayerID())
}

func TestSameVoter(t *testing.T) {
	tests := []struct {
		name string
		a    Voter
		b    Voter
		same bool
	}{
		{
			name: "identical",
			a:    Voter{Username: "mike", Platform: "twitch"},
			b:    Voter{Username: "mike", Platform: "twitch"},
			same: true,
		},
		{
			name: "different-channel-same-player",
			a:    Voter{Username: "mike", Platform: "twitch", Channel: "streamA"},
			b:    Voter{Username: "mike", Platform: "twitch", Channel: "streamB"},
			same: true,
		},
		{
			name: "different-subscriber-status-same-player",
			a:    Voter{Username: "mike", Platform: "twitch", Subscriber: true},
			b:    Voter{Username: "mike", Platform: "twitch"},
			same: true,
		},
		{
			name: "same-username-different-platform",
			a:    Voter{Username: "mike", Platform: "twitch"},
			b:    Voter{Username: "mike", Platform: "discord"},
			same: false,
		},
		{
			name: "different-username",
			a:    Voter{Username: "mike", Platform: "twitch"},
			b:    Voter{Username: "anna", Platform: "twitch"},
			same: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.same, SameVoter(tt.a, tt.b))
		})
	}
}
