// Package rooms names the pub/sub channels realtime events are published to.
package rooms

import "strings"

const (
	personalPrefix     = "user:"
	conversationPrefix = "conversation:"
	universityPrefix   = "university:"

	// Global is joined by every connection and carries pure broadcasts.
	Global = "global"
)

// Personal is the channel every connection of userID joins.
func Personal(userID string) string { return personalPrefix + userID }

func University(universityID string) string { return universityPrefix + universityID }

// Conversation returns the channel shared by two participants. The ids are sorted so both
// sides resolve the same name whoever initiates. Equal ids yield a valid channel too.
func Conversation(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return conversationPrefix + a + ":" + b
}

func IsConversation(channel string) bool {
	return strings.HasPrefix(channel, conversationPrefix)
}
