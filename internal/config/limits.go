package config

import "time"

const (
	// Messages
	MaxMessageLength = 2000
	HistoryLimit     = 50
	PreviewLength    = 100
	HandlerTimeout   = 10 * time.Second

	// Notifications
	DefaultPageSize = 20
	MaxPageSize     = 100

	// Roommate matching
	MatchCandidatePool = 100
	MinMatchScore      = 30
	DefaultMatchLimit  = 10
	MaxMatchLimit      = 50
)

// CompatibilityWeights are the per-factor weights of the roommate score. They sum to 100.
var CompatibilityWeights = map[string]int{
	"budget":      25,
	"housingType": 20,
	"location":    15,
	"cleanliness": 10,
	"noise":       10,
	"social":      8,
	"smoking":     7,
	"pets":        5,
}
