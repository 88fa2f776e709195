package roommate

import (
	"campuscart/backend/internal/config"
	"campuscart/backend/internal/models"
	"campuscart/backend/internal/storage"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

var ErrNotOwner = errors.New("roommate: post belongs to another user")

// Match is a ranked candidate for a roommate post.
type Match struct {
	Post          models.RoommatePost `json:"post"`
	Score         int                 `json:"score"`
	BudgetOverlap float64             `json:"budgetOverlap"`
}

// MatcherService ranks roommate posts against a requester's post.
type MatcherService struct {
	Storage storage.RoommatePosts
	now     func() time.Time
}

func NewMatcherService(s storage.RoommatePosts) *MatcherService {
	return &MatcherService{Storage: s, now: time.Now}
}

// FindMatches ranks the candidate pool against the requester's post.
func (m *MatcherService) FindMatches(ctx context.Context, requesterID, postID string, limit int) ([]Match, error) {
	post, err := m.Storage.GetRoommatePost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("load post %s: %w", postID, err)
	}
	if post.UserID != requesterID {
		return nil, ErrNotOwner
	}

	candidates, err := m.Storage.MatchCandidates(ctx, post.UserID, m.now(), config.MatchCandidatePool)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}
	return Rank(ProfileOf(post), candidates, limit), nil
}

// Rank scores candidates against self, drops those under the minimum score, and returns at
// most limit matches, best first. Ties keep the candidates' input order.
func Rank(self Profile, candidates []models.RoommatePost, limit int) []Match {
	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		p := ProfileOf(&c)
		score := Score(self, p)
		if score < config.MinMatchScore {
			continue
		}
		matches = append(matches, Match{
			Post:          c,
			Score:         score,
			BudgetOverlap: BudgetOverlap(self, p),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
