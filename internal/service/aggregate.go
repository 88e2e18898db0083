package service

import (
	"github.com/victorivanov/parley/internal/models"
	"github.com/victorivanov/parley/internal/snowflake"
)

// AggregateReactions folds reaction rows into one group per emoji, in the
// order each emoji first appears. A group takes its id and timestamps from
// the first row with that emoji.
func AggregateReactions(reactions []models.Reaction) []models.ReactionGroup {
	groups := make([]models.ReactionGroup, 0)
	index := make(map[string]int)
	seen := make(map[string]map[int64]bool)

	for _, r := range reactions {
		i, ok := index[r.Emoji]
		if !ok {
			i = len(groups)
			index[r.Emoji] = i
			seen[r.Emoji] = make(map[int64]bool)
			groups = append(groups, models.ReactionGroup{
				ID:          r.ID,
				WorkspaceID: r.WorkspaceID,
				MessageID:   r.MessageID,
				Emoji:       r.Emoji,
				CreatedAt:   r.CreatedAt,
				MemberIDs:   []snowflake.ID{},
			})
		}
		g := &groups[i]
		g.Count++
		if !seen[r.Emoji][r.MemberID] {
			seen[r.Emoji][r.MemberID] = true
			g.MemberIDs = append(g.MemberIDs, snowflake.ID(r.MemberID))
		}
	}
	return groups
}
