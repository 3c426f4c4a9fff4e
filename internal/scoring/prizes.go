package scoring

import (
	"sort"

	"github.com/piparkaq/hackboard/internal/store"
)

type PrizeAward struct {
	AwardType string `json:"award_type"`
	Value     int64  `json:"value"`
}

// PrizeGroup is one ranking position with every award attached to it.
type PrizeGroup struct {
	Position int          `json:"position"`
	Awards   []PrizeAward `json:"awards"`
}

// GroupPrizes folds flat (position, type, value) rows into position
// groups. Input order does not matter: groups come out sorted by
// position and awards within a group by award type name.
func GroupPrizes(rows []store.PrizeRow) []PrizeGroup {
	byPosition := make(map[int][]PrizeAward)
	for _, row := range rows {
		byPosition[row.Position] = append(byPosition[row.Position], PrizeAward{
			AwardType: row.AwardTypeName,
			Value:     row.Value,
		})
	}

	positions := make([]int, 0, len(byPosition))
	for position := range byPosition {
		positions = append(positions, position)
	}
	sort.Ints(positions)

	groups := make([]PrizeGroup, 0, len(positions))
	for _, position := range positions {
		awards := byPosition[position]
		sort.Slice(awards, func(i, j int) bool {
			if awards[i].AwardType != awards[j].AwardType {
				return awards[i].AwardType < awards[j].AwardType
			}
			return awards[i].Value < awards[j].Value
		})
		groups = append(groups, PrizeGroup{Position: position, Awards: awards})
	}

	return groups
}
