package premierleague

import (
	"github.com/project-tktt/pl-crawler/internal/common/extractor"
	"github.com/project-tktt/pl-crawler/internal/domain"
)

const (
	BaseURL        = "https://www.premierleague.com"
	DirectoryURL   = BaseURL + "/players"
	LeaderboardURL = BaseURL + "/stats/top/players/appearances"
)

// Pagination control of the stats tables
const (
	NextPageSelector = ".paginationNextContainer"
	NextPageDisabled = "inactive"
)

// DirectorySchema reads the player directory: one row per registered player
func DirectorySchema() extractor.Schema {
	return extractor.Schema{
		Container: ".dataContainer",
		Row:       "tr.player",
		Fields: []extractor.Field{
			{Name: domain.FieldName, Selector: "a.player__name"},
			{Name: domain.FieldPosition, Selector: "td.player__position"},
			{Name: domain.FieldNationality, Selector: "span.player__country", Optional: true, Default: domain.UnknownNationality},
		},
	}
}

// LeaderboardSchema reads the appearances leaderboard. The flag icon is absent
// for some players, so nationality comes from its title when present.
func LeaderboardSchema() extractor.Schema {
	return extractor.Schema{
		Container: ".statsTableContainer",
		Row:       ".table__row",
		Fields: []extractor.Field{
			{Name: domain.FieldName, Selector: ".playerName"},
			{Name: domain.FieldClub, Selector: ".stats-table__cell-icon-align"},
			{
				Name:     domain.FieldNationality,
				Selector: ".stats-table__cell-icon-align img.stats-table__flag-icon",
				Attr:     "title",
				Optional: true,
				Default:  domain.UnknownNationality,
			},
			{Name: domain.FieldAppearances, Selector: ".stats-table__main-stat", Kind: extractor.KindInt},
		},
	}
}
