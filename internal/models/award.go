package models

// AwardType is a catalog row ("Cash Prize", "Points", "Swag Bag").
// Catalog tables use numeric surrogate keys, everything else UUIDs.
type AwardType struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Well-known award type names the aggregation queries key on.
const (
	AwardTypeCash = "Cash Prize"
	AwardTypePts  = "Points"
	AwardTypeSwag = "Swag Bag"
)

// ContestAward ties an award type and a ranking position to a value.
// Multiple rows may share a position, e.g. cash and points for 1st place.
type ContestAward struct {
	ID          string `db:"id" json:"id"`
	ContestID   string `db:"contest_id" json:"contest_id"`
	AwardTypeID int64  `db:"award_type_id" json:"award_type_id"`
	Position    int    `db:"position" json:"position"`
	Value       int64  `db:"award_value" json:"award_value"`
}

// Winner records that a user received a specific contest award.
type Winner struct {
	ID             string `db:"id" json:"id"`
	UserID         string `db:"user_id" json:"user_id"`
	ContestID      string `db:"contest_id" json:"contest_id"`
	ContestAwardID string `db:"contest_award_id" json:"contest_award_id"`
	CreatedAt      int64  `db:"created_at" json:"created_at"`
}
