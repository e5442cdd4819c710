package dto

import "time"

type CustomerFilters struct {
	NameIContains  string
	EmailIContains string
	CreatedAtGte   *time.Time
	CreatedAtLte   *time.Time
	PhonePattern   string   // prefix match, e.g. "+1"
	SearchQuery    string   // name or email substring
	OrderBy        []string // field names, "-" prefix for descending
	Offset         int
	Limit          int
}
