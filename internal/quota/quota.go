// package quota prices planned operations against the provider's daily budget.
package quota

// Per-call quota costs, uniform across playlist and playlist-item resources.
const (
	CostList   = 1
	CostInsert = 50
	CostUpdate = 50
	CostDelete = 50

	// CostMetadataUpdate is one list call plus one update call: the diff
	// engine folds any number of changed metadata fields into a single
	// combined update.
	CostMetadataUpdate = CostList + CostUpdate

	// DailyLimit is the provider's published daily budget in quota units.
	DailyLimit = 10000
)

// Estimate aggregates planned operation counts for pre-flight warnings. It
// never gates execution.
type Estimate struct {
	Lists           int `json:"lists"`
	Inserts         int `json:"inserts"`
	Updates         int `json:"updates"`
	Deletes         int `json:"deletes"`
	MetadataUpdates int `json:"metadata_updates"`
}

// Total returns the summed quota cost of all counted operations.
func (e Estimate) Total() int {
	return e.Lists*CostList +
		e.Inserts*CostInsert +
		e.Updates*CostUpdate +
		e.Deletes*CostDelete +
		e.MetadataUpdates*CostMetadataUpdate
}

// DaysRequired returns how many daily quota windows the estimate needs,
// rounded up. Zero operations need zero days.
func (e Estimate) DaysRequired(dailyLimit int) int {
	if dailyLimit <= 0 {
		dailyLimit = DailyLimit
	}
	total := e.Total()
	if total == 0 {
		return 0
	}
	return (total + dailyLimit - 1) / dailyLimit
}

// Add merges another estimate into this one.
func (e *Estimate) Add(other Estimate) {
	e.Lists += other.Lists
	e.Inserts += other.Inserts
	e.Updates += other.Updates
	e.Deletes += other.Deletes
	e.MetadataUpdates += other.MetadataUpdates
}
