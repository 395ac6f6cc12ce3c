package domain

import "time"

// SystemDay is the single current business date. All accrual postings key off
// it rather than wall-clock time; only the EOD process advances it.
type SystemDay struct {
	Version     int64     `json:"version"`
	SystemDate  time.Time `json:"systemDate"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// EodResult summarizes one end-of-day run.
type EodResult struct {
	PostedMoneyMarket int       `json:"postedMoneyMarket"`
	PostedGsec        int       `json:"postedGsec"`
	SkippedDeals      int       `json:"skippedDeals"`
	NextSystemDay     time.Time `json:"nextSystemDay"`
}
