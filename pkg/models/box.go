package models

// Box is the current-location projection of a tracked box. Location is nil
// until the first assign/move; the record itself is created lazily on the
// first write for an unseen BoxID.
type Box struct {
	BoxID     string  `json:"BoxID" db:"BoxID"`
	ItemCode  *string `json:"ItemCode" db:"ItemCode"`
	Qty       *int    `json:"Qty" db:"Qty"`
	Location  *string `json:"Location" db:"Location"`
	Status    string  `json:"Status" db:"Status"`
	UpdatedAt *string `json:"UpdatedAt" db:"UpdatedAt"`
}

// ScannedBox annotates a box with its trailing serial for prefix scans.
type ScannedBox struct {
	Box
	Serial string `json:"Serial"`
}

// MoveEntry is one row of the append-only move-history ledger. From is nil
// for the first assignment of a box.
type MoveEntry struct {
	From   *string `json:"From" db:"FromLoc"`
	To     string  `json:"To" db:"ToLoc"`
	At     string  `json:"At" db:"MovedAt"`
	By     *string `json:"By" db:"Operator"`
	Reason *string `json:"Reason" db:"Reason"`
}

// ScanEvent is a raw scan-log record, kept separately from the move ledger.
type ScanEvent struct {
	ID        int64   `json:"id" db:"Id"`
	BoxID     string  `json:"BoxID" db:"BoxID"`
	Location  string  `json:"Location" db:"Location"`
	Operator  *string `json:"Operator" db:"Operator"`
	Warehouse *string `json:"Warehouse" db:"Warehouse"`
	CreatedAt string  `json:"CreatedAt" db:"CreatedAt"`
}

type MoveRequest struct {
	BoxID    string `json:"boxid" binding:"required"`
	ToLoc    string `json:"to_loc"`
	Operator string `json:"operator"`
	Reason   string `json:"reason"`
}

type MoveRangeRequest struct {
	BoxID    string `json:"boxid" binding:"required"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	ToLoc    string `json:"to_loc"`
	Operator string `json:"operator"`
	Reason   string `json:"reason"`
}

type MoveBulkRequest struct {
	BoxIDs   []string `json:"boxids"`
	ToLoc    string   `json:"to_loc"`
	Operator string   `json:"operator"`
	Reason   string   `json:"reason"`
}

type ScanRequest struct {
	BoxID     string `json:"boxid" binding:"required"`
	Location  string `json:"location" binding:"required"`
	Operator  string `json:"operator"`
	Warehouse string `json:"warehouse"`
}
