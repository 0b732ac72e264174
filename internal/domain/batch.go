package domain

import "time"

type StageEntry struct {
	Stage     StageID
	EnteredAt time.Time
	By        string
}

type Batch struct {
	ID          string
	Category    CropCategory
	VarietyID   string
	VarietyName string
	Quantity    int
	Unit        Unit
	Stage       StageID
	Source      BatchSource
	Notes       string

	// Schedule
	SowDate               time.Time
	SoakDate              *time.Time
	UncoverDate           *time.Time
	EstimatedHarvestStart *time.Time
	EstimatedHarvestEnd   *time.Time

	// StageHistory is append-only, one entry per stage entered.
	StageHistory []StageEntry

	// Harvest
	HarvestedAt   *time.Time
	HarvestYield  *float64
	ExpectedYield float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsHarvested reports whether the batch has reached the terminal stage.
func (b *Batch) IsHarvested() bool {
	return b.Stage == StageHarvested
}

// DisplayName prefers the stored variety name and falls back to the variety ID.
func (b *Batch) DisplayName() string {
	return CoalesceStr(b.VarietyName, b.VarietyID)
}

// StageEnteredAt returns when the batch entered its current stage. It uses the latest
// matching history entry, then the sow date, then the creation time.
func (b *Batch) StageEnteredAt() time.Time {
	for i := len(b.StageHistory) - 1; i >= 0; i-- {
		if b.StageHistory[i].Stage == b.Stage {
			return b.StageHistory[i].EnteredAt
		}
	}
	if !b.SowDate.IsZero() {
		return b.SowDate
	}
	return b.CreatedAt
}

// BatchUpdate is a partial-field write produced by a lifecycle transition. Nil
// fields are left untouched; History, when set, is appended to the stage log.
type BatchUpdate struct {
	Stage        *StageID
	History      *StageEntry
	UncoverDate  *time.Time
	HarvestedAt  *time.Time
	HarvestYield *float64
	UpdatedAt    time.Time
}

// Apply returns a copy of b with the update applied. b itself is not modified.
func (u *BatchUpdate) Apply(b Batch) Batch {
	out := b
	out.StageHistory = make([]StageEntry, len(b.StageHistory), len(b.StageHistory)+1)
	copy(out.StageHistory, b.StageHistory)

	if u.Stage != nil {
		out.Stage = *u.Stage
	}
	if u.History != nil {
		out.StageHistory = append(out.StageHistory, *u.History)
	}
	if u.UncoverDate != nil {
		d := *u.UncoverDate
		out.UncoverDate = &d
	}
	if u.HarvestedAt != nil {
		t := *u.HarvestedAt
		out.HarvestedAt = &t
	}
	if u.HarvestYield != nil {
		y := *u.HarvestYield
		out.HarvestYield = &y
	}
	if !u.UpdatedAt.IsZero() {
		out.UpdatedAt = u.UpdatedAt
	}
	return out
}

// CoalesceStr returns the first non-empty string from vals.
func CoalesceStr(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
