package amm

import "math/big"

// SnapshotDiff captures the fields that changed between two snapshots. A nil
// field means "unchanged"; a set field carries the new value.
type SnapshotDiff struct {
	Reserve0       *big.Int `json:"reserve0,omitempty"`
	Reserve1       *big.Int `json:"reserve1,omitempty"`
	TotalLiquidity *big.Int `json:"totalLiquidity,omitempty"`
	KValue         *big.Int `json:"kValue,omitempty"`
	Price0         *big.Rat `json:"price0,omitempty"`
	Price1         *big.Rat `json:"price1,omitempty"`
	LockedShares   *big.Int `json:"lockedShares,omitempty"`
	ProviderCount  *int     `json:"providerCount,omitempty"`
}

// IsEmpty returns true if the diff contains no changes.
func (d SnapshotDiff) IsEmpty() bool {
	return d.Reserve0 == nil && d.Reserve1 == nil && d.TotalLiquidity == nil &&
		d.KValue == nil && d.Price0 == nil && d.Price1 == nil &&
		d.LockedShares == nil && d.ProviderCount == nil
}

// Diff calculates the difference between two pool snapshots. Comparison is
// a manual check per field via Cmp, and changed values are deep-copied so
// the diff shares no memory with either snapshot.
func Diff(old, new Snapshot) SnapshotDiff {
	var diff SnapshotDiff
	if !bigIntEqual(old.Reserve0, new.Reserve0) {
		diff.Reserve0 = new.Reserve0
	}
	if !bigIntEqual(old.Reserve1, new.Reserve1) {
		diff.Reserve1 = new.Reserve1
	}
	if !bigIntEqual(old.TotalLiquidity, new.TotalLiquidity) {
		diff.TotalLiquidity = new.TotalLiquidity
	}
	if !bigIntEqual(old.KValue, new.KValue) {
		diff.KValue = new.KValue
	}
	if !bigRatEqual(old.Price0, new.Price0) {
		diff.Price0 = new.Price0
	}
	if !bigRatEqual(old.Price1, new.Price1) {
		diff.Price1 = new.Price1
	}
	if !bigIntEqual(old.LockedShares, new.LockedShares) {
		diff.LockedShares = new.LockedShares
	}
	if old.ProviderCount != new.ProviderCount {
		count := new.ProviderCount
		diff.ProviderCount = &count
	}
	return deepCopyDiff(diff)
}

// deepCopyDiff gives the diff its own memory for every set pointer field.
func deepCopyDiff(d SnapshotDiff) SnapshotDiff {
	copied := d
	if d.Reserve0 != nil {
		copied.Reserve0 = new(big.Int).Set(d.Reserve0)
	}
	if d.Reserve1 != nil {
		copied.Reserve1 = new(big.Int).Set(d.Reserve1)
	}
	if d.TotalLiquidity != nil {
		copied.TotalLiquidity = new(big.Int).Set(d.TotalLiquidity)
	}
	if d.KValue != nil {
		copied.KValue = new(big.Int).Set(d.KValue)
	}
	if d.Price0 != nil {
		copied.Price0 = new(big.Rat).Set(d.Price0)
	}
	if d.Price1 != nil {
		copied.Price1 = new(big.Rat).Set(d.Price1)
	}
	if d.LockedShares != nil {
		copied.LockedShares = new(big.Int).Set(d.LockedShares)
	}
	if d.ProviderCount != nil {
		count := *d.ProviderCount
		copied.ProviderCount = &count
	}
	return copied
}
