package amm

import "math/big"

// Patch constructs a new snapshot by applying a diff to a previous one. The
// previous snapshot is never mutated: the result starts from a deep copy, so
// the patched state shares no memory with its input.
func Patch(prev Snapshot, diff SnapshotDiff) Snapshot {
	next := prev.Clone()
	if diff.Reserve0 != nil {
		next.Reserve0 = new(big.Int).Set(diff.Reserve0)
	}
	if diff.Reserve1 != nil {
		next.Reserve1 = new(big.Int).Set(diff.Reserve1)
	}
	if diff.TotalLiquidity != nil {
		next.TotalLiquidity = new(big.Int).Set(diff.TotalLiquidity)
	}
	if diff.KValue != nil {
		next.KValue = new(big.Int).Set(diff.KValue)
	}
	if diff.Price0 != nil {
		next.Price0 = new(big.Rat).Set(diff.Price0)
	}
	if diff.Price1 != nil {
		next.Price1 = new(big.Rat).Set(diff.Price1)
	}
	if diff.LockedShares != nil {
		next.LockedShares = new(big.Int).Set(diff.LockedShares)
	}
	if diff.ProviderCount != nil {
		next.ProviderCount = *diff.ProviderCount
	}
	return next
}
