// Package consensus folds coordinate-sorted reads into per-position columns, classifies
// each column as variable or consensus, and emits either the original reads (variable
// runs) or one synthetic consensus read per run of non-variable columns.
//
// One Window is kept per read group by a Registry. A Window is not safe for concurrent use.
package consensus
