package tablebuilder

// BatchSpan is one contiguous slice of rows emitted as a single INSERT
// statement.
type BatchSpan struct {
	// Start is the zero-based index of the first row in the batch
	Start int64
	// Count is the number of rows in the batch
	Count int64
}

// PlanBatches derives the ordered batch plan for a total row count and batch
// size. The spans are disjoint, ordered, and cover the whole row range
// exactly once with no gaps or overlaps. A non-positive batch size falls
// back to DefaultBatchSize.
func PlanBatches(totalRows int64, batchSize int) []BatchSpan {
	if totalRows <= 0 {
		return nil
	}
	size := int64(NewBatchSize(batchSize).Int())

	plan := make([]BatchSpan, 0, (totalRows+size-1)/size)
	for start := int64(0); start < totalRows; start += size {
		count := size
		if start+count > totalRows {
			count = totalRows - start
		}
		plan = append(plan, BatchSpan{Start: start, Count: count})
	}
	return plan
}
