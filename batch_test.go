package tablebuilder

import (
	"reflect"
	"testing"
)

func TestPlanBatches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		totalRows int64
		batchSize int
		want      []BatchSpan
	}{
		{
			name:      "uneven final span",
			totalRows: 5,
			batchSize: 2,
			want:      []BatchSpan{{Start: 0, Count: 2}, {Start: 2, Count: 2}, {Start: 4, Count: 1}},
		},
		{
			name:      "exact multiple",
			totalRows: 4,
			batchSize: 2,
			want:      []BatchSpan{{Start: 0, Count: 2}, {Start: 2, Count: 2}},
		},
		{
			name:      "single span",
			totalRows: 3,
			batchSize: 500,
			want:      []BatchSpan{{Start: 0, Count: 3}},
		},
		{
			name:      "no rows",
			totalRows: 0,
			batchSize: 2,
			want:      nil,
		},
		{
			name:      "invalid size falls back to default",
			totalRows: 3,
			batchSize: 0,
			want:      []BatchSpan{{Start: 0, Count: 3}},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := PlanBatches(tt.totalRows, tt.batchSize)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("PlanBatches(%d, %d) = %v, want %v", tt.totalRows, tt.batchSize, got, tt.want)
			}
		})
	}
}

func TestPlanBatchesCoverage(t *testing.T) {
	t.Parallel()

	// The spans must be ordered, disjoint, and cover every row exactly once
	for total := int64(1); total <= 40; total++ {
		for size := 1; size <= 7; size++ {
			plan := PlanBatches(total, size)

			var next int64
			for i, span := range plan {
				if span.Start != next {
					t.Fatalf("PlanBatches(%d, %d) span %d starts at %d, want %d", total, size, i, span.Start, next)
				}
				if span.Count < 1 || span.Count > int64(size) {
					t.Fatalf("PlanBatches(%d, %d) span %d has count %d", total, size, i, span.Count)
				}
				if span.Count < int64(size) && i != len(plan)-1 {
					t.Fatalf("PlanBatches(%d, %d) span %d is short but not last", total, size, i)
				}
				next = span.Start + span.Count
			}
			if next != total {
				t.Fatalf("PlanBatches(%d, %d) covers %d rows, want %d", total, size, next, total)
			}
		}
	}
}
