package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSortByDate_Stable(t *testing.T) {
	t0 := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	records := []Record{
		{Date: t0.Add(2 * time.Hour), Category: "Payments"},
		{Date: t0, Category: "Claims"},
		{Date: t0, Category: "Eligibility"},
	}

	SortByDate(records)

	assert.Equal(t, []string{"Claims", "Eligibility", "Payments"}, []string{records[0].Category, records[1].Category, records[2].Category})
	assert.True(t, IsSorted(records))
}

func TestSortedDesc_LeavesInputUntouched(t *testing.T) {
	t0 := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	records := []Record{
		{Date: t0, Category: "Claims"},
		{Date: t0.Add(time.Hour), Category: "Payments"},
	}

	desc := SortedDesc(records)

	assert.Equal(t, "Payments", desc[0].Category)
	assert.Equal(t, "Claims", records[0].Category)
	assert.False(t, IsSorted(desc))
}

func TestDatasetLen(t *testing.T) {
	assert.Equal(t, 0, (&Dataset{}).Len())
	assert.Equal(t, 2, (&Dataset{Records: make([]Record, 2)}).Len())
}
