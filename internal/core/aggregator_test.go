package core

import (
	"fmt"
	"testing"
)

func failures(n int) []ValidationFailure {
	out := make([]ValidationFailure, n)
	for i := range out {
		out[i] = ValidationFailure{Line: i + 2, RowID: fmt.Sprint(i + 1), Message: fmt.Sprintf("row %d", i+1)}
	}
	return out
}

func TestErrorAggregator_Report(t *testing.T) {
	tests := []struct {
		name          string
		limit         int
		added         int
		wantDisplayed int
		wantOverflow  int
	}{
		{name: "none", limit: 20, added: 0, wantDisplayed: 0, wantOverflow: 0},
		{name: "below cap", limit: 20, added: 5, wantDisplayed: 5, wantOverflow: 0},
		{name: "exactly cap", limit: 20, added: 20, wantDisplayed: 20, wantOverflow: 0},
		{name: "one over cap", limit: 20, added: 21, wantDisplayed: 20, wantOverflow: 1},
		{name: "far over cap", limit: 20, added: 25, wantDisplayed: 20, wantOverflow: 5},
		{name: "default cap", limit: 0, added: 30, wantDisplayed: 20, wantOverflow: 10},
		{name: "custom cap", limit: 3, added: 4, wantDisplayed: 3, wantOverflow: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := NewErrorAggregator(tt.limit)
			for _, f := range failures(tt.added) {
				agg.Add(f)
			}

			report := agg.Report()
			if len(report.Displayed) != tt.wantDisplayed {
				t.Errorf("len(Displayed) = %d, want %d", len(report.Displayed), tt.wantDisplayed)
			}
			if report.Overflow != tt.wantOverflow {
				t.Errorf("Overflow = %d, want %d", report.Overflow, tt.wantOverflow)
			}
			if report.Total != tt.added || agg.Total() != tt.added {
				t.Errorf("Total = %d, want %d", report.Total, tt.added)
			}
		})
	}
}

func TestErrorAggregator_KeepsEarliestInOrder(t *testing.T) {
	agg := NewErrorAggregator(3)
	for _, f := range failures(5) {
		agg.Add(f)
	}

	report := agg.Report()
	for i, msg := range report.Displayed {
		if want := fmt.Sprintf("row %d", i+1); msg != want {
			t.Errorf("Displayed[%d] = %q, want %q", i, msg, want)
		}
	}

	// Report returns a copy
	report.Displayed[0] = "changed"
	if agg.Report().Displayed[0] != "row 1" {
		t.Error("Report() exposed internal state")
	}
}

func TestErrorAggregator_NoDeduplication(t *testing.T) {
	agg := NewErrorAggregator(20)
	same := ValidationFailure{Message: "ユニークID 1: 物件名 を入力してください"}
	agg.Add(same)
	agg.Add(same)

	if got := len(agg.Report().Displayed); got != 2 {
		t.Errorf("len(Displayed) = %d, want 2", got)
	}
}
