package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kilianp07/energyadvisor/core/model"
)

func sample() ([]model.PricePoint, model.ScheduleSolution) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	prices := []model.PricePoint{
		{Start: start, End: start.Add(30 * time.Minute), Price: decimal.RequireFromString("0.10"), Currency: "EUR"},
		{Start: start.Add(30 * time.Minute), End: start.Add(time.Hour), Price: decimal.RequireFromString("0.20"), Currency: "EUR"},
	}
	sol := model.ScheduleSolution{
		GeneratedAt:  start.Add(-time.Hour),
		HorizonStart: start,
		HorizonEnd:   start.Add(time.Hour),
		Activities: []model.ScheduledActivity{{
			ActivityID: "wash",
			Start:      start,
			End:        start.Add(30 * time.Minute),
			SlotPrices: prices[:1],
			Cost:       decimal.RequireFromString("0.05"),
		}},
		TotalCost:              decimal.RequireFromString("0.05"),
		AveragePrice:           decimal.RequireFromString("0.1"),
		UnscheduledActivityIDs: []string{"dry"},
	}
	return prices, sol
}

func TestWriteJSON(t *testing.T) {
	_, sol := sample()
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sol); err != nil {
		t.Fatalf("write: %v", err)
	}
	var doc PlanDocument
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.TotalCost != "0.05" || doc.AveragePrice != "0.1" {
		t.Fatalf("unexpected money fields %+v", doc)
	}
	if doc.HorizonStart != "2025-01-01T00:00:00Z" {
		t.Fatalf("unexpected horizon start %s", doc.HorizonStart)
	}
	if len(doc.Activities) != 1 || len(doc.Activities[0].Slots) != 1 || doc.Activities[0].Slots[0].Price != "0.1" {
		t.Fatalf("unexpected activities %+v", doc.Activities)
	}
	if len(doc.Unscheduled) != 1 || doc.Unscheduled[0] != "dry" {
		t.Fatalf("unexpected unscheduled %v", doc.Unscheduled)
	}
}

func TestNewPlanDocumentEmptySlices(t *testing.T) {
	doc := NewPlanDocument(model.ScheduleSolution{})
	b, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"unscheduled":[]`) || !strings.Contains(string(b), `"activities":[]`) {
		t.Fatalf("expected empty arrays, got %s", b)
	}
}

func TestWriteCSV(t *testing.T) {
	_, sol := sample()
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sol); err != nil {
		t.Fatalf("write: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[1][0] != "wash" || rows[1][4] != "30" || rows[1][5] != "0.05" {
		t.Fatalf("unexpected row %v", rows[1])
	}
	if rows[2][0] != "dry" || rows[2][1] != "unscheduled" {
		t.Fatalf("unexpected row %v", rows[2])
	}
}

func TestPriceChartHTML(t *testing.T) {
	prices, sol := sample()
	html, err := PriceChartHTML(prices, &sol)
	if err != nil {
		t.Fatalf("chart: %v", err)
	}
	if !strings.Contains(html, "Price timeline") || !strings.Contains(html, "wash") {
		t.Fatalf("chart missing content")
	}
	if _, err := PriceChartHTML(nil, nil); err == nil {
		t.Fatalf("expected error without prices")
	}
}
