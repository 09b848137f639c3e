package report

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alextreichler/tiffin/internal/models"
	"github.com/tealeg/xlsx"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name   string
		totals []int
		want   Summary
	}{
		{"empty", nil, Summary{}},
		{"single", []int{65}, Summary{TotalSales: 65, TotalOrders: 1, AverageOrder: 65}},
		{"exact", []int{10, 20, 30}, Summary{TotalSales: 60, TotalOrders: 3, AverageOrder: 20}},
		{"rounds half up", []int{10, 15}, Summary{TotalSales: 25, TotalOrders: 2, AverageOrder: 13}},
		{"rounds down", []int{10, 10, 11}, Summary{TotalSales: 31, TotalOrders: 3, AverageOrder: 10}},
		{"rounds up", []int{10, 11, 11}, Summary{TotalSales: 32, TotalOrders: 3, AverageOrder: 11}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var orders []models.Order
			for _, total := range tt.totals {
				orders = append(orders, models.Order{Total: total})
			}
			if got := Summarize(orders); got != tt.want {
				t.Fatalf("Summarize = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseMonth(t *testing.T) {
	year, month, err := ParseMonth("2026-10")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if year != 2026 || month != time.October {
		t.Fatalf("got %d-%v", year, month)
	}
	for _, bad := range []string{"", "2026", "2026-13", "10-2026"} {
		if _, _, err := ParseMonth(bad); err == nil {
			t.Errorf("ParseMonth(%q) expected error", bad)
		}
	}
}

type stubSource struct {
	orders []models.Order
	err    error
	year   int
	month  time.Month
}

func (s *stubSource) ByMonth(_ context.Context, year int, month time.Month) ([]models.Order, error) {
	s.year, s.month = year, month
	return s.orders, s.err
}

func sampleMonth(t *testing.T) *Monthly {
	t.Helper()
	src := &stubSource{orders: []models.Order{
		{
			ID:   1,
			Date: time.Date(2026, time.October, 3, 4, 15, 0, 0, time.UTC),
			Items: []models.CartLine{
				{ID: 1, Name: "Idly", Price: 10, Quantity: 2},
				{ID: 4, Name: "Dosa", Price: 45, Quantity: 1},
			},
			Total: 65,
		},
		{
			ID:    2,
			Date:  time.Date(2026, time.October, 9, 13, 0, 0, 0, time.UTC),
			Items: []models.CartLine{{ID: 6, Name: "Tea", Price: 15, Quantity: 2}},
			Total: 30,
		},
	}}
	m, err := Build(context.Background(), src, 2026, time.October)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if src.year != 2026 || src.month != time.October {
		t.Fatalf("queried %d-%v", src.year, src.month)
	}
	return m
}

func TestBuild(t *testing.T) {
	m := sampleMonth(t)
	if m.Summary != (Summary{TotalSales: 95, TotalOrders: 2, AverageOrder: 48}) {
		t.Fatalf("summary = %+v", m.Summary)
	}
	if m.Key() != "2026-10" {
		t.Fatalf("key = %q", m.Key())
	}
	if m.Filename("csv") != "sales-report-2026-10.csv" {
		t.Fatalf("filename = %q", m.Filename("csv"))
	}

	_, err := Build(context.Background(), &stubSource{err: errors.New("boom")}, 2026, time.October)
	if err == nil {
		t.Fatal("expected build error")
	}
}

func TestWriteCSV(t *testing.T) {
	m := sampleMonth(t)
	ist := time.FixedZone("IST", 5*3600+1800)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, m, ist); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	want := strings.Join([]string{
		"Date,Time,Items,Quantity,Total",
		"03/10/2026,09:45 am,Idly,2,₹20",
		"03/10/2026,09:45 am,Dosa,1,₹45",
		"03/10/2026,09:45 am,TOTAL,,₹65",
		"",
		"09/10/2026,06:30 pm,Tea,2,₹30",
		"09/10/2026,06:30 pm,TOTAL,,₹30",
		"",
		"",
		"Summary",
		"Total Orders,2",
		"Total Sales,₹95",
		"Average Order,₹48",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Fatalf("csv mismatch\n got:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriteXLSX(t *testing.T) {
	m := sampleMonth(t)

	var buf bytes.Buffer
	if err := WriteXLSX(&buf, m, time.UTC); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}

	file, err := xlsx.OpenBinary(buf.Bytes())
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	sales, ok := file.Sheet["Sales"]
	if !ok {
		t.Fatal("missing Sales sheet")
	}
	// header + 3 item rows + 2 total rows
	if len(sales.Rows) != 6 {
		t.Fatalf("sales rows = %d, want 6", len(sales.Rows))
	}
	if got := sales.Rows[1].Cells[3].Value; got != "Idly" {
		t.Fatalf("first item = %q", got)
	}

	summary, ok := file.Sheet["Summary"]
	if !ok {
		t.Fatal("missing Summary sheet")
	}
	if got := summary.Rows[2].Cells[1].Value; got != "95" {
		t.Fatalf("total sales cell = %q, want 95", got)
	}
}
