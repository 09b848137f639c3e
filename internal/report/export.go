package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/tealeg/xlsx"
)

const (
	currencySymbol = "₹"
	dateLayout     = "02/01/2006"
	timeLayout     = "03:04 pm"
)

func rupees(amount int) string {
	return currencySymbol + strconv.Itoa(amount)
}

// WriteCSV writes one row per line item and a TOTAL row per order,
// followed by the month summary. Times are rendered in loc.
func WriteCSV(w io.Writer, m *Monthly, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	cw := csv.NewWriter(w)
	write := func(record ...string) {
		_ = cw.Write(record) // error surfaces through cw.Error
	}

	write("Date", "Time", "Items", "Quantity", "Total")
	for _, o := range m.Orders {
		d := o.Date.In(loc)
		date, clock := d.Format(dateLayout), d.Format(timeLayout)
		for _, line := range o.Items {
			write(date, clock, line.Name, strconv.Itoa(line.Quantity), rupees(line.Amount()))
		}
		write(date, clock, "TOTAL", "", rupees(o.Total))
		write("")
	}

	write("")
	write("Summary")
	write("Total Orders", strconv.Itoa(m.Summary.TotalOrders))
	write("Total Sales", rupees(m.Summary.TotalSales))
	write("Average Order", rupees(m.Summary.AverageOrder))

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteXLSX writes the same report as a workbook with a Sales sheet and a
// Summary sheet.
func WriteXLSX(w io.Writer, m *Monthly, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Sales")
	if err != nil {
		return fmt.Errorf("add sales sheet: %w", err)
	}

	headers := []string{"Order", "Date", "Time", "Item", "Quantity", "Price", "Amount"}
	headerRow := sheet.AddRow()
	for _, h := range headers {
		headerRow.AddCell().SetValue(h)
	}

	for _, o := range m.Orders {
		d := o.Date.In(loc)
		for _, line := range o.Items {
			row := sheet.AddRow()
			row.AddCell().SetValue(o.ID)
			row.AddCell().SetValue(d.Format(dateLayout))
			row.AddCell().SetValue(d.Format(timeLayout))
			row.AddCell().SetValue(line.Name)
			row.AddCell().SetValue(line.Quantity)
			row.AddCell().SetValue(line.Price)
			row.AddCell().SetValue(line.Amount())
		}
		total := sheet.AddRow()
		total.AddCell().SetValue(o.ID)
		total.AddCell().SetValue(d.Format(dateLayout))
		total.AddCell().SetValue(d.Format(timeLayout))
		total.AddCell().SetValue("TOTAL")
		total.AddCell()
		total.AddCell()
		total.AddCell().SetValue(o.Total)
	}

	summary, err := file.AddSheet("Summary")
	if err != nil {
		return fmt.Errorf("add summary sheet: %w", err)
	}
	for _, kv := range []struct {
		label string
		value any
	}{
		{"Month", m.Key()},
		{"Total Orders", m.Summary.TotalOrders},
		{"Total Sales", m.Summary.TotalSales},
		{"Average Order", m.Summary.AverageOrder},
	} {
		row := summary.AddRow()
		row.AddCell().SetValue(kv.label)
		row.AddCell().SetValue(kv.value)
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
