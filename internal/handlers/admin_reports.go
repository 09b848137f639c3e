package handlers

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/alextreichler/tiffin/internal/report"
	"github.com/alextreichler/tiffin/internal/sales"
	"github.com/gorilla/csrf"
)

// monthlyReport builds the report for the month query parameter, defaulting
// to the current month.
func (h *AdminHandler) monthlyReport(r *http.Request) (*report.Monthly, error) {
	now := h.now().In(h.Sales.Location())
	year, month := now.Year(), now.Month()
	if v := r.URL.Query().Get("month"); v != "" {
		y, m, err := report.ParseMonth(v)
		if err != nil {
			return nil, err
		}
		year, month = y, m
	}
	return report.Build(r.Context(), h.Sales, year, month)
}

func (h *AdminHandler) Reports(w http.ResponseWriter, r *http.Request) {
	monthly, err := h.monthlyReport(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tmpl := h.Templates.Get("admin_reports.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, adminSessionName)
	data := map[string]interface{}{
		"Month":     monthly.Key(),
		"Stats":     monthly.Summary,
		"Orders":    sales.NewestFirst(monthly.Orders),
		"CsrfField": csrf.TemplateField(r),
		"Flashes":   GetFlash(session),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

func (h *AdminHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	monthly, err := h.monthlyReport(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, monthly, h.Sales.Location()); err != nil {
		slog.Error("Failed to export CSV", "month", monthly.Key(), "error", err)
		http.Error(w, "Error exporting report", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+monthly.Filename("csv")+`"`)
	w.Write(buf.Bytes())
}

func (h *AdminHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	monthly, err := h.monthlyReport(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, monthly, h.Sales.Location()); err != nil {
		slog.Error("Failed to export XLSX", "month", monthly.Key(), "error", err)
		http.Error(w, "Error exporting report", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+monthly.Filename("xlsx")+`"`)
	w.Write(buf.Bytes())
}
