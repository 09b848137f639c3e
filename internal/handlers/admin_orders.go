package handlers

import (
	"net/http"
	"strconv"

	"github.com/alextreichler/tiffin/internal/models"
	"github.com/alextreichler/tiffin/internal/sales"
	"github.com/gorilla/csrf"
)

const maxPageSize = 100

// ListOrders pages through the whole sales log, newest first.
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	pageStr := r.URL.Query().Get("page")
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}

	limitStr := r.URL.Query().Get("limit")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		limit = 10 // Default limit
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	all, err := h.Sales.All(r.Context())
	if err != nil {
		http.Error(w, "Error fetching orders", http.StatusInternalServerError)
		return
	}
	all = sales.NewestFirst(all)

	totalPages := (len(all) + limit - 1) / limit
	if totalPages == 0 { // Handle case with no orders
		totalPages = 1
	}

	offset := (page - 1) * limit
	var orders []models.Order
	if offset < len(all) {
		orders = all[offset:min(offset+limit, len(all))]
	}

	tmpl := h.Templates.Get("admin_orders.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}

	session, _ := h.SessionStore.Get(r, adminSessionName)
	data := map[string]interface{}{
		"Orders":      orders,
		"Flashes":     GetFlash(session),
		"CurrentPage": page,
		"TotalPages":  totalPages,
		"Limit":       limit,
		"CsrfField":   csrf.TemplateField(r),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

// ViewOrder reprints the bill of a recorded order.
func (h *AdminHandler) ViewOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	all, err := h.Sales.All(r.Context())
	if err != nil {
		http.Error(w, "Error fetching orders", http.StatusInternalServerError)
		return
	}

	var order *models.Order
	for i := range all {
		if all[i].ID == id {
			order = &all[i]
			break
		}
	}
	if order == nil {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}

	tmpl := h.Templates.Get("bill.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	data := map[string]interface{}{
		"Lines":   order.Items,
		"Total":   order.Total,
		"Date":    order.Date,
		"OrderID": order.ID,
	}
	tmpl.Execute(w, data)
}
