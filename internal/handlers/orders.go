package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/alextreichler/tiffin/internal/cart"
	"github.com/alextreichler/tiffin/internal/models"
	"github.com/alextreichler/tiffin/internal/payment"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
)

// OrderHandler serves the visitor's cart, checkout and bill.
type OrderHandler struct {
	Carts        *cart.Service
	Templates    *TemplateCache
	SessionStore *sessions.CookieStore
	Payee        payment.Payee
	QRServiceURL string
	QRSize       int
	Now          func() time.Time
}

func (h *OrderHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *OrderHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	session := visitorSession(h.SessionStore, r)

	id, err := strconv.Atoi(r.FormValue("id"))
	if err != nil {
		addFlash(session, "error", "Invalid item ID.")
		saveAndRedirect(w, r, session, "/")
		return
	}

	line, err := h.Carts.Get(cartID(session)).AddItem(r.Context(), id)
	switch {
	case errors.Is(err, cart.ErrItemNotFound):
		addFlash(session, "error", "That item is no longer on the menu.")
	case err != nil:
		slog.Error("Failed to add to cart", "item_id", id, "error", err)
		addFlash(session, "error", "Could not update your cart.")
	default:
		addFlash(session, "success", line.Name+" added to cart!")
	}
	saveAndRedirect(w, r, session, "/")
}

// ChangeQuantity applies the signed delta form field to one line.
func (h *OrderHandler) ChangeQuantity(w http.ResponseWriter, r *http.Request) {
	session := visitorSession(h.SessionStore, r)

	id, err := strconv.Atoi(r.FormValue("id"))
	if err != nil {
		addFlash(session, "error", "Invalid item ID.")
		saveAndRedirect(w, r, session, "/")
		return
	}
	delta, err := strconv.Atoi(r.FormValue("delta"))
	if err != nil {
		addFlash(session, "error", "Invalid quantity change.")
		saveAndRedirect(w, r, session, "/")
		return
	}

	line, removed, err := h.Carts.Get(cartID(session)).ChangeQuantity(r.Context(), id, delta)
	switch {
	case errors.Is(err, cart.ErrLineNotFound):
		addFlash(session, "error", "That item is not in your cart.")
	case err != nil:
		slog.Error("Failed to change quantity", "item_id", id, "error", err)
		addFlash(session, "error", "Could not update your cart.")
	case removed:
		addFlash(session, "success", line.Name+" removed from cart.")
	}
	saveAndRedirect(w, r, session, "/")
}

func (h *OrderHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	session := visitorSession(h.SessionStore, r)

	id, err := strconv.Atoi(r.FormValue("id"))
	if err != nil {
		addFlash(session, "error", "Invalid item ID.")
		saveAndRedirect(w, r, session, "/")
		return
	}
	err = h.Carts.Get(cartID(session)).RemoveItem(r.Context(), id)
	switch {
	case errors.Is(err, cart.ErrLineNotFound):
		addFlash(session, "error", "That item is not in your cart.")
	case err != nil:
		slog.Error("Failed to remove from cart", "item_id", id, "error", err)
		addFlash(session, "error", "Could not update your cart.")
	}
	saveAndRedirect(w, r, session, "/")
}

// ClearCartForm asks the visitor to confirm before the cart is emptied.
func (h *OrderHandler) ClearCartForm(w http.ResponseWriter, r *http.Request) {
	session := visitorSession(h.SessionStore, r)
	lines, err := h.Carts.Get(cartID(session)).Lines(r.Context())
	if err != nil {
		http.Error(w, "Error fetching cart", http.StatusInternalServerError)
		return
	}
	if len(lines) == 0 {
		addFlash(session, "error", "Your cart is already empty.")
		saveAndRedirect(w, r, session, "/")
		return
	}

	tmpl := h.Templates.Get("clear_cart.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	data := map[string]interface{}{
		"Lines":     lines,
		"CsrfField": csrf.TemplateField(r),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

func (h *OrderHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	session := visitorSession(h.SessionStore, r)

	confirmed := func() bool { return r.FormValue("confirm") == "yes" }
	err := h.Carts.Get(cartID(session)).Clear(r.Context(), confirmed)
	switch {
	case errors.Is(err, cart.ErrEmptyCart):
		addFlash(session, "error", "Your cart is already empty.")
	case errors.Is(err, cart.ErrDeclined):
		// Nothing to say; the cart is untouched.
	case err != nil:
		slog.Error("Failed to clear cart", "error", err)
		addFlash(session, "error", "Could not clear your cart.")
	default:
		addFlash(session, "success", "Cart cleared.")
	}
	saveAndRedirect(w, r, session, "/")
}

// Checkout shows the bill with a UPI QR code for the total.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	h.renderBill(w, r, "checkout.html")
}

// Bill is the printable copy of the current cart.
func (h *OrderHandler) Bill(w http.ResponseWriter, r *http.Request) {
	h.renderBill(w, r, "bill.html")
}

func (h *OrderHandler) renderBill(w http.ResponseWriter, r *http.Request, name string) {
	session := visitorSession(h.SessionStore, r)
	lines, err := h.Carts.Get(cartID(session)).Lines(r.Context())
	if err != nil {
		slog.Error("Failed to load cart", "error", err)
		http.Error(w, "Error fetching cart", http.StatusInternalServerError)
		return
	}
	if len(lines) == 0 {
		addFlash(session, "error", "Your cart is empty!")
		saveAndRedirect(w, r, session, "/")
		return
	}

	total := models.Total(lines)
	upi := payment.IntentURI(h.Payee, total)
	qr, err := payment.QRImageURL(h.QRServiceURL, h.QRSize, upi)
	if err != nil {
		slog.Error("Failed to build QR code link", "error", err)
		qr = ""
	}

	tmpl := h.Templates.Get(name)
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	data := map[string]interface{}{
		"Lines":     lines,
		"Total":     total,
		"UPI":       upi,
		"QRCode":    qr,
		"Payee":     h.Payee,
		"Date":      h.now(),
		"CsrfField": csrf.TemplateField(r),
		"Flashes":   GetFlash(session),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

// ConfirmOrder is pressed once the customer has paid.
func (h *OrderHandler) ConfirmOrder(w http.ResponseWriter, r *http.Request) {
	session := visitorSession(h.SessionStore, r)

	order, err := h.Carts.Get(cartID(session)).Confirm(r.Context())
	switch {
	case errors.Is(err, cart.ErrEmptyCart):
		addFlash(session, "error", "Your cart is empty!")
	case err != nil:
		slog.Error("Failed to confirm order", "error", err)
		addFlash(session, "error", "Could not record your order. Please try again.")
		saveAndRedirect(w, r, session, "/checkout")
		return
	default:
		addFlash(session, "success", "Payment confirmed! Thank you for your order #"+strconv.FormatInt(order.ID, 10)+".")
	}
	saveAndRedirect(w, r, session, "/")
}
