package handlers

import (
	"log/slog"
	"net/http"

	"github.com/alextreichler/tiffin/internal/cart"
	"github.com/alextreichler/tiffin/internal/menu"
	"github.com/alextreichler/tiffin/internal/models"
	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
)

const publicSession = "public-session"

type HomeHandler struct {
	Menu         *menu.Service
	Carts        *cart.Service
	Templates    *TemplateCache
	SessionStore *sessions.CookieStore
}

func (h *HomeHandler) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	items, err := h.Menu.List(r.Context())
	if err != nil {
		slog.Error("Failed to load menu", "error", err)
		http.Error(w, "Error fetching menu", http.StatusInternalServerError)
		return
	}

	session := visitorSession(h.SessionStore, r)
	c := h.Carts.Get(cartID(session))
	lines, err := c.Lines(r.Context())
	if err != nil {
		slog.Error("Failed to load cart", "error", err)
		http.Error(w, "Error fetching cart", http.StatusInternalServerError)
		return
	}

	tmpl := h.Templates.Get("home.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	adminSession, _ := h.SessionStore.Get(r, adminSessionName)
	isAdmin := false
	if auth, ok := adminSession.Values["authenticated"].(bool); ok && auth {
		isAdmin = true
	}

	data := map[string]interface{}{
		"Items":     items,
		"Lines":     lines,
		"Total":     models.Total(lines),
		"CsrfField": csrf.TemplateField(r),
		"Flashes":   GetFlash(session),
		"IsAdmin":   isAdmin,
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

// visitorSession returns the public session, tolerating a cookie signed with
// an old key by starting afresh.
func visitorSession(store *sessions.CookieStore, r *http.Request) *sessions.Session {
	session, err := store.Get(r, publicSession)
	if err != nil {
		slog.Debug("Discarding unreadable public session", "error", err)
	}
	return session
}

// cartID returns the visitor's cart id, minting one on first use. The caller
// must save the session.
func cartID(session *sessions.Session) string {
	if id, ok := session.Values["cart_id"].(string); ok && id != "" {
		return id
	}
	id := uuid.New().String()
	session.Values["cart_id"] = id
	return id
}
