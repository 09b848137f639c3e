package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/alextreichler/tiffin/internal/menu"
	"github.com/alextreichler/tiffin/internal/report"
	"github.com/alextreichler/tiffin/internal/sales"
	"github.com/alextreichler/tiffin/internal/store"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"
)

const adminSessionName = "admin-session"

type AdminHandler struct {
	Store        *store.Store
	Menu         *menu.Service
	Sales        *sales.Log
	SessionStore *sessions.CookieStore
	Templates    *TemplateCache
	UploadDir    string
	UploadURL    string // public prefix for UploadDir, e.g. /static/uploads/
	Now          func() time.Time
}

func (h *AdminHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *AdminHandler) LoginGet(w http.ResponseWriter, r *http.Request) {
	tmpl := h.Templates.Get("login.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, adminSessionName)
	data := map[string]interface{}{
		"CsrfField": csrf.TemplateField(r),
		"Flashes":   GetFlash(session),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

func (h *AdminHandler) LoginPost(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, adminSessionName)

	username := r.FormValue("username")
	password := r.FormValue("password")

	user, err := h.Store.GetUserByUsername(r.Context(), username)
	if err != nil {
		slog.Error("Failed to look up user", "error", err)
		addFlash(session, "error", "Internal Server Error")
		session.Save(r, w)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		addFlash(session, "error", "Invalid username or password")
		session.Save(r, w)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	session.Values["authenticated"] = true
	session.Values["user_id"] = user.ID
	session.Options.Path = "/"
	addFlash(session, "success", "Welcome, "+user.Username+"!")

	if err := session.Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}

	slog.Info("Login successful", "user_id", user.ID)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, adminSessionName)
	delete(session.Values, "authenticated")
	delete(session.Values, "user_id")
	addFlash(session, "success", "Logged out successfully!")
	session.Save(r, w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// AuthMiddleware ensures the user is logged in
func (h *AdminHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := h.SessionStore.Get(r, adminSessionName)
		if auth, ok := session.Values["authenticated"].(bool); !ok || !auth {
			slog.Debug("AuthMiddleware: not authenticated, redirecting to /login", "path", r.URL.Path)
			addFlash(session, "error", "You must be logged in to access this page.")
			session.Save(r, w)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

// Dashboard shows this month's takings and a live feed of new orders.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	now := h.now().In(h.Sales.Location())
	monthly, err := report.Build(r.Context(), h.Sales, now.Year(), now.Month())
	if err != nil {
		slog.Error("Failed to build dashboard", "error", err)
		http.Error(w, "Error fetching stats", http.StatusInternalServerError)
		return
	}
	items, err := h.Menu.List(r.Context())
	if err != nil {
		http.Error(w, "Error fetching menu", http.StatusInternalServerError)
		return
	}

	recent := sales.NewestFirst(monthly.Orders)
	if len(recent) > 5 {
		recent = recent[:5]
	}

	tmpl := h.Templates.Get("admin.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, adminSessionName)
	data := map[string]interface{}{
		"Month":     monthly.Key(),
		"Stats":     monthly.Summary,
		"Recent":    recent,
		"MenuCount": len(items),
		"CsrfField": csrf.TemplateField(r),
		"Flashes":   GetFlash(session),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}
