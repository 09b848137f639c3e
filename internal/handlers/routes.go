package handlers

import "net/http"

// Routes gathers the handlers served by the application.
type Routes struct {
	Home        *HomeHandler
	Orders      *OrderHandler
	Admin       *AdminHandler
	Feed        http.Handler
	RateLimiter *RateLimiter
	StaticDir   string
}

// Mux registers every route. Middleware (logging, headers, CSRF) wraps the
// result in main.
func (rt *Routes) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	admin := rt.Admin

	// Static Files
	if rt.StaticDir != "" {
		fileServer := http.FileServer(http.Dir(rt.StaticDir))
		mux.Handle("/static/", http.StripPrefix("/static", fileServer))
	}

	confirm := rt.Orders.ConfirmOrder
	if rt.RateLimiter != nil {
		confirm = rt.RateLimiter.Middleware(confirm)
	}

	// Public Routes
	mux.HandleFunc("/", rt.Home.Index)
	mux.HandleFunc("POST /cart/add", rt.Orders.AddToCart)
	mux.HandleFunc("POST /cart/quantity", rt.Orders.ChangeQuantity)
	mux.HandleFunc("POST /cart/remove", rt.Orders.RemoveFromCart)
	mux.HandleFunc("/cart/clear", rt.Orders.ClearCartForm) // GET confirmation
	mux.HandleFunc("POST /cart/clear", rt.Orders.ClearCart)
	mux.HandleFunc("/checkout", rt.Orders.Checkout)
	mux.HandleFunc("POST /checkout/confirm", confirm)
	mux.HandleFunc("/bill", rt.Orders.Bill)

	mux.HandleFunc("/login", admin.LoginGet)
	mux.HandleFunc("POST /login", admin.LoginPost)
	mux.HandleFunc("POST /logout", admin.Logout)

	// Protected Routes
	mux.HandleFunc("/admin", admin.AuthMiddleware(admin.Dashboard))
	mux.HandleFunc("/admin/orders", admin.AuthMiddleware(admin.ListOrders))
	mux.HandleFunc("/admin/orders/view", admin.AuthMiddleware(admin.ViewOrder))

	mux.HandleFunc("/admin/items", admin.AuthMiddleware(admin.ListItems))
	mux.HandleFunc("/admin/items/new", admin.AuthMiddleware(admin.AddItemForm))
	mux.HandleFunc("POST /admin/items", admin.AuthMiddleware(admin.CreateItem))
	mux.HandleFunc("POST /admin/items/delete", admin.AuthMiddleware(admin.DeleteItem))
	mux.HandleFunc("/admin/items/edit", admin.AuthMiddleware(admin.EditItemForm))
	mux.HandleFunc("POST /admin/items/update", admin.AuthMiddleware(admin.UpdateItem))

	mux.HandleFunc("/admin/reports", admin.AuthMiddleware(admin.Reports))
	mux.HandleFunc("/admin/reports/export.csv", admin.AuthMiddleware(admin.ExportCSV))
	mux.HandleFunc("/admin/reports/export.xlsx", admin.AuthMiddleware(admin.ExportXLSX))
	if rt.Feed != nil {
		mux.HandleFunc("/admin/feed", admin.AuthMiddleware(rt.Feed.ServeHTTP))
	}
	return mux
}
