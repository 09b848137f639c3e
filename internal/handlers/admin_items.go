package handlers

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alextreichler/tiffin/internal/menu"
	"github.com/alextreichler/tiffin/internal/models"
	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/nfnt/resize"
)

var errUnsupportedImage = errors.New("unsupported image format")

func (h *AdminHandler) AddItemForm(w http.ResponseWriter, r *http.Request) {
	h.renderItemForm(w, r, models.MenuItem{}, false)
}

func (h *AdminHandler) EditItemForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	item, err := h.Menu.Get(r.Context(), id)
	if errors.Is(err, menu.ErrNotFound) {
		http.Error(w, "Item not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Error fetching item", http.StatusInternalServerError)
		return
	}
	h.renderItemForm(w, r, item, true)
}

func (h *AdminHandler) renderItemForm(w http.ResponseWriter, r *http.Request, item models.MenuItem, editing bool) {
	tmpl := h.Templates.Get("admin_item_form.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, adminSessionName)
	data := map[string]interface{}{
		"CsrfField": csrf.TemplateField(r),
		"Flashes":   GetFlash(session),
		"Item":      item,
		"Editing":   editing,
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

func (h *AdminHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, adminSessionName)

	if err := parseItemForm(r); err != nil {
		addFlash(session, "error", "File too large. Max 10MB.")
		saveAndRedirect(w, r, session, "/admin/items/new")
		return
	}

	item, problems := itemFromForm(r)
	if len(problems) > 0 {
		for _, msg := range problems {
			addFlash(session, "error", msg)
		}
		saveAndRedirect(w, r, session, "/admin/items/new")
		return
	}

	uploaded, err := h.saveUpload(r)
	if err != nil {
		addFlash(session, "error", uploadMessage(err))
		saveAndRedirect(w, r, session, "/admin/items/new")
		return
	}
	if uploaded != "" {
		item.Image = uploaded
	}

	_, err = h.Menu.Add(r.Context(), item)
	if err != nil {
		h.discardUpload(uploaded)
	}
	if errors.Is(err, menu.ErrInvalidItem) {
		addFlash(session, "error", "Please enter item name and price")
		saveAndRedirect(w, r, session, "/admin/items/new")
		return
	}
	if err != nil {
		slog.Error("Failed to add menu item", "error", err)
		addFlash(session, "error", "Error saving item.")
		saveAndRedirect(w, r, session, "/admin/items/new")
		return
	}

	addFlash(session, "success", "Item added successfully!")
	saveAndRedirect(w, r, session, "/admin/items")
}

func (h *AdminHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, adminSessionName)

	if err := parseItemForm(r); err != nil {
		addFlash(session, "error", "File too large.")
		saveAndRedirect(w, r, session, "/admin/items")
		return
	}

	id, err := strconv.Atoi(r.FormValue("id"))
	if err != nil {
		addFlash(session, "error", "Invalid ID.")
		saveAndRedirect(w, r, session, "/admin/items")
		return
	}
	back := fmt.Sprintf("/admin/items/edit?id=%d", id)

	item, problems := itemFromForm(r)
	if len(problems) > 0 {
		for _, msg := range problems {
			addFlash(session, "error", msg)
		}
		saveAndRedirect(w, r, session, back)
		return
	}

	uploaded, err := h.saveUpload(r)
	if err != nil {
		addFlash(session, "error", uploadMessage(err))
		saveAndRedirect(w, r, session, back)
		return
	}
	if uploaded != "" {
		item.Image = uploaded
	}

	patch := models.MenuItemPatch{
		Name:        &item.Name,
		Price:       &item.Price,
		Image:       &item.Image,
		Description: &item.Description,
	}
	_, err = h.Menu.Update(r.Context(), id, patch)
	if err != nil {
		h.discardUpload(uploaded)
	}
	switch {
	case errors.Is(err, menu.ErrNotFound):
		addFlash(session, "error", "Item not found.")
		saveAndRedirect(w, r, session, "/admin/items")
		return
	case errors.Is(err, menu.ErrInvalidItem):
		addFlash(session, "error", "Please enter item name and price")
		saveAndRedirect(w, r, session, back)
		return
	case err != nil:
		slog.Error("Failed to update menu item", "id", id, "error", err)
		addFlash(session, "error", "Error updating item.")
		saveAndRedirect(w, r, session, back)
		return
	}

	addFlash(session, "success", "Item updated successfully!")
	saveAndRedirect(w, r, session, "/admin/items")
}

func (h *AdminHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, adminSessionName)

	id, err := strconv.Atoi(r.FormValue("id"))
	if err != nil {
		addFlash(session, "error", "Invalid ID.")
		saveAndRedirect(w, r, session, "/admin/items")
		return
	}

	if err := h.Menu.Delete(r.Context(), id); err != nil {
		slog.Error("Failed to delete menu item", "id", id, "error", err)
		addFlash(session, "error", "Error deleting item.")
		saveAndRedirect(w, r, session, "/admin/items")
		return
	}

	addFlash(session, "success", "Item deleted successfully!")
	saveAndRedirect(w, r, session, "/admin/items")
}

// parseItemForm accepts both multipart and plain url-encoded submissions.
func parseItemForm(r *http.Request) error {
	err := r.ParseMultipartForm(10 << 20) // 10MB
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

func itemFromForm(r *http.Request) (models.MenuItem, []string) {
	item := models.MenuItem{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Image:       strings.TrimSpace(r.FormValue("image")),
		Description: strings.TrimSpace(r.FormValue("description")),
	}

	var problems []string
	if item.Name == "" {
		problems = append(problems, "Name is required.")
	}
	priceStr := strings.TrimSpace(r.FormValue("price"))
	if priceStr == "" {
		problems = append(problems, "Price is required.")
	} else if price, err := strconv.Atoi(priceStr); err != nil {
		problems = append(problems, "Price must be a whole number of rupees.")
	} else if price <= 0 {
		problems = append(problems, "Price must be positive.")
	} else {
		item.Price = price
	}
	return item, problems
}

// saveUpload stores the optional image_file upload as an 800px wide JPEG and
// returns its public path, or "" when nothing was uploaded.
func (h *AdminHandler) saveUpload(r *http.Request) (string, error) {
	file, header, err := r.FormFile("image_file")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer file.Close()

	img, err := decodeImage(file, header)
	if err != nil {
		return "", err
	}

	// Resize image (max width 800px, preserve aspect ratio)
	resized := resize.Resize(800, 0, img, resize.Lanczos3)

	filename := fmt.Sprintf("%s.jpg", uuid.New().String())
	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		return "", err
	}
	dst := filepath.Join(h.UploadDir, filename)
	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}

	err = jpeg.Encode(out, resized, &jpeg.Options{Quality: 80})
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst)
		return "", err
	}
	return h.uploadURL() + filename, nil
}

// uploadURL is the public path prefix under which UploadDir is served.
func (h *AdminHandler) uploadURL() string {
	if h.UploadURL == "" {
		return "/static/uploads/"
	}
	return strings.TrimSuffix(h.UploadURL, "/") + "/"
}

// discardUpload removes a stored upload that no menu item ended up using.
func (h *AdminHandler) discardUpload(publicPath string) {
	if publicPath == "" {
		return
	}
	file := filepath.Join(h.UploadDir, path.Base(publicPath))
	if err := os.Remove(file); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to remove unused upload", "file", file, "error", err)
	}
}

func decodeImage(file multipart.File, header *multipart.FileHeader) (image.Image, error) {
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".png":
		return png.Decode(file)
	case ".jpg", ".jpeg":
		return jpeg.Decode(file)
	default:
		return nil, errUnsupportedImage
	}
}

func uploadMessage(err error) string {
	if errors.Is(err, errUnsupportedImage) {
		return "Unsupported image format. Only PNG, JPG, JPEG are allowed."
	}
	slog.Error("Failed to store uploaded image", "error", err)
	return "Error saving image file."
}
