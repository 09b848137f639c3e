package handlers

import (
	"fmt"
	"html/template"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/alextreichler/tiffin/internal/menu"
	"github.com/alextreichler/tiffin/internal/models"
)

// TemplateCache holds parsed templates
type TemplateCache struct {
	cache map[string]*template.Template
	mu    sync.RWMutex
	funcs template.FuncMap
}

func NewTemplateCache() *TemplateCache {
	return &TemplateCache{
		cache: make(map[string]*template.Template),
		funcs: make(template.FuncMap),
	}
}

// AddFunc registers fn for templates parsed by later Load calls.
func (tc *TemplateCache) AddFunc(name string, fn any) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.funcs[name] = fn
}

// Load parses all templates in dir
func (tc *TemplateCache) Load(dir string) error {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	files, err := filepath.Glob(filepath.Join(dir, "*.html"))
	if err != nil {
		return err
	}
	for _, file := range files {
		name := filepath.Base(file)
		tmpl, err := template.New(name).Funcs(tc.funcs).ParseFiles(file)
		if err != nil {
			slog.Error("Failed to parse template", "file", file, "error", err)
			return err
		}
		tc.cache[name] = tmpl
		slog.Debug("Cached template", "name", name)
	}
	return nil
}

func (tc *TemplateCache) Get(name string) *template.Template {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.cache[name]
}

// AddDefaultFuncs registers the helpers every page uses. Dates are shown in loc.
func (tc *TemplateCache) AddDefaultFuncs(loc *time.Location) {
	tc.AddFunc("rupees", func(amount int) string { return fmt.Sprintf("₹%d", amount) })
	tc.AddFunc("emoji", menu.Emoji)
	tc.AddFunc("lineAmount", func(l models.CartLine) int { return l.Amount() })
	tc.AddFunc("formatDate", func(t time.Time) string { return t.In(loc).Format("02/01/2006") })
	tc.AddFunc("formatTime", func(t time.Time) string { return t.In(loc).Format("03:04 pm") })
	tc.AddFunc("prevPage", func(currentPage int) int { return currentPage - 1 })
	tc.AddFunc("nextPage", func(currentPage int) int { return currentPage + 1 })
}
