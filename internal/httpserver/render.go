package httpserver

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/lucaria/internal/pricing"
	middleware "github.com/Skotchmaster/lucaria/pkg/middleware/auth"
	"github.com/Skotchmaster/lucaria/pkg/middleware/csrf"
)

const layoutFile = "layout.html"

// Renderer executes one page template inside the shared layout.
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return pricing.Money(d) },
	"dict":  dict,
}

func dict(kv ...any) (map[string]any, error) {
	if len(kv)%2 != 0 {
		return nil, errors.New("dict: odd number of arguments")
	}
	m := make(map[string]any, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
		}
		m[k] = kv[i+1]
	}
	return m, nil
}

// NewRenderer parses every page under dir in fsys together with the layout.
func NewRenderer(fsys fs.FS, dir string) (*Renderer, error) {
	layout, err := template.New(layoutFile).Funcs(funcs).ParseFS(fsys, path.Join(dir, layoutFile))
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	files, err := fs.Glob(fsys, path.Join(dir, "*.html"))
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(files))}
	for _, f := range files {
		base := path.Base(f)
		if base == layoutFile {
			continue
		}
		t, err := layout.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(fsys, f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", base, err)
		}
		r.pages[strings.TrimSuffix(base, ".html")] = t
	}
	return r, nil
}

func (r *Renderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

// page fills the values every template reads so a missing key never reaches
// html/template.
func page(c echo.Context, data echo.Map) echo.Map {
	if data == nil {
		data = echo.Map{}
	}
	data["User"] = middleware.UserFromContext(c)
	data["CSRF"] = csrf.Token(c)
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = []string(nil)
	}
	return data
}

func render(c echo.Context, code int, name string, data echo.Map) error {
	return c.Render(code, name, page(c, data))
}
