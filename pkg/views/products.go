// Package views serves the product list and wires the HTTP server.
package views

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/andri/pocs/internal/logger"
	"github.com/andri/pocs/pkg/filters"
	"github.com/andri/pocs/pkg/model"
	"github.com/andri/pocs/pkg/paginate"
	"github.com/andri/pocs/pkg/store"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))

// ProductListPath is where the product list is mounted.
const ProductListPath = "/django_filter_pagination/product/"

// DefaultProductsPerPage is the product list page size.
const DefaultProductsPerPage = 2

// ProductList lists products filtered by ProductFilter, a page at a time.
type ProductList struct {
	Store   *store.Store
	PerPage int
}

// ProductListPage is the data behind one rendered page.
type ProductListPage struct {
	Filter    *filters.ProductFilter
	Paginator *paginate.Paginator
	Page      paginate.Page
	Products  []model.Product
	path      string
}

// Load applies the filter and page parameters in values. It returns an
// error matching paginate.ErrPageNotAnInteger or paginate.ErrEmptyPage for
// a bad page parameter.
func (v *ProductList) Load(ctx context.Context, values url.Values) (*ProductListPage, error) {
	perPage := v.PerPage
	if perPage < 1 {
		perPage = DefaultProductsPerPage
	}

	f := filters.Parse(values)
	q, ok := f.Query()

	count := 0
	if ok {
		var err error
		if count, err = v.Store.Products().CountFiltered(ctx, q); err != nil {
			return nil, err
		}
	}

	p := paginate.New(count, perPage, 0, true)
	page, err := p.Get(values.Get("page"))
	if err != nil {
		return nil, err
	}

	result := &ProductListPage{Filter: f, Paginator: p, Page: page, path: ProductListPath}
	if ok && page.Limit > 0 {
		q.Limit, q.Offset = page.Limit, page.Offset
		if result.Products, err = v.Store.Products().Filter(ctx, q); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// PageURL returns the list URL for page n, keeping the filter parameters.
func (p *ProductListPage) PageURL(n int) string {
	values := p.Filter.Values()
	values.Set("page", strconv.Itoa(n))
	return p.path + "?" + values.Encode()
}

type productJSON struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	ReleaseDate model.Date `json:"release_date"`
}

type productListJSON struct {
	Count    int                 `json:"count"`
	NumPages int                 `json:"num_pages"`
	Page     int                 `json:"page"`
	Next     *string             `json:"next"`
	Previous *string             `json:"previous"`
	Results  []productJSON       `json:"results"`
	Errors   map[string][]string `json:"errors"`
}

func (p *ProductListPage) payload() productListJSON {
	out := productListJSON{
		Count:    p.Paginator.Count,
		NumPages: p.Paginator.NumPages(),
		Page:     p.Page.Number,
		Results:  make([]productJSON, 0, len(p.Products)),
		Errors:   p.Filter.ErrorMap(),
	}
	if out.Errors == nil {
		out.Errors = map[string][]string{}
	}
	if p.Page.HasNext {
		next := p.PageURL(p.Page.NextPageNumber)
		out.Next = &next
	}
	if p.Page.HasPrevious {
		prev := p.PageURL(p.Page.PreviousPageNumber)
		out.Previous = &prev
	}
	for _, pr := range p.Products {
		out.Results = append(out.Results, productJSON{
			ID:          pr.ID,
			Name:        pr.Name,
			Description: pr.Description,
			ReleaseDate: pr.ReleaseDate,
		})
	}
	return out
}

func (v *ProductList) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	values := r.URL.Query()

	page, err := v.Load(r.Context(), values)
	switch {
	case errors.Is(err, paginate.ErrPageNotAnInteger), errors.Is(err, paginate.ErrEmptyPage):
		log.Debug("invalid page", "error", err)
		http.NotFound(w, r)
		return
	case err != nil:
		log.Error("failed to list products", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, page.payload())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, "product_list.html", page); err != nil {
		log.Error("failed to render product list", "error", err)
	}
}

func wantsJSON(r *http.Request) bool {
	if r.URL.Query().Get("format") == "json" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}
