// Package admin serves a small CRUD interface for the registered models
// under /admin/.
package admin

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/andri/pocs/internal/logger"
	"github.com/andri/pocs/pkg/forms"
	"github.com/andri/pocs/pkg/model"
	"github.com/andri/pocs/pkg/paginate"
	"github.com/andri/pocs/pkg/store"
)

// Prefix is the URL prefix the site is mounted on.
const Prefix = "/admin/"

// DefaultPerPage is the changelist page size.
const DefaultPerPage = 100

// PageParam is the changelist page query parameter.
const PageParam = "p"

//go:embed templates/*.html
var templateFS embed.FS

var pages = map[string]*template.Template{}

func init() {
	for _, name := range []string{"index.html", "change_list.html", "change_form.html", "delete_confirmation.html"} {
		pages[name] = template.Must(template.New(name).ParseFS(templateFS, "templates/base.html", "templates/"+name))
	}
}

// Site is a registry of ModelAdmins and the HTTP handler serving them.
type Site struct {
	Store   *store.Store
	PerPage int
	Title   string

	models map[string]ModelAdmin
}

// NewSite returns an empty site.
func NewSite(s *store.Store, perPage int) *Site {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	return &Site{Store: s, PerPage: perPage, Title: "Site administration", models: map[string]ModelAdmin{}}
}

// DefaultSite returns a site with every model registered.
func DefaultSite(s *store.Store, perPage int) *Site {
	site := NewSite(s, perPage)
	for _, ma := range []ModelAdmin{PostAdmin(), PostWithDefaultAdmin(), ProductAdmin()} {
		if err := site.Register(ma); err != nil {
			panic(err)
		}
	}
	return site
}

func key(app, modelName string) string {
	return strings.ToLower(app + "/" + modelName)
}

// Register adds ma to the site.
func (s *Site) Register(ma ModelAdmin) error {
	if err := ma.validate(); err != nil {
		return err
	}
	k := key(ma.Meta.AppLabel, ma.Meta.ModelName)
	if _, ok := s.models[k]; ok {
		return fmt.Errorf("model %s is already registered", ma.Meta.Label())
	}
	s.models[k] = ma
	return nil
}

// IsRegistered reports whether the model with the given label is managed
// by the site.
func (s *Site) IsRegistered(meta model.Meta) bool {
	_, ok := s.models[key(meta.AppLabel, meta.ModelName)]
	return ok
}

// App groups registered models for the index page.
type App struct {
	Label  string
	Models []model.Meta
}

// Apps returns the registered models grouped by app, sorted by name.
func (s *Site) Apps() []App {
	byApp := map[string][]model.Meta{}
	for _, ma := range s.models {
		byApp[ma.Meta.AppLabel] = append(byApp[ma.Meta.AppLabel], ma.Meta)
	}
	apps := make([]App, 0, len(byApp))
	for label, metas := range byApp {
		sort.Slice(metas, func(i, j int) bool { return metas[i].VerboseNamePlural < metas[j].VerboseNamePlural })
		apps = append(apps, App{Label: label, Models: metas})
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].Label < apps[j].Label })
	return apps
}

// ChangelistURL returns the changelist path of meta.
func ChangelistURL(meta model.Meta) string {
	return Prefix + meta.AppLabel + "/" + meta.ModelName + "/"
}

// AddURL returns the add form path of meta.
func AddURL(meta model.Meta) string {
	return ChangelistURL(meta) + "add/"
}

// ChangeURL returns the change form path of inst.
func ChangeURL(inst model.Instance) string {
	return ChangelistURL(inst.Meta()) + strconv.FormatInt(inst.PK(), 10) + "/change/"
}

// DeleteURL returns the delete confirmation path of inst.
func DeleteURL(inst model.Instance) string {
	return ChangelistURL(inst.Meta()) + strconv.FormatInt(inst.PK(), 10) + "/delete/"
}

// Handler returns the site's HTTP handler. Mount it at Prefix.
func (s *Site) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+Prefix+"{$}", s.index)
	mux.HandleFunc("GET "+Prefix+"{app}/{model}/{$}", s.changelist)
	mux.HandleFunc(Prefix+"{app}/{model}/add/{$}", s.add)
	mux.HandleFunc(Prefix+"{app}/{model}/{id}/change/{$}", s.change)
	mux.HandleFunc(Prefix+"{app}/{model}/{id}/delete/{$}", s.delete)
	return mux
}

func (s *Site) lookup(r *http.Request) (ModelAdmin, bool) {
	ma, ok := s.models[key(r.PathValue("app"), r.PathValue("model"))]
	return ma, ok
}

func (s *Site) object(w http.ResponseWriter, r *http.Request, ma ModelAdmin) (model.Instance, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return nil, false
	}
	inst, err := ma.Get(r.Context(), s.Store, id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return nil, false
	}
	if err != nil {
		s.serverError(w, r, err)
		return nil, false
	}
	return inst, true
}

func (s *Site) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pages[page].ExecuteTemplate(w, "base", data); err != nil {
		logger.FromContext(r.Context()).Error("failed to render admin page", "page", page, "error", err)
	}
}

func (s *Site) serverError(w http.ResponseWriter, r *http.Request, err error) {
	logger.FromContext(r.Context()).Error("admin request failed", "path", r.URL.Path, "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func methodNotAllowed(w http.ResponseWriter) {
	w.Header().Set("Allow", "GET, POST")
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}

type indexData struct {
	Title string
	Apps  []App
}

func (s *Site) index(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "index.html", indexData{Title: s.Title, Apps: s.Apps()})
}

// Row is one changelist entry.
type Row struct {
	Label     string
	ChangeURL string
}

type changelistData struct {
	Title string
	Meta  model.Meta
	Rows  []Row
	Page  paginate.Page
	Count int
	Links []pageLink
}

type pageLink struct {
	Number  int
	URL     string
	Current bool
}

func (s *Site) changelist(w http.ResponseWriter, r *http.Request) {
	ma, ok := s.lookup(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	ctx := r.Context()

	count, err := ma.Count(ctx, s.Store)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	p := paginate.New(count, s.PerPage, 0, true)
	page, err := p.Get(r.URL.Query().Get(PageParam))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	var items []model.Instance
	if page.Limit > 0 {
		items, err = ma.List(ctx, s.Store, store.ListOptions{Limit: page.Limit, Offset: page.Offset, Descending: true})
		if err != nil {
			s.serverError(w, r, err)
			return
		}
	}

	data := changelistData{
		Title: "Select " + ma.Meta.VerboseName + " to change",
		Meta:  ma.Meta,
		Page:  page,
		Count: count,
	}
	for _, inst := range items {
		data.Rows = append(data.Rows, Row{Label: fmt.Sprint(inst), ChangeURL: ChangeURL(inst)})
	}
	if page.HasOtherPages() {
		for _, n := range p.PageRange() {
			data.Links = append(data.Links, pageLink{
				Number:  n,
				URL:     fmt.Sprintf("%s?%s=%d", ChangelistURL(ma.Meta), PageParam, n),
				Current: n == page.Number,
			})
		}
	}

	s.render(w, r, http.StatusOK, "change_list.html", data)
}

type formData struct {
	Title          string
	Meta           model.Meta
	Fields         []forms.BoundField
	NonFieldErrors []string
	HasErrors      bool
	DeleteURL      string
}

func (s *Site) add(w http.ResponseWriter, r *http.Request) {
	ma, ok := s.lookup(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	s.serveForm(w, r, ma, nil)
}

func (s *Site) change(w http.ResponseWriter, r *http.Request) {
	ma, ok := s.lookup(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	inst, ok := s.object(w, r, ma)
	if !ok {
		return
	}
	s.serveForm(w, r, ma, inst)
}

func (s *Site) serveForm(w http.ResponseWriter, r *http.Request, ma ModelAdmin, inst model.Instance) {
	form := ma.NewForm(inst, forms.OptionsFor(s.Store))

	title := "Add " + ma.Meta.VerboseName
	data := formData{Meta: ma.Meta}
	if inst != nil {
		title = "Change " + ma.Meta.VerboseName
		data.DeleteURL = DeleteURL(inst)
	}
	data.Title = title

	switch r.Method {
	case http.MethodGet, http.MethodHead:
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		form.Bind(r.PostForm)
		saved, err := form.SaveInstance(r.Context(), s.Store)
		switch {
		case err == nil:
			s.redirectAfterSave(w, r, ma, saved)
			return
		case errors.Is(err, forms.ErrInvalidForm), errors.Is(err, store.ErrConstraint):
			// re-render with errors
		default:
			s.serverError(w, r, err)
			return
		}
	default:
		methodNotAllowed(w)
		return
	}

	data.Fields = form.Fields()
	for _, e := range form.NonFieldErrors() {
		data.NonFieldErrors = append(data.NonFieldErrors, e.Detail)
	}
	data.HasErrors = len(form.Errors()) > 0
	s.render(w, r, http.StatusOK, "change_form.html", data)
}

func (s *Site) redirectAfterSave(w http.ResponseWriter, r *http.Request, ma ModelAdmin, saved model.Instance) {
	logger.FromContext(r.Context()).Info("saved object", "model", ma.Meta.Label(), "id", saved.PK())

	target := ChangelistURL(ma.Meta)
	switch {
	case r.PostForm.Has("_continue"):
		target = ChangeURL(saved)
	case r.PostForm.Has("_addanother"):
		target = AddURL(ma.Meta)
	}
	http.Redirect(w, r, target, http.StatusFound)
}

type deleteData struct {
	Title  string
	Meta   model.Meta
	Object string
}

func (s *Site) delete(w http.ResponseWriter, r *http.Request) {
	ma, ok := s.lookup(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	inst, ok := s.object(w, r, ma)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		s.render(w, r, http.StatusOK, "delete_confirmation.html", deleteData{
			Title:  "Are you sure?",
			Meta:   ma.Meta,
			Object: fmt.Sprint(inst),
		})
	case http.MethodPost:
		if err := ma.Delete(r.Context(), s.Store, inst.PK()); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			s.serverError(w, r, err)
			return
		}
		logger.FromContext(r.Context()).Info("deleted object", "model", ma.Meta.Label(), "id", inst.PK())
		http.Redirect(w, r, ChangelistURL(ma.Meta), http.StatusFound)
	default:
		methodNotAllowed(w)
	}
}
