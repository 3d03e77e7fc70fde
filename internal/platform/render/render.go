// Copyright (c) 2026 Lexica. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package render produces the HTML pages of Lexica.

Pages are html/template files embedded in the binary. Each page defines a
"content" block and is parsed together with the shared layout, so a page
template never repeats navigation or the flash area.

Every page receives a [Page]: the viewer, pending flash messages, the
corpora the viewer can open (navigation) and page-specific data.
*/
package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taibuivan/lexica/internal/platform/apperr"
	"github.com/taibuivan/lexica/internal/platform/ctxutil"
	"github.com/taibuivan/lexica/internal/platform/flash"
	"github.com/taibuivan/lexica/internal/platform/respond"
	"github.com/taibuivan/lexica/internal/platform/sec"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names.
const (
	PageCorpusNew      = "corpus_new"
	PageCorpusInfo     = "corpus_info"
	PageCorpusFixtures = "corpus_fixtures"
	PageLogin          = "login"
	PageRegister       = "register"
	PageError          = "error"
)

var pageNames = []string{
	PageCorpusNew, PageCorpusInfo, PageCorpusFixtures,
	PageLogin, PageRegister, PageError,
}

// NavItem is one entry of the corpus navigation menu.
type NavItem struct {
	ID   int64
	Name string
}

// NavFunc lists the navigation entries for an authenticated viewer.
type NavFunc func(ctx context.Context, claims *sec.AuthClaims) ([]NavItem, error)

// Page is the data handed to every template.
type Page struct {
	Title   string
	User    *sec.AuthClaims
	Nav     []NavItem
	Flashes []flash.Message
	Data    any
}

// View is what a handler supplies for one response. Flashes are shown in
// addition to the ones pending in the store.
type View struct {
	Title   string
	Flashes []flash.Message
	Data    any
}

// Renderer executes the embedded page templates.
type Renderer struct {
	pages   map[string]*template.Template
	flashes flash.Store
	nav     NavFunc
}

var funcs = template.FuncMap{
	"join": strings.Join,
	"inc":  func(value int) int { return value + 1 },
}

// New parses every page. flashes and nav may be nil.
func New(flashes flash.Store, nav NavFunc) (*Renderer, error) {
	renderer := &Renderer{
		pages:   make(map[string]*template.Template, len(pageNames)),
		flashes: flashes,
		nav:     nav,
	}

	for _, name := range pageNames {
		page, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("render: failed to parse page %s: %w", name, err)
		}
		renderer.pages[name] = page
	}

	return renderer, nil
}

// HTML renders page with the given status.
//
// The template is executed into a buffer first so a failing template never
// leaves a half-written page behind a 200 status.
func (renderer *Renderer) HTML(writer http.ResponseWriter, request *http.Request, status int, name string, view View) {
	ctx := request.Context()
	logger := ctxutil.GetLogger(ctx)

	page, ok := renderer.pages[name]
	if !ok {
		logger.ErrorContext(ctx, "render_unknown_page", slog.String("page", name))
		http.Error(writer, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	data := Page{
		Title: view.Title,
		User:  ctxutil.GetAuthUser(ctx),
		Data:  view.Data,
	}

	if data.User != nil {
		if renderer.flashes != nil {
			pending, err := renderer.flashes.Pop(ctx, data.User.UserID)
			if err != nil {
				logger.WarnContext(ctx, "flash_pop_failed", slog.String("error", err.Error()))
			}
			data.Flashes = pending
		}
		if renderer.nav != nil {
			nav, err := renderer.nav(ctx, data.User)
			if err != nil {
				logger.WarnContext(ctx, "nav_load_failed", slog.String("error", err.Error()))
			}
			data.Nav = nav
		}
	}
	data.Flashes = append(data.Flashes, view.Flashes...)

	var buffer bytes.Buffer
	if err := page.ExecuteTemplate(&buffer, "layout.html", data); err != nil {
		logger.ErrorContext(ctx, "render_failed", slog.String("page", name), slog.String("error", err.Error()))
		http.Error(writer, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writer.Header().Set("Content-Type", "text/html; charset=utf-8")
	writer.WriteHeader(status)
	_, _ = buffer.WriteTo(writer)
}

// Error renders err on the error page with its HTTP status.
func (renderer *Renderer) Error(writer http.ResponseWriter, request *http.Request, err error) {
	appError := respond.Classify(request, err)
	renderer.HTML(writer, request, appError.HTTPStatus, PageError, View{
		Title: http.StatusText(appError.HTTPStatus),
		Data:  ErrorData{Status: appError.HTTPStatus, Error: appError},
	})
}

// ErrorData is the data of the error page.
type ErrorData struct {
	Status int
	Error  *apperr.AppError
}
