// Copyright (c) 2026 Lexica. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package corpus

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/lexica/internal/platform/apperr"
	"github.com/taibuivan/lexica/internal/platform/config"
	"github.com/taibuivan/lexica/internal/platform/ctxutil"
	"github.com/taibuivan/lexica/internal/platform/flash"
	"github.com/taibuivan/lexica/internal/platform/middleware"
	"github.com/taibuivan/lexica/internal/platform/render"
	requestutil "github.com/taibuivan/lexica/internal/platform/request"
	"github.com/taibuivan/lexica/internal/platform/respond"
)

// # Handler Implementation

// Handler serves the corpus pages and the autocomplete endpoint.
type Handler struct {
	service     *Service
	renderer    *render.Renderer
	flashes     flash.Store
	lemmatizers []config.Lemmatizer
}

// NewHandler constructs a corpus [Handler].
func NewHandler(service *Service, renderer *render.Renderer, flashes flash.Store, lemmatizers []config.Lemmatizer) *Handler {
	return &Handler{
		service:     service,
		renderer:    renderer,
		flashes:     flashes,
		lemmatizers: lemmatizers,
	}
}

// Routes returns the corpus endpoints, to be mounted at /corpus.
//
//   - GET  /new                         intake form (login)
//   - POST /new                         registration (login)
//   - GET  /get/{corpus_id}             information page (login)
//   - GET  /{corpus_id}/fixtures        fixture export, ?format=json (login)
//   - GET  /{corpus_id}/api/{allowed_type}?form=  autocomplete (public)
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/{corpus_id}/api/{allowed_type}", handler.allowedValues)

	router.Group(func(router chi.Router) {
		router.Use(middleware.RequireLogin)

		router.Get("/new", handler.newForm)
		router.Post("/new", handler.register)
		router.Get("/get/{corpus_id}", handler.get)
		router.Get("/{corpus_id}/fixtures", handler.fixtures)
	})

	return router
}

// # Registration

// FormData is the data of the intake form page.
type FormData struct {
	Lemmatizers  []config.Lemmatizer
	ControlLists []ControlList
	Values       Submission
}

func (handler *Handler) newForm(writer http.ResponseWriter, request *http.Request) {
	handler.renderForm(writer, request, http.StatusOK, Submission{}, nil)
}

func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

	if err := requestutil.ParseForm(writer, request); err != nil {
		handler.renderFailure(writer, request, Submission{}, err)
		return
	}

	submission := SubmissionFromForm(request.PostForm)
	claims := requestutil.Claims(request)

	corpus, err := handler.service.Register(ctx, claims, submission)
	if err != nil {
		handler.renderFailure(writer, request, submission, err)
		return
	}

	if err := handler.flashes.Push(ctx, claims.UserID, flash.Success(MsgRegistered)); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "flash_push_failed", slog.String("error", err.Error()))
	}

	http.Redirect(writer, request, fmt.Sprintf("/corpus/get/%d", corpus.ID), http.StatusSeeOther)
}

// renderFailure re-renders the form with the error messages. Registration
// failures are always reported with a client status, never a 500.
func (handler *Handler) renderFailure(writer http.ResponseWriter, request *http.Request, submission Submission, err error) {
	appError := apperr.As(err)
	if appError == nil {
		appError = apperr.BadRequest(MsgCannotRegister).WithCause(err)
	}

	status := appError.HTTPStatus
	if status >= http.StatusInternalServerError {
		status = http.StatusBadRequest
	}

	handler.renderForm(writer, request, status, submission, flash.Errors(appError.Messages()...))
}

func (handler *Handler) renderForm(writer http.ResponseWriter, request *http.Request, status int, submission Submission, messages []flash.Message) {
	ctx := request.Context()

	lists, err := handler.service.ControlLists(ctx, requestutil.Claims(request))
	if err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "controllist_load_failed", slog.String("error", err.Error()))
	}

	handler.renderer.HTML(writer, request, status, render.PageCorpusNew, render.View{
		Title:   "New corpus",
		Flashes: messages,
		Data: FormData{
			Lemmatizers:  handler.lemmatizers,
			ControlLists: lists,
			Values:       submission,
		},
	})
}

// # Inspection

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	corpusID, err := requestutil.Int64Param(request, "corpus_id", "Corpus")
	if err != nil {
		handler.renderer.Error(writer, request, err)
		return
	}

	details, err := handler.service.Get(request.Context(), requestutil.Claims(request), corpusID)
	if err != nil {
		handler.renderer.Error(writer, request, err)
		return
	}

	handler.renderer.HTML(writer, request, http.StatusOK, render.PageCorpusInfo, render.View{
		Title: details.Name,
		Data:  details,
	})
}

func (handler *Handler) fixtures(writer http.ResponseWriter, request *http.Request) {
	asJSON := request.URL.Query().Get("format") == "json"

	fail := func(err error) {
		if asJSON {
			respond.Error(writer, request, err)
			return
		}
		handler.renderer.Error(writer, request, err)
	}

	corpusID, err := requestutil.Int64Param(request, "corpus_id", "Corpus")
	if err != nil {
		fail(err)
		return
	}

	fixtures, err := handler.service.Fixtures(request.Context(), requestutil.Claims(request), corpusID)
	if err != nil {
		fail(err)
		return
	}

	if asJSON {
		respond.OK(writer, fixtures)
		return
	}

	handler.renderer.HTML(writer, request, http.StatusOK, render.PageCorpusFixtures, render.View{
		Title: "Fixtures for " + fixtures.Corpus.Name,
		Data:  fixtures,
	})
}

// # Autocomplete

func (handler *Handler) allowedValues(writer http.ResponseWriter, request *http.Request) {
	corpusID, err := requestutil.Int64Param(request, "corpus_id", "Corpus")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	suggestions, err := handler.service.AllowedValues(request.Context(), corpusID,
		requestutil.Param(request, "allowed_type"), request.URL.Query().Get("form"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Raw(writer, suggestions)
}
