// Copyright (c) 2026 Lexica. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/lexica/internal/platform/constants"
	"github.com/taibuivan/lexica/internal/platform/ctxutil"
	"github.com/taibuivan/lexica/internal/platform/flash"
	"github.com/taibuivan/lexica/internal/platform/middleware"
	"github.com/taibuivan/lexica/internal/platform/render"
	requestutil "github.com/taibuivan/lexica/internal/platform/request"
	"github.com/taibuivan/lexica/internal/platform/respond"
)

// DefaultLandingPath is where a browser goes after logging in without a
// "next" parameter.
const DefaultLandingPath = "/corpus/new"

// # Definitions & Constructors

// Handler serves the login, registration and logout forms.
type Handler struct {
	service       *Service
	renderer      *render.Renderer
	flashes       flash.Store
	secureCookies bool
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service, renderer *render.Renderer, flashes flash.Store, secureCookies bool) *Handler {
	return &Handler{
		service:       service,
		renderer:      renderer,
		flashes:       flashes,
		secureCookies: secureCookies,
	}
}

// Routes returns the authentication endpoints, to be mounted at /auth.
//
//   - GET/POST /login
//   - GET/POST /register
//   - POST     /logout
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/login", handler.loginForm)
	router.Post("/login", handler.login)
	router.Get("/register", handler.registerForm)
	router.Post("/register", handler.register)
	router.Post("/logout", handler.logout)

	return router
}

// # Form Data

// LoginData is the data of the login page.
type LoginData struct {
	Next  string
	Login string
}

// RegisterData is the data of the registration page. The password is never
// echoed back.
type RegisterData struct {
	Username    string
	Email       string
	DisplayName string
}

// # Login

func (handler *Handler) loginForm(writer http.ResponseWriter, request *http.Request) {
	next := SafeNext(request.URL.Query().Get(FieldNext))

	if requestutil.Claims(request) != nil {
		http.Redirect(writer, request, next, http.StatusSeeOther)
		return
	}

	handler.renderer.HTML(writer, request, http.StatusOK, render.PageLogin, render.View{
		Title: "Log in",
		Data:  LoginData{Next: next},
	})
}

func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	if err := requestutil.ParseForm(writer, request); err != nil {
		handler.renderLogin(writer, request, LoginData{}, err)
		return
	}

	data := LoginData{
		Next:  SafeNext(request.PostForm.Get(FieldNext)),
		Login: strings.TrimSpace(request.PostForm.Get(FieldLogin)),
	}

	session, err := handler.service.Login(request.Context(), LoginInput{
		Login:    data.Login,
		Password: request.PostForm.Get(FieldPassword),
	})
	if err != nil {
		handler.renderLogin(writer, request, data, err)
		return
	}

	middleware.SetSessionCookie(writer, session.Token, handler.secureCookies)
	http.Redirect(writer, request, data.Next, http.StatusSeeOther)
}

func (handler *Handler) renderLogin(writer http.ResponseWriter, request *http.Request, data LoginData, err error) {
	status, messages := failure(request, err)
	handler.renderer.HTML(writer, request, status, render.PageLogin, render.View{
		Title:   "Log in",
		Flashes: messages,
		Data:    data,
	})
}

// # Registration

func (handler *Handler) registerForm(writer http.ResponseWriter, request *http.Request) {
	handler.renderer.HTML(writer, request, http.StatusOK, render.PageRegister, render.View{
		Title: "Create an account",
		Data:  RegisterData{},
	})
}

/*
register creates a member account and signs the new user in.
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

	if err := requestutil.ParseForm(writer, request); err != nil {
		handler.renderRegister(writer, request, RegisterData{}, err)
		return
	}

	input := RegisterInput{
		Username:    request.PostForm.Get(FieldUsername),
		Email:       request.PostForm.Get(FieldEmail),
		Password:    request.PostForm.Get(FieldPassword),
		DisplayName: request.PostForm.Get(FieldDisplayName),
	}
	data := RegisterData{
		Username:    strings.TrimSpace(input.Username),
		Email:       strings.TrimSpace(input.Email),
		DisplayName: strings.TrimSpace(input.DisplayName),
	}

	account, err := handler.service.Register(ctx, input)
	if err != nil {
		handler.renderRegister(writer, request, data, err)
		return
	}

	session, err := handler.service.Login(ctx, LoginInput{Login: account.Username, Password: input.Password})
	if err != nil {
		handler.renderer.Error(writer, request, err)
		return
	}

	if err := handler.flashes.Push(ctx, account.ID, flash.Success(MsgAccountCreated)); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "flash_push_failed", slog.String("error", err.Error()))
	}

	middleware.SetSessionCookie(writer, session.Token, handler.secureCookies)
	http.Redirect(writer, request, DefaultLandingPath, http.StatusSeeOther)
}

func (handler *Handler) renderRegister(writer http.ResponseWriter, request *http.Request, data RegisterData, err error) {
	status, messages := failure(request, err)
	handler.renderer.HTML(writer, request, status, render.PageRegister, render.View{
		Title:   "Create an account",
		Flashes: messages,
		Data:    data,
	})
}

// # Logout

func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	middleware.ClearSessionCookie(writer, handler.secureCookies)
	http.Redirect(writer, request, constants.LoginPath, http.StatusSeeOther)
}

// # Helpers

// failure turns a form error into the status and messages of the re-rendered
// page. Server failures are logged and keep their generic message.
func failure(request *http.Request, err error) (int, []flash.Message) {
	appError := respond.Classify(request, err)
	return appError.HTTPStatus, flash.Errors(appError.Messages()...)
}

// SafeNext returns target when it is a local absolute path, and the default
// landing page otherwise. It prevents open redirects through ?next=.
func SafeNext(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") ||
		strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") ||
		strings.ContainsAny(target, "\r\n") {
		return DefaultLandingPath
	}
	return target
}
