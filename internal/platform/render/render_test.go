// Copyright (c) 2026 Lexica. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package render_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/lexica/internal/platform/apperr"
	"github.com/taibuivan/lexica/internal/platform/ctxutil"
	"github.com/taibuivan/lexica/internal/platform/flash"
	"github.com/taibuivan/lexica/internal/platform/render"
	"github.com/taibuivan/lexica/internal/platform/sec"
)

func TestRenderer_HTML_WithUserFlashesAndNav(t *testing.T) {
	store := flash.NewMemoryStore()
	require.NoError(t, store.Push(context.Background(), "user-1", flash.Success("New corpus registered")))

	nav := func(context.Context, *sec.AuthClaims) ([]render.NavItem, error) {
		return []render.NavItem{{ID: 7, Name: "Caesar"}}, nil
	}

	renderer, err := render.New(store, nav)
	require.NoError(t, err)

	request := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	request = request.WithContext(ctxutil.WithAuthUser(request.Context(), &sec.AuthClaims{UserID: "user-1", Username: "julius"}))
	recorder := httptest.NewRecorder()

	renderer.HTML(recorder, request, http.StatusBadRequest, render.PageLogin, render.View{
		Title:   "Log in",
		Flashes: flash.Errors("Invalid credentials"),
		Data:    map[string]string{"Next": "/corpus/new", "Login": "julius"},
	})

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "text/html; charset=utf-8", recorder.Header().Get("Content-Type"))

	body := recorder.Body.String()
	assert.Contains(t, body, "New corpus registered")
	assert.Contains(t, body, "Invalid credentials")
	assert.Contains(t, body, `href="/corpus/get/7"`)
	assert.Contains(t, body, "julius")

	pending, err := store.Pop(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, pending, "rendering consumes pending flashes")
}

func TestRenderer_HTML_EscapesInput(t *testing.T) {
	renderer, err := render.New(nil, nil)
	require.NoError(t, err)

	recorder := httptest.NewRecorder()
	renderer.HTML(recorder, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, render.PageLogin, render.View{
		Data: map[string]string{"Login": `<script>alert(1)</script>`},
	})

	assert.NotContains(t, recorder.Body.String(), "<script>alert(1)</script>")
	assert.Contains(t, recorder.Body.String(), "Log in")
}

func TestRenderer_Error(t *testing.T) {
	renderer, err := render.New(nil, nil)
	require.NoError(t, err)

	recorder := httptest.NewRecorder()
	renderer.Error(recorder, httptest.NewRequest(http.MethodGet, "/corpus/get/9", nil), apperr.NotFound("Corpus"))

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Corpus not found")
}

func TestRenderer_UnknownPage(t *testing.T) {
	renderer, err := render.New(nil, nil)
	require.NoError(t, err)

	recorder := httptest.NewRecorder()
	renderer.HTML(recorder, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, "missing", render.View{})

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}
