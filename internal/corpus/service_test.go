// Copyright (c) 2026 Lexica. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package corpus_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/lexica/internal/corpus"
	"github.com/taibuivan/lexica/internal/platform/apperr"
	"github.com/taibuivan/lexica/internal/platform/metrics"
	"github.com/taibuivan/lexica/internal/platform/sec"
)

var (
	julius   = &sec.AuthClaims{UserID: "0190c0de-0000-7000-8000-000000000001", Username: "julius", Role: string(sec.RoleMember)}
	brutus   = &sec.AuthClaims{UserID: "0190c0de-0000-7000-8000-000000000002", Username: "brutus", Role: string(sec.RoleMember)}
	octavian = &sec.AuthClaims{UserID: "0190c0de-0000-7000-8000-000000000003", Username: "octavian", Role: string(sec.RoleAdmin)}
)

type recordingObserver struct{ outcomes []string }

func (observer *recordingObserver) RecordRegistration(outcome string, _ int) {
	observer.outcomes = append(observer.outcomes, outcome)
}

func newTestService(t *testing.T) (*corpus.Service, *memoryRepository, *recordingObserver) {
	t.Helper()
	repo := newMemoryRepository()
	repo.usernames[julius.UserID] = julius.Username
	repo.usernames[brutus.UserID] = brutus.Username
	observer := &recordingObserver{}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return corpus.NewService(repo, observer, logger), repo, observer
}

func caesar() corpus.Submission {
	return corpus.Submission{
		Name:         "Caesar",
		TSV:          "form\tlemma\tpos\narma\tarma\tNOUN\nvirumque\tvir\tNOUN\ncano\tcano\tVERB",
		AllowedLemma: "arma\nvir\ncano",
		AllowedPOS:   "NOUN,VERB",
	}
}

func requireAppError(t *testing.T, err error, status int) *apperr.AppError {
	t.Helper()
	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError, "expected an AppError, got %v", err)
	assert.Equal(t, status, appError.HTTPStatus)
	return appError
}

// # Registration

func TestRegister_CreatesCorpusWithLinks(t *testing.T) {
	service, repo, observer := newTestService(t)

	created, err := service.Register(context.Background(), julius, caesar())
	require.NoError(t, err)

	stored := repo.corpora[created.ID]
	require.NotNil(t, stored)
	assert.Equal(t, "Caesar", stored.Name)
	assert.Equal(t, 3, stored.ContextLeft)
	assert.Equal(t, 3, stored.ContextRight)

	assert.Equal(t, map[string]bool{julius.UserID: true}, repo.corpusUsers[created.ID], "one owner link")
	assert.Equal(t, map[string]bool{julius.UserID: true}, repo.listUsers[stored.ControlListID], "one control list link")

	tokens := repo.tokens[created.ID]
	require.Len(t, tokens, 3)
	assert.Equal(t, "arma cano", joinContext(tokens[1]))

	listScope := corpus.Scope{Kind: corpus.ScopeControlList, ID: stored.ControlListID}
	assert.Len(t, repo.allowed[listScope][corpus.AllowedLemma], 3)
	assert.Len(t, repo.allowed[listScope][corpus.AllowedPOS], 2)

	assert.Equal(t, []string{metrics.OutcomeSuccess}, observer.outcomes)
}

func joinContext(token corpus.WordToken) string {
	return token.LeftContext + " " + token.RightContext
}

func TestRegister_BlankNameWritesNothing(t *testing.T) {
	service, repo, observer := newTestService(t)

	submission := caesar()
	submission.Name = ""

	_, err := service.Register(context.Background(), julius, submission)

	appError := requireAppError(t, err, http.StatusBadRequest)
	assert.Equal(t, corpus.MsgNameMissing, appError.Message)
	assert.Zero(t, repo.registerCalls)
	assert.Equal(t, []string{metrics.OutcomeInvalid}, observer.outcomes)
}

func TestRegister_BlankNameSkipsConversion(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.Register(context.Background(), julius, corpus.Submission{TSV: "garbage"})

	appError := requireAppError(t, err, http.StatusBadRequest)
	assert.Equal(t, corpus.MsgNameMissing, appError.Message)
}

func TestRegister_DuplicateName(t *testing.T) {
	service, repo, observer := newTestService(t)

	first, err := service.Register(context.Background(), julius, caesar())
	require.NoError(t, err)

	second := caesar()
	second.TSV = "form\tlemma\nveni\tvenio"
	_, err = service.Register(context.Background(), julius, second)

	appError := requireAppError(t, err, http.StatusConflict)
	assert.Equal(t, []string{
		corpus.MsgCannotRegister,
		"You have already a corpus going by the name Caesar",
	}, appError.Messages())
	assert.ErrorIs(t, err, corpus.ErrNameTaken)

	assert.Len(t, repo.corpora, 1)
	assert.Len(t, repo.tokens[first.ID], 3, "first corpus untouched")
	assert.Equal(t, []string{metrics.OutcomeSuccess, metrics.OutcomeConflict}, observer.outcomes)
}

func TestRegister_ConversionError(t *testing.T) {
	service, repo, observer := newTestService(t)

	submission := caesar()
	submission.TSV = "form\tpos\narma\tNOUN"

	_, err := service.Register(context.Background(), julius, submission)

	appError := requireAppError(t, err, http.StatusUnprocessableEntity)
	assert.Contains(t, appError.Message, "lemma")
	assert.Zero(t, repo.registerCalls)
	assert.Equal(t, []string{metrics.OutcomeConversionError}, observer.outcomes)
}

func TestRegister_ContextSizes(t *testing.T) {
	service, repo, _ := newTestService(t)

	submission := caesar()
	submission.ContextLeft = "0"
	submission.ContextRight = "1"

	created, err := service.Register(context.Background(), julius, submission)
	require.NoError(t, err)
	assert.Equal(t, 0, created.ContextLeft)

	tokens := repo.tokens[created.ID]
	assert.Empty(t, tokens[1].LeftContext)
	assert.Equal(t, "cano", tokens[1].RightContext)

	for _, raw := range []string{"-1", "101", "three"} {
		submission := caesar()
		submission.Name = "Caesar " + raw
		submission.ContextLeft = raw

		_, err := service.Register(context.Background(), julius, submission)
		requireAppError(t, err, http.StatusBadRequest)
	}
	assert.Equal(t, 1, repo.registerCalls)
}

func TestRegister_SharedControlList(t *testing.T) {
	service, repo, _ := newTestService(t)
	publicList := repo.addControlList("Latin classics", true, brutus.UserID)

	submission := caesar()
	submission.ControlList = fmt.Sprint(publicList)

	created, err := service.Register(context.Background(), julius, submission)
	require.NoError(t, err)

	assert.Equal(t, publicList, repo.corpora[created.ID].ControlListID)
	assert.False(t, repo.listUsers[publicList][julius.UserID], "linked as non-owner")
	assert.True(t, repo.listUsers[publicList][brutus.UserID])

	corpusScope := corpus.Scope{Kind: corpus.ScopeCorpus, ID: created.ID}
	assert.Len(t, repo.allowed[corpusScope][corpus.AllowedLemma], 3, "submitted lists become overrides")
}

func TestRegister_InaccessibleControlList(t *testing.T) {
	service, repo, _ := newTestService(t)
	privateList := repo.addControlList("Brutus private", false, brutus.UserID)

	for _, raw := range []string{fmt.Sprint(privateList), "999", "abc"} {
		submission := caesar()
		submission.ControlList = raw

		_, err := service.Register(context.Background(), julius, submission)

		appError := requireAppError(t, err, http.StatusBadRequest)
		assert.Equal(t, corpus.MsgUnknownList, appError.Message)
	}
	assert.Zero(t, repo.registerCalls)

	submission := caesar()
	submission.ControlList = fmt.Sprint(privateList)
	_, err := service.Register(context.Background(), octavian, submission)
	assert.NoError(t, err, "admins may reuse any list")
}

func TestRegister_StorageFailureIsGeneric(t *testing.T) {
	service, repo, observer := newTestService(t)
	repo.registerErr = errors.New("connection reset")

	_, err := service.Register(context.Background(), julius, caesar())

	appError := requireAppError(t, err, http.StatusBadRequest)
	assert.Equal(t, []string{corpus.MsgCannotRegister}, appError.Messages())
	assert.Equal(t, []string{metrics.OutcomeError}, observer.outcomes)
}

func TestRegister_RequiresIdentity(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.Register(context.Background(), nil, caesar())
	requireAppError(t, err, http.StatusUnauthorized)
}

// # Inspection

func TestGet_AccessControl(t *testing.T) {
	service, _, _ := newTestService(t)
	created, err := service.Register(context.Background(), julius, caesar())
	require.NoError(t, err)

	details, err := service.Get(context.Background(), julius, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Caesar", details.Name)
	assert.Equal(t, 3, details.TokenCount)
	assert.Equal(t, []string{"julius"}, details.Owners)
	assert.Equal(t, "Caesar", details.ControlListName)

	_, err = service.Get(context.Background(), brutus, created.ID)
	requireAppError(t, err, http.StatusForbidden)

	_, err = service.Get(context.Background(), octavian, created.ID)
	assert.NoError(t, err)

	_, err = service.Get(context.Background(), julius, 404)
	requireAppError(t, err, http.StatusNotFound)
}

func TestFixtures(t *testing.T) {
	service, repo, _ := newTestService(t)
	created, err := service.Register(context.Background(), julius, caesar())
	require.NoError(t, err)

	fixtures, err := service.Fixtures(context.Background(), julius, created.ID)
	require.NoError(t, err)

	assert.Len(t, fixtures.Tokens, 3)
	assert.Equal(t, []corpus.AllowedValue{{Label: "arma"}, {Label: "cano"}, {Label: "vir"}}, fixtures.Lemma)
	assert.Equal(t, []corpus.AllowedValue{{Label: "NOUN"}, {Label: "VERB"}}, fixtures.POS)

	repo.addAllowed(corpus.Scope{Kind: corpus.ScopeCorpus, ID: created.ID}, corpus.AllowedPOS, corpus.AllowedValue{Label: "PROPN"})
	fixtures, err = service.Fixtures(context.Background(), julius, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []corpus.AllowedValue{{Label: "PROPN"}}, fixtures.POS, "corpus overrides win")

	_, err = service.Fixtures(context.Background(), brutus, created.ID)
	requireAppError(t, err, http.StatusForbidden)
}

// # Autocomplete

func TestAllowedValues_Resolution(t *testing.T) {
	service, repo, _ := newTestService(t)

	submission := caesar()
	submission.AllowedLemma = ""
	submission.AllowedMorph = "Case=Nom\tnominative\nCase=Acc\taccusative"
	created, err := service.Register(context.Background(), julius, submission)
	require.NoError(t, err)
	listID := repo.corpora[created.ID].ControlListID

	t.Run("control list", func(t *testing.T) {
		suggestions, err := service.AllowedValues(context.Background(), created.ID, "POS", "N")
		require.NoError(t, err)
		assert.Equal(t, []corpus.Suggestion{{Value: "NOUN", Label: "NOUN"}}, suggestions)
	})

	t.Run("morph labels are readable", func(t *testing.T) {
		suggestions, err := service.AllowedValues(context.Background(), created.ID, "morph", "Case=")
		require.NoError(t, err)
		assert.Equal(t, []corpus.Suggestion{
			{Value: "Case=Acc", Label: "accusative"},
			{Value: "Case=Nom", Label: "nominative"},
		}, suggestions)
	})

	t.Run("token fallback", func(t *testing.T) {
		suggestions, err := service.AllowedValues(context.Background(), created.ID, "lemma", "")
		require.NoError(t, err)
		assert.Equal(t, []corpus.Suggestion{
			{Value: "arma", Label: "arma"},
			{Value: "cano", Label: "cano"},
			{Value: "vir", Label: "vir"},
		}, suggestions)
	})

	t.Run("corpus overrides win", func(t *testing.T) {
		repo.addAllowed(corpus.Scope{Kind: corpus.ScopeCorpus, ID: created.ID}, corpus.AllowedPOS, corpus.AllowedValue{Label: "NUM"})

		suggestions, err := service.AllowedValues(context.Background(), created.ID, "POS", "N")
		require.NoError(t, err)
		assert.Equal(t, []corpus.Suggestion{{Value: "NUM", Label: "NUM"}}, suggestions)
	})

	t.Run("limit", func(t *testing.T) {
		for i := range 30 {
			repo.addAllowed(corpus.Scope{Kind: corpus.ScopeControlList, ID: listID}, corpus.AllowedLemma,
				corpus.AllowedValue{Label: fmt.Sprintf("lemma%02d", i)})
		}

		suggestions, err := service.AllowedValues(context.Background(), created.ID, "lemma", "lemma")
		require.NoError(t, err)
		assert.Len(t, suggestions, 20)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := service.AllowedValues(context.Background(), created.ID, "gender", "")
		requireAppError(t, err, http.StatusBadRequest)
	})

	t.Run("unknown corpus", func(t *testing.T) {
		_, err := service.AllowedValues(context.Background(), 999, "lemma", "")
		requireAppError(t, err, http.StatusNotFound)
	})
}

func TestNav(t *testing.T) {
	service, _, _ := newTestService(t)
	created, err := service.Register(context.Background(), julius, caesar())
	require.NoError(t, err)

	items, err := service.Nav(context.Background(), julius)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, created.ID, items[0].ID)

	items, err = service.Nav(context.Background(), brutus)
	require.NoError(t, err)
	assert.Empty(t, items)
}
