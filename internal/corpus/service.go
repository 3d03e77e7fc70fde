// Copyright (c) 2026 Lexica. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package corpus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/taibuivan/lexica/internal/platform/apperr"
	"github.com/taibuivan/lexica/internal/platform/constants"
	"github.com/taibuivan/lexica/internal/platform/dberr"
	"github.com/taibuivan/lexica/internal/platform/metrics"
	"github.com/taibuivan/lexica/internal/platform/render"
	"github.com/taibuivan/lexica/internal/platform/sec"
	"github.com/taibuivan/lexica/internal/platform/validate"
	"github.com/taibuivan/lexica/pkg/slice"
)

// User-facing messages of the registration flow.
const (
	MsgNameMissing    = "You forgot to give a name to your corpus"
	MsgCannotRegister = "The corpus cannot be registered. Check your data"
	MsgNameTakenFmt   = "You have already a corpus going by the name %s"
	MsgRegistered     = "New corpus registered"
	MsgNoAccess       = "You do not have access to this corpus"
	MsgUnknownList    = "The selected control list does not exist or is not shared with you"
)

// Observer receives registration outcomes. [metrics.CorpusMetrics] satisfies it.
type Observer interface {
	RecordRegistration(outcome string, tokens int)
}

type noopObserver struct{}

func (noopObserver) RecordRegistration(string, int) {}

// # Service Layer

// Service orchestrates corpus registration and inspection.
type Service struct {
	repo     Repository
	observer Observer
	logger   *slog.Logger
}

// NewService constructs a [Service]. A nil observer disables metrics.
func NewService(repo Repository, observer Observer, logger *slog.Logger) *Service {
	if observer == nil {
		observer = noopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, observer: observer, logger: logger}
}

// # Registration

/*
Register validates a submission, converts its tabular input and stores the
corpus with its owner and control list links.

Every returned error is an [apperr.AppError] whose status is a client error:

  - 400 for a blank name, bad context sizes or an inaccessible control list.
  - 422 for input that cannot be converted.
  - 409 for a name already in use, with a second line naming it.
  - 400 with a generic message for any storage failure, which is logged.

Nothing is written unless every check passes.
*/
func (service *Service) Register(ctx context.Context, claims *sec.AuthClaims, submission Submission) (*Corpus, error) {
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}

	v := &validate.Validator{}
	v.Required("name", submission.Name, MsgNameMissing)
	if err := v.Err(); err != nil {
		service.observer.RecordRegistration(metrics.OutcomeInvalid, 0)
		return nil, err
	}

	contextLeft := v.OptionalInt("context_left", submission.ContextLeft,
		constants.DefaultContextWindow, 0, constants.MaxContextWindow)
	contextRight := v.OptionalInt("context_right", submission.ContextRight,
		constants.DefaultContextWindow, 0, constants.MaxContextWindow)

	var controlListID int64
	if submission.ControlList != "" {
		parsed, err := strconv.ParseInt(submission.ControlList, 10, 64)
		v.Custom("control_list", err != nil || parsed <= 0, MsgUnknownList)
		controlListID = parsed
	}

	if err := v.Err(); err != nil {
		service.observer.RecordRegistration(metrics.OutcomeInvalid, 0)
		return nil, err
	}

	if controlListID != 0 {
		accessible, err := service.repo.ControlListAccessible(ctx, controlListID, claims.UserID, claims.IsAdmin())
		if err != nil {
			return nil, service.registrationFailed(ctx, submission.Name, err)
		}
		if !accessible {
			service.observer.RecordRegistration(metrics.OutcomeInvalid, 0)
			return nil, validate.RequiredError("control_list", MsgUnknownList)
		}
	}

	conversion, err := ConvertInput(submission.TSV, submission.AllowedLemma, submission.AllowedMorph, submission.AllowedPOS)
	if err != nil {
		var conversionErr *ConversionError
		if errors.As(err, &conversionErr) {
			service.observer.RecordRegistration(metrics.OutcomeConversionError, 0)
			return nil, apperr.Unprocessable(conversionErr.Error()).WithCause(err)
		}
		return nil, service.registrationFailed(ctx, submission.Name, err)
	}

	AttachContext(conversion.Tokens, contextLeft, contextRight)

	registration := &Registration{
		Name:          submission.Name,
		OwnerID:       claims.UserID,
		ControlListID: controlListID,
		ContextLeft:   contextLeft,
		ContextRight:  contextRight,
		Tokens:        conversion.Tokens,
		Allowed:       conversion.Allowed,
	}

	corpusID, err := service.repo.Register(ctx, registration)
	if err != nil {
		if errors.Is(err, ErrNameTaken) {
			service.observer.RecordRegistration(metrics.OutcomeConflict, 0)
			conflict := apperr.Conflict(MsgCannotRegister).WithCause(err)
			conflict.Details = []apperr.FieldError{{Field: "name", Message: fmt.Sprintf(MsgNameTakenFmt, submission.Name)}}
			return nil, conflict
		}
		return nil, service.registrationFailed(ctx, submission.Name, err)
	}

	service.observer.RecordRegistration(metrics.OutcomeSuccess, len(conversion.Tokens))
	service.logger.InfoContext(ctx, "corpus_registered",
		slog.Int64("corpus_id", corpusID),
		slog.String("name", submission.Name),
		slog.String("user_id", claims.UserID),
		slog.Int("tokens", len(conversion.Tokens)),
		slog.Bool("shared_control_list", controlListID != 0),
	)

	return &Corpus{
		ID:            corpusID,
		Name:          submission.Name,
		ControlListID: controlListID,
		ContextLeft:   contextLeft,
		ContextRight:  contextRight,
	}, nil
}

// registrationFailed logs an unexpected failure and hides it behind the
// generic message.
func (service *Service) registrationFailed(ctx context.Context, name string, err error) error {
	service.observer.RecordRegistration(metrics.OutcomeError, 0)
	service.logger.ErrorContext(ctx, "corpus_registration_failed",
		slog.String("name", name),
		slog.String("error", err.Error()),
	)
	return apperr.BadRequest(MsgCannotRegister).WithCause(err)
}

// # Inspection

// Get returns a corpus with its token count and owners, provided the caller
// may see it.
func (service *Service) Get(ctx context.Context, claims *sec.AuthClaims, corpusID int64) (*Details, error) {
	corpus, err := service.authorize(ctx, claims, corpusID)
	if err != nil {
		return nil, err
	}

	count, err := service.repo.CountTokens(ctx, corpusID)
	if err != nil {
		return nil, err
	}

	owners, err := service.repo.Owners(ctx, corpusID)
	if err != nil {
		return nil, err
	}

	return &Details{Corpus: *corpus, TokenCount: count, Owners: owners}, nil
}

// Fixtures returns every token of a corpus with its effective lemma and POS
// allow-lists.
func (service *Service) Fixtures(ctx context.Context, claims *sec.AuthClaims, corpusID int64) (*Fixtures, error) {
	corpus, err := service.authorize(ctx, claims, corpusID)
	if err != nil {
		return nil, err
	}

	tokens, err := service.repo.ListTokens(ctx, corpusID)
	if err != nil {
		return nil, err
	}

	fixtures := &Fixtures{Corpus: corpus, Tokens: tokens}

	for _, allowedType := range []AllowedType{AllowedLemma, AllowedPOS} {
		scope, found, err := service.resolveScope(ctx, corpus, allowedType)
		if err != nil {
			return nil, err
		}

		var values []AllowedValue
		if found {
			if values, err = service.repo.ListAllowedValues(ctx, scope, allowedType); err != nil {
				return nil, err
			}
		}

		if allowedType == AllowedLemma {
			fixtures.Lemma = values
		} else {
			fixtures.POS = values
		}
	}

	return fixtures, nil
}

// authorize loads a corpus and checks that claims may read it.
func (service *Service) authorize(ctx context.Context, claims *sec.AuthClaims, corpusID int64) (*Corpus, error) {
	corpus, err := service.find(ctx, corpusID)
	if err != nil {
		return nil, err
	}

	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	if claims.IsAdmin() {
		return corpus, nil
	}

	allowed, err := service.repo.HasAccess(ctx, corpusID, claims.UserID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperr.Forbidden(MsgNoAccess)
	}

	return corpus, nil
}

func (service *Service) find(ctx context.Context, corpusID int64) (*Corpus, error) {
	corpus, err := service.repo.FindByID(ctx, corpusID)
	if errors.Is(err, dberr.ErrNotFound) {
		return nil, apperr.NotFound("Corpus")
	}
	return corpus, err
}

// # Autocomplete

/*
AllowedValues suggests up to [constants.AutocompleteLimit] values of a
category starting with prefix.

The source is the first non-empty of: the corpus-level overrides, the linked
control list, the distinct values of the corpus's own tokens. This endpoint
does not check access; suggestions are considered public reference data.
*/
func (service *Service) AllowedValues(ctx context.Context, corpusID int64, rawType, prefix string) ([]Suggestion, error) {
	allowedType, err := ParseAllowedType(rawType)
	if err != nil {
		return nil, err
	}

	corpus, err := service.find(ctx, corpusID)
	if err != nil {
		return nil, err
	}

	scope, found, err := service.resolveScope(ctx, corpus, allowedType)
	if err != nil {
		return nil, err
	}

	if !found {
		values, err := service.repo.SearchTokenValues(ctx, corpusID, allowedType, prefix, constants.AutocompleteLimit)
		if err != nil {
			return nil, err
		}
		return formatTokenValues(values), nil
	}

	values, err := service.repo.SearchAllowedValues(ctx, scope, allowedType, prefix, constants.AutocompleteLimit)
	if err != nil {
		return nil, err
	}
	return formatAllowedValues(allowedType, values), nil
}

// resolveScope picks where the allowed values of a category come from. It
// reports false when neither the corpus nor its control list has any.
func (service *Service) resolveScope(ctx context.Context, corpus *Corpus, allowedType AllowedType) (Scope, bool, error) {
	for _, scope := range []Scope{
		{Kind: ScopeCorpus, ID: corpus.ID},
		{Kind: ScopeControlList, ID: corpus.ControlListID},
	} {
		count, err := service.repo.CountAllowedValues(ctx, scope, allowedType)
		if err != nil {
			return Scope{}, false, err
		}
		if count > 0 {
			return scope, true, nil
		}
	}
	return Scope{}, false, nil
}

// # Navigation and Form Data

// ListAccessible returns the corpora linked to the caller.
func (service *Service) ListAccessible(ctx context.Context, claims *sec.AuthClaims) ([]Summary, error) {
	if claims == nil {
		return nil, nil
	}
	return service.repo.ListForUser(ctx, claims.UserID)
}

// Nav adapts [Service.ListAccessible] to the layout navigation.
func (service *Service) Nav(ctx context.Context, claims *sec.AuthClaims) ([]render.NavItem, error) {
	summaries, err := service.ListAccessible(ctx, claims)
	if err != nil {
		return nil, err
	}

	return slice.Map(summaries, func(summary Summary) render.NavItem {
		return render.NavItem{ID: summary.ID, Name: summary.Name}
	}), nil
}

// ControlLists returns the control lists the caller may reuse.
func (service *Service) ControlLists(ctx context.Context, claims *sec.AuthClaims) ([]ControlList, error) {
	if claims == nil {
		return nil, nil
	}
	return service.repo.ListControlLists(ctx, claims.UserID, claims.IsAdmin())
}
