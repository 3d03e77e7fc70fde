// Copyright (c) 2026 Lexica. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/lexica/internal/platform/apperr"
	"github.com/taibuivan/lexica/internal/platform/constants"
	"github.com/taibuivan/lexica/internal/platform/database/schema"
	"github.com/taibuivan/lexica/internal/platform/dberr"
	"github.com/taibuivan/lexica/internal/platform/sec"
	"github.com/taibuivan/lexica/internal/platform/validate"
	"github.com/taibuivan/lexica/pkg/uuid"
)

// # Messages

const (
	MsgInvalidCredentials = "Invalid login credentials"
	MsgUsernameTaken      = "Username is already taken"
	MsgEmailTaken         = "Email is already registered"
	MsgAccountCreated     = "Your account has been created"
)

// # Contracts & Types

// TokenProvider signs session tokens.
type TokenProvider interface {
	GenerateAccessToken(userID, username, role string, timeToLive time.Duration) (string, error)
}

// Service implements account use cases.
type Service struct {
	accounts AccountRepository
	tokens   TokenProvider
	logger   *slog.Logger
}

// NewService constructs an account [Service].
func NewService(accounts AccountRepository, tokens TokenProvider, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{accounts: accounts, tokens: tokens, logger: logger}
}

// # Registration Flow

// RegisterInput holds the data required to enrol a new account.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
}

/*
Register validates and persists a self-service account with the member role.
*/
func (service *Service) Register(ctx context.Context, input RegisterInput) (*Account, error) {
	return service.Create(ctx, input, sec.RoleMember)
}

/*
Create persists an account with an explicit role. It backs both public
registration and the administrative "user create" command.

Returns:
  - *Account: Created entity
  - error: VALIDATION_ERROR, CONFLICT (username or email taken) or storage errors
*/
func (service *Service) Create(ctx context.Context, input RegisterInput, role sec.UserRole) (*Account, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	input.DisplayName = strings.TrimSpace(input.DisplayName)

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).
		MinLen(FieldUsername, input.Username, 3).
		MaxLen(FieldUsername, input.Username, 64).
		Custom(FieldUsername, strings.ContainsAny(input.Username, " \t@"), "Username cannot contain spaces or @").
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		MinLen(FieldPassword, input.Password, 8).
		Custom(FieldPassword, len(input.Password) > 72, "Maximum 72 bytes").
		MaxLen(FieldDisplayName, input.DisplayName, 128).
		Custom(FieldRole, !role.Valid(), "Unknown role")

	if err := validator.Err(); err != nil {
		return nil, err
	}

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_hash_failed: %w", err))
	}

	displayName := input.DisplayName
	if displayName == "" {
		displayName = input.Username
	}

	account := &Account{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		DisplayName:  displayName,
		Role:         role,
	}

	if err := service.accounts.Create(ctx, account); err != nil {
		switch {
		case dberr.IsUniqueViolation(err, schema.UserAccount.UsernameKey):
			return nil, apperr.Conflict(MsgUsernameTaken).WithCause(err)
		case dberr.IsUniqueViolation(err, schema.UserAccount.EmailKey):
			return nil, apperr.Conflict(MsgEmailTaken).WithCause(err)
		}
		return nil, fmt.Errorf("auth_service_create_failed: %w", err)
	}

	service.logger.InfoContext(ctx, "account_created",
		slog.String("account_id", account.ID),
		slog.String("username", account.Username),
		slog.String("role", string(account.Role)),
	)

	return account, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	// Login is a username or an email address.
	Login    string
	Password string
}

// LoginSession is a signed session token and the account it belongs to.
type LoginSession struct {
	Token   string
	Account *Account
}

/*
Login validates credentials and issues a session token.

Unknown accounts and wrong passwords yield the same error so that the form
cannot be used to enumerate usernames.
*/
func (service *Service) Login(ctx context.Context, input LoginInput) (*LoginSession, error) {
	input.Login = strings.TrimSpace(input.Login)

	validator := &validate.Validator{}
	validator.Required(FieldLogin, input.Login).
		Required(FieldPassword, input.Password)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	account, err := service.accounts.FindByLogin(ctx, input.Login)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.Unauthorized(MsgInvalidCredentials)
		}
		return nil, fmt.Errorf("auth_service_lookup_failed: %w", err)
	}

	if !sec.CheckPasswordHash(input.Password, account.PasswordHash) {
		return nil, apperr.Unauthorized(MsgInvalidCredentials)
	}

	token, err := service.tokens.GenerateAccessToken(account.ID, account.Username, string(account.Role), constants.AccessTokenTTL)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_token_generation_failed: %w", err))
	}

	if err := service.accounts.TouchLogin(ctx, account.ID); err != nil {
		service.logger.WarnContext(ctx, "account_touch_failed",
			slog.String("account_id", account.ID),
			slog.String("error", err.Error()),
		)
	}

	return &LoginSession{Token: token, Account: account}, nil
}
