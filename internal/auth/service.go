package auth

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("clinic-scheduler.internal.auth")

// Authenticator signs users in.
type Authenticator interface {

	// Authenticate checks the credentials and returns a fresh token pair.
	Authenticate(ctx context.Context, credentials Credentials) (*Tokens, error)
}

// Authorizer identifies the caller of a request.
type Authorizer interface {

	// ValidateToken validates an access token, with or without its Bearer prefix, and returns
	// the user it was issued to.
	ValidateToken(ctx context.Context, token string) (*User, error)

	// RefreshTokens trades a valid refresh token for a new pair.
	RefreshTokens(ctx context.Context, tokens Tokens) (*Tokens, error)

	// GetAuthenticatedUser gets the user JwtValidator stored in the context.
	GetAuthenticatedUser(ctx context.Context) (User, error)
}

type Service interface {
	Authenticator
	Authorizer
}

type defaultService struct {
	issuer     *TokenIssuer
	repository Repository
}

// NewService creates a new auth service signing its tokens with the given issuer.
func NewService(issuer *TokenIssuer, repository Repository) Service {
	return &defaultService{
		issuer:     issuer,
		repository: repository,
	}
}

func (d defaultService) Authenticate(ctx context.Context, credentials Credentials) (*Tokens, error) {
	ctx, span := tracer.Start(ctx, "auth.Authenticate")
	defer span.End()

	if err := credentials.Validate(); err != nil {
		return nil, err
	}
	user, err := d.repository.FindUserByEmail(ctx, credentials.Email)
	if err != nil {
		return nil, fmt.Errorf("could not find the user: %w", err)
	}
	if user == nil {
		return nil, unauthorized(fmt.Errorf("unknown email %s", credentials.Email))
	}
	valid, err := d.repository.CheckUserPassword(ctx, credentials.Email, credentials.Password)
	if err != nil {
		return nil, fmt.Errorf("could not check the password: %w", err)
	}
	if !valid {
		return nil, unauthorized(fmt.Errorf("wrong password for %s", credentials.Email))
	}
	span.SetAttributes(attribute.String("user.role", string(user.Role)))
	return d.issuer.Issue(*user)
}

func (d defaultService) ValidateToken(ctx context.Context, token string) (*User, error) {
	ctx, span := tracer.Start(ctx, "auth.ValidateToken")
	defer span.End()

	user, err := d.userFor(ctx, trimBearer(token), AccessTokenType)
	if err != nil {
		// lookups failing behind a valid token still deny access
		var unauthorizedErr *UnauthorizedError
		if !errors.As(err, &unauthorizedErr) {
			return nil, unauthorized(err)
		}
		return nil, err
	}
	return user, nil
}

func (d defaultService) RefreshTokens(ctx context.Context, tokens Tokens) (*Tokens, error) {
	ctx, span := tracer.Start(ctx, "auth.RefreshTokens")
	defer span.End()

	if err := tokens.Validate(); err != nil {
		return nil, err
	}
	user, err := d.userFor(ctx, tokens.RefreshToken, RefreshTokenType)
	if err != nil {
		return nil, err
	}
	return d.issuer.Issue(*user)
}

// userFor verifies the token and loads its subject, which must still hold the role the token
// was issued for.
func (d defaultService) userFor(ctx context.Context, token, typ string) (*User, error) {
	claims, err := d.issuer.Verify(token, typ)
	if err != nil {
		return nil, err
	}
	user, err := d.repository.FindUserByUUID(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("could not find the user: %w", err)
	}
	if user == nil {
		return nil, unauthorized(fmt.Errorf("unknown subject %s", claims.Subject))
	}
	if user.Role != claims.Role {
		return nil, unauthorized(fmt.Errorf("role of %s changed to %s", claims.Subject, user.Role))
	}
	return user, nil
}

func (d defaultService) GetAuthenticatedUser(ctx context.Context) (User, error) {
	user, found := UserFromContext(ctx)
	if !found {
		return User{}, NewUnauthorizedError()
	}
	return user, nil
}
