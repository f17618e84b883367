package auth

import (
	"crypto"
	"crypto/rsa"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/jwa"
	"github.com/lestrrat-go/jwx/jwk"
	"github.com/lestrrat-go/jwx/jws"
	"github.com/lestrrat-go/jwx/jwt"
)

const (
	signatureAlgorithm = jwa.RS512
	tokenIssuer        = "clinic_scheduler"
	tokenAudience      = "clinic_scheduler"

	AccessTokenType  = "access"
	RefreshTokenType = "refresh"

	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 24 * time.Hour

	typeClaim      = "typ"
	roleClaim      = "role"
	profileIDClaim = "profile_id"
)

// Claims are the parts of a verified token the service relies on.
type Claims struct {
	Subject   uuid.UUID
	Type      string
	Role      Role
	ProfileID string
	ExpiresAt time.Time
}

// TokenIssuer signs and verifies the tokens of the API with a single RSA key.
type TokenIssuer struct {
	privateKey *rsa.PrivateKey
	keyID      string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// TokenIssuerOption determines the Functional Options used to create a new TokenIssuer.
type TokenIssuerOption func(issuer *TokenIssuer)

// WithTTL sets how long the access and refresh tokens last.
func WithTTL(access, refresh time.Duration) TokenIssuerOption {
	return func(issuer *TokenIssuer) {
		issuer.accessTTL = access
		issuer.refreshTTL = refresh
	}
}

// WithTokenClock replaces the clock used to stamp and check the tokens.
func WithTokenClock(now func() time.Time) TokenIssuerOption {
	return func(issuer *TokenIssuer) {
		issuer.now = now
	}
}

// NewTokenIssuer creates a TokenIssuer for the given key. The key ID sent in the token headers is
// the SHA-256 thumbprint of the public key.
func NewTokenIssuer(privateKey *rsa.PrivateKey, opts ...TokenIssuerOption) (*TokenIssuer, error) {
	if privateKey == nil {
		return nil, errors.New("a private key is required to sign tokens")
	}
	key, err := jwk.New(&privateKey.PublicKey)
	if err != nil {
		return nil, err
	}
	thumbprint, err := key.Thumbprint(crypto.SHA256)
	if err != nil {
		return nil, err
	}
	issuer := &TokenIssuer{
		privateKey: privateKey,
		keyID:      hex.EncodeToString(thumbprint),
		accessTTL:  DefaultAccessTTL,
		refreshTTL: DefaultRefreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(issuer)
	}
	return issuer, nil
}

// Issue creates a new access and refresh token pair for the user.
func (i *TokenIssuer) Issue(user User) (*Tokens, error) {
	access, err := i.sign(user, AccessTokenType, i.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("could not sign the access token: %w", err)
	}
	refresh, err := i.sign(user, RefreshTokenType, i.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("could not sign the refresh token: %w", err)
	}
	return &Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

func (i *TokenIssuer) sign(user User, typ string, ttl time.Duration) (string, error) {
	jti, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	now := i.now()
	token := jwt.New()
	claims := []struct {
		name  string
		value interface{}
	}{
		{jwt.IssuerKey, tokenIssuer},
		{jwt.AudienceKey, []string{tokenAudience}},
		{jwt.SubjectKey, user.UUID.String()},
		{jwt.JwtIDKey, jti.String()},
		{jwt.IssuedAtKey, now},
		{jwt.ExpirationKey, now.Add(ttl)},
		{typeClaim, typ},
		{roleClaim, string(user.Role)},
		{profileIDClaim, user.ProfileID},
	}
	for _, claim := range claims {
		if err = token.Set(claim.name, claim.value); err != nil {
			return "", fmt.Errorf("claim %s: %w", claim.name, err)
		}
	}
	headers := jws.NewHeaders()
	if err = headers.Set(jws.KeyIDKey, i.keyID); err != nil {
		return "", err
	}
	signed, err := jwt.Sign(token, signatureAlgorithm, i.privateKey, jwt.WithHeaders(headers))
	if err != nil {
		return "", err
	}
	return string(signed), nil
}

// Verify checks the signature, issuer, audience and expiration of the token, and that it is of
// the given type. Any failure is reported as an UnauthorizedError.
func (i *TokenIssuer) Verify(token string, typ string) (Claims, error) {
	parsed, err := jwt.Parse([]byte(token), jwt.WithVerify(signatureAlgorithm, &i.privateKey.PublicKey))
	if err != nil {
		return Claims{}, unauthorized(fmt.Errorf("%w: %v", ErrInvalidToken, err))
	}
	err = jwt.Validate(parsed,
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithClock(jwt.ClockFunc(i.now)),
	)
	if err != nil {
		return Claims{}, unauthorized(fmt.Errorf("%w: %v", ErrInvalidToken, err))
	}
	claims := Claims{
		Type:      stringClaim(parsed, typeClaim),
		Role:      Role(stringClaim(parsed, roleClaim)),
		ProfileID: stringClaim(parsed, profileIDClaim),
		ExpiresAt: parsed.Expiration(),
	}
	if claims.Type != typ {
		return Claims{}, unauthorized(fmt.Errorf("%w: %s token given where %s was expected", ErrInvalidToken, claims.Type, typ))
	}
	if claims.Subject, err = uuid.Parse(parsed.Subject()); err != nil {
		return Claims{}, unauthorized(fmt.Errorf("%w: subject: %v", ErrInvalidToken, err))
	}
	return claims, nil
}

func stringClaim(token jwt.Token, name string) string {
	value, found := token.Get(name)
	if !found {
		return ""
	}
	s, _ := value.(string)
	return s
}
