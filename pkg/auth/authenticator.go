package auth

import (
	"context"
	"errors"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"recipe-api/domain"
)

type (
	// Authenticator verifies caller identity from the session-bound ID
	// token and its companion cookie token. Verification is a pure
	// function of its inputs: it never mutates the session, destruction
	// on failure is the caller's explicit move.
	Authenticator interface {
		Authenticate(ctx context.Context, sessionToken, cookieToken string) (domain.Principal, error)
		// RequireRole fetches group membership fresh on every call so a
		// revocation takes effect immediately.
		RequireRole(ctx context.Context, principal domain.Principal, role string) error
		Close()
	}

	// Config carries the identity-provider expectations every accepted
	// token must meet. Keyfunc overrides the JWKS fetch in tests.
	Config struct {
		Issuer        string
		ClientID      string
		JWKSURL       string
		StatusTimeout time.Duration
		Keyfunc       jwt.Keyfunc
	}

	authenticator struct {
		cfg     Config
		keyfunc jwt.Keyfunc
		jwks    *keyfunc.JWKS
		idp     IdentityProvider
		logger  *zap.Logger
	}
)

const defaultStatusTimeout = 5 * time.Second

func NewAuthenticator(cfg Config, idp IdentityProvider, logger *zap.Logger) (Authenticator, error) {
	if cfg.StatusTimeout <= 0 {
		cfg.StatusTimeout = defaultStatusTimeout
	}

	a := &authenticator{cfg: cfg, idp: idp, logger: logger}
	if cfg.Keyfunc != nil {
		a.keyfunc = cfg.Keyfunc
		return a, nil
	}

	jwks, err := keyfunc.Get(cfg.JWKSURL, keyfunc.Options{
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, err
	}
	a.jwks = jwks
	a.keyfunc = jwks.Keyfunc
	return a, nil
}

func (a *authenticator) Authenticate(ctx context.Context, sessionToken, cookieToken string) (domain.Principal, error) {
	// A session without its cookie counterpart (or vice versa) is stale
	// or tampered with, not merely unauthenticated.
	if sessionToken == "" || cookieToken == "" {
		return domain.Principal{}, domain.ErrNoCredentials
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{"RS256"}))
	token, err := parser.Parse(sessionToken, a.keyfunc)
	if err != nil {
		a.logger.Debug("token verification failed", zap.Error(err))
		return domain.Principal{}, domain.NewInvalidTokenError(err)
	}
	if !token.Valid {
		return domain.Principal{}, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Principal{}, domain.ErrInvalidToken
	}

	issuer, err := claims.GetIssuer()
	if err != nil || issuer != a.cfg.Issuer {
		a.logger.Debug("token issuer mismatch", zap.String("issuer", issuer))
		return domain.Principal{}, domain.ErrInvalidToken
	}
	audience, err := claims.GetAudience()
	if err != nil || !containsString(audience, a.cfg.ClientID) {
		a.logger.Debug("token audience mismatch")
		return domain.Principal{}, domain.ErrInvalidToken
	}

	principal := principalFromClaims(claims, sessionToken)

	enabled, err := a.accountEnabled(ctx, principal.Username)
	if err != nil {
		return domain.Principal{}, err
	}
	if !enabled {
		a.logger.Warn("disabled account presented a valid token", zap.String("userId", principal.SubjectID))
		return domain.Principal{}, domain.ErrAccountDisabled
	}

	return principal, nil
}

func (a *authenticator) RequireRole(ctx context.Context, principal domain.Principal, role string) error {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.StatusTimeout)
	defer cancel()

	groups, err := a.idp.UserGroups(ctx, principal.Username)
	if err != nil {
		a.logger.Error("group lookup failed", zap.String("userId", principal.SubjectID), zap.Error(err))
		return domain.NewAuthUnavailableError(err)
	}
	if !containsString(groups, role) {
		a.logger.Warn("missing role",
			zap.String("userId", principal.SubjectID),
			zap.String("role", role),
		)
		return domain.ErrForbidden
	}
	return nil
}

func (a *authenticator) Close() {
	if a.jwks != nil {
		a.jwks.EndBackground()
	}
}

// accountEnabled asks the identity provider whether the account is still
// live. The call is bounded; on timeout the caller gets AuthUnavailable
// rather than an indefinite hang.
func (a *authenticator) accountEnabled(ctx context.Context, username string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.StatusTimeout)
	defer cancel()

	enabled, err := a.idp.UserEnabled(ctx, username)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			a.logger.Error("account status check timed out", zap.String("username", username))
		} else {
			a.logger.Error("account status check failed", zap.String("username", username), zap.Error(err))
		}
		return false, domain.NewAuthUnavailableError(err)
	}
	return enabled, nil
}

func principalFromClaims(claims jwt.MapClaims, idToken string) domain.Principal {
	principal := domain.Principal{
		SubjectID:   stringClaim(claims, "sub"),
		DisplayName: stringClaim(claims, "name"),
		Username:    stringClaim(claims, "cognito:username"),
		Email:       stringClaim(claims, "email"),
		AuthType:    domain.AuthTypeNative,
		Tokens:      domain.TokenSet{IDToken: idToken},
	}
	if principal.Username == "" {
		principal.Username = principal.SubjectID
	}
	if principal.DisplayName == "" {
		principal.DisplayName = stringClaim(claims, "given_name")
	}
	if groups, ok := claims["cognito:groups"].([]any); ok {
		for _, g := range groups {
			if name, ok := g.(string); ok {
				principal.Groups = append(principal.Groups, name)
			}
		}
	}
	// Third-party logins carry an identities claim.
	if _, ok := claims["identities"]; ok {
		principal.AuthType = domain.AuthTypeSocial
	}
	return principal
}

func stringClaim(claims jwt.MapClaims, key string) string {
	v, _ := claims[key].(string)
	return v
}

func containsString(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
