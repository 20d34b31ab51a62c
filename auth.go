package bankxlive

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Actor is the authenticated caller. The core trusts it as given.
type Actor struct {
	AcctID string
	Role   Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

type actorCtxKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorCtxKey{}, a)
}

func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorCtxKey{}).(Actor)
	return a, ok
}

type loginFinder interface {
	GetByLoginName(name string) (*Account, error)
}

type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator issues and checks HS256 bearer tokens.
type Authenticator struct {
	accts  loginFinder
	secret []byte
	ttl    time.Duration
	clock  func() time.Time
}

func NewAuthenticator(accts loginFinder, secret string, ttl time.Duration) *Authenticator {
	return &Authenticator{
		accts:  accts,
		secret: []byte(secret),
		ttl:    ttl,
		clock:  time.Now,
	}
}

func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Login checks the credentials and returns a signed token for the account.
// Unknown usernames and wrong passwords produce the same error.
func (a *Authenticator) Login(username, password string) (string, *Account, error) {
	acct, err := a.accts.GetByLoginName(username)
	if err != nil {
		if errors.As(err, &ErrNotFound{}) {
			return "", nil, ErrUnauthorized{Reason: "invalid credentials"}
		}
		return "", nil, err
	}
	if err = bcrypt.CompareHashAndPassword([]byte(acct.Password), []byte(password)); err != nil {
		return "", nil, ErrUnauthorized{Reason: "invalid credentials"}
	}
	token, err := a.IssueToken(*acct)
	if err != nil {
		return "", nil, err
	}
	return token, acct, nil
}

func (a *Authenticator) IssueToken(acct Account) (string, error) {
	now := a.clock()
	claims := Claims{
		Role: acct.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   acct.AcctID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func (a *Authenticator) ParseToken(raw string) (Actor, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.clock))
	if err != nil {
		return Actor{}, ErrUnauthorized{Reason: "invalid token"}
	}
	if claims.Subject == "" {
		return Actor{}, ErrUnauthorized{Reason: "token has no subject"}
	}
	role := claims.Role
	if role == "" {
		role = RoleUser
	}
	return Actor{AcctID: claims.Subject, Role: role}, nil
}

// Middleware rejects requests without a valid bearer token and stores the
// Actor on the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			WriteHTTPError(w, ErrUnauthorized{Reason: "missing bearer token"})
			return
		}
		actor, err := a.ParseToken(raw)
		if err != nil {
			WriteHTTPError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}
