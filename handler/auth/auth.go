package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"poolmanager/handler/render"
	"poolmanager/handler/request"

	"github.com/fox-one/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/twitchtv/twirp"
)

// IssueToken sign a HS256 token whose subject is the caller address
func IssueToken(secret, caller string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret not set")
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:  caller,
		IssuedAt: jwt.NewNumericDate(now),
	}

	if ttl != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken verify the token and return its subject
func ParseToken(secret, token string) (string, error) {
	var claims jwt.RegisteredClaims
	if _, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})); err != nil {
		return "", err
	}

	if claims.Subject == "" {
		return "", errors.New("token without subject")
	}

	return claims.Subject, nil
}

// HandleAuthentication handle authentication
func HandleAuthentication(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := logger.FromContext(ctx)

			accessToken := getBearerToken(r)
			if accessToken == "" || secret == "" {
				next.ServeHTTP(w, r)
				return
			}

			caller, err := ParseToken(secret, accessToken)
			if err != nil {
				next.ServeHTTP(w, r)
				log.WithError(err).Debugln("parse access token error:", err)
				return
			}

			next.ServeHTTP(w, r.WithContext(request.NewContext(ctx).WithCaller(caller)))
		}

		return http.HandlerFunc(fn)
	}
}

// LoginRequired reject requests without an authenticated caller
func LoginRequired(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		if _, ok := request.NewContext(r.Context()).GetCaller(); !ok {
			render.Error(w, twirp.NewError(twirp.Unauthenticated, "login required"))
			return
		}

		next.ServeHTTP(w, r)
	}

	return http.HandlerFunc(fn)
}

func getBearerToken(r *http.Request) string {
	s := r.Header.Get("Authorization")
	return strings.TrimPrefix(s, "Bearer ")
}
