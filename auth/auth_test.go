package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/tip-engine/auth"
)

var secret = []byte("test-secret")

func signed(t *testing.T, method jwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestVerify_IssuedTokenRoundTrips(t *testing.T) {
	v := &auth.Verifier{Secret: secret, Issuer: "tips", Audience: "tip-engine"}
	token, err := v.Issue(auth.Principal{ID: "user-1", Name: "Ana"}, time.Hour)
	require.NoError(t, err)

	claims, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, auth.Principal{ID: "user-1", Name: "Ana"}, claims.Principal())
}

func TestVerify_Rejections(t *testing.T) {
	v := &auth.Verifier{Secret: secret, Issuer: "tips", Audience: "tip-engine"}
	valid := jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "tips",
		Audience:  jwt.ClaimStrings{"tip-engine"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}

	expired := valid
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	wrongIssuer := valid
	wrongIssuer.Issuer = "someone-else"

	wrongAudience := valid
	wrongAudience.Audience = jwt.ClaimStrings{"other"}

	noSubject := valid
	noSubject.Subject = ""

	cases := map[string]string{
		"empty":          "",
		"garbage":        "not-a-jwt",
		"wrong secret":   signed(t, jwt.SigningMethodHS256, []byte("other"), valid),
		"wrong method":   signed(t, jwt.SigningMethodHS512, secret, valid),
		"expired":        signed(t, jwt.SigningMethodHS256, secret, expired),
		"wrong issuer":   signed(t, jwt.SigningMethodHS256, secret, wrongIssuer),
		"wrong audience": signed(t, jwt.SigningMethodHS256, secret, wrongAudience),
		"no subject":     signed(t, jwt.SigningMethodHS256, secret, noSubject),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(token)
			assert.Error(t, err)
		})
	}
}

func TestVerify_LeewayAcceptsSmallSkew(t *testing.T) {
	v := &auth.Verifier{Secret: secret}
	token := signed(t, jwt.SigningMethodHS256, secret, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-10 * time.Second)),
	})
	_, err := v.Verify(token)
	assert.NoError(t, err)
}

func TestMiddleware(t *testing.T) {
	v := &auth.Verifier{Secret: secret}
	var seen auth.Principal
	handler := auth.Middleware(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/templates", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"Not authenticated"}`, rec.Body.String())
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := v.Issue(auth.Principal{ID: "user-7"}, time.Minute)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/templates", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "user-7", seen.ID)
	})
}
