package handlers

import (
	"net/http"

	"github.com/cliphub/backend/internal/auth"
	"github.com/cliphub/backend/internal/models"
)

// setSessionCookies attaches both token cookies. Secure is only set in
// production so local development over plain HTTP keeps working.
func setSessionCookies(w http.ResponseWriter, tokens models.SessionTokens, production bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.AccessTokenCookie,
		Value:    tokens.AccessToken,
		Path:     "/",
		Expires:  tokens.AccessExpiresAt,
		HttpOnly: true,
		Secure:   production,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     auth.RefreshTokenCookie,
		Value:    tokens.RefreshToken,
		Path:     "/",
		Expires:  tokens.RefreshExpiresAt,
		HttpOnly: true,
		Secure:   production,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookies removes both token cookies outright.
func clearSessionCookies(w http.ResponseWriter, production bool) {
	for _, name := range []string{auth.AccessTokenCookie, auth.RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   production,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
