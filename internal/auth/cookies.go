package auth

import (
	"net/http"
)

const refreshCookieName = "refreshToken"

// CookieConfig holds refresh-cookie settings. The refresh token is never
// placed in a response body; this cookie is its only delivery channel.
type CookieConfig struct {
	Secure bool // HTTPS only; enabled in production
	MaxAge int  // Seconds; matches the refresh token TTL
}

// SetRefreshTokenCookie sets the refresh token in an httpOnly,
// SameSite=Strict cookie scoped to the whole site.
func SetRefreshTokenCookie(w http.ResponseWriter, refreshToken string, config CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   config.MaxAge,
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearRefreshTokenCookie deletes the refresh token cookie.
func ClearRefreshTokenCookie(w http.ResponseWriter, config CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// GetRefreshTokenCookie retrieves the refresh token from the request.
func GetRefreshTokenCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}
