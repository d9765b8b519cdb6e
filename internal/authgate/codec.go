// Copyright (c) 2026 VeriClass. All rights reserved.

package authgate

import "net/http"

// # Token Custody

// CookieSettings configures the cookie pair managed by [TokenCodec].
type CookieSettings struct {
	// AccessName / RefreshName are the cookie names (defaults: access_token,
	// refresh_token).
	AccessName  string
	RefreshName string

	// AccessMaxAge / RefreshMaxAge are lifetimes in seconds.
	AccessMaxAge  int
	RefreshMaxAge int

	// Secure marks the cookies Secure; enabled in production.
	Secure bool
}

// TokenCodec encodes and decodes the access/refresh token pair to and from
// HTTP-only cookies.
//
// # Boundary
//
// The cookies are never readable from page scripts — deliberately. The
// validation cache and the gate middleware are the only components ever
// expected to read the raw tokens.
type TokenCodec struct {
	settings CookieSettings
}

// NewTokenCodec constructs a TokenCodec with the given cookie settings.
func NewTokenCodec(settings CookieSettings) *TokenCodec {
	return &TokenCodec{settings: settings}
}

// Persist writes both cookies with the configured max-ages.
//
// A pair with either member missing is rejected with [ErrTokenMissing] and
// no cookie is written — a token pair is never persisted partially.
func (codec *TokenCodec) Persist(writer http.ResponseWriter, pair TokenPair) error {
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return ErrTokenMissing
	}

	http.SetCookie(writer, codec.cookie(codec.settings.AccessName, pair.AccessToken, codec.settings.AccessMaxAge))
	http.SetCookie(writer, codec.cookie(codec.settings.RefreshName, pair.RefreshToken, codec.settings.RefreshMaxAge))

	return nil
}

// Clear deletes both cookies unconditionally. Idempotent.
func (codec *TokenCodec) Clear(writer http.ResponseWriter) {
	http.SetCookie(writer, codec.cookie(codec.settings.AccessName, "", -1))
	http.SetCookie(writer, codec.cookie(codec.settings.RefreshName, "", -1))
}

// ReadAccess returns the raw access token from the request cookies.
func (codec *TokenCodec) ReadAccess(request *http.Request) (string, bool) {
	return readCookie(request, codec.settings.AccessName)
}

// ReadRefresh returns the raw refresh token from the request cookies.
func (codec *TokenCodec) ReadRefresh(request *http.Request) (string, bool) {
	return readCookie(request, codec.settings.RefreshName)
}

// cookie builds one HTTP-only cookie with the codec's shared attributes.
func (codec *TokenCodec) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   codec.settings.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// readCookie fetches a non-empty cookie value from the request.
func readCookie(request *http.Request, name string) (string, bool) {
	cookie, err := request.Cookie(name)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}
