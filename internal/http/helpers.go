package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

const sessionCookieName = "moneta_session"

// categoryColors maps category labels to their accent colour. Unknown
// categories fall back to a neutral grey.
var categoryColors = map[string]string{
	"Food":          "#ffeaa7",
	"Transport":     "#81ecec",
	"Shopping":      "#fab1a0",
	"Bills":         "#74b9ff",
	"Entertainment": "#a29bfe",
}

const fallbackColor = "#dfe6e9"

func categoryColor(category string) string {
	if c, ok := categoryColors[category]; ok {
		return c
	}
	return fallbackColor
}

// formatAmount renders cents as a dollar string (e.g. "$12.34").
func formatAmount(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := "$" + strconv.FormatInt(cents/100, 10) + "." + fmt.Sprintf("%02d", cents%100)
	if neg {
		return "-" + s
	}
	return s
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// parseRecordID extracts the numeric id from a /transactions/{id} path.
func parseRecordID(path string) (int64, error) {
	raw := strings.TrimPrefix(path, "/transactions/")
	raw = strings.TrimSuffix(raw, "/")
	if raw == "" || strings.Contains(raw, "/") {
		return 0, fmt.Errorf("missing record id in path %q", path)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid record id %q: %w", raw, err)
	}
	return id, nil
}

// sessionToken returns the raw session token from the request cookie.
func sessionToken(r *http.Request) string {
	c, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func setSessionCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	setSessionCookie(w, "", -1)
}
