package http

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"unicode/utf8"

	"budgetbook/internal/log"
)

const (
	flashCookie = "flash"
	// maxFlashValue keeps the encoded cookie under the 4KB browsers store.
	maxFlashValue   = 3800
	maxFlashMessage = 600
)

type FlashLevel string

const (
	FlashSuccess FlashLevel = "success"
	FlashWarning FlashLevel = "warning"
	FlashError   FlashLevel = "error"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Level   FlashLevel `json:"level"`
	Message string     `json:"message"`
}

// flashes accumulates the messages of one request.
type flashes []Flash

func (f *flashes) add(level FlashLevel, msg string) {
	*f = append(*f, Flash{Level: level, Message: msg})
}

// save stores the messages for the page the client is redirected to.
// Messages that would overflow the cookie are shortened or dropped.
func (f flashes) save(w http.ResponseWriter, r *http.Request) {
	if len(f) == 0 {
		return
	}
	logger := log.FromContext(r.Context())
	value, trimmed, err := f.encode()
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to encode flash messages", log.FieldError, err)
		return
	}
	if trimmed {
		logger.WarnContext(r.Context(), "Flash messages trimmed to fit the cookie", "messages", len(f))
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (f flashes) encode() (value string, trimmed bool, err error) {
	out := make(flashes, len(f))
	for i, fl := range f {
		if short := truncate(fl.Message, maxFlashMessage); short != fl.Message {
			fl.Message, trimmed = short, true
		}
		out[i] = fl
	}
	for {
		raw, err := json.Marshal(out)
		if err != nil {
			return "", trimmed, err
		}
		value = base64.RawURLEncoding.EncodeToString(raw)
		if len(value) <= maxFlashValue {
			return value, trimmed, nil
		}
		trimmed = true
		if len(out) > 1 {
			out = out[:len(out)-1]
			continue
		}
		out[0].Message = truncate(out[0].Message, utf8.RuneCountInString(out[0].Message)/2)
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

// popFlashes reads and clears pending messages. A tampered cookie is dropped.
func popFlashes(w http.ResponseWriter, r *http.Request) flashes {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Path: "/", MaxAge: -1, HttpOnly: true, SameSite: http.SameSiteLaxMode})

	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var out flashes
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
