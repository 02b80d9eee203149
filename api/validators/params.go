package validators

import (
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/ichaoui56/e-commerce-backoffice/pkg/errors"
)

func fieldError(field, msg string, extra ...any) error {
	details := map[string]any{"field": field}
	for i := 0; i+1 < len(extra); i += 2 {
		if key, ok := extra[i].(string); ok {
			details[key] = extra[i+1]
		}
	}
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(details)
}

// ParseUUIDParam reads a chi URL parameter as a UUID.
func ParseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, name)))
	if err != nil {
		return uuid.Nil, fieldError(name, "invalid "+name)
	}
	return id, nil
}

// optionalQuery parses ?key with parse, returning nil when the key is absent or blank.
func optionalQuery[T any](r *http.Request, key, msg string, parse func(string) (T, error)) (*T, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	value, err := parse(raw)
	if err != nil {
		return nil, fieldError(key, msg)
	}
	return &value, nil
}

func ParseQueryUUID(r *http.Request, key string) (*uuid.UUID, error) {
	return optionalQuery(r, key, "query parameter must be a uuid", uuid.Parse)
}

func ParseQueryBool(r *http.Request, key string) (*bool, error) {
	return optionalQuery(r, key, "query parameter must be a boolean", strconv.ParseBool)
}

// ParseQueryInt returns def when key is absent and rejects values outside [lo, hi].
func ParseQueryInt(r *http.Request, key string, def, lo, hi int) (int, error) {
	value, err := optionalQuery(r, key, "query parameter must be numeric", strconv.Atoi)
	if err != nil || value == nil {
		return def, err
	}
	if *value < lo || *value > hi {
		return 0, fieldError(key, "query parameter out of range", "min", lo, "max", hi)
	}
	return *value, nil
}

// SanitizeString trims input and cuts it to at most maxLen runes; maxLen <= 0
// only trims. Cutting by rune keeps accented and Arabic product names valid UTF-8.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen <= 0 || utf8.RuneCountInString(trimmed) <= maxLen {
		return trimmed
	}
	runes := []rune(trimmed)
	return strings.TrimSpace(string(runes[:maxLen]))
}
