package validators

import (
	"net/http"

	pkgerrors "github.com/angelmondragon/tableorder/pkg/errors"
)

// ParseQueryString returns the trimmed query value, rejecting values longer
// than maxLen.
func ParseQueryString(r *http.Request, key string, maxLen int) (string, error) {
	raw := r.URL.Query().Get(key)
	value := SanitizeString(raw, 0)
	if maxLen > 0 && len(value) > maxLen {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "query parameter too long").WithDetails(map[string]any{"field": key, "max": maxLen})
	}
	return value, nil
}
