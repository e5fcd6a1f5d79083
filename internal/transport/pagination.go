package transport

import (
	"net/http"
	"strconv"

	"toy-catalog/internal/repository"
)

// pageParams reads ?page and ?limit, falling back to the defaults for
// missing or non-positive values.
func pageParams(r *http.Request) (int, int) {
	return positiveQuery(r, "page", repository.DefaultPage), positiveQuery(r, "limit", repository.DefaultLimit)
}

func positiveQuery(r *http.Request, key string, fallback int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
