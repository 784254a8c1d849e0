package query

import (
	"fmt"
	"net/url"
	"strings"
)

// Filters are the query-string parameters that distinguish one logical
// query from another (page, status, search text, ...). Values are
// primitives; they are stringified and sorted by name so two filter maps
// with the same contents always produce the same key.
type Filters map[string]any

// Key identifies one cache entry. The canonical form doubles as the GET
// request path, so the thing we cache under is exactly the thing we fetch.
type Key struct {
	path      string
	canonical string
}

func NewKey(path string, filters Filters) Key {
	if len(filters) == 0 {
		return Key{path: path, canonical: path}
	}
	vals := url.Values{}
	for name, v := range filters {
		if v == nil {
			continue
		}
		vals.Set(name, fmt.Sprint(v))
	}
	if len(vals) == 0 {
		return Key{path: path, canonical: path}
	}
	// url.Values.Encode sorts by parameter name.
	return Key{path: path, canonical: path + "?" + vals.Encode()}
}

func (k Key) String() string { return k.canonical }
func (k Key) Path() string   { return k.path }
func (k Key) IsZero() bool   { return k.canonical == "" }

// Matches reports whether the key falls under an invalidation prefix.
// "/api/moderation" matches the queue at any page/filter combination.
func (k Key) Matches(prefix string) bool {
	return strings.HasPrefix(k.canonical, prefix)
}
