package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const (
	// ListingQueryNamespace holds every cached listing search result. It is
	// dropped as a whole on any listing write.
	ListingQueryNamespace = "listings:query"

	// ScopeFavorites is the per-user favorites list.
	ScopeFavorites = "favorites"
)

// EncodeFilter maps a set of query predicates to a stable cache key inside
// ListingQueryNamespace. Absent predicates (nil or "") are skipped, names are
// sorted, and numbers are rendered in their shortest exact form, so
// semantically equal filters always produce the same key.
func EncodeFilter(predicates map[string]any) string {
	return ListingQueryNamespace + ":" + filterDigest(predicates)
}

func filterDigest(predicates map[string]any) string {
	names := make([]string, 0, len(predicates))
	for name, v := range predicates {
		if isAbsent(v) {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return "all"
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(canonicalValue(predicates[name])))
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// EncodeScope returns the key of an entity-scoped entry. Favorites live
// under the owning user, e.g. user:<id>:favorites.
func EncodeScope(kind, id string) string {
	if kind == ScopeFavorites {
		return fmt.Sprintf("user:%s:%s", id, kind)
	}
	return kind + ":" + id
}

// NamespaceGenerationKey holds the current generation token of a namespace.
func NamespaceGenerationKey(namespace string) string {
	return namespace + ":generation"
}

// generationKey places a namespace key under a specific generation:
// listings:query:<digest> becomes listings:query:<gen>:<digest>.
func generationKey(namespace, generation, key string) string {
	suffix := strings.TrimPrefix(key, namespace+":")
	return namespace + ":" + generation + ":" + suffix
}

// keyLabel is the low-cardinality metrics label of a key.
func keyLabel(key string) string {
	switch {
	case strings.HasPrefix(key, ListingQueryNamespace+":"):
		return ListingQueryNamespace
	case strings.HasPrefix(key, "user:"):
		return "user:" + key[strings.LastIndexByte(key, ':')+1:]
	default:
		return "other"
	}
}

func isAbsent(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	}
	return false
}

func canonicalValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return formatFloat(t, 64)
	case float32:
		return formatFloat(float64(t), 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case bool:
		return strconv.FormatBool(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func formatFloat(f float64, bits int) string {
	if f == 0 {
		// -0 and 0 share a key
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, bits)
}
