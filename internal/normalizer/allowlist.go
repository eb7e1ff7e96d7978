package normalizer

import "strings"

// AllowList is the closed set of URLs the extractor was permitted to cite.
// Lookups tolerate surrounding whitespace and a trailing slash and always
// answer with the URL exactly as it was supplied.
type AllowList struct {
	urls map[string]string
}

// NewAllowList indexes urls. Empty entries are ignored.
func NewAllowList(urls []string) AllowList {
	list := AllowList{urls: make(map[string]string, len(urls))}
	for _, u := range urls {
		key := canonicalURL(u)
		if key == "" {
			continue
		}
		if _, exists := list.urls[key]; !exists {
			list.urls[key] = strings.TrimSpace(u)
		}
	}
	return list
}

// Resolve returns the permitted form of u, or "" when u is not permitted.
func (a AllowList) Resolve(u string) string {
	key := canonicalURL(u)
	if key == "" {
		return ""
	}
	return a.urls[key]
}

// Len reports the number of distinct permitted URLs.
func (a AllowList) Len() int {
	return len(a.urls)
}

func canonicalURL(u string) string {
	return strings.TrimRight(strings.TrimSpace(u), "/")
}
