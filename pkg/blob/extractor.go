// Package blob holds the content-tree URL extractor and the object-store
// adapter for externally hosted binary assets.
package blob

import (
	"encoding/json"
	"net/url"
	"sort"
	"strings"
)

// DefaultHostSuffix matches the storage provider's public-object domain.
const DefaultHostSuffix = ".public.blob.vercel-storage.com"

// Extractor finds store-owned URLs inside a note's content tree. The walk
// assumes nothing about the block schema: objects have values, arrays have
// items, strings are leaves.
type Extractor struct {
	hostSuffix string
}

func NewExtractor(hostSuffix string) *Extractor {
	if hostSuffix == "" {
		hostSuffix = DefaultHostSuffix
	}
	return &Extractor{hostSuffix: hostSuffix}
}

// ExtractURLs returns the deduplicated set of blob URLs referenced by
// content, sorted for determinism. content may be a decoded JSON value
// (map/slice/string), raw JSON bytes, or nil.
func (e *Extractor) ExtractURLs(content interface{}) []string {
	seen := make(map[string]struct{})
	e.walk(content, seen)

	urls := make([]string, 0, len(seen))
	for u := range seen {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}

func (e *Extractor) walk(node interface{}, seen map[string]struct{}) {
	switch v := node.(type) {
	case nil:
	case string:
		if e.IsBlobURL(v) {
			seen[v] = struct{}{}
		}
	case []interface{}:
		for _, item := range v {
			e.walk(item, seen)
		}
	case map[string]interface{}:
		for _, value := range v {
			e.walk(value, seen)
		}
	case json.RawMessage:
		e.walkRaw([]byte(v), seen)
	case []byte:
		e.walkRaw(v, seen)
	}
}

func (e *Extractor) walkRaw(raw []byte, seen map[string]struct{}) {
	if len(raw) == 0 {
		return
	}
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return
	}
	e.walk(decoded, seen)
}

// IsBlobURL reports whether s is an https URL on the store's public-object
// domain. Malformed strings are simply not blob URLs, never an error.
func (e *Extractor) IsBlobURL(s string) bool {
	parsed, err := url.Parse(s)
	if err != nil {
		return false
	}
	if parsed.Scheme != "https" {
		return false
	}
	return strings.HasSuffix(parsed.Hostname(), e.hostSuffix)
}

// RemovedURLs computes extract(old) minus extract(new): the references that
// a content update dropped and whose objects are now collectable.
func (e *Extractor) RemovedURLs(oldContent, newContent interface{}) []string {
	oldURLs := e.ExtractURLs(oldContent)
	kept := make(map[string]struct{})
	for _, u := range e.ExtractURLs(newContent) {
		kept[u] = struct{}{}
	}

	removed := make([]string, 0)
	for _, u := range oldURLs {
		if _, ok := kept[u]; !ok {
			removed = append(removed, u)
		}
	}
	return removed
}
