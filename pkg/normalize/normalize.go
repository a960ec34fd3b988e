// Package normalize maps the loose JSON shapes the upstream services emit
// onto the wizard's record types. The upstream contract is uncontrolled: the
// same logical payload arrives with varying field casings, synonyms, and an
// inconsistent wrapper object. Each mapping is a declarative priority list
// over those variants rather than a cascade of conditionals.
//
// Normalization never fails. Missing scalars get defaults, objects found
// where strings were expected are flattened to readable text, and entries
// missing their mandatory identifying field are skipped with a logged debug
// entry. Every function returns a (possibly empty) slice for any
// syntactically valid JSON value.
package normalize

import (
	"log/slog"
	"strings"

	"github.com/tidwall/gjson"
)

// Defaults substituted for absent scalar fields.
const (
	DefaultCompetition = "UNKNOWN"
	DefaultIntent      = "unknown"
)

// Wrapper fields checked, in order, before the top-level value itself is
// treated as the collection.
var (
	topicWrappers      = []string{"ideas", "topics", "results", "data", "items"}
	competitorWrappers = []string{"competitors", "summaries", "results", "data", "items"}
	rankedWrappers     = []string{"keywords", "ranked_keywords", "results", "data", "items"}
	linkWrappers       = []string{"links", "internal_links", "pages", "results", "data", "items"}
	suggestionWrappers = []string{"suggestions", "keywords", "results", "data", "items"}
)

// TopicIdeas maps a parsed upstream value onto topic idea records.
func TopicIdeas(v gjson.Result, log *slog.Logger) []TopicIdea {
	out := make([]TopicIdea, 0)
	for _, item := range collection(v, topicWrappers) {
		idea := TopicIdea{
			Title:       str(item, "", "title", "Title", "topic", "idea"),
			Description: str(item, "", "description", "Description", "summary", "angle"),
			Keywords:    strList(item, "keywords", "Keywords", "terms"),
		}
		if idea.Title == "" {
			skip(log, "topic idea", "title", item)
			continue
		}
		out = append(out, idea)
	}
	return out
}

// CompetitorSummaries maps a parsed upstream value onto competitor records.
func CompetitorSummaries(v gjson.Result, log *slog.Logger) []CompetitorSummary {
	out := make([]CompetitorSummary, 0)
	for _, item := range collection(v, competitorWrappers) {
		rec := CompetitorSummary{
			URL:       str(item, "", "url", "URL", "link", "page_url"),
			Title:     str(item, "", "title", "Title", "page_title"),
			Summary:   str(item, "", "summary", "Summary", "description", "overview"),
			WordCount: num(item, "word_count", "wordCount", "words", "length"),
		}
		if rec.URL == "" {
			skip(log, "competitor summary", "url", item)
			continue
		}
		out = append(out, rec)
	}
	return out
}

// RankedKeywords maps a parsed upstream value onto ranked keyword records.
func RankedKeywords(v gjson.Result, log *slog.Logger) []RankedKeyword {
	out := make([]RankedKeyword, 0)
	for _, item := range collection(v, rankedWrappers) {
		rec := RankedKeyword{
			Keyword:      str(item, "", "keyword", "Keyword", "term", "query"),
			Position:     num(item, "position", "Position", "rank", "pos"),
			SearchVolume: num(item, "search_volume", "searchVolume", "volume", "sv"),
			Competition:  str(item, DefaultCompetition, "competition", "Competition", "difficulty", "kd"),
			URL:          str(item, "", "url", "URL", "page", "landing_page"),
		}
		if rec.Keyword == "" {
			skip(log, "ranked keyword", "keyword", item)
			continue
		}
		out = append(out, rec)
	}
	return out
}

// InternalLinks maps a parsed upstream value onto internal link records.
func InternalLinks(v gjson.Result, log *slog.Logger) []InternalLink {
	out := make([]InternalLink, 0)
	for _, item := range collection(v, linkWrappers) {
		rec := InternalLink{
			URL:         str(item, "", "url", "URL", "link", "href", "page"),
			Title:       str(item, "", "title", "Title", "anchor", "text", "name"),
			Description: str(item, "", "description", "Description", "snippet", "summary"),
		}
		if rec.URL == "" {
			skip(log, "internal link", "url", item)
			continue
		}
		out = append(out, rec)
	}
	return out
}

// SuggestedKeywords maps a parsed upstream value onto a keyword string list.
// Items may be bare strings or objects carrying a keyword field.
func SuggestedKeywords(v gjson.Result, log *slog.Logger) []string {
	out := make([]string, 0)
	for _, item := range collection(v, suggestionWrappers) {
		var kw string
		if item.Type == gjson.String {
			kw = strings.TrimSpace(item.String())
		} else {
			kw = str(item, "", "keyword", "Keyword", "term", "suggestion", "query")
		}
		if kw == "" {
			skip(log, "keyword suggestion", "keyword", item)
			continue
		}
		out = append(out, kw)
	}
	return out
}

// collection resolves where the upstream hid the record list this time:
// under one of the known wrapper fields, or as the top-level value itself. A
// bare object counts as a one-element collection.
func collection(v gjson.Result, wrappers []string) []gjson.Result {
	for _, field := range wrappers {
		nested := v.Get(field)
		if !nested.Exists() {
			continue
		}
		if nested.IsArray() {
			return nested.Array()
		}
		if nested.IsObject() {
			return []gjson.Result{nested}
		}
	}
	if v.IsArray() {
		return v.Array()
	}
	if v.IsObject() {
		return []gjson.Result{v}
	}
	return nil
}

// str returns the first present variant coerced to a string, or def. Objects
// found where a string was expected flatten to "key: value" pairs.
func str(item gjson.Result, def string, variants ...string) string {
	for _, field := range variants {
		f := item.Get(field)
		if !f.Exists() {
			continue
		}
		if f.IsObject() {
			return flatten(f)
		}
		if s := strings.TrimSpace(f.String()); s != "" {
			return s
		}
	}
	return def
}

// num returns the first present variant as an int, or 0. gjson coerces
// numeric strings for free.
func num(item gjson.Result, variants ...string) int {
	for _, field := range variants {
		if f := item.Get(field); f.Exists() {
			return int(f.Int())
		}
	}
	return 0
}

// strList returns the first present variant as a string slice. A lone string
// becomes a one-element list.
func strList(item gjson.Result, variants ...string) []string {
	for _, field := range variants {
		f := item.Get(field)
		if !f.Exists() {
			continue
		}
		if f.IsArray() {
			var out []string
			for _, entry := range f.Array() {
				if s := strings.TrimSpace(entry.String()); s != "" {
					out = append(out, s)
				}
			}
			return out
		}
		if s := strings.TrimSpace(f.String()); s != "" {
			return []string{s}
		}
	}
	return nil
}

// flatten renders an object as readable text instead of discarding it.
func flatten(obj gjson.Result) string {
	var parts []string
	obj.ForEach(func(key, value gjson.Result) bool {
		parts = append(parts, key.String()+": "+value.String())
		return true
	})
	return strings.Join(parts, ". ")
}

func skip(log *slog.Logger, record, field string, item gjson.Result) {
	if log == nil {
		log = slog.Default()
	}
	log.Debug("skipping entry missing mandatory field",
		"record", record,
		"field", field,
		"entry", truncate(item.Raw, 200),
	)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
