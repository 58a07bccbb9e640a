// Package filterstore is the canonical mapping between list-view filter
// state and URL query parameters. Every list view goes through it; call
// sites never touch the query keys directly.
package filterstore

import (
	"net/url"
	"strconv"
	"strings"
)

// Query parameter keys. "name" and "cpf" are legacy keys kept readable
// for old bookmarked URLs; writes always migrate to the unified "filter".
const (
	keyPage   = "page"
	keyFilter = "filter"
	keyName   = "name"
	keyCPF    = "cpf"
	keyStatus = "status"
)

// Filters is the logical filter record projected from a URL query.
type Filters struct {
	PageIndex int
	Filter    string
	Status    string
}

// Kind classifies a free-text filter for the server-side search parameter.
type Kind string

const (
	KindName Kind = "name"
	KindCPF  Kind = "cpf"
)

// Classify treats any input containing a digit as a CPF query. This is a
// heuristic, not CPF-format validation.
func Classify(filter string) Kind {
	for _, r := range filter {
		if r >= '0' && r <= '9' {
			return KindCPF
		}
	}
	return KindName
}

// Read projects the URL query into a Filters record. The page parameter
// is 1-based; PageIndex is 0-based and never negative. The unified filter
// key wins over the legacy name and cpf keys.
func Read(q url.Values) Filters {
	f := Filters{Status: q.Get(keyStatus)}

	if page, err := strconv.Atoi(q.Get(keyPage)); err == nil && page > 1 {
		f.PageIndex = page - 1
	}

	switch {
	case q.Get(keyFilter) != "":
		f.Filter = q.Get(keyFilter)
	case q.Get(keyName) != "":
		f.Filter = q.Get(keyName)
	case q.Get(keyCPF) != "":
		f.Filter = q.Get(keyCPF)
	}

	return f
}

// SetFilters writes a new free-text filter. The value is trimmed; an
// empty result clears the filter. Legacy keys are always removed and the
// page always resets to 1: a stale page index against a new filter would
// show confusing results.
func SetFilters(q url.Values, filter string) {
	filter = strings.TrimSpace(filter)
	if filter != "" {
		q.Set(keyFilter, filter)
	} else {
		q.Del(keyFilter)
	}
	q.Del(keyName)
	q.Del(keyCPF)
	q.Set(keyPage, "1")
}

// SetStatus writes the status filter. Any status change resets to page 1.
func SetStatus(q url.Values, status string) {
	if status != "" {
		q.Set(keyStatus, status)
	} else {
		q.Del(keyStatus)
	}
	q.Set(keyPage, "1")
}

// ClearFilters removes every filter key and resets to page 1. Idempotent.
func ClearFilters(q url.Values) {
	q.Del(keyFilter)
	q.Del(keyName)
	q.Del(keyCPF)
	q.Del(keyStatus)
	q.Set(keyPage, "1")
}

// SetPage writes the 1-based page number, leaving filters untouched.
func SetPage(q url.Values, page int) {
	if page < 1 {
		page = 1
	}
	q.Set(keyPage, strconv.Itoa(page))
}

// QueryParams projects the filter record into the server's list query
// parameters: pageIndex, perPage, status and either name or cpf depending
// on classification of the free text.
func QueryParams(f Filters, perPage int) url.Values {
	params := url.Values{}
	params.Set("pageIndex", strconv.Itoa(f.PageIndex))
	params.Set("perPage", strconv.Itoa(perPage))
	if f.Status != "" {
		params.Set(keyStatus, f.Status)
	}
	if f.Filter != "" {
		params.Set(string(Classify(f.Filter)), f.Filter)
	}
	return params
}
