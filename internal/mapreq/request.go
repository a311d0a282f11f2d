package mapreq

import (
	"net/url"
	"strings"
)

// Kind identifies the external service a request is meant for
type Kind int

const (
	KindImage Kind = iota
	KindGeocode
)

// String returns a string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindGeocode:
		return "geocode"
	default:
		return "unknown"
	}
}

// Param is a single query parameter
type Param struct {
	Key   string
	Value string
}

// Request describes one call to an external map service. It is built fresh
// from a viewport and discarded after use.
type Request struct {
	Kind     Kind
	Endpoint string
	params   []Param
}

// Params returns a copy of the query parameters in request order
func (r Request) Params() []Param {
	return append([]Param(nil), r.params...)
}

// Get returns the value of the first parameter with the given key
func (r Request) Get(key string) (string, bool) {
	for _, p := range r.params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Query renders the parameters in their fixed order. Commas stay literal,
// which the static map service expects in coordinate lists.
func (r Request) Query() string {
	var b strings.Builder
	for i, p := range r.params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(strings.ReplaceAll(url.QueryEscape(p.Value), "%2C", ","))
	}
	return b.String()
}

// URL joins the endpoint and the query
func (r Request) URL() string {
	query := r.Query()
	if query == "" {
		return r.Endpoint
	}

	sep := "?"
	if strings.Contains(r.Endpoint, "?") {
		sep = "&"
	}
	return r.Endpoint + sep + query
}
