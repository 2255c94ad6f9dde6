// Package assets turns image paths returned by the API into absolute URLs on
// the deployment's asset host.
package assets

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// schemeFragment matches a run of scheme prefixes at the start of the value
// or of a path segment, including the colon-less form ("https//") the API
// has been seen to emit.
var schemeFragment = regexp.MustCompile(`(?i)(?:^|/)(?:https?:?/+)+`)

type Resolver struct {
	base string
}

// NewResolver builds a resolver for the asset host at baseURL
// (e.g. "https://sportify.example.com").
func NewResolver(baseURL string) (*Resolver, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("[assets.NewResolver] invalid base url: %w", err)
	}
	if !wellFormed(u) {
		return nil, fmt.Errorf("[assets.NewResolver] base url %q must be an absolute http(s) url", baseURL)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return &Resolver{base: strings.TrimRight(u.String(), "/")}, nil
}

func (r *Resolver) Base() string {
	return r.base
}

// Resolve returns exactly one absolute URL for imagePath, or "" when there
// is no image. Well formed absolute URLs carrying a single scheme pass
// through. Relative paths, bare file names and values with a scheme and host
// embedded anywhere are rebased onto the asset host, keeping only the path
// after the last embedded host.
func (r *Resolver) Resolve(imagePath string) string {
	p := strings.TrimSpace(imagePath)
	if p == "" {
		return ""
	}

	locs := schemeFragment.FindAllStringIndex(p, -1)
	if len(locs) == 1 && locs[0][0] == 0 {
		if u, err := url.Parse(p); err == nil && wellFormed(u) {
			return u.String()
		}
	}

	if len(locs) > 0 {
		p = p[locs[len(locs)-1][1]:]
		// what follows a scheme is a host, drop it
		if i := strings.Index(p, "/"); i >= 0 {
			p = p[i:]
		} else {
			p = ""
		}
	}

	p = strings.TrimLeft(p, "/")
	if p == "" {
		return ""
	}
	return r.base + "/" + p
}

func wellFormed(u *url.URL) bool {
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host != "" && host != "http" && host != "https"
}
