// Package app runs the endpoint table: it builds each origin URL, fetches it
// through the read-through cache and reshapes the document.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/eugener/llamadash/internal/llama"
)

// Fetcher returns the parsed origin document at url, cached for ttl.
type Fetcher interface {
	FetchWithCache(ctx context.Context, url string, ttl time.Duration) (gjson.Result, error)
}

// Hosts holds the base URL of every origin host.
type Hosts struct {
	API         string
	Stablecoins string
	Yields      string
	Bridges     string
	Coins       string
}

func (h Hosts) base(host Host) string {
	switch host {
	case HostStablecoins:
		return h.Stablecoins
	case HostYields:
		return h.Yields
	case HostBridges:
		return h.Bridges
	case HostCoins:
		return h.Coins
	default:
		return h.API
	}
}

// EndpointService serves endpoints from the table.
type EndpointService struct {
	fetcher Fetcher
	hosts   Hosts
}

// NewEndpointService returns an EndpointService fetching through f.
func NewEndpointService(f Fetcher, hosts Hosts) *EndpointService {
	return &EndpointService{fetcher: f, hosts: hosts}
}

// URL returns the origin URL for e. Path parameters are substituted verbatim.
func (s *EndpointService) URL(e *Endpoint, params map[string]string) string {
	path := e.Upstream
	for _, p := range e.Params {
		path = strings.ReplaceAll(path, "{"+p.Name+"}", params[p.Name])
	}
	return strings.TrimSuffix(s.hosts.base(e.Host), "/") + path
}

// Serve fetches and reshapes e. search is ignored unless e is searchable.
// Any fetch or transform failure is returned wrapped; the caller answers
// with e.Message and e.ErrorStatus.
func (s *EndpointService) Serve(ctx context.Context, e *Endpoint, params map[string]string, search string) (any, error) {
	url := s.URL(e, params)
	doc, err := s.fetcher.FetchWithCache(ctx, url, e.TTL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", e.Path, err)
	}

	q := llama.Query{Fields: e.Search}
	if len(e.Search) > 0 {
		q.Search = search
	}
	out, err := e.Transform(doc, q)
	if err != nil {
		return nil, fmt.Errorf("transform %s: %w", e.Path, err)
	}
	return out, nil
}
