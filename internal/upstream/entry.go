package upstream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// entry is the cached form of a successful origin response.
// The body is always valid JSON, so it is embedded raw.
type entry struct {
	Status   int             `json:"status"`
	Header   http.Header     `json:"header,omitempty"`
	CachedAt int64           `json:"cached_at"`
	Body     json.RawMessage `json:"body"`
}

// cachedHeaders are the response headers kept with a cache entry.
var cachedHeaders = []string{"Content-Type", "Last-Modified", "Etag"}

func newEntry(resp *http.Response, body []byte, ttl time.Duration, now time.Time) *entry {
	h := make(http.Header, len(cachedHeaders)+1)
	for _, k := range cachedHeaders {
		if v := resp.Header.Get(k); v != "" {
			h.Set(k, v)
		}
	}
	h.Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(ttl.Seconds())))
	return &entry{
		Status:   resp.StatusCode,
		Header:   h,
		CachedAt: now.Unix(),
		Body:     body,
	}
}

func (e *entry) encode() ([]byte, error) {
	return json.Marshal(e)
}

func decodeEntry(data []byte) (*entry, error) {
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decode cache entry: %w", err)
	}
	if len(e.Body) == 0 {
		return nil, fmt.Errorf("decode cache entry: empty body")
	}
	return &e, nil
}
