// internal/clients/holidays_client.go
package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/migueldrlds/bibliteK-sub000/internal/catalog"
)

// HolidaysClient fetches the flagged holiday set from the catalog
// service. Holiday data changes rarely and is read on every fine
// computation, so responses are served from a TTL cache; writes to the
// holiday table go through the catalog service, which is why the cache
// exposes explicit invalidation rather than assuming immutability.
type HolidaysClient struct {
	baseURL string
	cache   *TTLCache
}

func NewHolidaysClient(baseURL string, ttl time.Duration) *HolidaysClient {
	return &HolidaysClient{
		baseURL: baseURL,
		cache:   NewTTLCache(ttl),
	}
}

func (c *HolidaysClient) cacheKey() string {
	return "GET " + c.baseURL + "/holidays"
}

// GetHolidays returns every flagged date, midnight-normalized.
func (c *HolidaysClient) GetHolidays(ctx context.Context) ([]time.Time, error) {
	if body, ok := c.cache.Get(c.cacheKey()); ok {
		return decodeHolidays(body)
	}

	url := c.baseURL + "/holidays"
	var holidays []catalog.Holiday
	if err := doJSON(ctx, http.MethodGet, url, nil, &holidays); err != nil {
		return nil, err
	}

	body, err := json.Marshal(holidays)
	if err == nil {
		c.cache.Put(c.cacheKey(), body)
	}

	return holidayDates(holidays), nil
}

// Invalidate drops the cached holiday set; callers that add or remove
// a holiday should invalidate so the next read is fresh.
func (c *HolidaysClient) Invalidate() {
	c.cache.Invalidate(c.cacheKey())
}

func decodeHolidays(body []byte) ([]time.Time, error) {
	var holidays []catalog.Holiday
	if err := json.Unmarshal(body, &holidays); err != nil {
		return nil, fmt.Errorf("decode cached holidays: %w", err)
	}
	return holidayDates(holidays), nil
}

func holidayDates(holidays []catalog.Holiday) []time.Time {
	dates := make([]time.Time, 0, len(holidays))
	for _, h := range holidays {
		dates = append(dates, h.Date)
	}
	return dates
}
