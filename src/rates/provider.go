package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/username/moneyfolio/src/logger"
	"github.com/username/moneyfolio/src/models"
)

const cacheKey = "observations"

// Provider fetches currency conversion rates for unattended single-phase
// imports. Fetched documents are cached under a TTL; outbound requests
// are throttled; when the source is unreachable the last successfully
// fetched rates are reused so an import never blocks on the network.
type Provider struct {
	url     string
	client  *http.Client
	cache   *cache.Cache
	limiter *rate.Limiter

	mu        sync.Mutex
	lastKnown map[string]float64
}

func NewProvider(url string, ttl, timeout time.Duration) *Provider {
	return &Provider{
		url:     url,
		client:  &http.Client{Timeout: timeout},
		cache:   cache.New(ttl, 2*ttl),
		limiter: rate.NewLimiter(rate.Every(time.Minute), 2),
	}
}

// Rates returns a currency → base-currency conversion rate map. It never
// returns an error: on any failure it falls back to the last known
// rates, and to an empty map when nothing was ever fetched (the import
// then applies its 1.0 default per currency).
func (p *Provider) Rates(ctx context.Context) map[string]float64 {
	if v, found := p.cache.Get(cacheKey); found {
		return v.(map[string]float64)
	}
	if !p.limiter.Allow() {
		return p.fallback("rate source throttled", nil)
	}

	doc, err := p.fetch(ctx)
	if err != nil {
		return p.fallback("rate fetch failed", err)
	}

	rates := toRateMap(doc)
	p.cache.SetDefault(cacheKey, rates)

	p.mu.Lock()
	p.lastKnown = rates
	p.mu.Unlock()

	logger.L.Debug("Fetched conversion rates", "currencies", len(rates))
	return rates
}

func (p *Provider) fetch(ctx context.Context) (*models.ExchangeRate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build rates request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate source returned %s", resp.Status)
	}

	var doc models.ExchangeRate
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode rates document: %w", err)
	}
	return &doc, nil
}

func (p *Provider) fallback(reason string, err error) map[string]float64 {
	p.mu.Lock()
	last := p.lastKnown
	p.mu.Unlock()

	logger.L.Warn("Using last known conversion rates",
		"reason", reason, "error", err, "currencies", len(last))
	return last
}

// toRateMap converts the observation document. Observations quote units
// of foreign currency per unit of the base currency, so the conversion
// rate into the base currency is the reciprocal.
func toRateMap(doc *models.ExchangeRate) map[string]float64 {
	rates := make(map[string]float64, len(doc.Root.Obs))
	for _, obs := range doc.Root.Obs {
		if obs.Ccy == "" || obs.Ccy == models.BaseCurrency {
			continue
		}
		value, err := strconv.ParseFloat(obs.ObsValue, 64)
		if err != nil || value == 0 {
			logger.L.Warn("Skipping invalid rate observation", "currency", obs.Ccy, "value", obs.ObsValue)
			continue
		}
		rates[obs.Ccy] = 1 / value
	}
	return rates
}
