package catalogfetcher

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/extensions"
)

// Options - параметры сетевого доступа к каталогу.
type Options struct {
	CatalogURL   string
	ImageBaseURL string
	Timeout      time.Duration
	RandomDelay  time.Duration
	Parallelism  int
}

// CatalogFetcherAdapter отвечает за все взаимодействия с удаленным каталогом и CDN изображений
type CatalogFetcherAdapter struct {
	// родительский коллектор, который разделяет лимиты
	collector    *colly.Collector
	catalogURL   string
	imageBaseURL string
}

// NewCatalogFetcherAdapter - конструктор
func NewCatalogFetcherAdapter(opts Options) (*CatalogFetcherAdapter, error) {
	domains, err := allowedDomains(opts.CatalogURL, opts.ImageBaseURL)
	if err != nil {
		return nil, fmt.Errorf("CatalogFetcherAdapter: %w", err)
	}

	c := colly.NewCollector(colly.AllowedDomains(domains...), colly.AllowURLRevisit())

	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = 1
	}

	// Эти правила будут наследоваться всеми клонами коллектора
	err = c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: parallelism,
		RandomDelay: opts.RandomDelay,
	})
	if err != nil {
		return nil, fmt.Errorf("CatalogFetcherAdapter: failed to set limit rule: %w", err)
	}

	if opts.Timeout > 0 {
		c.SetRequestTimeout(opts.Timeout)
	}

	return &CatalogFetcherAdapter{
		collector:    c,
		catalogURL:   opts.CatalogURL,
		imageBaseURL: strings.TrimRight(opts.ImageBaseURL, "/"),
	}, nil
}

// newCollector - клон родительского коллектора для одного запроса.
// Клон наследует лимиты и таймаут, но не колбэки, поэтому расширения навешиваются здесь.
func (a *CatalogFetcherAdapter) newCollector(ctx context.Context) *colly.Collector {
	collector := a.collector.Clone()
	collector.Context = ctx

	extensions.RandomUserAgent(collector) // На каждый запрос будет подставлен User-Agent реального браузера
	extensions.Referer(collector)
	return collector
}

func allowedDomains(rawURLs ...string) ([]string, error) {
	var domains []string
	for _, raw := range rawURLs {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid URL %q: %w", raw, err)
		}
		if u.Hostname() == "" {
			return nil, fmt.Errorf("URL %q has no host", raw)
		}
		domains = append(domains, u.Hostname())
	}
	return domains, nil
}
