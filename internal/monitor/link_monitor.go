// Package monitor periodically checks that the urls saved in collections still
// answer, logging every state change.
package monitor

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/axellelanca/linkshelf/internal/logging"
	"github.com/axellelanca/linkshelf/internal/metrics"
	"github.com/axellelanca/linkshelf/internal/models"
)

const requestTimeout = 5 * time.Second

// LinkSource lists the links to check.
type LinkSource interface {
	GetAllLinks(ctx context.Context) ([]models.Link, error)
}

// Change is a link whose accessibility flipped since the previous check.
type Change struct {
	LinkID     uint
	URL        string
	Accessible bool
}

// Report summarizes one pass over every link.
type Report struct {
	Accessible   int
	Inaccessible int
	Changes      []Change
}

// LinkMonitor remembers the last known state of every link between passes.
type LinkMonitor struct {
	links       LinkSource
	interval    time.Duration
	knownStates map[uint]bool // link id -> accessible
	mu          sync.Mutex
	httpClient  *http.Client
}

// NewLinkMonitor creates a monitor checking links every interval. A nil
// httpClient uses a client with a 10s timeout.
func NewLinkMonitor(links LinkSource, interval time.Duration, httpClient *http.Client) *LinkMonitor {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &LinkMonitor{
		links:       links,
		interval:    interval,
		knownStates: make(map[uint]bool),
		httpClient:  httpClient,
	}
}

// Start checks every link right away, then once per interval, until ctx is done.
func (m *LinkMonitor) Start(ctx context.Context) {
	logging.Info().Dur("interval", m.interval).Msg("Starting link monitor")
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		if _, err := m.Check(ctx); err != nil && ctx.Err() == nil {
			logging.Error().Err(err).Msg("Link check failed")
		}
		select {
		case <-ctx.Done():
			logging.Info().Msg("Link monitor stopped")
			return
		case <-ticker.C:
		}
	}
}

// Check runs one pass over every stored link.
func (m *LinkMonitor) Check(ctx context.Context) (Report, error) {
	links, err := m.links.GetAllLinks(ctx)
	if err != nil {
		return Report{}, err
	}

	m.forgetMissing(links)

	var report Report
	for _, link := range links {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		current := m.isAccessible(ctx, link.URL)
		if current {
			report.Accessible++
		} else {
			report.Inaccessible++
		}

		m.mu.Lock()
		previous, seen := m.knownStates[link.ID]
		m.knownStates[link.ID] = current
		m.mu.Unlock()

		if !seen {
			logging.Debug().Uint("link_id", link.ID).Str("url", link.URL).Str("state", formatState(current)).Msg("Initial link state")
			continue
		}
		if current != previous {
			report.Changes = append(report.Changes, Change{LinkID: link.ID, URL: link.URL, Accessible: current})
			logging.Warn().
				Uint("link_id", link.ID).
				Uint("collection_id", link.CollectionID).
				Str("url", link.URL).
				Str("from", formatState(previous)).
				Str("to", formatState(current)).
				Msg("Link state changed")
		}
	}

	metrics.LinkHealth.WithLabelValues("accessible").Set(float64(report.Accessible))
	metrics.LinkHealth.WithLabelValues("inaccessible").Set(float64(report.Inaccessible))
	logging.Info().Int("accessible", report.Accessible).Int("inaccessible", report.Inaccessible).Msg("Link check completed")
	return report, nil
}

// forgetMissing drops the remembered state of links that no longer exist.
func (m *LinkMonitor) forgetMissing(links []models.Link) {
	present := make(map[uint]struct{}, len(links))
	for _, link := range links {
		present[link.ID] = struct{}{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range m.knownStates {
		if _, ok := present[id]; !ok {
			delete(m.knownStates, id)
		}
	}
}

// isAccessible sends a HEAD request, falling back to GET for servers that
// reject HEAD. 2xx and 3xx count as accessible.
func (m *LinkMonitor) isAccessible(ctx context.Context, url string) bool {
	status, err := m.probe(ctx, http.MethodHead, url)
	if err == nil && status == http.StatusMethodNotAllowed {
		status, err = m.probe(ctx, http.MethodGet, url)
	}
	if err != nil {
		logging.Debug().Err(err).Str("url", url).Msg("Link unreachable")
		return false
	}
	return status >= 200 && status < 400
}

func (m *LinkMonitor) probe(ctx context.Context, method, url string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

func formatState(accessible bool) string {
	if accessible {
		return "ACCESSIBLE"
	}
	return "INACCESSIBLE"
}
