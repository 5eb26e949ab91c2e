package marketplace

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"bizlistings/config"
	"bizlistings/models"
	"bizlistings/utils"
)

// Scraper drives a headless browser through one marketplace's search results.
type Scraper struct {
	cfg        *config.Config
	logger     *utils.Logger
	profile    SiteProfile
	pool       *utils.WorkerPool
	visitedURL *utils.URLSet
	retry      *utils.RetryConfig

	mu       sync.Mutex
	listings []*models.RawListing
}

// New creates a ready-to-use Scraper for the given marketplace profile.
func New(cfg *config.Config, logger *utils.Logger, profile SiteProfile) *Scraper {
	return &Scraper{
		cfg:        cfg,
		logger:     logger,
		profile:    profile,
		pool:       utils.NewWorkerPool(cfg.MaxConcurrency, cfg.RateLimitMs),
		visitedURL: utils.NewURLSet(),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
		listings: make([]*models.RawListing, 0),
	}
}

// Scrape walks result pages from the profile's start URL, then fills in
// descriptions from detail pages where the cards had none.
func (s *Scraper) Scrape(ctx context.Context) ([]*models.RawListing, error) {
	s.logger.Info("[scraper] Starting %s scrape, target: %d pages, %d listings/page",
		s.profile.Source, s.cfg.PagesToScrape, s.cfg.ListingsPerPage)

	chromeBin := s.cfg.ChromeBin
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	s.logger.Info("[scraper] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	currentURL := s.profile.StartURL
	for page := 1; page <= s.cfg.PagesToScrape; page++ {
		s.logger.Info("[scraper] Scraping page %d: %s", page, currentURL)

		pageListings, nextURL, err := s.scrapePage(browserCtx, currentURL, page)
		if err != nil {
			s.logger.Error("[scraper] Page %d failed: %v", page, err)
			break
		}
		if len(pageListings) == 0 {
			s.logger.Warn("[scraper] Page %d returned 0 listings, stopping", page)
			break
		}

		s.enrichListings(browserCtx, pageListings)

		s.mu.Lock()
		s.listings = append(s.listings, pageListings...)
		s.mu.Unlock()

		s.logger.Info("[scraper] Page %d done, collected %d listings so far", page, len(s.listings))

		if nextURL == "" || page >= s.cfg.PagesToScrape {
			break
		}
		currentURL = nextURL

		select {
		case <-ctx.Done():
			return s.listings, ctx.Err()
		case <-time.After(time.Duration(s.cfg.RateLimitMs) * time.Millisecond):
		}
	}

	s.logger.Info("[scraper] Scrape complete, total raw listings: %d", len(s.listings))
	return s.listings, nil
}

// scrapePage loads a search results page and parses its listing cards.
func (s *Scraper) scrapePage(browserCtx context.Context, pageURL string, pageNum int) ([]*models.RawListing, string, error) {
	var rawListings []*models.RawListing
	var nextURL string

	err := s.retry.Do(browserCtx, fmt.Sprintf("scrape-page-%d", pageNum), func() error {
		html, err := s.loadHTML(browserCtx, pageURL, 90*time.Second, true)
		if err != nil {
			return err
		}

		cards, next, err := ParseListingsPage(html, pageURL, s.profile, s.cfg.ListingsPerPage)
		if err != nil {
			return err
		}
		s.logger.Debug("[scraper] Page %d, found %d cards", pageNum, len(cards))

		rawListings = rawListings[:0]
		for _, c := range cards {
			if !s.visitedURL.Add(c.OriginalURL) {
				s.logger.Debug("[scraper] Skipping duplicate: %s", c.OriginalURL)
				continue
			}
			rawListings = append(rawListings, c)
		}
		nextURL = next
		return nil
	})

	return rawListings, nextURL, err
}

// enrichListings visits detail pages for cards that carried no description.
func (s *Scraper) enrichListings(browserCtx context.Context, listings []*models.RawListing) {
	if s.profile.DetailDescriptionSelector == "" {
		return
	}

	for _, l := range listings {
		l := l // per-iteration copy (go 1.21 loop semantics)
		if l.Description != "" {
			continue
		}

		s.pool.Submit(func() {
			var html string
			err := s.retry.Do(browserCtx, "detail-page", func() error {
				var err error
				html, err = s.loadHTML(browserCtx, l.OriginalURL, 60*time.Second, false)
				return err
			})
			if err != nil {
				s.logger.Warn("[scraper] Detail page failed for %s: %v", l.OriginalURL, err)
				return
			}

			desc, err := ParseDetailDescription(html, s.profile)
			if err != nil {
				s.logger.Warn("[scraper] Detail parse failed for %s: %v", l.OriginalURL, err)
				return
			}
			l.Description = desc
			s.logger.Debug("[scraper] Enriched: %s", l.Name)
		})
	}
	s.pool.Wait()
}

// loadHTML navigates a fresh tab to pageURL and returns the rendered document.
func (s *Scraper) loadHTML(browserCtx context.Context, pageURL string, timeout time.Duration, scroll bool) (string, error) {
	ctx, cancel := chromedp.NewContext(browserCtx)
	defer cancel()

	ctx, cancelTimeout := context.WithTimeout(ctx, timeout)
	defer cancelTimeout()

	actions := []chromedp.Action{
		chromedp.Navigate(pageURL),
		chromedp.Sleep(4 * time.Second),
	}
	if scroll {
		actions = append(actions,
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight / 2)`, nil),
			chromedp.Sleep(2*time.Second),
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
			chromedp.Sleep(2*time.Second),
		)
	}

	var html string
	actions = append(actions, chromedp.OuterHTML("html", &html, chromedp.ByQuery))

	if err := chromedp.Run(ctx, actions...); err != nil {
		return "", fmt.Errorf("chromedp load %s: %w", pageURL, err)
	}
	return html, nil
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
