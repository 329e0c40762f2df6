package scrape

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"discflight/internal/config"
	"discflight/internal/logging"
	"discflight/internal/services"
	"discflight/internal/stage"
	"discflight/internal/store"
)

const stageName = stage.Scrape

// Store is the persistence the scraper needs.
type Store interface {
	InsertDisc(ctx context.Context, disc store.Disc) (bool, error)
	Path() string
	Ping(ctx context.Context) error
}

// Scraper is the scrape stage.
type Scraper struct {
	client   *resty.Client
	baseURL  string
	listPath string
	store    Store
	logger   *slog.Logger
}

// New builds a scraper from the [scraper] section.
func New(cfg config.Scraper, timeout time.Duration, st Store, logger *slog.Logger) *Scraper {
	if logger == nil {
		logger = logging.NewNop()
	}
	client := resty.New().SetTimeout(timeout)
	if ua := strings.TrimSpace(cfg.UserAgent); ua != "" {
		client.SetHeader("User-Agent", ua)
	}
	return &Scraper{
		client:   client,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		listPath: cfg.ListPath,
		store:    st,
		logger:   logging.NewComponentLogger(logger, stageName),
	}
}

// NewFromConfig is New with the timeout taken from cfg.
func NewFromConfig(cfg *config.Config, st Store, logger *slog.Logger) *Scraper {
	return New(cfg.Scraper, cfg.ScraperTimeout(), st, logger)
}

// Name implements stage.Runner.
func (s *Scraper) Name() string { return stageName }

// Run implements stage.Runner.
func (s *Scraper) Run(ctx context.Context) (stage.Result, error) {
	logger := logging.WithContext(ctx, s.logger)
	counts := map[string]int{"links": 0, "added": 0, "existing": 0, "skipped": 0}
	result := stage.Result{Counts: counts}

	listURL := s.baseURL + s.listPath
	doc, status, err := s.fetch(ctx, listURL)
	if err != nil {
		return result, services.Wrap(services.ErrSourceUnavailable, stageName, "fetch list", listURL, err)
	}
	if status != http.StatusOK {
		return result, services.Wrap(services.ErrSourceUnavailable, stageName, "fetch list",
			fmt.Sprintf("%s returned %d", listURL, status), nil)
	}
	links := ListingLinks(doc, s.baseURL, s.listPath)
	if len(links) == 0 {
		return result, services.Wrap(services.ErrSourceUnavailable, stageName, "parse list",
			"no disc links found; page layout may have changed", nil)
	}
	counts["links"] = len(links)
	logger.Info("disc list parsed", logging.Int("links", len(links)))

	for _, link := range links {
		if err := ctx.Err(); err != nil {
			return result, services.Wrap(services.ErrSourceUnavailable, stageName, "scrape", "interrupted", err)
		}
		added, err := s.scrapeDisc(ctx, logger, link)
		if err != nil {
			if errors.Is(err, services.ErrPersistence) {
				return result, err
			}
			counts["skipped"]++
			continue
		}
		if added {
			counts["added"]++
		} else {
			counts["existing"]++
		}
	}

	result.Message = fmt.Sprintf("Data scraped and stored successfully. %d discs added to %s/discs.",
		counts["added"], databaseName(s.store.Path()))
	return result, nil
}

// scrapeDisc fetches, parses and stores one disc page. Page-level problems
// are logged here and returned so the caller can count them.
func (s *Scraper) scrapeDisc(ctx context.Context, logger *slog.Logger, link string) (bool, error) {
	pageLogger := logger.With(logging.String(logging.FieldURL, link))

	doc, status, err := s.fetch(ctx, link)
	if err != nil || status != http.StatusOK {
		if err == nil {
			err = fmt.Errorf("status %d", status)
		}
		logging.WarnWithContext(pageLogger, "disc page unavailable", "disc_fetch_failed",
			logging.String(logging.FieldErrorHint, "page retried on next scrape"),
			logging.Error(err),
		)
		return false, services.Wrap(services.ErrSourceUnavailable, stageName, "fetch disc", link, err)
	}

	disc, missing, err := ParseDisc(doc, link)
	if err != nil {
		logging.WarnWithContext(pageLogger, "disc page could not be parsed", "disc_parse_failed",
			logging.String(logging.FieldErrorHint, "page layout may have changed"),
			logging.Error(err),
		)
		return false, services.Wrap(services.ErrParse, stageName, "parse disc", link, err)
	}
	if len(missing) > 0 {
		pageLogger.Debug("disc page missing measurements", logging.String("fields", strings.Join(missing, ",")))
	}

	added, err := s.store.InsertDisc(ctx, disc)
	if err != nil {
		return false, services.Wrap(services.ErrPersistence, stageName, "insert disc", link, err)
	}
	if added {
		pageLogger.Info("disc stored",
			logging.String(logging.FieldEventType, "disc_added"),
			logging.String("manufacturer", disc.Manufacturer),
			logging.String("name", disc.Name),
		)
	}
	return added, nil
}

func (s *Scraper) fetch(ctx context.Context, url string) (*goquery.Document, int, error) {
	res, err := s.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, 0, err
	}
	if res.StatusCode() != http.StatusOK {
		return nil, res.StatusCode(), nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, res.StatusCode(), fmt.Errorf("parse html: %w", err)
	}
	return doc, res.StatusCode(), nil
}

// HealthCheck implements stage.Runner.
func (s *Scraper) HealthCheck(ctx context.Context) stage.Health {
	if s.store == nil {
		return stage.Unhealthy(stageName, "store not configured")
	}
	if s.baseURL == "" {
		return stage.Unhealthy(stageName, "scraper.base_url not configured")
	}
	if err := s.store.Ping(ctx); err != nil {
		return stage.Unhealthy(stageName, fmt.Sprintf("store unreachable: %v", err))
	}
	return stage.Healthy(stageName)
}

func databaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
