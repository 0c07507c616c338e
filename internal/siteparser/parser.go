// Package siteparser scrapes a business website for the fields of a
// business profile.
package siteparser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const userAgent = "Mozilla/5.0 (compatible; mainst-operator/1.0; +https://mainst.ai)"

// SiteProfile holds whatever the page exposes. Empty fields were not found.
type SiteProfile struct {
	URL         string    `json:"url"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Hours       string    `json:"hours"`
	ServiceArea string    `json:"serviceArea"`
	Phone       string    `json:"phone"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

type Parser struct {
	httpClient *http.Client
	log        *zap.Logger
	maxRetries int
	backoff    time.Duration
}

func NewParser(timeout time.Duration, maxRetries int, log *zap.Logger) *Parser {
	return &Parser{
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
		maxRetries: maxRetries,
		backoff:    500 * time.Millisecond,
	}
}

// ValidateURL accepts absolute http and https URLs only.
func ValidateURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("url must be an absolute http(s) address")
	}
	return u, nil
}

func (p *Parser) FetchAndParse(ctx context.Context, rawURL string) (*SiteProfile, error) {
	u, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}
	target := u.String()

	var doc *goquery.Document
	var lastErr error

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * p.backoff):
			}
		}

		doc, lastErr = p.fetch(ctx, target)
		if lastErr == nil {
			break
		}
		p.log.Debug("site fetch failed", zap.String("url", target), zap.Int("attempt", attempt), zap.Error(lastErr))
	}

	if lastErr != nil {
		return nil, lastErr
	}

	site := Parse(doc)
	site.URL = target
	site.FetchedAt = time.Now().UTC()
	return site, nil
}

func (p *Parser) fetch(ctx context.Context, target string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, target)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

// Parse reads Open Graph tags, the meta description and schema.org
// microdata from doc.
func Parse(doc *goquery.Document) *SiteProfile {
	site := &SiteProfile{}

	site.Name = firstNonEmpty(
		metaContent(doc, `meta[property="og:site_name"]`),
		itemprop(doc, "name"),
		titleName(doc.Find("title").First().Text()),
	)
	site.Description = firstNonEmpty(
		metaContent(doc, `meta[name="description"]`),
		metaContent(doc, `meta[property="og:description"]`),
	)

	var hours []string
	doc.Find(`[itemprop="openingHours"]`).Each(func(_ int, s *goquery.Selection) {
		if v := attrOrText(s, "content"); v != "" {
			hours = append(hours, v)
		}
	})
	site.Hours = strings.Join(hours, "; ")

	site.ServiceArea = itemprop(doc, "areaServed")
	site.Phone = itemprop(doc, "telephone")
	if site.Phone == "" {
		if href, ok := doc.Find(`a[href^="tel:"]`).First().Attr("href"); ok {
			site.Phone = strings.TrimSpace(strings.TrimPrefix(href, "tel:"))
		}
	}

	return site
}

func metaContent(doc *goquery.Document, selector string) string {
	v, _ := doc.Find(selector).First().Attr("content")
	return collapse(v)
}

func itemprop(doc *goquery.Document, name string) string {
	return attrOrText(doc.Find(`[itemprop="`+name+`"]`).First(), "content")
}

func attrOrText(s *goquery.Selection, attr string) string {
	if s.Length() == 0 {
		return ""
	}
	if v, ok := s.Attr(attr); ok && strings.TrimSpace(v) != "" {
		return collapse(v)
	}
	return collapse(s.Text())
}

// titleName keeps the part of a page title before the first separator,
// so "Corner Bakery | Home" becomes "Corner Bakery".
func titleName(title string) string {
	title = collapse(title)
	for _, sep := range []string{" | ", " - ", " – ", " :: "} {
		if before, _, ok := strings.Cut(title, sep); ok {
			return strings.TrimSpace(before)
		}
	}
	return title
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
