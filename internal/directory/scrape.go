package directory

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/tonywu212005-glitch/sp500-app/internal/infra"
	"github.com/tonywu212005-glitch/sp500-app/pkg/models"
)

// Header labels accepted for each column of a scraped constituents table.
var (
	symbolHeaders = []string{"symbol", "ticker", "ticker symbol", "code"}
	nameHeaders   = []string{"security", "company", "company name", "name"}
	sectorHeaders = []string{"gics sector", "sector", "industry"}
)

// Scrape reads the first HTML table on a page whose header row has a
// symbol, a name and a sector column.
type Scrape struct {
	url     string
	timeout time.Duration
}

// NewScrape returns a Scrape source for pageURL.
func NewScrape(pageURL string, timeout time.Duration) *Scrape {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Scrape{url: pageURL, timeout: timeout}
}

func (s *Scrape) Name() string { return "scrape" }

func (s *Scrape) Fetch(ctx context.Context) ([]models.Company, error) {
	body, err := s.download(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}
	return parseCompanyTable(doc)
}

func (s *Scrape) download(ctx context.Context) ([]byte, error) {
	c := colly.NewCollector(
		colly.StdlibContext(ctx),
		colly.UserAgent(infra.DefaultUserAgent),
	)
	c.SetRequestTimeout(s.timeout)

	var body []byte
	var fetchErr error
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html")
	})
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("scrape %s: status %d: %w", infra.RedactURL(s.url), r.StatusCode, err)
	})

	if err := c.Visit(s.url); err != nil && fetchErr == nil {
		fetchErr = fmt.Errorf("scrape %s: %w", infra.RedactURL(s.url), err)
	}
	c.Wait()
	if fetchErr != nil {
		return nil, fetchErr
	}
	return body, nil
}

func parseCompanyTable(doc *goquery.Document) ([]models.Company, error) {
	var out []models.Company
	found := false

	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		rows := table.Find("tr")
		var headers []string
		rows.First().Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			headers = append(headers, normalizeHeader(cell.Text()))
		})
		sym := indexOf(headers, symbolHeaders)
		name := indexOf(headers, nameHeaders)
		sector := indexOf(headers, sectorHeaders)
		if sym < 0 || name < 0 || sector < 0 {
			return true
		}

		found = true
		rows.Slice(1, goquery.ToEnd).Each(func(_ int, tr *goquery.Selection) {
			var cells []string
			tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, strings.TrimSpace(cell.Text()))
			})
			if sym >= len(cells) || name >= len(cells) || sector >= len(cells) || cells[sym] == "" {
				return
			}
			out = append(out, models.Company{Symbol: cells[sym], Name: cells[name], Sector: cells[sector]})
		})
		return false
	})

	if !found {
		return nil, fmt.Errorf("no table with symbol, name and sector columns")
	}
	return out, nil
}

// normalizeHeader lowercases, collapses whitespace and drops footnote
// markers such as "[1]".
func normalizeHeader(s string) string {
	if i := strings.Index(s, "["); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimPrefix(s, "\ufeff")
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func indexOf(headers, accepted []string) int {
	for _, want := range accepted {
		for i, h := range headers {
			if h == want {
				return i
			}
		}
	}
	return -1
}
