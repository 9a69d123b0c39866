package directory

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"sort"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/tonywu212005-glitch/sp500-app/internal/infra"
	"github.com/tonywu212005-glitch/sp500-app/pkg/models"
	"github.com/tonywu212005-glitch/sp500-app/pkg/utils"
)

// Hosted reads a CSV constituents file and orders it by market value.
type Hosted struct {
	url     string
	timeout time.Duration
}

// hostedRow is one CSV record after header aliases are rewritten.
type hostedRow struct {
	Symbol      string `csv:"symbol"`
	Name        string `csv:"name"`
	Sector      string `csv:"sector"`
	MarketValue string `csv:"market_value"`
}

// headerAliases maps accepted CSV headers onto hostedRow's tags.
var headerAliases = map[string]string{
	"symbol":           "symbol",
	"ticker":           "symbol",
	"code":             "symbol",
	"name":             "name",
	"company":          "name",
	"company name":     "name",
	"security":         "name",
	"sector":           "sector",
	"gics sector":      "sector",
	"industry":         "sector",
	"market_value":     "market_value",
	"market value":     "market_value",
	"market cap":       "market_value",
	"market cap (mil)": "market_value",
	"marketcap":        "market_value",
	"weight":           "market_value",
}

// NewHosted returns a Hosted source for csvURL.
func NewHosted(csvURL string, timeout time.Duration) *Hosted {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Hosted{url: csvURL, timeout: timeout}
}

func (h *Hosted) Name() string { return "hosted" }

func (h *Hosted) Fetch(ctx context.Context) ([]models.Company, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	body, _, err := infra.DoGet(ctx, h.url, map[string]string{"Accept": "text/csv, */*"})
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read CSV: %w", err)
	}
	return parseHostedCSV(data)
}

func parseHostedCSV(data []byte) ([]models.Company, error) {
	data, err := rewriteHeader(data)
	if err != nil {
		return nil, err
	}

	var rows []*hostedRow
	if err := gocsv.UnmarshalString(string(data), &rows); err != nil {
		return nil, fmt.Errorf("parse CSV: %w", err)
	}

	type ranked struct {
		company models.Company
		value   float64
	}
	list := make([]ranked, 0, len(rows))
	for _, r := range rows {
		if r.Symbol == "" {
			continue
		}
		v, _ := utils.ParseAmount(r.MarketValue)
		list = append(list, ranked{
			company: models.Company{Symbol: r.Symbol, Name: r.Name, Sector: r.Sector},
			value:   v,
		})
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].value > list[j].value })

	out := make([]models.Company, len(list))
	for i, r := range list {
		out[i] = r.company
	}
	return out, nil
}

// rewriteHeader maps the first CSV line onto canonical column names and
// checks that symbol, name and market_value are present.
func rewriteHeader(data []byte) ([]byte, error) {
	nl := bytes.IndexByte(data, '\n')
	if nl < 0 {
		nl = len(data)
	}
	header, err := csv.NewReader(bytes.NewReader(data[:nl])).Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}

	used := make(map[string]bool)
	for i, h := range header {
		canon, ok := headerAliases[normalizeHeader(h)]
		if !ok || used[canon] {
			continue
		}
		used[canon] = true
		header[i] = canon
	}
	for _, want := range []string{"symbol", "name", "market_value"} {
		if !used[want] {
			return nil, fmt.Errorf("CSV header %v: missing %s column", header, want)
		}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	w.Flush()
	return slices.Concat(buf.Bytes(), data[min(nl+1, len(data)):]), nil
}
