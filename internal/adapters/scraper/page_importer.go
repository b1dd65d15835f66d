// Package scraper extracts product data from external product pages so a
// merchant can import a listing by pasting a URL.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/sokolane/dukahub/internal/domain"
)

const maxImportImages = 8

type PageImporter struct {
	httpClient *http.Client
}

func NewPageImporter() *PageImporter {
	return &PageImporter{httpClient: &http.Client{Timeout: 20 * time.Second}}
}

var priceRe = regexp.MustCompile(`[\d]+(?:[.,]\d{1,2})?`)

// Import fetches the page and reads OpenGraph / common product markup.
// Best effort: a page with only a title still imports.
func (s *PageImporter) Import(ctx context.Context, pageURL string) (*domain.ImportedProduct, error) {
	u, err := url.Parse(pageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: invalid url", domain.ErrValidation)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; dukahub-importer/1.0)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: %s", u.Host, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	out := &domain.ImportedProduct{
		Name:        meta(doc, "og:title"),
		Description: meta(doc, "og:description"),
		Currency:    meta(doc, "product:price:currency"),
	}
	if out.Name == "" {
		out.Name = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if out.Description == "" {
		out.Description, _ = doc.Find(`meta[name="description"]`).Attr("content")
	}
	if out.Currency == "" {
		out.Currency = meta(doc, "og:price:currency")
	}

	if raw := firstNonEmpty(
		meta(doc, "product:price:amount"),
		meta(doc, "og:price:amount"),
		attrOf(doc, `[itemprop="price"]`, "content"),
	); raw != "" {
		out.Price = parsePrice(raw)
	}
	if out.Price == 0 {
		out.Price = parsePrice(doc.Find(`[itemprop="price"], .price, .product-price`).First().Text())
	}

	seen := make(map[string]bool)
	addImage := func(src string) {
		src = strings.TrimSpace(src)
		if src == "" || seen[src] || len(out.Images) >= maxImportImages {
			return
		}
		if abs, err := u.Parse(src); err == nil {
			src = abs.String()
		}
		seen[src] = true
		out.Images = append(out.Images, src)
	}
	doc.Find(`meta[property="og:image"]`).Each(func(_ int, sel *goquery.Selection) {
		if c, ok := sel.Attr("content"); ok {
			addImage(c)
		}
	})
	doc.Find(`[itemprop="image"], .product-gallery img, .product-images img`).Each(func(_ int, sel *goquery.Selection) {
		if src, ok := sel.Attr("src"); ok {
			addImage(src)
		}
	})

	if out.Name == "" {
		return nil, errors.New("page has no recognizable product markup")
	}
	return out, nil
}

func meta(doc *goquery.Document, property string) string {
	v, _ := doc.Find(`meta[property="` + property + `"]`).Attr("content")
	return strings.TrimSpace(v)
}

func attrOf(doc *goquery.Document, selector, attr string) string {
	v, _ := doc.Find(selector).First().Attr(attr)
	return strings.TrimSpace(v)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func parsePrice(raw string) float64 {
	m := priceRe.FindString(raw)
	if m == "" {
		return 0
	}
	m = strings.ReplaceAll(m, ",", ".")
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return f
}
