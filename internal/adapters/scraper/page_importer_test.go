package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sokolane/dukahub/internal/domain"
)

func TestImportReadsOpenGraphMarkup(t *testing.T) {
	page := `<html><head>
	<title>Fallback Title</title>
	<meta property="og:title" content="Blue Tee">
	<meta property="og:description" content="Soft cotton tee">
	<meta property="product:price:amount" content="19.99">
	<meta property="product:price:currency" content="KES">
	<meta property="og:image" content="/img/tee-front.jpg">
	<meta property="og:image" content="/img/tee-back.jpg">
	<meta property="og:image" content="/img/tee-front.jpg">
	</head><body></body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	got, err := NewPageImporter().Import(context.Background(), srv.URL+"/p/blue-tee")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if got.Name != "Blue Tee" || got.Description != "Soft cotton tee" {
		t.Fatalf("wrong name/description: %+v", got)
	}
	if got.Price != 19.99 || got.Currency != "KES" {
		t.Fatalf("wrong price: %+v", got)
	}
	// Relative image URLs resolve against the page, duplicates collapse.
	if len(got.Images) != 2 || got.Images[0] != srv.URL+"/img/tee-front.jpg" {
		t.Fatalf("wrong images: %v", got.Images)
	}
}

func TestImportRejectsNonHTTPURL(t *testing.T) {
	_, err := NewPageImporter().Import(context.Background(), "ftp://example.com/p")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestParsePrice(t *testing.T) {
	cases := map[string]float64{
		"KES 450":      450,
		"Price: 99.99": 99.99,
		"12,50":        12.5,
		"free":         0,
	}
	for in, want := range cases {
		if got := parsePrice(in); got != want {
			t.Fatalf("parsePrice(%q) = %v, want %v", in, got, want)
		}
	}
}
