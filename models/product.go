package models

import "time"

// Brand is a vendor name ("Interra", "EAE", "Core", ...). Free-form so the
// admin can introduce new vendors without a code change; adapters that have
// vendor-specific logic match on the well-known values.
type Brand = string

// Cookie is injected into a browser page (or HTTP request) before any
// navigation happens. Used to bypass locale/consent gates.
type Cookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain,omitempty"`
}

// ScrapeOptions is the input to every adapter.
type ScrapeOptions struct {
	URL     string
	Brand   Brand
	Headers map[string]string
	Cookies []Cookie
}

// Download is a document link discovered on a product page. After the
// pipeline runs, URL points at local storage instead of the vendor site.
type Download struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Variant is a color/material swatch extracted from a product page.
type Variant struct {
	Group string `json:"group,omitempty"`
	Name  string `json:"name"`
	Hex   string `json:"hex,omitempty"`
	Image string `json:"image,omitempty"`
}

// RawProduct is the adapter output before normalization. Image and PDF URLs
// may still be relative; the engine resolves them against BaseURL.
type RawProduct struct {
	Title            string
	Description      string
	OriginalCategory string
	RawImageURL      string
	RawImages        []string
	RawPDFURL        string
	Specs            map[string]string
	Features         []string
	Downloads        []Download
	Videos           []string
	Variants         []Variant

	// BaseURL is the page's own URL after redirects. Relative asset URLs
	// are resolved against this, not the caller-supplied URL.
	BaseURL string
}

// Product is the persisted catalog record.
type Product struct {
	ID               string            `json:"id"`
	Brand            Brand             `json:"brand"`
	Name             string            `json:"name"`
	Category         string            `json:"category"`
	SubCategory      string            `json:"subCategory,omitempty"`
	OriginalCategory string            `json:"originalCategory"`
	Description      string            `json:"description"`
	ImagePath        string            `json:"imagePath"`
	Images           []string          `json:"images,omitempty"`
	DatasheetPath    string            `json:"datasheetPath,omitempty"`
	SourceURL        string            `json:"sourceUrl"`
	Specs            map[string]string `json:"specs,omitempty"`
	Features         []string          `json:"features,omitempty"`
	Downloads        []Download        `json:"downloads,omitempty"`
	Videos           []string          `json:"videos,omitempty"`
	Variants         []Variant         `json:"variants,omitempty"`
	LastUpdated      time.Time         `json:"lastUpdated"`
}

// PlaceholderImage is the sentinel used when no primary image could be
// downloaded. The serving layer ships this file.
const PlaceholderImage = "/placeholder.svg"
