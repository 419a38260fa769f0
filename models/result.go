package models

// ScrapeResult is what every public engine entry point returns. The pipeline
// never lets an error escape past this boundary: failures are carried in
// Message with Success=false.
type ScrapeResult struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    *Product `json:"data,omitempty"`
}

// PageDetection is the outcome of probing a category listing URL.
type PageDetection struct {
	TotalPages    int      `json:"totalPages"`
	FirstPageURLs []string `json:"firstPageUrls"`
}

// ItemResult is the per-product outcome of a bulk crawl.
type ItemResult struct {
	URL     string `json:"url"`
	Success bool   `json:"success"`
	Name    string `json:"name,omitempty"`
	Message string `json:"message"`
}
