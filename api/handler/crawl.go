package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/viktorsistem/katalog/engine"
	"github.com/viktorsistem/katalog/models"
)

type detectRequest struct {
	URL     string          `json:"url"`
	Cookies []models.Cookie `json:"cookies,omitempty"`
}

// DetectCategory returns a handler for POST /api/v1/crawl/detect. It probes
// a category listing URL: how many pages, and which products sit on page one.
func DetectCategory(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req detectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body: " + err.Error()})
			return
		}

		detection, err := eng.DetectCategoryPages(c.Request.Context(), req.URL, req.Cookies)
		if err != nil {
			c.JSON(crawlErrorStatus(err), gin.H{"success": false, "message": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":       true,
			"totalPages":    detection.TotalPages,
			"firstPageUrls": detection.FirstPageURLs,
			"pageUrls":      engine.CollectPageURLs(req.URL, detection.TotalPages),
		})
	}
}

// CollectPage returns a handler for POST /api/v1/crawl/page: the product
// links of one listing page.
func CollectPage(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req detectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body: " + err.Error()})
			return
		}

		urls, err := eng.CollectProductURLs(c.Request.Context(), req.URL, req.Cookies)
		if err != nil {
			c.JSON(crawlErrorStatus(err), gin.H{"success": false, "message": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "productUrls": urls})
	}
}

// CrawlProduct returns a handler for POST /api/v1/crawl/product: one item of
// a bulk import, answered in the compact per-item shape.
func CrawlProduct(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req engine.ScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ItemResult{Success: false, Message: "invalid request body: " + err.Error()})
			return
		}

		c.JSON(http.StatusOK, eng.ScrapeSingleProduct(c.Request.Context(), req))
	}
}

type bulkRequest struct {
	URLs                []string     `json:"urls"`
	Brand               models.Brand `json:"brand"`
	CategoryOverride    string       `json:"categoryOverride,omitempty"`
	SubCategoryOverride string       `json:"subCategoryOverride,omitempty"`
}

// Bulk returns a handler for POST /api/v1/crawl/bulk. Items are scraped
// sequentially with the engine's politeness pacing; the response carries a
// per-item verdict plus a summary count.
func Bulk(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req bulkRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body: " + err.Error()})
			return
		}
		if len(req.URLs) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "urls is required"})
			return
		}

		results := eng.ScrapeBulk(c.Request.Context(), req.URLs, req.Brand, req.CategoryOverride, req.SubCategoryOverride)

		succeeded := 0
		for _, item := range results {
			if item.Success {
				succeeded++
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"total":     len(req.URLs),
			"succeeded": succeeded,
			"failed":    len(results) - succeeded,
			"results":   results,
		})
	}
}

type categoryRequest struct {
	URL                 string          `json:"url"`
	Brand               models.Brand    `json:"brand"`
	Cookies             []models.Cookie `json:"cookies,omitempty"`
	CategoryOverride    string          `json:"categoryOverride,omitempty"`
	SubCategoryOverride string          `json:"subCategoryOverride,omitempty"`
}

// CrawlCategory returns a handler for POST /api/v1/crawl/category: detect,
// collect and scrape a whole category in one call.
func CrawlCategory(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req categoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body: " + err.Error()})
			return
		}

		results, err := eng.ScrapeCategory(c.Request.Context(), req.URL, req.Brand, req.Cookies, req.CategoryOverride, req.SubCategoryOverride)
		if err != nil {
			c.JSON(crawlErrorStatus(err), gin.H{"success": false, "message": err.Error()})
			return
		}

		succeeded := 0
		for _, item := range results {
			if item.Success {
				succeeded++
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"total":     len(results),
			"succeeded": succeeded,
			"failed":    len(results) - succeeded,
			"results":   results,
		})
	}
}

// crawlErrorStatus maps crawl errors to HTTP status codes. Bad input is the
// caller's fault; everything else is upstream.
func crawlErrorStatus(err error) int {
	var se *models.ScrapeError
	if errors.As(err, &se) && se.Code == models.ErrCodeInvalidInput {
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}
