package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/viktorsistem/katalog/engine"
	"github.com/viktorsistem/katalog/models"
)

// Scrape returns a handler for POST /api/v1/scrape.
//
// The engine never lets a pipeline failure surface as an error, so a scrape
// that ran but did not produce a record still answers 200 with success=false.
// Only a malformed request body earns a 400.
func Scrape(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req engine.ScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ScrapeResult{
				Success: false,
				Message: "invalid request body: " + err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, eng.Scrape(c.Request.Context(), req))
	}
}

type scrapeHTMLRequest struct {
	HTML                string       `json:"html"`
	SourceURL           string       `json:"sourceUrl"`
	Brand               models.Brand `json:"brand"`
	CategoryOverride    string       `json:"categoryOverride,omitempty"`
	SubCategoryOverride string       `json:"subCategoryOverride,omitempty"`
}

// ScrapeHTML returns a handler for POST /api/v1/scrape/html. The caller
// supplies pre-rendered markup instead of a URL to fetch; the rest of the
// pipeline runs unchanged.
func ScrapeHTML(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req scrapeHTMLRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ScrapeResult{
				Success: false,
				Message: "invalid request body: " + err.Error(),
			})
			return
		}

		result := eng.ScrapeHTML(c.Request.Context(),
			req.HTML, req.SourceURL, req.Brand,
			req.CategoryOverride, req.SubCategoryOverride)
		c.JSON(http.StatusOK, result)
	}
}
