package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/viktorsistem/katalog/models"
	"github.com/viktorsistem/katalog/store"
)

// ListProducts returns a handler for GET /api/v1/products?brand=X.
func ListProducts(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		brand := models.Brand(c.Query("brand"))
		if brand == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "brand query parameter is required"})
			return
		}

		products, err := st.FindByBrand(c.Request.Context(), brand)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "listing failed: " + err.Error()})
			return
		}
		if products == nil {
			products = []models.Product{}
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "count": len(products), "products": products})
	}
}
