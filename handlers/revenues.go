package handlers

import (
	"net/http"
	"strings"

	"github.com/URVIL2512/Finance-Suite-sub001/models"
	"github.com/gin-gonic/gin"
)

func createRevenueHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewRevenue
		if !bindJSON(c, &input, false) {
			return
		}
		rev, err := models.CreateRevenue(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, rev)
	}
}

func listRevenuesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter models.RevenueFilter
		var err error
		if filter.InvoiceGenerated, err = queryBool(c, "invoice_generated"); err != nil {
			respondError(c, err)
			return
		}
		if filter.Year, err = queryInt(c, "year"); err != nil {
			respondError(c, err)
			return
		}
		if raw := strings.TrimSpace(c.Query("category")); raw != "" {
			category := models.ServiceCategory(raw)
			filter.Category = &category
		}
		if filter.Limit, filter.Offset, err = paging(c); err != nil {
			respondError(c, err)
			return
		}

		revenues, err := models.ListRevenues(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, revenues)
	}
}

func getRevenueHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		rev, err := models.GetRevenue(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, rev)
	}
}

func invoiceFromRevenueHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		inv, err := models.CreateInvoiceFromRevenue(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, inv)
	}
}
