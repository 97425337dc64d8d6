package handlers

import (
	"net/http"
	"strings"

	"github.com/URVIL2512/Finance-Suite-sub001/models"
	"github.com/URVIL2512/Finance-Suite-sub001/utils"
	"github.com/gin-gonic/gin"
)

const maxImportUploadBytes = 10 << 20

type voidInvoiceRequest struct {
	Reason string `json:"reason"`
}

type bulkDeleteRequest struct {
	Ids []int `json:"ids" binding:"required"`
}

func createInvoiceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewInvoice
		if !bindJSON(c, &input, false) {
			return
		}
		inv, err := models.CreateInvoice(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, inv)
	}
}

func listInvoicesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := invoiceFilterFromQuery(c)
		if err != nil {
			respondError(c, err)
			return
		}
		invoices, err := models.ListInvoices(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, invoices)
	}
}

func invoiceFilterFromQuery(c *gin.Context) (models.InvoiceFilter, error) {
	var filter models.InvoiceFilter
	var err error
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status, perr := models.ParseInvoiceStatus(raw)
		if perr != nil {
			return filter, utils.NewValidationError("status %q is not recognised", raw)
		}
		filter.Status = &status
	}
	if client := strings.TrimSpace(c.Query("client")); client != "" {
		filter.ClientName = &client
	}
	if filter.Year, err = queryInt(c, "year"); err != nil {
		return filter, err
	}
	if filter.FromDate, err = queryDate(c, "from"); err != nil {
		return filter, err
	}
	if filter.ToDate, err = queryDate(c, "to"); err != nil {
		return filter, err
	}
	if filter.FromDate != nil && filter.ToDate != nil && filter.ToDate.Before(*filter.FromDate) {
		return filter, utils.NewValidationError("to must not be before from")
	}
	filter.Limit, filter.Offset, err = paging(c)
	return filter, err
}

func getInvoiceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		inv, err := models.GetInvoice(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, inv)
	}
}

func updateInvoiceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.InvoiceUpdate
		if !bindJSON(c, &input, false) {
			return
		}
		inv, err := models.UpdateInvoice(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, inv)
	}
}

func voidInvoiceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var req voidInvoiceRequest
		if !bindJSON(c, &req, true) {
			return
		}
		inv, err := models.VoidInvoice(c.Request.Context(), id, req.Reason)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, inv)
	}
}

func deleteInvoiceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		inv, err := models.DeleteInvoice(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, inv)
	}
}

func bulkDeleteInvoicesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req bulkDeleteRequest
		if !bindJSON(c, &req, false) {
			return
		}
		deleted, err := models.BulkDeleteInvoices(c.Request.Context(), req.Ids)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted_ids": deleted})
	}
}

func recordPaymentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.NewInvoicePayment
		if !bindJSON(c, &input, false) {
			return
		}
		inv, err := models.RecordInvoicePayment(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, inv)
	}
}

func listPaymentsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		payments, err := models.GetInvoicePayments(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, payments)
	}
}

func statusHistoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		history, err := models.GetInvoiceStatusHistory(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, history)
	}
}

// importInvoicesHandler takes a multipart "file" field holding an xlsx or csv sheet.
func importInvoicesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportUploadBytes)
		header, err := c.FormFile("file")
		if err != nil {
			respondError(c, utils.NewValidationError("file is required: %v", err))
			return
		}
		f, err := header.Open()
		if err != nil {
			respondError(c, err)
			return
		}
		defer f.Close()

		report, err := models.ImportInvoicesFromFile(c.Request.Context(), header.Filename, f)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}
