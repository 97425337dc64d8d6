package handlers

import (
	"github.com/URVIL2512/Finance-Suite-sub001/middlewares"
	"github.com/gin-gonic/gin"
)

// Register mounts the REST api under /api. Every route runs with a business on the context.
func Register(r gin.IRouter) {
	api := r.Group("/api", middlewares.SessionMiddleware())

	invoices := api.Group("/invoices")
	invoices.POST("", createInvoiceHandler())
	invoices.GET("", listInvoicesHandler())
	invoices.POST("/import", importInvoicesHandler())
	invoices.POST("/bulk-delete", bulkDeleteInvoicesHandler())
	invoices.GET("/:id", getInvoiceHandler())
	invoices.PATCH("/:id", updateInvoiceHandler())
	invoices.DELETE("/:id", deleteInvoiceHandler())
	invoices.POST("/:id/void", voidInvoiceHandler())
	invoices.POST("/:id/payments", recordPaymentHandler())
	invoices.GET("/:id/payments", listPaymentsHandler())
	invoices.GET("/:id/history", statusHistoryHandler())

	revenues := api.Group("/revenues")
	revenues.POST("", createRevenueHandler())
	revenues.GET("", listRevenuesHandler())
	revenues.GET("/:id", getRevenueHandler())
	revenues.POST("/:id/invoice", invoiceFromRevenueHandler())

	customers := api.Group("/customers")
	customers.POST("", createCustomerHandler())
	customers.GET("", listCustomersHandler())
	customers.GET("/:id", getCustomerHandler())

	serviceItems := api.Group("/service-items")
	serviceItems.POST("", createServiceItemHandler())
	serviceItems.GET("", listServiceItemsHandler())
}
