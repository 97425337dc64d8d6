package handlers

import (
	"net/http"
	"strings"

	"github.com/URVIL2512/Finance-Suite-sub001/models"
	"github.com/gin-gonic/gin"
)

func createCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewCustomer
		if !bindJSON(c, &input, false) {
			return
		}
		customer, err := models.CreateCustomer(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, customer)
	}
}

func listCustomersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var name *string
		if v := strings.TrimSpace(c.Query("name")); v != "" {
			name = &v
		}
		customers, err := models.GetCustomers(c.Request.Context(), name)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, customers)
	}
}

func getCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		customer, err := models.GetCustomer(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, customer)
	}
}

func createServiceItemHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewServiceItem
		if !bindJSON(c, &input, false) {
			return
		}
		item, err := models.CreateServiceItem(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, item)
	}
}

func listServiceItemsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := models.GetServiceItems(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}
