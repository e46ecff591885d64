// internal/handlers/shipping.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/floramart/floramart-backend/internal/services"
	"github.com/floramart/floramart-backend/internal/utils"
)

type ShippingHandler struct {
	shippingService *services.ShippingService
}

func NewShippingHandler(shippingService *services.ShippingService) *ShippingHandler {
	return &ShippingHandler{shippingService: shippingService}
}

// POST /shipping/calculate-shipping-fee
func (h *ShippingHandler) CalculateFee(c *gin.Context) {
	var req services.CalculateFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	fee, err := h.shippingService.CalculateFee(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, fee)
}

// GET /shipping/districts
func (h *ShippingHandler) GetDistricts(c *gin.Context) {
	utils.SuccessResponse(c, h.shippingService.SupportedDistricts())
}
