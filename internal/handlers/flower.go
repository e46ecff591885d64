// internal/handlers/flower.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/floramart/floramart-backend/internal/services"
	"github.com/floramart/floramart-backend/internal/utils"
)

type FlowerHandler struct {
	flowerService  *services.FlowerService
	storageService *services.StorageService
}

func NewFlowerHandler(flowerService *services.FlowerService, storageService *services.StorageService) *FlowerHandler {
	return &FlowerHandler{
		flowerService:  flowerService,
		storageService: storageService,
	}
}

// GET /flowers
func (h *FlowerHandler) GetFlowers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	searchParams := services.FlowerSearchParams{
		PaginationParams: params,
	}

	if sellerIDStr := c.Query("seller_id"); sellerIDStr != "" {
		if sellerID, err := uuid.Parse(sellerIDStr); err == nil {
			searchParams.SellerID = &sellerID
		}
	}
	if categoryIDStr := c.Query("category_id"); categoryIDStr != "" {
		if categoryID, err := uuid.Parse(categoryIDStr); err == nil {
			searchParams.CategoryID = &categoryID
		}
	}
	if priceMinStr := c.Query("price_min"); priceMinStr != "" {
		if priceMin, err := strconv.ParseFloat(priceMinStr, 64); err == nil {
			searchParams.PriceMin = &priceMin
		}
	}
	if priceMaxStr := c.Query("price_max"); priceMaxStr != "" {
		if priceMax, err := strconv.ParseFloat(priceMaxStr, 64); err == nil {
			searchParams.PriceMax = &priceMax
		}
	}
	if inStockStr := c.Query("in_stock"); inStockStr != "" {
		inStock := inStockStr == "true"
		searchParams.InStock = &inStock
	}

	flowers, total, err := h.flowerService.SearchFlowers(searchParams)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(flowers, total, params))
}

// GET /flowers/:id
func (h *FlowerHandler) GetFlower(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	flower, err := h.flowerService.GetFlower(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, flower)
}

// POST /flowers
func (h *FlowerHandler) CreateFlower(c *gin.Context) {
	sellerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateFlowerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	flower, err := h.flowerService.CreateFlower(sellerID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, flower)
}

// PUT /flowers/:id
func (h *FlowerHandler) UpdateFlower(c *gin.Context) {
	sellerID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateFlowerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	flower, err := h.flowerService.UpdateFlower(id, sellerID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, flower)
}

// DELETE /flowers/:id
func (h *FlowerHandler) DeleteFlower(c *gin.Context) {
	sellerID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.flowerService.DeleteFlower(id, sellerID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"deleted": true})
}

// GET /flowers/mine. The seller's own shop, hidden listings included.
func (h *FlowerHandler) GetMyFlowers(c *gin.Context) {
	sellerID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	flowers, total, err := h.flowerService.GetSellerFlowers(sellerID, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(flowers, total, params))
}

// GET /categories
func (h *FlowerHandler) GetCategories(c *gin.Context) {
	categories, err := h.flowerService.GetCategories()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, categories)
}

// POST /flowers/images
func (h *FlowerHandler) UploadImages(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		utils.BadRequestResponse(c, "Invalid multipart form", nil)
		return
	}

	files := form.File["images"]
	if len(files) == 0 {
		utils.BadRequestResponse(c, "At least one image is required", nil)
		return
	}
	if len(files) > 5 {
		utils.BadRequestResponse(c, "At most 5 images per upload", nil)
		return
	}

	options := h.storageService.GetDefaultUploadOptions("flowers")
	urls := make([]string, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			utils.BadRequestResponse(c, "Failed to read uploaded file", nil)
			return
		}

		if err := h.storageService.ValidateImage(file); err != nil {
			file.Close()
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}

		result, err := h.storageService.UploadFile(file, header, options)
		file.Close()
		if err != nil {
			respondServiceError(c, err)
			return
		}
		urls = append(urls, result.URL)
	}

	utils.SuccessResponse(c, gin.H{"urls": urls})
}
