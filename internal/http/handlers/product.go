package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/verdantry/canopy-backend/internal/http/response"
	"github.com/verdantry/canopy-backend/internal/platform/ctxutil"
	"github.com/verdantry/canopy-backend/internal/services"
)

type ProductHandler struct {
	productService services.ProductService
}

func NewProductHandler(productService services.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

func requestVendorID(c *gin.Context) (uuid.UUID, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.VendorID == uuid.Nil {
		response.RespondError(c, http.StatusForbidden, "forbidden", fmt.Errorf("no vendor in request context"))
		return uuid.Nil, false
	}
	return rd.VendorID, true
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", fmt.Errorf("invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}

func uuidParse(s string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(s))
}

func (ph *ProductHandler) Create(c *gin.Context) {
	vendorID, ok := requestVendorID(c)
	if !ok {
		return
	}
	var req services.CreateProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	product, err := ph.productService.Create(c.Request.Context(), vendorID, req)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "create_failed", err)
		return
	}
	response.RespondCreated(c, gin.H{"product": product})
}

func (ph *ProductHandler) List(c *gin.Context) {
	vendorID, ok := requestVendorID(c)
	if !ok {
		return
	}
	products, err := ph.productService.List(c.Request.Context(), vendorID)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"products": products})
}

func (ph *ProductHandler) Get(c *gin.Context) {
	vendorID, ok := requestVendorID(c)
	if !ok {
		return
	}
	productID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	product, err := ph.productService.Get(c.Request.Context(), vendorID, productID)
	if err != nil {
		response.RespondError(c, http.StatusNotFound, "not_found", err)
		return
	}
	response.RespondOK(c, gin.H{"product": product})
}

func (ph *ProductHandler) Update(c *gin.Context) {
	vendorID, ok := requestVendorID(c)
	if !ok {
		return
	}
	productID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	product, err := ph.productService.Update(c.Request.Context(), vendorID, productID, req)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "update_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"product": product})
}

func (ph *ProductHandler) Delete(c *gin.Context) {
	vendorID, ok := requestVendorID(c)
	if !ok {
		return
	}
	productID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := ph.productService.Delete(c.Request.Context(), vendorID, productID); err != nil {
		response.RespondError(c, http.StatusBadRequest, "delete_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
