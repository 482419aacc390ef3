package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/verdantry/canopy-backend/internal/http/response"
	"github.com/verdantry/canopy-backend/internal/services"
)

type CertificateHandler struct {
	certService  services.CertificateService
	parseService services.ParseService
}

func NewCertificateHandler(certService services.CertificateService, parseService services.ParseService) *CertificateHandler {
	return &CertificateHandler{certService: certService, parseService: parseService}
}

func (ch *CertificateHandler) Upload(c *gin.Context) {
	vendorID, ok := requestVendorID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", fmt.Errorf("multipart file field required: %w", err))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	defer file.Close()

	cert, err := ch.certService.Upload(c.Request.Context(), vendorID, fileHeader.Filename, file)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "upload_failed", err)
		return
	}
	response.RespondCreated(c, gin.H{"certificate": cert})
}

func (ch *CertificateHandler) List(c *gin.Context) {
	vendorID, ok := requestVendorID(c)
	if !ok {
		return
	}
	filter := services.CertificateListFilter(c.Query("filter"))
	switch filter {
	case services.CertificateFilterAll, services.CertificateFilterLinked, services.CertificateFilterUnlinked:
	default:
		response.RespondError(c, http.StatusBadRequest, "invalid_request", fmt.Errorf("filter must be linked or unlinked"))
		return
	}
	certs, err := ch.certService.List(c.Request.Context(), vendorID, filter)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"certificates": certs})
}

func (ch *CertificateHandler) Link(c *gin.Context) {
	vendorID, ok := requestVendorID(c)
	if !ok {
		return
	}
	certID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		ProductID string `json:"product_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	productID, err := uuidParse(req.ProductID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", fmt.Errorf("invalid product_id"))
		return
	}
	if err := ch.certService.LinkToProduct(c.Request.Context(), certID, productID, vendorID); err != nil {
		response.RespondError(c, http.StatusBadRequest, "link_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (ch *CertificateHandler) Unlink(c *gin.Context) {
	vendorID, ok := requestVendorID(c)
	if !ok {
		return
	}
	certID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := ch.certService.Unlink(c.Request.Context(), certID, vendorID); err != nil {
		response.RespondError(c, http.StatusBadRequest, "unlink_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// Parse runs a single synchronous parse-and-fill for one certificate
// against one product.
func (ch *CertificateHandler) Parse(c *gin.Context) {
	vendorID, ok := requestVendorID(c)
	if !ok {
		return
	}
	certID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		ProductID string `json:"product_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	productID, err := uuidParse(req.ProductID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", fmt.Errorf("invalid product_id"))
		return
	}
	outcome, err := ch.parseService.ParseAndFill(c.Request.Context(), certID, productID, vendorID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "parse_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"outcome": outcome})
}

func (ch *CertificateHandler) Delete(c *gin.Context) {
	vendorID, ok := requestVendorID(c)
	if !ok {
		return
	}
	certID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := ch.certService.Delete(c.Request.Context(), vendorID, certID); err != nil {
		response.RespondError(c, http.StatusBadRequest, "delete_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
