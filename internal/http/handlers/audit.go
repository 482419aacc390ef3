package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/verdantry/canopy-backend/internal/http/response"
	"github.com/verdantry/canopy-backend/internal/services"
)

type AuditHandler struct {
	auditService services.AuditService
}

func NewAuditHandler(auditService services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (ah *AuditHandler) Plan(c *gin.Context) {
	vendorID, ok := requestVendorID(c)
	if !ok {
		return
	}
	entries, err := ah.auditService.Plan(c.Request.Context(), vendorID)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "plan_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"plan": entries})
}

func (ah *AuditHandler) Start(c *gin.Context) {
	vendorID, ok := requestVendorID(c)
	if !ok {
		return
	}
	run, err := ah.auditService.Start(c.Request.Context(), vendorID)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "audit_start_failed", err)
		return
	}
	response.RespondAccepted(c, gin.H{"run": run})
}

func (ah *AuditHandler) Get(c *gin.Context) {
	vendorID, ok := requestVendorID(c)
	if !ok {
		return
	}
	runID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	run, err := ah.auditService.Get(c.Request.Context(), vendorID, runID)
	if err != nil {
		response.RespondError(c, http.StatusNotFound, "not_found", err)
		return
	}
	response.RespondOK(c, gin.H{"run": run})
}

func (ah *AuditHandler) List(c *gin.Context) {
	vendorID, ok := requestVendorID(c)
	if !ok {
		return
	}
	runs, err := ah.auditService.List(c.Request.Context(), vendorID)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"runs": runs})
}
