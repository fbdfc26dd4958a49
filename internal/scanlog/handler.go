package scanlog

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"boxtrack/internal/ledger"
	custom_error "boxtrack/pkg/errors"
	"boxtrack/pkg/models"
)

// ScanHandler records raw scan events. The scan log is independent of the
// move ledger: a scan says "this box was seen here", not "this box moved".
type ScanHandler struct {
	Store ledger.Store
}

func RegisterRoutes(router gin.IRouter, store ledger.Store) {
	handler := ScanHandler{Store: store}

	router.POST("/api/scans", handler.RecordScan)
	router.GET("/api/scans", handler.GetScans)
}

func (h *ScanHandler) RecordScan(c *gin.Context) {
	var req models.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	if err := h.Store.RecordScan(req); err != nil {
		if _, ok := err.(*custom_error.ValidationError); ok {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Println("Error recording scan: ", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not record scan", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"boxid": req.BoxID, "location": req.Location})
}

func (h *ScanHandler) GetScans(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	scans, err := h.Store.RecentScans(c.Query("boxid"), limit)
	if err != nil {
		log.Println("Error reading scans: ", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not read scans", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"scans": scans})
}
