package boxes

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"boxtrack/internal/ledger"
	"boxtrack/pkg/boxid"
	"boxtrack/pkg/models"
)

// BoxHandler serves the read-only query surface over the box projection.
type BoxHandler struct {
	Store ledger.Store
}

func RegisterRoutes(router gin.IRouter, store ledger.Store) {
	handler := BoxHandler{Store: store}

	router.GET("/api/locations", handler.GetLocations)
	router.GET("/api/box/by-id", handler.GetBoxByID)
	router.GET("/api/boxes/search", handler.SearchBoxes)
	router.GET("/api/boxes/by-scan", handler.GetBoxesByScan)
}

func (h *BoxHandler) GetLocations(c *gin.Context) {
	locations, err := h.Store.DistinctLocations(queryLimit(c))
	if err != nil {
		log.Println("Error listing locations: ", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not list locations", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"locations": locations})
}

func (h *BoxHandler) GetBoxByID(c *gin.Context) {
	id := c.Query("boxid")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "boxid required"})
		return
	}

	box, err := h.Store.FindByID(id)
	if err != nil {
		log.Println("Error fetching box: ", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch box", "details": err.Error()})
		return
	}
	if box == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	c.JSON(http.StatusOK, box)
}

func (h *BoxHandler) SearchBoxes(c *gin.Context) {
	rows, err := h.Store.Search(c.Query("boxid"), c.Query("location"), queryLimit(c))
	if err != nil {
		log.Println("Error searching boxes: ", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not search boxes", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

func (h *BoxHandler) GetBoxesByScan(c *gin.Context) {
	id := c.Query("boxid")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "boxid required"})
		return
	}

	prefix := boxid.PrefixOf(id)
	found, err := h.Store.FindByPrefix(prefix)
	if err != nil {
		log.Println("Error scanning prefix: ", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not scan boxes", "details": err.Error()})
		return
	}
	if len(found) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No boxes for prefix " + prefix})
		return
	}

	scanned := make([]models.ScannedBox, 0, len(found))
	for _, box := range found {
		scanned = append(scanned, models.ScannedBox{
			Box:    box,
			Serial: boxid.SerialOf(box.BoxID),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"prefix": prefix,
		"count":  len(scanned),
		"boxes":  scanned,
	})
}

func queryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil {
		return 0
	}
	return limit
}
