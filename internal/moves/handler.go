package moves

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"boxtrack/internal/ledger"
	"boxtrack/internal/resolver"
	custom_error "boxtrack/pkg/errors"
	"boxtrack/pkg/models"
)

// MoveHandler serves the write side of the ledger: single assign/move,
// current location, history, and the range/bulk resolver endpoints.
type MoveHandler struct {
	Store    ledger.Store
	Resolver *resolver.Resolver
}

func RegisterRoutes(router gin.IRouter, store ledger.Store, res *resolver.Resolver) {
	handler := MoveHandler{
		Store:    store,
		Resolver: res,
	}

	router.GET("/api/box/location", handler.GetLocation)
	router.GET("/api/box/history", handler.GetHistory)
	router.POST("/api/assign", handler.AssignInitial)
	router.POST("/api/move", handler.Move)
	router.POST("/api/move/by-range", handler.MoveByRange)
	router.POST("/api/move/bulk", handler.MoveBulk)
}

func (h *MoveHandler) GetLocation(c *gin.Context) {
	id := c.Query("boxid")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "boxid required"})
		return
	}

	location, ok, err := h.Store.CurrentLocation(id)
	if err != nil {
		log.Println("Error reading location: ", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not read location", "details": err.Error()})
		return
	}

	if !ok {
		c.JSON(http.StatusOK, gin.H{"boxid": id, "location": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"boxid": id, "location": location})
}

func (h *MoveHandler) GetHistory(c *gin.Context) {
	id := c.Query("boxid")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "boxid required"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	history, err := h.Store.History(id, limit)
	if err != nil {
		log.Println("Error reading history: ", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not read history", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"boxid": id, "history": history})
}

func (h *MoveHandler) AssignInitial(c *gin.Context) {
	var req models.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	if err := h.Store.AssignInitial(req.BoxID, req.ToLoc, req.Operator, req.Reason); err != nil {
		abortWithMoveError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"boxid": req.BoxID, "to_loc": req.ToLoc})
}

func (h *MoveHandler) Move(c *gin.Context) {
	var req models.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	if err := h.Store.Move(req.BoxID, req.ToLoc, req.Operator, req.Reason); err != nil {
		abortWithMoveError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"boxid": req.BoxID, "to_loc": req.ToLoc})
}

func (h *MoveHandler) MoveByRange(c *gin.Context) {
	var req models.MoveRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	outcome, err := h.Resolver.MoveRange(req.BoxID, req.Start, req.End, req.ToLoc, req.Operator, req.Reason)
	if err != nil {
		abortWithMoveError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"moved":  outcome.Moved,
		"fails":  outcome.Fails,
		"to_loc": req.ToLoc,
		"range":  []int{req.Start, req.End},
	})
}

func (h *MoveHandler) MoveBulk(c *gin.Context) {
	var req models.MoveBulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	outcome, err := h.Resolver.MoveBulk(req.BoxIDs, req.ToLoc, req.Operator, req.Reason)
	if err != nil {
		abortWithMoveError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"moved": outcome.Moved,
		"fails": outcome.Fails,
	})
}

func abortWithMoveError(c *gin.Context, err error) {
	switch err.(type) {
	case *custom_error.ValidationError:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case *custom_error.NotFoundError:
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.Println("Error executing move: ", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Move failed", "details": err.Error()})
	}
}
