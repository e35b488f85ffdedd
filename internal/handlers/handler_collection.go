package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/neuron_ledger/internal/core/ports/services"
	"github.com/SscSPs/neuron_ledger/internal/dto"
	"github.com/SscSPs/neuron_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// collectionHandler handles collections and the allocation engine.
type collectionHandler struct {
	collectionService portssvc.CollectionSvcFacade
	allocationService portssvc.AllocationSvcFacade
	defaultCurrency   string
}

// registerCollectionRoutes registers routes related to collections and their allocations.
func registerCollectionRoutes(rg *gin.RouterGroup, collectionService portssvc.CollectionSvcFacade, allocationService portssvc.AllocationSvcFacade, defaultCurrency string) {
	h := &collectionHandler{collectionService: collectionService, allocationService: allocationService, defaultCurrency: defaultCurrency}

	collections := rg.Group("/collections")
	{
		collections.POST("", h.createCollection)
		collections.GET("", h.listCollections)
		collections.GET("/:collectionID", h.getCollection)
		collections.DELETE("/:collectionID", h.deleteCollection)

		collections.GET("/:collectionID/allocations", h.listAllocations)
		collections.POST("/:collectionID/allocations", h.allocate)
		collections.POST("/:collectionID/auto-allocate", h.autoAllocate)
		collections.DELETE("/:collectionID/allocations/:invoiceID", h.deallocate)
	}
}

// createCollection godoc
// @Summary Record a collection
// @Description Records a received payment and assigns the next OR number.
// @Tags collections
// @Accept  json
// @Produce  json
// @Param   collection body dto.CreateCollectionRequest true "Collection details"
// @Param   Idempotency-Key header string false "Rejects a replay of the same command"
// @Success 201 {object} dto.CollectionResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 409 {object} dto.ErrorResponse "Replayed Idempotency-Key"
// @Failure 500 {object} dto.ErrorResponse "Failed to record collection"
// @Security BearerAuth
// @Router /collections [post]
func (h *collectionHandler) createCollection(c *gin.Context) {
	var req dto.CreateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	input, err := req.ToInput(h.defaultCurrency)
	if err != nil {
		respondError(c, err, "Failed to record collection")
		return
	}

	collection, err := h.collectionService.CreateCollection(c.Request.Context(), input, userID)
	if err != nil {
		respondError(c, err, "Failed to record collection")
		return
	}
	c.JSON(http.StatusCreated, dto.ToCollectionResponse(collection))
}

// listCollections godoc
// @Summary List collections
// @Tags collections
// @Produce  json
// @Param   clientRef query string false "Client reference"
// @Param   companyRef query string false "Company reference"
// @Param   status query string false "Derived status" Enums(Unapplied, Partially Applied, Fully Applied)
// @Param   from query string false "Collection date from (YYYY-MM-DD)"
// @Param   to query string false "Collection date to (YYYY-MM-DD)"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListCollectionsResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Security BearerAuth
// @Router /collections [get]
func (h *collectionHandler) listCollections(c *gin.Context) {
	var params dto.ListCollectionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err)
		return
	}
	filter, err := params.ToFilter()
	if err != nil {
		respondError(c, err, "Failed to list collections")
		return
	}

	collections, next, err := h.collectionService.ListCollections(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "Failed to list collections")
		return
	}
	c.JSON(http.StatusOK, dto.ToListCollectionsResponse(collections, next))
}

// getCollection godoc
// @Summary Get a collection
// @Tags collections
// @Produce  json
// @Param   collectionID path string true "Collection ID"
// @Success 200 {object} dto.CollectionResponse
// @Failure 404 {object} dto.ErrorResponse "Collection not found"
// @Security BearerAuth
// @Router /collections/{collectionID} [get]
func (h *collectionHandler) getCollection(c *gin.Context) {
	collection, err := h.collectionService.GetCollection(c.Request.Context(), c.Param("collectionID"))
	if err != nil {
		respondError(c, err, "Failed to retrieve collection")
		return
	}
	c.JSON(http.StatusOK, dto.ToCollectionResponse(collection))
}

// deleteCollection godoc
// @Summary Delete a collection
// @Description Only a collection with no allocations can be deleted.
// @Tags collections
// @Param   collectionID path string true "Collection ID"
// @Success 204 "No Content"
// @Failure 404 {object} dto.ErrorResponse "Collection not found"
// @Failure 409 {object} dto.ErrorResponse "Collection still has allocations"
// @Security BearerAuth
// @Router /collections/{collectionID} [delete]
func (h *collectionHandler) deleteCollection(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.collectionService.DeleteCollection(c.Request.Context(), c.Param("collectionID"), userID); err != nil {
		respondError(c, err, "Failed to delete collection")
		return
	}
	c.Status(http.StatusNoContent)
}

// listAllocations godoc
// @Summary List the allocations of a collection
// @Tags allocations
// @Produce  json
// @Param   collectionID path string true "Collection ID"
// @Success 200 {array} dto.AllocationResponse
// @Failure 404 {object} dto.ErrorResponse "Collection not found"
// @Security BearerAuth
// @Router /collections/{collectionID}/allocations [get]
func (h *collectionHandler) listAllocations(c *gin.Context) {
	allocations, err := h.allocationService.ListAllocations(c.Request.Context(), c.Param("collectionID"))
	if err != nil {
		respondError(c, err, "Failed to list allocations")
		return
	}
	c.JSON(http.StatusOK, dto.ToListAllocationResponse(allocations))
}

// allocate godoc
// @Summary Allocate a collection to invoices
// @Description Applies the collection to the listed invoices in order. Each target replaces the
// @Description existing allocation for its pair and is clamped to what both sides can absorb;
// @Description clamped targets are reported in warnings.
// @Tags allocations
// @Accept  json
// @Produce  json
// @Param   collectionID path string true "Collection ID"
// @Param   allocations body dto.AllocateRequest true "Targets in application order"
// @Param   Idempotency-Key header string false "Rejects a replay of the same command"
// @Success 200 {object} dto.AllocationResultResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid targets"
// @Failure 404 {object} dto.ErrorResponse "Collection or invoice not found"
// @Failure 409 {object} dto.ErrorResponse "Invoice not posted"
// @Security BearerAuth
// @Router /collections/{collectionID}/allocations [post]
func (h *collectionHandler) allocate(c *gin.Context) {
	var req dto.AllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	collectionID := c.Param("collectionID")

	collection, err := h.collectionService.GetCollection(c.Request.Context(), collectionID)
	if err != nil {
		respondError(c, err, "Failed to allocate collection")
		return
	}
	targets, err := req.ToTargets(collection.Currency())
	if err != nil {
		respondError(c, err, "Failed to allocate collection")
		return
	}

	result, err := h.allocationService.Allocate(c.Request.Context(), collectionID, targets, userID)
	if err != nil {
		respondError(c, err, "Failed to allocate collection")
		return
	}
	if len(result.Warnings) > 0 {
		middleware.GetLoggerFromCtx(c.Request.Context()).Info("Allocation clamped",
			slog.String("collection_id", collectionID),
			slog.Int("warnings", len(result.Warnings)))
	}
	c.JSON(http.StatusOK, dto.ToAllocationResultResponse(result))
}

// autoAllocate godoc
// @Summary Auto-allocate a collection
// @Description Applies the unapplied balance to the client's open invoices, oldest first.
// @Tags allocations
// @Produce  json
// @Param   collectionID path string true "Collection ID"
// @Param   Idempotency-Key header string false "Rejects a replay of the same command"
// @Success 200 {object} dto.AllocationResultResponse
// @Failure 404 {object} dto.ErrorResponse "Collection not found"
// @Security BearerAuth
// @Router /collections/{collectionID}/auto-allocate [post]
func (h *collectionHandler) autoAllocate(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	result, err := h.allocationService.AutoAllocate(c.Request.Context(), c.Param("collectionID"), userID)
	if err != nil {
		respondError(c, err, "Failed to auto-allocate collection")
		return
	}
	c.JSON(http.StatusOK, dto.ToAllocationResultResponse(result))
}

// deallocate godoc
// @Summary Remove an allocation
// @Tags allocations
// @Produce  json
// @Param   collectionID path string true "Collection ID"
// @Param   invoiceID path string true "Invoice ID"
// @Success 200 {object} dto.AllocationResultResponse
// @Failure 404 {object} dto.ErrorResponse "No such allocation"
// @Security BearerAuth
// @Router /collections/{collectionID}/allocations/{invoiceID} [delete]
func (h *collectionHandler) deallocate(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	result, err := h.allocationService.Deallocate(c.Request.Context(), c.Param("collectionID"), c.Param("invoiceID"), userID)
	if err != nil {
		respondError(c, err, "Failed to remove allocation")
		return
	}
	c.JSON(http.StatusOK, dto.ToAllocationResultResponse(result))
}
