package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"tradelens-backend/internal/dto"
	"tradelens-backend/internal/model"
	"tradelens-backend/internal/service"
	"tradelens-backend/internal/store"
)

type DatasetController struct {
	datasetService service.DatasetService
}

func NewDatasetController(datasetService service.DatasetService) *DatasetController {
	return &DatasetController{
		datasetService: datasetService,
	}
}

func RegisterDatasetRoutes(router *gin.Engine, controller *DatasetController) {
	v1 := router.Group("/api/v1/datasets")
	{
		v1.POST("", controller.LoadDataset)
		v1.GET("/:name/summary", controller.GetSummary)
		v1.DELETE("/:name", controller.DeleteDataset)
	}
}

// LoadDataset godoc
// @Summary      Load a dataset snapshot
// @Description  Replaces the named in-memory record snapshot with the posted records and rebuilds its aggregation cache. Records are open field maps; no schema is enforced.
// @Tags         datasets
// @Accept       json
// @Produce      json
// @Param        request body dto.LoadDatasetRequest true "Dataset name and records"
// @Success      200 {object} model.Response "Snapshot replaced. Data holds the stored record count."
// @Failure      400 {object} model.Response "Invalid request body"
// @Router       /api/v1/datasets [post]
func (c *DatasetController) LoadDataset(ctx *gin.Context) {
	var req dto.LoadDatasetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Invalid dataset load request body")
		ctx.JSON(http.StatusBadRequest, model.NewResponse("Invalid request body: "+err.Error(), nil))
		return
	}

	count := c.datasetService.Load(ctx.Request.Context(), req)
	ctx.JSON(http.StatusOK, model.NewResponse("Dataset loaded", gin.H{"name": req.Name, "recordCount": count}))
}

// GetSummary godoc
// @Summary      Get the precomputed summary for a dataset
// @Description  Returns the dataset's aggregation cache: total value sums grouped by company, category, import country, and month, plus grand totals. The cache is rebuilt on every load, so it always reflects the current snapshot.
// @Tags         datasets
// @Produce      json
// @Param        name path string true "Dataset name"
// @Success      200 {object} dto.DatasetSummaryResponse "Precomputed summary"
// @Failure      404 {object} model.Response "Dataset not found"
// @Router       /api/v1/datasets/{name}/summary [get]
func (c *DatasetController) GetSummary(ctx *gin.Context) {
	name := ctx.Param("name")
	summary, err := c.datasetService.Summary(ctx.Request.Context(), name)
	if err != nil {
		if errors.Is(err, store.ErrDatasetNotFound) {
			ctx.JSON(http.StatusNotFound, model.NewResponse("Dataset not found", nil))
			return
		}
		log.Error().Err(err).Str("dataset", name).Msg("Error building dataset summary")
		ctx.JSON(http.StatusInternalServerError, model.NewResponse("Internal server error", nil))
		return
	}

	ctx.JSON(http.StatusOK, summary)
}

// DeleteDataset godoc
// @Summary      Delete a dataset snapshot
// @Description  Removes the named snapshot and its cache from memory.
// @Tags         datasets
// @Produce      json
// @Param        name path string true "Dataset name"
// @Success      200 {object} model.Response "Snapshot removed"
// @Failure      404 {object} model.Response "Dataset not found"
// @Router       /api/v1/datasets/{name} [delete]
func (c *DatasetController) DeleteDataset(ctx *gin.Context) {
	name := ctx.Param("name")
	if err := c.datasetService.Delete(ctx.Request.Context(), name); err != nil {
		if errors.Is(err, store.ErrDatasetNotFound) {
			ctx.JSON(http.StatusNotFound, model.NewResponse("Dataset not found", nil))
			return
		}
		log.Error().Err(err).Str("dataset", name).Msg("Error deleting dataset")
		ctx.JSON(http.StatusInternalServerError, model.NewResponse("Internal server error", nil))
		return
	}

	ctx.JSON(http.StatusOK, model.NewResponse("Dataset deleted", nil))
}
