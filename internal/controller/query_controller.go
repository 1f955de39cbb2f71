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

type QueryController struct {
	queryService service.QueryService
}

func NewQueryController(queryService service.QueryService) *QueryController {
	return &QueryController{
		queryService: queryService,
	}
}

func RegisterQueryRoutes(router *gin.Engine, controller *QueryController) {
	v1 := router.Group("/api/v1/query")
	{
		v1.POST("/ask", controller.HandleAsk)
	}
}

// HandleAsk godoc
// @Summary      Answer a natural language question about trade transactions
// @Description  Takes a natural language question and an optional conversation ID. Runs a bounded iterative session: the question is analyzed (using LLM) into a structured data request, executed against the in-memory dataset with filtering and aggregation, validated, and refined until the data is sufficient or a stop condition (iteration cap, timeout, loop detection) fires. The response always reports a terminal status and, on failure, a machine-checkable error kind.
// @Tags         query
// @Accept       json
// @Produce      json
// @Param        request body dto.QueryRequest true "User question, optional conversation ID and dataset name"
// @Success      200 {object} dto.QueryResponse "Session reached a terminal state. Check status and errorKind."
// @Failure      400 {object} model.Response "Invalid request body"
// @Failure      404 {object} model.Response "Named dataset does not exist"
// @Failure      500 {object} model.Response "Internal server error during processing"
// @Router       /api/v1/query/ask [post]
func (c *QueryController) HandleAsk(ctx *gin.Context) {
	var req dto.QueryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Invalid query request body")
		ctx.JSON(http.StatusBadRequest, model.NewResponse("Invalid request body: "+err.Error(), nil))
		return
	}

	resp, err := c.queryService.ProcessQuestion(ctx.Request.Context(), req)
	if err != nil {
		if errors.Is(err, store.ErrDatasetNotFound) {
			ctx.JSON(http.StatusNotFound, model.NewResponse("Dataset not found", nil))
			return
		}
		log.Error().Err(err).Str("question", req.Question).Msg("Internal error processing question")
		ctx.JSON(http.StatusInternalServerError, model.NewResponse("Internal server error", nil))
		return
	}

	ctx.JSON(http.StatusOK, resp)
}
