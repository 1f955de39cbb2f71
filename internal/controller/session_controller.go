package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"tradelens-backend/internal/model"
	"tradelens-backend/internal/service"
	"tradelens-backend/internal/session"
)

type SessionController struct {
	queryService service.QueryService
}

func NewSessionController(queryService service.QueryService) *SessionController {
	return &SessionController{
		queryService: queryService,
	}
}

func RegisterSessionRoutes(router *gin.Engine, controller *SessionController) {
	v1 := router.Group("/api/v1/sessions")
	{
		v1.GET("/:id", controller.GetSession)
	}
}

// GetSession godoc
// @Summary      Inspect an iterative query session
// @Description  Returns the full audit trail of a session: every round's data request, result counts, validation verdict, reasoning, and latency, plus the terminal status and error kind.
// @Tags         sessions
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200 {object} session.IterativeQuerySession "Session with its request log"
// @Failure      404 {object} model.Response "Session not found"
// @Router       /api/v1/sessions/{id} [get]
func (c *SessionController) GetSession(ctx *gin.Context) {
	id := ctx.Param("id")
	sess, err := c.queryService.GetSession(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			ctx.JSON(http.StatusNotFound, model.NewResponse("Session not found", nil))
			return
		}
		log.Error().Err(err).Str("session_id", id).Msg("Error fetching session")
		ctx.JSON(http.StatusInternalServerError, model.NewResponse("Internal server error", nil))
		return
	}

	ctx.JSON(http.StatusOK, sess)
}
