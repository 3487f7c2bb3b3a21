package choice

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openhealthcare/openehr-api/internal/handler"
	"github.com/openhealthcare/openehr-api/internal/model"
	apperrors "github.com/openhealthcare/openehr-api/pkg/errors"
)

// Handler lists the closed code sets that choice fields accept.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	choices := r.Group("/choices")
	{
		choices.GET("", h.ListChoiceSets)
		choices.GET("/:set", h.GetChoiceSet)
	}
}

func (h *Handler) ListChoiceSets(c *gin.Context) {
	c.JSON(http.StatusOK, handler.NewSuccessResponse(model.ChoiceSets()))
}

func (h *Handler) GetChoiceSet(c *gin.Context) {
	set, ok := model.LookupChoiceSet(c.Param("set"))
	if !ok {
		_ = c.Error(apperrors.NewNotFound("choice set "+c.Param("set"), nil))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(set))
}
