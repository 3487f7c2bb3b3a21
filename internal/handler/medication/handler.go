package medication

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openhealthcare/openehr-api/internal/handler"
	"github.com/openhealthcare/openehr-api/internal/handler/record"
	"github.com/openhealthcare/openehr-api/internal/model"
	medicationService "github.com/openhealthcare/openehr-api/internal/service/medication"
)

// Handler serves dosages nested under their therapeutic direction.
type Handler struct {
	service medicationService.MedicationServicer
}

func NewHandler(service medicationService.MedicationServicer) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes expects the group of the direction collection, e.g.
// /therapeutic-directions.
func (h *Handler) RegisterRoutes(directions *gin.RouterGroup) {
	directions.GET("/:id/dosages", h.ListDosages)
	directions.POST("/:id/dosages", h.AddDosage)
}

func (h *Handler) ListDosages(c *gin.Context) {
	id, err := record.ParseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	dosages, err := h.service.ListDosages(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(dosages))
}

func (h *Handler) AddDosage(c *gin.Context) {
	id, err := record.ParseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	dosage := &model.TherapeuticDirectionDosage{}
	if err := record.BindRecord(c, dosage); err != nil {
		_ = c.Error(err)
		return
	}
	dosage.Base = model.Base{}

	if err := h.service.AddDosage(c.Request.Context(), id, dosage); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(dosage))
}
