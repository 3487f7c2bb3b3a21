package record

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/openhealthcare/openehr-api/internal/handler"
	"github.com/openhealthcare/openehr-api/internal/model"
	recordService "github.com/openhealthcare/openehr-api/internal/service/record"
	apperrors "github.com/openhealthcare/openehr-api/pkg/errors"
)

// Handler serves the REST surface of one record kind.
type Handler[T model.Record] struct {
	service recordService.RecordServicer[T]
	path    string
}

func NewHandler[T model.Record](service recordService.RecordServicer[T], path string) *Handler[T] {
	return &Handler[T]{service: service, path: path}
}

func (h *Handler[T]) RegisterRoutes(r *gin.RouterGroup) {
	records := r.Group("/" + h.path)
	{
		records.POST("", h.Create)
		records.GET("", h.List)
		records.GET("/:id", h.Get)
		records.PUT("/:id", h.Update)
		records.DELETE("/:id", h.Delete)
		records.POST("/:id/:relation/:refId", h.Link)
		records.DELETE("/:id/:relation/:refId", h.Unlink)
	}
}

func (h *Handler[T]) newRecord() T {
	return model.New(h.service.Kind()).(T)
}

// ParseID reads a UUID path parameter.
func ParseID(c *gin.Context, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return uuid.Nil, apperrors.NewBadRequest("invalid "+param, err)
	}
	return id, nil
}

// BindRecord decodes a JSON body into rec. Type errors name the
// offending field.
func BindRecord(c *gin.Context, rec interface{}) error {
	if err := c.ShouldBindJSON(rec); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return apperrors.NewFieldConstraint(typeErr.Field, "expected a "+typeErr.Type.String(), err)
		}
		return apperrors.NewBadRequest("invalid request body", err)
	}
	return nil
}

func (h *Handler[T]) Create(c *gin.Context) {
	rec := h.newRecord()
	if err := BindRecord(c, rec); err != nil {
		_ = c.Error(err)
		return
	}
	// IDs and timestamps are server assigned
	*rec.GetBase() = model.Base{}

	if err := h.service.Create(c.Request.Context(), rec); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(rec))
}

func (h *Handler[T]) Get(c *gin.Context) {
	id, err := ParseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	rec, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(rec))
}

func (h *Handler[T]) List(c *gin.Context) {
	var page model.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		_ = c.Error(apperrors.NewBadRequest("invalid pagination", err))
		return
	}
	page = page.Normalize()

	recs, err := h.service.List(c.Request.Context(), page)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewListResponse(recs, page.Limit, page.Offset, len(recs)))
}

// Update replaces the whole record; omitted fields are cleared.
func (h *Handler[T]) Update(c *gin.Context) {
	id, err := ParseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	rec := h.newRecord()
	if err := BindRecord(c, rec); err != nil {
		_ = c.Error(err)
		return
	}
	*rec.GetBase() = model.Base{ID: id}

	if err := h.service.Update(c.Request.Context(), rec); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(rec))
}

func (h *Handler[T]) Delete(c *gin.Context) {
	id, err := ParseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler[T]) linkParams(c *gin.Context) (uuid.UUID, string, uuid.UUID, error) {
	id, err := ParseID(c, "id")
	if err != nil {
		return uuid.Nil, "", uuid.Nil, err
	}
	refID, err := ParseID(c, "refId")
	if err != nil {
		return uuid.Nil, "", uuid.Nil, err
	}
	return id, c.Param("relation"), refID, nil
}

func (h *Handler[T]) Link(c *gin.Context) {
	id, relation, refID, err := h.linkParams(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.service.Link(c.Request.Context(), id, relation, refID); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler[T]) Unlink(c *gin.Context) {
	id, relation, refID, err := h.linkParams(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.service.Unlink(c.Request.Context(), id, relation, refID); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
