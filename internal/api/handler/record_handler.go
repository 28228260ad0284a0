package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/benesafe/registry/internal/core/domain"
	"github.com/benesafe/registry/internal/core/ports"
)

// RecordHandler serves the caller's assets, beneficiaries and dependents.
type RecordHandler struct {
	records ports.RecordService
}

func NewRecordHandler(records ports.RecordService) *RecordHandler {
	return &RecordHandler{records: records}
}

// List handles GET /v1/records.
//
// @Summary      List own records
// @Tags         records
// @Produce      json
// @Security     BearerAuth
// @Param        kind  query     string  false  "asset, beneficiary or dependent"
// @Success      200   {array}   domain.Record
// @Failure      400   {object}  errorResponse
// @Router       /v1/records [get]
func (h *RecordHandler) List(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	records, err := h.records.List(c.Request().Context(), userID, domain.RecordKind(c.QueryParam("kind")))
	if err != nil {
		return err
	}
	if records == nil {
		records = []domain.Record{}
	}
	return c.JSON(http.StatusOK, records)
}

// Create handles POST /v1/records. The caller's role must allow the kind
// and the bouquet quota must have room.
//
// @Summary      Create a record under the bouquet quota
// @Tags         records
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createRecordRequest  true  "Record"
// @Success      201   {object}  domain.Record
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/records [post]
func (h *RecordHandler) Create(c echo.Context) error {
	p, err := ctxProfile(c)
	if err != nil {
		return err
	}

	var req createRecordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	record, err := h.records.Create(c.Request().Context(), p, ports.CreateRecordInput{
		Kind:        domain.RecordKind(req.Kind),
		Category:    domain.AssetCategory(req.Category),
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, record)
}

// Delete handles DELETE /v1/records/:id. Deleted records stop counting toward quota.
//
// @Summary      Delete an own record
// @Tags         records
// @Security     BearerAuth
// @Param        id  path  string  true  "Record ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /v1/records/{id} [delete]
func (h *RecordHandler) Delete(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	if err := h.records.Delete(c.Request().Context(), userID, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
