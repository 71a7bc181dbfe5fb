package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/perception-map/internal/pkg/errors"
	"github.com/perception-map/internal/pkg/utils"
	"github.com/perception-map/internal/pkg/validator"
	"github.com/perception-map/internal/usecase"
	"github.com/perception-map/internal/usecase/dto"
)

// MapHandler - обработчик запросов без сессии: годы, разовая отрисовка, журнал
type MapHandler struct {
	mapUC  *usecase.MapUseCase
	logger *zap.Logger
}

// NewMapHandler создает новый экземпляр MapHandler
func NewMapHandler(mapUC *usecase.MapUseCase, logger *zap.Logger) *MapHandler {
	return &MapHandler{
		mapUC:  mapUC,
		logger: logger,
	}
}

// GetYears godoc
// @Summary Available years
// @Description Возвращает годы, для которых можно запросить карту, и год по умолчанию (последний)
// @Tags Map
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.YearsResponse}
// @Router /api/v1/map/years [get]
func (h *MapHandler) GetYears(c *fiber.Ctx) error {
	years := h.mapUC.Years()
	return utils.SendSuccess(c, years, &utils.Meta{
		Total: len(years.Years),
	})
}

// GetOverlay godoc
// @Summary Render a year overlay
// @Description Загружает ячейки года и отрисовывает их один раз, возвращает GeoJSON слоя и итог отрисовки
// @Tags Map
// @Produce json
// @Param year path int true "Year"
// @Param view query string false "View mode" Enums(composite, individual)
// @Param width query int false "Container width in px"
// @Param height query int false "Container height in px"
// @Success 200 {object} utils.SuccessResponse{data=dto.OverlayResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Router /api/v1/map/{year}/overlay [get]
func (h *MapHandler) GetOverlay(c *fiber.Ctx) error {
	year, err := c.ParamsInt("year")
	if err != nil {
		return utils.SendError(c, apperrors.ErrInvalidYear.WithDetails(map[string]interface{}{
			"year": c.Params("year"),
		}))
	}

	var req dto.OverlayRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, apperrors.ErrInvalidRequest)
	}
	req.Year = year

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	resp, err := h.mapUC.RenderOverlay(c.UserContext(), req)
	if err != nil {
		h.logger.Warn("Failed to render overlay", zap.Int("year", year), zap.Error(err))
		return utils.SendError(c, err)
	}

	meta := &utils.Meta{Year: resp.Year}
	if resp.Report != nil {
		meta.Total = resp.Report.Drawn
	}
	return utils.SendSuccess(c, resp, meta)
}

// GetReports godoc
// @Summary Render report journal
// @Description Последние итоги отрисовки, новые первыми
// @Tags Map
// @Produce json
// @Param year query int false "Year filter"
// @Param limit query int false "Max reports (default 50)"
// @Success 200 {object} utils.SuccessResponse{data=[]domain.RenderReport}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/map/reports [get]
func (h *MapHandler) GetReports(c *fiber.Ctx) error {
	var req dto.ReportsRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, apperrors.ErrInvalidRequest)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	reports, err := h.mapUC.ListReports(c.UserContext(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, reports, &utils.Meta{
		Total: len(reports),
		Limit: req.Limit,
		Year:  req.Year,
	})
}
