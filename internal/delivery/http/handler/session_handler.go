package handler

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/perception-map/internal/pkg/errors"
	"github.com/perception-map/internal/pkg/utils"
	"github.com/perception-map/internal/pkg/validator"
	"github.com/perception-map/internal/usecase"
	"github.com/perception-map/internal/usecase/dto"
)

// maxAwait - верхняя граница ожидания загрузки в GET /sessions/:id?wait=
const maxAwait = 30 * time.Second

// SessionHandler - обработчик сессий карты
type SessionHandler struct {
	sessionUC *usecase.MapSessionUseCase
	logger    *zap.Logger
}

// NewSessionHandler создает новый экземпляр SessionHandler
func NewSessionHandler(sessionUC *usecase.MapSessionUseCase, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sessionUC: sessionUC,
		logger:    logger,
	}
}

// Create godoc
// @Summary Mount a map session
// @Description Монтирует карту в контейнер заданного размера и начинает загрузку года (по умолчанию последнего)
// @Tags Sessions
// @Accept json
// @Produce json
// @Param request body dto.CreateSessionRequest true "Container size"
// @Success 201 {object} utils.SuccessResponse{data=dto.SessionResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/sessions [post]
func (h *SessionHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, apperrors.ErrInvalidRequest)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	resp, err := h.sessionUC.Create(req)
	if err != nil {
		return utils.SendError(c, err)
	}

	c.Status(fiber.StatusCreated)
	return utils.SendSuccess(c, resp, nil)
}

// Get godoc
// @Summary Session snapshot
// @Description Состояние сессии, слой и вьюпорт. С параметром wait ждет окончания загрузки года.
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Param wait query string false "Max wait for the pending fetch, e.g. 5s"
// @Success 200 {object} utils.SuccessResponse{data=dto.SessionResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id} [get]
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")

	wait := c.Query("wait")
	if wait == "" {
		resp, err := h.sessionUC.Get(id)
		if err != nil {
			return utils.SendError(c, err)
		}
		return utils.SendSuccess(c, resp, nil)
	}

	d, err := time.ParseDuration(wait)
	if err != nil || d < 0 {
		return utils.SendError(c, apperrors.ErrInvalidRequest.WithDetails(map[string]interface{}{"wait": wait}))
	}
	if d > maxAwait {
		d = maxAwait
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), d)
	defer cancel()

	resp, err := h.sessionUC.Await(ctx, id)
	if errors.Is(err, context.DeadlineExceeded) {
		// загрузка еще идет, отдаем текущее состояние
		resp, err = h.sessionUC.Get(id)
	}
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, resp, nil)
}

// Delete godoc
// @Summary Unmount a map session
// @Tags Sessions
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id} [delete]
func (h *SessionHandler) Delete(c *fiber.Ctx) error {
	if err := h.sessionUC.Delete(c.Params("id")); err != nil {
		return utils.SendError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SelectYear godoc
// @Summary Select a year
// @Description Начинает загрузку года. Незавершенная загрузка прежнего выбора отбрасывается.
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body dto.SelectYearRequest true "Year"
// @Success 202 {object} utils.SuccessResponse{data=dto.SessionResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/year [put]
func (h *SessionHandler) SelectYear(c *fiber.Ctx) error {
	var req dto.SelectYearRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, apperrors.ErrInvalidRequest)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	resp, err := h.sessionUC.SelectYear(c.Params("id"), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	c.Status(fiber.StatusAccepted)
	return utils.SendSuccess(c, resp, nil)
}

// SetViewMode godoc
// @Summary Switch view mode
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body dto.ViewModeRequest true "View mode"
// @Success 200 {object} utils.SuccessResponse{data=dto.SessionResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/view-mode [put]
func (h *SessionHandler) SetViewMode(c *fiber.Ctx) error {
	var req dto.ViewModeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, apperrors.ErrInvalidRequest)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	resp, err := h.sessionUC.SetViewMode(c.Params("id"), req)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, resp, nil)
}

// Hover godoc
// @Summary Hover a cell
// @Description Открывает подсказку над ячейкой: балл, номер квадрата и приглашение кликнуть
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Param shape path int true "Shape ID"
// @Success 200 {object} utils.SuccessResponse{data=overlay.Popup}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/shapes/{shape}/hover [get]
func (h *SessionHandler) Hover(c *fiber.Ctx) error {
	shape, err := shapeParam(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	popup, err := h.sessionUC.Hover(c.Params("id"), shape)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, popup, nil)
}

// Leave godoc
// @Summary Leave a cell
// @Tags Sessions
// @Param id path string true "Session ID"
// @Param shape path int true "Shape ID"
// @Success 204
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/shapes/{shape}/hover [delete]
func (h *SessionHandler) Leave(c *fiber.Ctx) error {
	shape, err := shapeParam(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	if err := h.sessionUC.Leave(c.Params("id"), shape); err != nil {
		return utils.SendError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Click godoc
// @Summary Select a cell
// @Description Открывает оценки ячейки начиная с первой
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Param shape path int true "Shape ID"
// @Success 200 {object} utils.SuccessResponse{data=navigator.DetailView}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/shapes/{shape}/click [post]
func (h *SessionHandler) Click(c *fiber.Ctx) error {
	shape, err := shapeParam(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	detail, err := h.sessionUC.Click(c.Params("id"), shape)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, detail, nil)
}

// GetDetail godoc
// @Summary Current evaluation of the selected cell
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} utils.SuccessResponse{data=navigator.DetailView}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/detail [get]
func (h *SessionHandler) GetDetail(c *fiber.Ctx) error {
	detail, err := h.sessionUC.Detail(c.Params("id"))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, detail, nil)
}

// NextEvaluation godoc
// @Summary Next evaluation
// @Description После последней оценки показывается первая
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} utils.SuccessResponse{data=navigator.DetailView}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/detail/next [post]
func (h *SessionHandler) NextEvaluation(c *fiber.Ctx) error {
	detail, err := h.sessionUC.NextEvaluation(c.Params("id"))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, detail, nil)
}

// PreviousEvaluation godoc
// @Summary Previous evaluation
// @Description Перед первой оценкой показывается последняя
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} utils.SuccessResponse{data=navigator.DetailView}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/detail/previous [post]
func (h *SessionHandler) PreviousEvaluation(c *fiber.Ctx) error {
	detail, err := h.sessionUC.PreviousEvaluation(c.Params("id"))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, detail, nil)
}

// CloseDetail godoc
// @Summary Close the detail panel
// @Tags Sessions
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/detail [delete]
func (h *SessionHandler) CloseDetail(c *fiber.Ctx) error {
	if err := h.sessionUC.CloseDetail(c.Params("id")); err != nil {
		return utils.SendError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func shapeParam(c *fiber.Ctx) (int, error) {
	shape, err := c.ParamsInt("shape")
	if err != nil || shape < 0 {
		return 0, apperrors.ErrShapeNotFound.WithDetails(map[string]interface{}{
			"shape": c.Params("shape"),
		})
	}
	return shape, nil
}
