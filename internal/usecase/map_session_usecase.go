package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/perception-map/internal/domain"
	"github.com/perception-map/internal/navigator"
	"github.com/perception-map/internal/overlay"
	apperrors "github.com/perception-map/internal/pkg/errors"
	"github.com/perception-map/internal/pkg/metrics"
	"github.com/perception-map/internal/usecase/dto"
)

// SessionState - состояние загрузки данных сессии
type SessionState string

const (
	SessionLoading SessionState = "loading"
	SessionReady   SessionState = "ready"
	SessionEmpty   SessionState = "empty"
	SessionError   SessionState = "error"
)

// mapSession - одна открытая карта: рендерер, навигатор и выбранный год.
// Все изменения идут под mu.
type mapSession struct {
	mu        sync.Mutex
	id        string
	renderer  *overlay.Renderer
	nav       navigator.Navigator
	container domain.Container

	year     int
	viewMode domain.ViewMode
	state    SessionState
	message  string
	cells    []domain.GeoCell
	report   *domain.RenderReport

	// generation растет с каждым выбором года; результат загрузки
	// с устаревшим поколением отбрасывается
	generation uint64
	cancel     context.CancelFunc
	settled    chan struct{}
	closed     bool

	createdAt time.Time
	updatedAt time.Time
}

// MapSessionUseCase управляет сессиями карты
type MapSessionUseCase struct {
	mapUC  *MapUseCase
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*mapSession
	closed   map[string]time.Time // размонтированные сессии, вызовы по ним отвечают SESSION_CLOSED
	fetches  sync.WaitGroup
}

// closedRetention - сколько помнить id размонтированной сессии
const closedRetention = time.Hour

var errSessionActive = errors.New("session was used after the expiry check")

// NewMapSessionUseCase создает новый экземпляр MapSessionUseCase.
// ttl <= 0 отключает удаление неактивных сессий.
func NewMapSessionUseCase(mapUC *MapUseCase, ttl time.Duration, logger *zap.Logger) *MapSessionUseCase {
	return &MapSessionUseCase{
		mapUC:    mapUC,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*mapSession),
		closed:   make(map[string]time.Time),
	}
}

// WithClock подменяет источник времени для TTL сессий
func (uc *MapSessionUseCase) WithClock(now func() time.Time) *MapSessionUseCase {
	if now != nil {
		uc.now = now
	}
	return uc
}

// Create монтирует карту в контейнер и сразу начинает загрузку года
// (по умолчанию последнего доступного).
func (uc *MapSessionUseCase) Create(req dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	container := domain.Container{Width: req.Width, Height: req.Height}
	if !container.Valid() {
		return nil, apperrors.ErrInvalidContainer
	}
	viewMode, err := ParseViewMode(req.ViewMode)
	if err != nil {
		return nil, err
	}
	year := req.Year
	if year == 0 {
		year = uc.mapUC.Years().Default
	}
	if err := uc.mapUC.ValidateYear(year); err != nil {
		return nil, err
	}

	now := uc.now()
	s := &mapSession{
		id:        uuid.NewString(),
		container: container,
		viewMode:  viewMode,
		createdAt: now,
		updatedAt: now,
	}
	logger := uc.logger.With(zap.String("session_id", s.id))
	// клик по ячейке вызывается из Click, mu уже захвачен
	s.renderer = overlay.NewRenderer(uc.mapUC.RendererConfig(), nil, s.nav.Open, logger)
	if err := s.renderer.Mount(container); err != nil {
		return nil, apperrors.ErrInvalidContainer.WithDetails(map[string]interface{}{"reason": err.Error()})
	}

	uc.mu.Lock()
	uc.sessions[s.id] = s
	uc.mu.Unlock()
	metrics.SessionsActive.Inc()

	logger.Info("Map session created",
		zap.Int("width", container.Width),
		zap.Int("height", container.Height),
		zap.Int("year", year))

	s.mu.Lock()
	defer s.mu.Unlock()
	uc.startFetch(s, year)
	return uc.snapshot(s), nil
}

// Get возвращает снимок сессии
func (uc *MapSessionUseCase) Get(id string) (*dto.SessionResponse, error) {
	s, err := uc.lockSession(id)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	return uc.snapshot(s), nil
}

// Await ждет, пока текущая загрузка года не завершится, и возвращает снимок
func (uc *MapSessionUseCase) Await(ctx context.Context, id string) (*dto.SessionResponse, error) {
	for {
		s, err := uc.lockSession(id)
		if err != nil {
			return nil, err
		}
		if s.state != SessionLoading {
			resp := uc.snapshot(s)
			s.mu.Unlock()
			return resp, nil
		}
		settled := s.settled
		s.mu.Unlock()

		select {
		case <-settled:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// SelectYear начинает загрузку нового года. Незавершенная загрузка
// предыдущего выбора отменяется, ее результат не будет отрисован.
func (uc *MapSessionUseCase) SelectYear(id string, req dto.SelectYearRequest) (*dto.SessionResponse, error) {
	if err := uc.mapUC.ValidateYear(req.Year); err != nil {
		return nil, err
	}
	var viewMode domain.ViewMode
	if req.ViewMode != "" {
		mode, err := ParseViewMode(req.ViewMode)
		if err != nil {
			return nil, err
		}
		viewMode = mode
	}

	s, err := uc.lockSession(id)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	if viewMode != "" {
		s.viewMode = viewMode
	}
	uc.startFetch(s, req.Year)
	return uc.snapshot(s), nil
}

// SetViewMode меняет режим и перерисовывает уже загруженные ячейки
func (uc *MapSessionUseCase) SetViewMode(id string, req dto.ViewModeRequest) (*dto.SessionResponse, error) {
	mode, err := ParseViewMode(req.ViewMode)
	if err != nil {
		return nil, err
	}

	s, err := uc.lockSession(id)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	s.viewMode = mode
	// во время загрузки режим применится к результату
	if s.state == SessionReady || s.state == SessionEmpty {
		report, err := s.renderer.Render(s.cells, mode)
		if err != nil {
			return nil, fmt.Errorf("render overlay: %w", err)
		}
		uc.finishRender(s, report)
	}
	return uc.snapshot(s), nil
}

// Hover открывает подсказку над ячейкой
func (uc *MapSessionUseCase) Hover(id string, shape int) (*overlay.Popup, error) {
	s, err := uc.lockSession(id)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	if err := interactive(s); err != nil {
		return nil, err
	}
	popup, err := s.renderer.Surface().Hover(overlay.ShapeID(shape))
	if err != nil {
		return nil, shapeError(err)
	}
	return popup, nil
}

// Leave закрывает подсказку ячейки
func (uc *MapSessionUseCase) Leave(id string, shape int) error {
	s, err := uc.lockSession(id)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()

	if err := interactive(s); err != nil {
		return err
	}
	return shapeError(s.renderer.Surface().Leave(overlay.ShapeID(shape)))
}

// Click выбирает ячейку и открывает ее оценки с первой
func (uc *MapSessionUseCase) Click(id string, shape int) (*navigator.DetailView, error) {
	s, err := uc.lockSession(id)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	if err := interactive(s); err != nil {
		return nil, err
	}
	if err := s.renderer.Surface().Click(overlay.ShapeID(shape)); err != nil {
		return nil, shapeError(err)
	}
	return s.nav.View(), nil
}

// Detail возвращает текущую оценку выбранной ячейки
func (uc *MapSessionUseCase) Detail(id string) (*navigator.DetailView, error) {
	return uc.withDetail(id, func(*navigator.Navigator) {})
}

// NextEvaluation переходит к следующей оценке, после последней - к первой
func (uc *MapSessionUseCase) NextEvaluation(id string) (*navigator.DetailView, error) {
	return uc.withDetail(id, (*navigator.Navigator).Next)
}

// PreviousEvaluation переходит к предыдущей оценке, перед первой - к последней
func (uc *MapSessionUseCase) PreviousEvaluation(id string) (*navigator.DetailView, error) {
	return uc.withDetail(id, (*navigator.Navigator).Previous)
}

// CloseDetail снимает выбор ячейки
func (uc *MapSessionUseCase) CloseDetail(id string) error {
	s, err := uc.lockSession(id)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()

	s.nav.Close()
	return nil
}

func (uc *MapSessionUseCase) withDetail(id string, step func(*navigator.Navigator)) (*navigator.DetailView, error) {
	s, err := uc.lockSession(id)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	if !s.nav.IsOpen() {
		return nil, apperrors.ErrDetailNotOpen
	}
	step(&s.nav)
	return s.nav.View(), nil
}

// Delete размонтирует карту и удаляет сессию
func (uc *MapSessionUseCase) Delete(id string) error {
	return uc.remove(id, time.Time{})
}

// remove снимает сессию с учета и размонтирует ее. С ненулевым idleSince
// сессия удаляется, только если ее не трогали с этого момента; проверка и
// удаление идут под одним s.mu.
func (uc *MapSessionUseCase) remove(id string, idleSince time.Time) error {
	uc.mu.RLock()
	s, ok := uc.sessions[id]
	_, wasClosed := uc.closed[id]
	uc.mu.RUnlock()
	if !ok {
		if wasClosed {
			return apperrors.ErrSessionClosed
		}
		return apperrors.ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return apperrors.ErrSessionClosed
	}
	if !idleSince.IsZero() && !s.updatedAt.Before(idleSince) {
		return errSessionActive
	}

	// порядок блокировок: s.mu, затем uc.mu
	uc.mu.Lock()
	delete(uc.sessions, id)
	uc.closed[id] = uc.now()
	uc.mu.Unlock()

	uc.teardown(s)
	return nil
}

// CleanupExpired удаляет сессии, неактивные дольше ttl. Возвращает число удаленных.
func (uc *MapSessionUseCase) CleanupExpired() int {
	now := uc.now()
	uc.mu.Lock()
	for id, at := range uc.closed {
		if now.Sub(at) > closedRetention {
			delete(uc.closed, id)
		}
	}
	uc.mu.Unlock()

	if uc.ttl <= 0 {
		return 0
	}
	deadline := now.Add(-uc.ttl)

	uc.mu.RLock()
	ids := make([]string, 0, len(uc.sessions))
	for id := range uc.sessions {
		ids = append(ids, id)
	}
	uc.mu.RUnlock()

	removed := 0
	for _, id := range ids {
		if err := uc.remove(id, deadline); err == nil {
			removed++
		}
	}
	if removed > 0 {
		uc.logger.Info("Expired map sessions removed", zap.Int("count", removed))
	}
	return removed
}

// RunJanitor периодически вызывает CleanupExpired до отмены ctx
func (uc *MapSessionUseCase) RunJanitor(ctx context.Context, interval time.Duration) {
	if uc.ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			uc.CleanupExpired()
		}
	}
}

// Shutdown удаляет все сессии и ждет завершения загрузок
func (uc *MapSessionUseCase) Shutdown(ctx context.Context) error {
	uc.mu.Lock()
	sessions := uc.sessions
	uc.sessions = make(map[string]*mapSession)
	now := uc.now()
	for id := range sessions {
		uc.closed[id] = now
	}
	uc.mu.Unlock()

	for _, s := range sessions {
		s.mu.Lock()
		uc.teardown(s)
		s.mu.Unlock()
	}

	done := make(chan struct{})
	go func() {
		uc.fetches.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// teardown вызывается с захваченным s.mu
func (uc *MapSessionUseCase) teardown(s *mapSession) {
	if s.closed {
		return
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.nav.Close()
	if err := s.renderer.Unmount(); err != nil {
		uc.logger.Warn("Failed to unmount renderer", zap.String("session_id", s.id), zap.Error(err))
	}
	metrics.SessionsActive.Dec()
	uc.logger.Info("Map session closed", zap.String("session_id", s.id))
}

// lockSession находит открытую сессию и возвращает ее с захваченным mu
func (uc *MapSessionUseCase) lockSession(id string) (*mapSession, error) {
	uc.mu.RLock()
	s, ok := uc.sessions[id]
	_, wasClosed := uc.closed[id]
	uc.mu.RUnlock()
	if !ok {
		if wasClosed {
			return nil, apperrors.ErrSessionClosed
		}
		return nil, apperrors.ErrSessionNotFound
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, apperrors.ErrSessionClosed
	}
	s.updatedAt = uc.now()
	return s, nil
}

// startFetch вызывается с захваченным s.mu
func (uc *MapSessionUseCase) startFetch(s *mapSession, year int) {
	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	gen := s.generation

	ctx, cancel := context.WithCancel(context.Background())
	settled := make(chan struct{})
	s.cancel = cancel
	s.settled = settled
	s.year = year
	s.state = SessionLoading
	s.message = ""
	// новый год заменяет прежний набор ячеек, выбор ячейки сбрасывается
	s.nav.Close()

	uc.fetches.Add(1)
	go uc.fetch(ctx, s, gen, year, settled)
}

func (uc *MapSessionUseCase) fetch(ctx context.Context, s *mapSession, gen uint64, year int, settled chan struct{}) {
	defer uc.fetches.Done()
	defer close(settled)

	cells, err := uc.mapUC.GetCells(ctx, year)

	s.mu.Lock()
	if s.closed || s.generation != gen {
		s.mu.Unlock()
		metrics.SupersededFetchesTotal.Inc()
		uc.logger.Debug("Discarding superseded fetch",
			zap.String("session_id", s.id),
			zap.Int("year", year))
		return
	}
	s.cancel()
	s.cancel = nil
	report := uc.apply(s, cells, err)
	s.mu.Unlock()

	if report != nil {
		uc.mapUC.SaveReport(context.Background(), report)
	}
}

// apply переводит результат загрузки в состояние сессии; вызывается с захваченным s.mu
func (uc *MapSessionUseCase) apply(s *mapSession, cells []domain.GeoCell, err error) *domain.RenderReport {
	noData := errors.Is(err, domain.ErrNoData)
	if err != nil && !noData {
		appErr := BackendError(err)
		uc.logger.Error("Failed to load map data",
			zap.String("session_id", s.id),
			zap.Int("year", s.year),
			zap.Error(err))
		s.cells = nil
		s.report = nil
		s.state = SessionError
		s.message = appErr.Message
		// прежний год не должен оставаться на карте под новым заголовком
		if _, rerr := s.renderer.Render(nil, s.viewMode); rerr != nil {
			uc.logger.Warn("Failed to clear overlay", zap.Error(rerr))
		}
		return nil
	}

	s.cells = cells
	report, rerr := s.renderer.Render(cells, s.viewMode)
	if rerr != nil {
		s.state = SessionError
		s.message = rerr.Error()
		return nil
	}
	uc.finishRender(s, report)
	if noData {
		s.message = fmt.Sprintf("No data available for year %d", s.year)
	}
	return report
}

// finishRender вызывается с захваченным s.mu
func (uc *MapSessionUseCase) finishRender(s *mapSession, report *domain.RenderReport) {
	report.Year = s.year
	report.SessionID = s.id
	s.report = report
	s.message = ""
	if report.Empty {
		s.state = SessionEmpty
		s.message = fmt.Sprintf("No drawable cells for year %d", s.year)
		return
	}
	s.state = SessionReady
}

// snapshot вызывается с захваченным s.mu
func (uc *MapSessionUseCase) snapshot(s *mapSession) *dto.SessionResponse {
	resp := &dto.SessionResponse{
		ID:        s.id,
		State:     string(s.state),
		Year:      s.year,
		ViewMode:  s.viewMode,
		Message:   s.message,
		Container: s.container,
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
		Detail:    s.nav.View(),
	}
	surface := s.renderer.Surface()
	if surface == nil {
		return resp
	}
	vp := surface.View()
	resp.Viewport = &vp
	if s.state != SessionLoading {
		resp.Overlay = surface.FeatureCollection()
		resp.Report = s.report
		resp.Popup = surface.OpenPopup()
	}
	return resp
}

// interactive - с ячейками можно работать только после загрузки
func interactive(s *mapSession) error {
	if s.state == SessionLoading || s.renderer.Surface() == nil {
		return apperrors.ErrShapeNotFound.WithMessage("Overlay is still loading")
	}
	return nil
}

func shapeError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, overlay.ErrShapeNotFound):
		return apperrors.ErrShapeNotFound
	case errors.Is(err, overlay.ErrSurfaceClosed):
		return apperrors.ErrSessionClosed
	default:
		return err
	}
}
