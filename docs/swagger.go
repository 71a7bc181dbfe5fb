// Package docs Perception Map API.
//
// Сервис отрисовки карты городского восприятия. Загружает из бэкенда оценок
// агрегированные ячейки за год, рисует их цветными прямоугольниками
// и показывает оценки выбранной ячейки.
//
// Основные возможности:
// - Сессии карты с выбором года и режима отображения
// - Подсказки и клики по ячейкам, просмотр оценок по кругу
// - Разовая отрисовка года в GeoJSON
// - Журнал итогов отрисовки
//
//	Schemes: http, https
//	BasePath: /
//	Version: 1.0.0
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//
// swagger:meta
package docs
