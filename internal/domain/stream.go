package domain

import "time"

// StreamMapRefresh - запросы на сброс и повторную загрузку года
const StreamMapRefresh = "stream:map:refresh"

// MapRefreshEvent - событие об обновлении агрегированных данных за год
type MapRefreshEvent struct {
	Year        int       `json:"year"`
	Reason      string    `json:"reason,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// StreamMessage - сообщение, прочитанное из Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}

// StreamMapRefreshed - результат предварительной загрузки года
const StreamMapRefreshed = "stream:map:refreshed"

// MapRefreshedEvent публикуется после того, как год заново загружен в кеш
type MapRefreshedEvent struct {
	Year        int       `json:"year"`
	Cells       int       `json:"cells"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	RefreshedAt time.Time `json:"refreshed_at"`
}
