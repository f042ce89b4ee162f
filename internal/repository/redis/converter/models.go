package converter

import "time"

type RecordInfoRedisModel struct {
	ID          string    `json:"id"`
	Collection  string    `json:"collection"`
	ContentHash string    `json:"content_hash"`
	TextLength  int       `json:"text_length"`
	CreatedAt   time.Time `json:"created_at"`
}
