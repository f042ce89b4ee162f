package domain

import "time"

// Payload описывает дополнительную информацию вектора
type Payload map[string]any

// Embedding представляет один сохранённый вектор текста
type Embedding struct {
	ID      string
	Vector  []float32
	Payload Payload
}

func NewEmbedding(id string, vector []float32, payload Payload) *Embedding {
	return &Embedding{
		ID:      id,
		Vector:  vector,
		Payload: payload,
	}
}

// NewPayload собирает payload записи: метаданные вызывающей стороны поверх
// значений по умолчанию. Дефолты text и created_at подставляются только при
// отсутствии соответствующего ключа у вызывающей стороны — явное значение
// вызывающей стороны всегда побеждает.
func NewPayload(text string, createdAt time.Time, metadata map[string]any) Payload {
	payload := make(Payload, len(metadata)+2)
	for k, v := range metadata {
		payload[k] = v
	}

	if _, ok := payload["text"]; !ok {
		payload["text"] = text
	}
	if _, ok := payload["created_at"]; !ok {
		payload["created_at"] = createdAt.UTC().Format(time.RFC3339Nano)
	}

	return payload
}

// Text извлекает исходный текст из payload.
// Возвращает пустую строку, если ключ отсутствует или имеет другой тип.
func (p Payload) Text() string {
	if p == nil {
		return ""
	}
	text, _ := p["text"].(string)
	return text
}
