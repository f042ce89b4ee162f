package domain

// QueryResult — один результат поиска по близости.
// Живёт только в рамках запроса, нигде не кэшируется.
type QueryResult struct {
	ID      string
	Score   float32 // косинусная близость, больше — ближе
	Payload Payload
	Text    string // text из payload, пустая строка при отсутствии
}

func NewQueryResult(id string, score float32, payload Payload) QueryResult {
	return QueryResult{
		ID:      id,
		Score:   score,
		Payload: payload,
		Text:    payload.Text(),
	}
}
