package domain

// HealthStatus — трёхуровневый статус доступности хранилища.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"   // хранилище доступно, коллекция существует
	StatusDegraded  HealthStatus = "degraded"  // хранилище доступно, но коллекция отсутствует либо недоступны вторичные сервисы
	StatusUnhealthy HealthStatus = "unhealthy" // векторное хранилище недоступно
)

// EmbedPurpose выбирает семантический режим провайдера эмбеддингов.
// Документы и запросы кодируются одной моделью по-разному (асимметричные
// эмбеддинги); перепутанный режим молча ухудшает качество поиска,
// поэтому режим — часть контракта, а не деталь реализации.
type EmbedPurpose string

const (
	PurposeDocument EmbedPurpose = "search_document"
	PurposeQuery    EmbedPurpose = "search_query"
)
