package e

import "fmt"

// Категории ошибок ядра. Конкретные ошибки ниже оборачивают свою категорию,
// поэтому errors.Is срабатывает и по категории, и по конкретной ошибке.
var (
	ErrInvalidInput          = fmt.Errorf("invalid input")
	ErrRateLimited           = fmt.Errorf("embedding provider rate limited")
	ErrProviderFailure       = fmt.Errorf("embedding provider failure")
	ErrCollectionUnavailable = fmt.Errorf("collection unavailable")
	ErrStorageWrite          = fmt.Errorf("storage write failed")
	ErrStorageRead           = fmt.Errorf("storage read failed")
	ErrContractViolation     = fmt.Errorf("external contract violation")
	ErrTimeout               = fmt.Errorf("operation timed out")
)

var (
	// 400 Bad Request
	ErrEmptyText        = fmt.Errorf("%w: text is empty", ErrInvalidInput)
	ErrEmptyQuery       = fmt.Errorf("%w: query is empty", ErrInvalidInput)
	ErrNoTexts          = fmt.Errorf("%w: no texts provided", ErrInvalidInput)
	ErrTopKOutOfRange   = fmt.Errorf("%w: top_k out of range", ErrInvalidInput)
	ErrMetadataMismatch = fmt.Errorf("%w: metadata list length does not match texts", ErrInvalidInput)
	ErrNoIDs            = fmt.Errorf("%w: no ids provided", ErrInvalidInput)
	ErrNotJSON          = fmt.Errorf("%w: request body is not valid json", ErrInvalidInput)

	// Нарушения контракта провайдера эмбеддингов
	ErrVectorSizeMismatch  = fmt.Errorf("%w: vector dimensionality mismatch", ErrContractViolation)
	ErrVectorCountMismatch = fmt.Errorf("%w: provider returned wrong number of vectors", ErrContractViolation)

	// Внутренние ошибки
	ErrTransactionNotFound  = fmt.Errorf("transaction not found")
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")
	ErrInternalServerError  = fmt.Errorf("internal server error")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
