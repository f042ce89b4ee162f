package http

import (
	_ "github.com/lumina-ai/rag-backend/docs" // Импорт сгенерированных файлов
	"github.com/lumina-ai/rag-backend/internal/usecase"
	"github.com/lumina-ai/rag-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(embUC usecase.EmbeddingUC) {
	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"), // ссылка на JSON
	))

	r.router.Route("/api/v1", func(v1 chi.Router) {
		embHandler := NewEmbeddingHandler(embUC, r.logger)
		registerEmbeddingRoutes(v1, embHandler)
	})
}

func registerEmbeddingRoutes(router chi.Router, embHandler *EmbeddingHandler) {
	router.Route("/embeddings", func(emb chi.Router) {
		emb.Post("/text", embHandler.saveText)
		emb.Post("/texts", embHandler.saveTexts)
		emb.Post("/search", embHandler.search)
		emb.Post("/records/query", embHandler.getRecords)
		emb.Delete("/records", embHandler.deleteRecords)
		emb.Get("/count", embHandler.count)
		emb.Get("/health", embHandler.health)
	})
}
