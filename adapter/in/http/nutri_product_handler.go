package http

import (
	"github.com/gofiber/fiber/v2"

	"nutri_server/core/port/out"
	"nutri_server/internal/jobs"
	"nutri_server/pkg/response"
)

// ProductHandler exposes the catalog read surface and embedding maintenance.
type ProductHandler struct {
	catalog out.CatalogRepository
	queue   *jobs.Queue
}

func NewProductHandler(catalog out.CatalogRepository, queue *jobs.Queue) *ProductHandler {
	return &ProductHandler{catalog: catalog, queue: queue}
}

// Register registers product routes.
func (h *ProductHandler) Register(router fiber.Router) {
	products := router.Group("/products")
	products.Get("/", h.List)
	products.Post("/embeddings/regenerate", h.RegenerateEmbeddings)
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	products, err := h.catalog.ListActive(c.UserContext())
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, products)
}

// RegenerateEmbeddings schedules a full catalog re-embedding pass and
// returns immediately.
func (h *ProductHandler) RegenerateEmbeddings(c *fiber.Ctx) error {
	h.queue.EnqueueEmbeddingRegeneration()
	return response.OKWithMessage(c, "embedding regeneration scheduled", nil)
}
