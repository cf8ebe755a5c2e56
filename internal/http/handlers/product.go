package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/dermatch/dermatch-go/internal/http/response"
	"github.com/dermatch/dermatch-go/internal/pkg/logger"
	"github.com/dermatch/dermatch-go/internal/services"
)

type ProductHandler struct {
	log     *logger.Logger
	catalog services.CatalogService
}

func NewProductHandler(log *logger.Logger, catalog services.CatalogService) *ProductHandler {
	return &ProductHandler{
		log:     log.With("handler", "ProductHandler"),
		catalog: catalog,
	}
}

// GET /quiz/products/:id
func (h *ProductHandler) GetDetail(c *gin.Context) {
	view, err := h.catalog.GetProductDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, view)
}
