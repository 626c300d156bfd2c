package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-graph/backend/internal/auth"
	"recipe-graph/backend/internal/constants"
	"recipe-graph/backend/internal/vision"
)

type importRequest struct {
	Count int `json:"count" form:"count" binding:"required,min=1,max=100"`
}

// ImportRecipes pulls count random recipes from the catalog
func (h *Handler) ImportRecipes(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.deps.Importer.Import(c.Request.Context(), req.Count)
	if err != nil {
		h.respondError(c, "import_recipes", err)
		return
	}

	h.logger.Info("Recipes imported",
		zap.String("requested_by", auth.CurrentEmail(c)),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
	)
	c.JSON(http.StatusOK, result)
}

// ClassifyImage returns the top predictions for the multipart "image" file
func (h *Handler) ClassifyImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, constants.MaxImageUploadBytes)
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read image file"})
		return
	}
	defer file.Close()

	img, err := vision.Decode(file)
	if err != nil {
		h.respondError(c, "classify_image", err)
		return
	}

	predictions, err := h.deps.Classifier.Classify(c.Request.Context(), img)
	if err != nil {
		h.respondError(c, "classify_image", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"predictions": predictions})
}
