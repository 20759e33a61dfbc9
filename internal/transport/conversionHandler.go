package transport

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ace0731/Image-Converter/internal/entity"
)

type convertRequest struct {
	Files     []string `json:"files" binding:"required"`
	OutputDir string   `json:"output_dir" binding:"required"`
	Format    string   `json:"format"`
	Quality   *int     `json:"quality"`
}

func (h *ConversionHandler) Convert(c *gin.Context) {
	var req convertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Format == "" {
		req.Format = h.defaults.Format
	}
	format, err := entity.ParseFormat(req.Format)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quality := h.defaults.Quality
	if req.Quality != nil {
		quality = *req.Quality
	}

	batch, err := h.service.Start(c.Request.Context(), entity.ConversionRequest{
		Files:     req.Files,
		OutputDir: req.OutputDir,
		Format:    format,
		Quality:   quality,
	})
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrInvalidFormat), errors.Is(err, entity.ErrInvalidQuality):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, entity.ErrOutputDir):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusAccepted, entity.ConvertResponse{
		ID:     batch.ID,
		Status: batch.Status,
	})
}

func (h *ConversionHandler) GetBatch(c *gin.Context) {
	id := c.Param("id")

	batch, err := h.service.GetBatch(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, entity.ErrBatchNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Batch not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, batch)
}
