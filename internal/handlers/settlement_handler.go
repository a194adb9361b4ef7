package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"settlement-ingest-backend/internal/logging"
	"settlement-ingest-backend/internal/models"
	"settlement-ingest-backend/internal/schema"
	"settlement-ingest-backend/internal/services/ingestion"
	"settlement-ingest-backend/internal/services/normalization"
)

// SettlementService is what the HTTP layer needs from the ingestion service.
type SettlementService interface {
	Submit(ctx context.Context, bank schema.Bank, category schema.Category, files []ingestion.File) (*models.UploadSubmission, error)
	GetSubmission(ctx context.Context, id uuid.UUID) (*models.UploadSubmission, error)
	LatestResult() normalization.BatchResult
}

type SettlementHandler struct {
	service SettlementService
	logger  logrus.FieldLogger
}

func NewSettlementHandler(s SettlementService, logger logrus.FieldLogger) *SettlementHandler {
	return &SettlementHandler{service: s, logger: logging.OrDiscard(logger)}
}

// Upload accepts one or more settlement files and queues them for processing.
func (h *SettlementHandler) Upload(c *gin.Context) {
	bank, err := schema.ParseBank(c.PostForm("bank_name"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bank name"})
		return
	}

	category := schema.Category(c.PostForm("transaction_type"))
	if category != schema.CategoryBooking && category != schema.CategoryRefund {
		c.JSON(http.StatusBadRequest, gin.H{"error": "transaction_type must be booking or refund"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil || len(form.File["file"]) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one file is required"})
		return
	}

	files := make([]ingestion.File, 0, len(form.File["file"]))
	for _, fh := range form.File["file"] {
		f, err := readUpload(fh)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		files = append(files, f)
	}

	sub, err := h.service.Submit(c.Request.Context(), bank, category, files)
	if err != nil {
		if errors.Is(err, ingestion.ErrNoFiles) || errors.Is(err, ingestion.ErrEmptyFile) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.WithError(err).WithField(logging.FieldBank, bank).Error("could not queue upload")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not queue upload"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message":       "files uploaded and processing started",
		"submission_id": sub.ID.String(),
	})
}

// Results returns the most recently published counts, or zero counts.
func (h *SettlementHandler) Results(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.LatestResult())
}

func (h *SettlementHandler) GetSubmission(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid submission ID"})
		return
	}

	sub, err := h.service.GetSubmission(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "submission not found"})
			return
		}
		h.logger.WithError(err).WithField(logging.FieldSubmissionID, id).Error("could not load submission")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load submission"})
		return
	}
	c.JSON(http.StatusOK, sub)
}

func readUpload(fh *multipart.FileHeader) (ingestion.File, error) {
	format, err := ingestion.FormatFromFileName(fh.Filename)
	if err != nil {
		return ingestion.File{}, fmt.Errorf("invalid file type: %s", fh.Filename)
	}
	if fh.Size == 0 {
		return ingestion.File{}, fmt.Errorf("file is empty: %s", fh.Filename)
	}

	src, err := fh.Open()
	if err != nil {
		return ingestion.File{}, fmt.Errorf("could not open %s: %w", fh.Filename, err)
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return ingestion.File{}, fmt.Errorf("could not read %s: %w", fh.Filename, err)
	}
	return ingestion.File{Name: fh.Filename, Content: content, Format: format}, nil
}
