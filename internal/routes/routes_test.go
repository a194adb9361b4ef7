package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	handler "settlement-ingest-backend/internal/handlers"
	"settlement-ingest-backend/internal/models"
	"settlement-ingest-backend/internal/schema"
	"settlement-ingest-backend/internal/services/ingestion"
	"settlement-ingest-backend/internal/services/normalization"
)

type stubService struct{}

func (stubService) Submit(context.Context, schema.Bank, schema.Category, []ingestion.File) (*models.UploadSubmission, error) {
	return &models.UploadSubmission{ID: uuid.New()}, nil
}

func (stubService) GetSubmission(context.Context, uuid.UUID) (*models.UploadSubmission, error) {
	return nil, gorm.ErrRecordNotFound
}

func (stubService) LatestResult() normalization.BatchResult { return normalization.BatchResult{} }

func TestRegisterRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, handler.NewSettlementHandler(stubService{}, nil))

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/health", http.StatusOK},
		{http.MethodGet, "/api/settlements/results", http.StatusOK},
		{http.MethodGet, "/api/settlements/submissions/" + uuid.NewString(), http.StatusNotFound},
		{http.MethodPost, "/api/settlements/upload", http.StatusBadRequest},
		{http.MethodGet, "/api/unknown", http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		assert.Equal(t, tt.want, rec.Code, "%s %s", tt.method, tt.path)
	}
}
