package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"settlement-ingest-backend/internal/models"
	"settlement-ingest-backend/internal/schema"
	"settlement-ingest-backend/internal/services/ingestion"
	"settlement-ingest-backend/internal/services/normalization"
)

type fakeService struct {
	submitted []ingestion.File
	bank      schema.Bank
	category  schema.Category
	submitErr error
	subs      map[uuid.UUID]*models.UploadSubmission
	getErr    error
	latest    normalization.BatchResult
}

func (f *fakeService) Submit(_ context.Context, bank schema.Bank, category schema.Category, files []ingestion.File) (*models.UploadSubmission, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.bank, f.category, f.submitted = bank, category, files
	return &models.UploadSubmission{ID: uuid.New(), Status: models.SubmissionQueued}, nil
}

func (f *fakeService) GetSubmission(_ context.Context, id uuid.UUID) (*models.UploadSubmission, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	s, ok := f.subs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (f *fakeService) LatestResult() normalization.BatchResult { return f.latest }

func newRouter(svc SettlementService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewSettlementHandler(svc, nil)
	r.POST("/upload", h.Upload)
	r.GET("/results", h.Results)
	r.GET("/submissions/:id", h.GetSubmission)
	return r
}

type upload struct {
	name    string
	content string
}

func multipartRequest(t *testing.T, fields map[string]string, files ...upload) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		part, err := w.CreateFormFile("file", f.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUpload_Accepted(t *testing.T) {
	svc := &fakeService{}
	r := newRouter(svc)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, multipartRequest(t,
		map[string]string{"bank_name": "Karur_Vysya", "transaction_type": "booking"},
		upload{"kvb.csv", "A\n1\n"}, upload{"kvb.xlsx", "zip-bytes"}))

	require.Equal(t, http.StatusAccepted, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["submission_id"])
	assert.NotEmpty(t, resp["message"])

	assert.Equal(t, schema.BankKarurVysya, svc.bank)
	assert.Equal(t, schema.CategoryBooking, svc.category)
	require.Len(t, svc.submitted, 2)
	assert.Equal(t, ingestion.FormatCSV, svc.submitted[0].Format)
	assert.Equal(t, ingestion.FormatExcel, svc.submitted[1].Format)
	assert.Equal(t, "A\n1\n", string(svc.submitted[0].Content))
}

func TestUpload_BadRequests(t *testing.T) {
	valid := map[string]string{"bank_name": "icici", "transaction_type": "refund"}
	tests := []struct {
		name   string
		fields map[string]string
		files  []upload
	}{
		{name: "unknown bank", fields: map[string]string{"bank_name": "sbi", "transaction_type": "refund"}, files: []upload{{"a.csv", "x"}}},
		{name: "category both", fields: map[string]string{"bank_name": "icici", "transaction_type": "both"}, files: []upload{{"a.csv", "x"}}},
		{name: "no files", fields: valid},
		{name: "empty file", fields: valid, files: []upload{{"a.csv", ""}}},
		{name: "bad extension", fields: valid, files: []upload{{"a.csv", "x"}, {"a.pdf", "x"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}
			rec := httptest.NewRecorder()
			newRouter(svc).ServeHTTP(rec, multipartRequest(t, tt.fields, tt.files...))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, svc.submitted)
		})
	}
}

func TestUpload_ServiceFailure(t *testing.T) {
	svc := &fakeService{submitErr: errors.New("queue closed")}
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, multipartRequest(t,
		map[string]string{"bank_name": "icici", "transaction_type": "booking"}, upload{"a.csv", "x"}))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestResults(t *testing.T) {
	svc := &fakeService{}
	r := newRouter(svc)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/results", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total_successful":0,"total_failed":0}`, rec.Body.String())

	svc.latest = normalization.BatchResult{Successful: 2, Failed: 1}
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/results", nil))
	assert.JSONEq(t, `{"total_successful":2,"total_failed":1}`, rec.Body.String())
}

func TestGetSubmission(t *testing.T) {
	id := uuid.New()
	svc := &fakeService{subs: map[uuid.UUID]*models.UploadSubmission{
		id: {ID: id, BankName: "icici", Status: models.SubmissionCompleted, SuccessfulCount: 4},
	}}
	r := newRouter(svc)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/submissions/"+id.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got models.UploadSubmission
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, id, got.ID)
	assert.Equal(t, 4, got.SuccessfulCount)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/submissions/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/submissions/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.getErr = errors.New("db down")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/submissions/"+id.String(), nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
