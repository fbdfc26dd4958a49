package scanlog

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"boxtrack/pkg/models"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Ping() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockStore) CurrentLocation(boxID string) (string, bool, error) {
	args := m.Called(boxID)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockStore) History(boxID string, limit int) ([]models.MoveEntry, error) {
	args := m.Called(boxID, limit)
	return args.Get(0).([]models.MoveEntry), args.Error(1)
}

func (m *MockStore) AssignInitial(boxID, toLoc, operator, reason string) error {
	args := m.Called(boxID, toLoc, operator, reason)
	return args.Error(0)
}

func (m *MockStore) Move(boxID, toLoc, operator, reason string) error {
	args := m.Called(boxID, toLoc, operator, reason)
	return args.Error(0)
}

func (m *MockStore) DistinctLocations(limit int) ([]string, error) {
	args := m.Called(limit)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStore) FindByID(boxID string) (*models.Box, error) {
	args := m.Called(boxID)
	if box := args.Get(0); box != nil {
		return box.(*models.Box), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) Search(idSubstring, locationPrefix string, limit int) ([]models.Box, error) {
	args := m.Called(idSubstring, locationPrefix, limit)
	return args.Get(0).([]models.Box), args.Error(1)
}

func (m *MockStore) FindByPrefix(prefix string) ([]models.Box, error) {
	args := m.Called(prefix)
	return args.Get(0).([]models.Box), args.Error(1)
}

func (m *MockStore) BoxIDsByPrefix(prefix string) ([]string, error) {
	args := m.Called(prefix)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStore) RecordScan(scan models.ScanRequest) error {
	args := m.Called(scan)
	return args.Error(0)
}

func (m *MockStore) RecentScans(boxID string, limit int) ([]models.ScanEvent, error) {
	args := m.Called(boxID, limit)
	return args.Get(0).([]models.ScanEvent), args.Error(1)
}

func setupRouter(store *MockStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterRoutes(router, store)
	return router
}

func TestRecordScan(t *testing.T) {
	store := new(MockStore)
	store.On("RecordScan", models.ScanRequest{BoxID: "A-0001", Location: "GATE-1", Operator: "kim"}).Return(nil)
	router := setupRouter(store)

	body, _ := json.Marshal(gin.H{"boxid": "A-0001", "location": "GATE-1", "operator": "kim"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/scans", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"boxid":"A-0001","location":"GATE-1"}`, w.Body.String())
	store.AssertExpectations(t)
}

func TestRecordScanMissingLocation(t *testing.T) {
	store := new(MockStore)
	router := setupRouter(store)

	body, _ := json.Marshal(gin.H{"boxid": "A-0001"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/scans", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	store.AssertNotCalled(t, "RecordScan", mock.Anything)
}

func TestGetScans(t *testing.T) {
	store := new(MockStore)
	store.On("RecentScans", "A-0001", 10).Return([]models.ScanEvent{
		{ID: 2, BoxID: "A-0001", Location: "GATE-2", CreatedAt: "2024-01-01 10:05:00"},
		{ID: 1, BoxID: "A-0001", Location: "GATE-1", CreatedAt: "2024-01-01 10:00:00"},
	}, nil)
	router := setupRouter(store)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/scans?boxid=A-0001&limit=10", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Scans []models.ScanEvent `json:"scans"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Scans, 2)
	assert.Equal(t, "GATE-2", resp.Scans[0].Location)
	store.AssertExpectations(t)
}
