package boxes

import (
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

func TestGetLocations(t *testing.T) {
	store := new(MockStore)
	store.On("DistinctLocations", 0).Return([]string{"DOCK-1", "RECV"}, nil)
	router := setupRouter(store)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/locations", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"locations":["DOCK-1","RECV"]}`, w.Body.String())
	store.AssertExpectations(t)
}

func TestGetBoxByID(t *testing.T) {
	loc := "DOCK-1"
	store := new(MockStore)
	store.On("FindByID", "A-0001").Return(&models.Box{BoxID: "A-0001", Location: &loc, Status: "OK"}, nil)
	router := setupRouter(store)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/box/by-id?boxid=A-0001", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var box models.Box
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &box))
	assert.Equal(t, "A-0001", box.BoxID)
	assert.Equal(t, "DOCK-1", *box.Location)
	store.AssertExpectations(t)
}

func TestGetBoxByIDNotFound(t *testing.T) {
	store := new(MockStore)
	store.On("FindByID", "A-0404").Return(nil, nil)
	router := setupRouter(store)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/box/by-id?boxid=A-0404", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	store.AssertExpectations(t)
}

func TestGetBoxByIDMissingParam(t *testing.T) {
	store := new(MockStore)
	router := setupRouter(store)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/box/by-id", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	store.AssertNotCalled(t, "FindByID", mock.Anything)
}

func TestSearchBoxes(t *testing.T) {
	store := new(MockStore)
	store.On("Search", "A-", "DOCK", 5).Return([]models.Box{{BoxID: "A-0001", Status: "OK"}}, nil)
	router := setupRouter(store)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/boxes/search?boxid=A-&location=DOCK&limit=5", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Rows []models.Box `json:"rows"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Rows, 1)
	store.AssertExpectations(t)
}

func TestGetBoxesByScan(t *testing.T) {
	store := new(MockStore)
	store.On("FindByPrefix", "ITEM-20240101-01-").Return([]models.Box{
		{BoxID: "ITEM-20240101-01-0007", Status: "OK"},
		{BoxID: "ITEM-20240101-01-0008", Status: "OK"},
	}, nil)
	router := setupRouter(store)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/boxes/by-scan?boxid=ITEM-20240101-01-0007", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Prefix string              `json:"prefix"`
		Count  int                 `json:"count"`
		Boxes  []models.ScannedBox `json:"boxes"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ITEM-20240101-01-", resp.Prefix)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "0007", resp.Boxes[0].Serial)
	store.AssertExpectations(t)
}

func TestGetBoxesByScanNoMatches(t *testing.T) {
	store := new(MockStore)
	store.On("FindByPrefix", "Z-").Return([]models.Box{}, nil)
	router := setupRouter(store)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/boxes/by-scan?boxid=Z-0001", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	store.AssertExpectations(t)
}
