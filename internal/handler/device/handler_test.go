package device

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raksha-app/sos-api/internal/middleware"
	"github.com/raksha-app/sos-api/internal/model"
	apperrors "github.com/raksha-app/sos-api/pkg/errors"
)

type fakeService struct {
	registerErr error
	getErr      error
	devices     map[string]*model.Device
}

func (f *fakeService) Register(_ context.Context, req *model.RegisterDeviceRequest) (*model.Device, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	if existing, ok := f.devices[req.DeviceID]; ok {
		return existing, nil
	}
	device := &model.Device{
		ID:     req.DeviceID,
		Name:   req.Name,
		Phone:  req.Phone,
		Email:  req.Email,
		Active: true,
	}
	f.devices[req.DeviceID] = device
	return device, nil
}

func (f *fakeService) Get(_ context.Context, deviceID string) (*model.Device, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	device, ok := f.devices[deviceID]
	if !ok {
		return nil, apperrors.NotFound("device", nil)
	}
	return device, nil
}

func (f *fakeService) GetFresh(ctx context.Context, deviceID string) (*model.Device, error) {
	return f.Get(ctx, deviceID)
}

func (f *fakeService) Update(_ context.Context, deviceID string, _ *model.UpdateDeviceRequest) (*model.Device, error) {
	device, ok := f.devices[deviceID]
	if !ok {
		return nil, apperrors.NotFound("device", nil)
	}
	return device, nil
}

func setupRouter(svc *fakeService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	middleware.RegisterValidators()
	engine := gin.New()
	engine.Use(middleware.ErrorHandler())
	NewHandler(svc).RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestRegisterEndpoint(t *testing.T) {
	svc := &fakeService{devices: make(map[string]*model.Device)}
	engine := setupRouter(svc)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/devices", gin.H{
		"device_id": "device-1",
		"name":      "Priya's phone",
		"phone":     "+911234567890",
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Status string       `json:"status"`
		Data   model.Device `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "device-1", resp.Data.ID)
	assert.True(t, resp.Data.Active)
}

func TestRegisterRejectsBadPhone(t *testing.T) {
	svc := &fakeService{devices: make(map[string]*model.Device)}
	engine := setupRouter(svc)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/devices", gin.H{
		"device_id": "device-1",
		"name":      "Priya's phone",
		"phone":     "not-a-number",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.devices)
}

func TestGetEndpointNotFound(t *testing.T) {
	svc := &fakeService{devices: make(map[string]*model.Device)}
	engine := setupRouter(svc)

	w := doJSON(t, engine, http.MethodGet, "/api/v1/devices/nope", nil)

	require.Equal(t, http.StatusNotFound, w.Code)
	var resp middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestRegisterServiceUnavailable(t *testing.T) {
	svc := &fakeService{
		devices:     make(map[string]*model.Device),
		registerErr: apperrors.Unavailable("could not register device", nil),
	}
	engine := setupRouter(svc)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/devices", gin.H{
		"device_id": "device-1",
		"name":      "Priya's phone",
		"phone":     "+911234567890",
	})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
