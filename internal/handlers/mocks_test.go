package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/office-duty-card/internal/auth"
	"github.com/ukydev/office-duty-card/internal/cache"
	"github.com/ukydev/office-duty-card/internal/cards"
	"github.com/ukydev/office-duty-card/internal/config"
	"github.com/ukydev/office-duty-card/internal/export"
	"github.com/ukydev/office-duty-card/internal/middleware"
	"github.com/ukydev/office-duty-card/internal/models"
	"github.com/ukydev/office-duty-card/internal/render"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockUserCollection is a mock implementation of db.UserCollection
type MockUserCollection struct {
	mock.Mock
}

func (m *MockUserCollection) InsertUser(ctx context.Context, user models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserCollection) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) UpdateLastLogin(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserCollection) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

// MockCardCollection is a mock implementation of db.CardCollection
type MockCardCollection struct {
	mock.Mock
}

func (m *MockCardCollection) InsertCard(ctx context.Context, card models.Card) (string, error) {
	args := m.Called(ctx, card)
	return args.String(0), args.Error(1)
}

func (m *MockCardCollection) FindCardByID(ctx context.Context, id string) (*models.Card, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Card), args.Error(1)
}

func (m *MockCardCollection) FindCardsByEmployeeField(ctx context.Context, field, value string) ([]models.Card, error) {
	args := m.Called(ctx, field, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Card), args.Error(1)
}

func (m *MockCardCollection) UpdateCard(ctx context.Context, id string, emp models.EmployeeRecord, veh models.VehicleRecord) error {
	args := m.Called(ctx, id, emp, veh)
	return args.Error(0)
}

func (m *MockCardCollection) DeleteCard(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCardCollection) ListCards(ctx context.Context) ([]models.Card, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Card), args.Error(1)
}

// MockUploader is a mock implementation of photostore.Uploader
type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, dataURL string) (string, error) {
	args := m.Called(ctx, dataURL)
	return args.String(0), args.Error(1)
}

// testEnv is a full router over mocked storage.
type testEnv struct {
	t        *testing.T
	router   *chi.Mux
	auth     *auth.Service
	users    *MockUserCollection
	store    *MockCardCollection
	uploader *MockUploader
	drafts   *cache.DraftStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := config.Config{
		JWTSecret:      "handler-secret",
		JWTExpiry:      time.Hour,
		LoginRateLimit: 100,
		LoginWindow:    time.Minute,
		CORSOrigins:    []string{"http://localhost:5173"},
		OrgName:        "Acme Power",
		OrgShortName:   "AP",
	}
	kv := cache.NewMemoryKVStore()

	env := &testEnv{
		t:        t,
		users:    new(MockUserCollection),
		store:    new(MockCardCollection),
		uploader: new(MockUploader),
		drafts:   cache.NewDraftStore(kv, time.Hour),
	}
	env.auth = auth.NewService(cfg, env.users, cache.NewRevocations(kv))

	raster, err := render.NewRasterizer()
	require.NoError(t, err)
	exporter := export.New(raster, render.BrandingFromConfig(cfg), render.Assets{},
		export.NewPhotoLoader(time.Second, 1<<20), export.Options{AssetTimeout: time.Second, Scale: 2})
	service := cards.NewService(env.store, env.uploader, cache.NewListCache(kv, time.Minute), nil)

	env.router = NewRouter(cfg, Handlers{
		Auth:   NewAuthHandler(env.auth),
		Cards:  NewCardHandler(service, exporter, env.drafts),
		Drafts: NewDraftHandler(env.drafts),
		Health: Health(nil),
	}, middleware.NewAuthMiddleware(env.auth))
	return env
}

// token issues a session for a fresh user with role.
func (e *testEnv) token(role models.Role) (string, *models.Claims) {
	e.t.Helper()
	user := &models.User{ID: primitive.NewObjectID(), Email: string(role) + "@example.com", Role: role}
	token, _, err := e.auth.GenerateToken(user)
	require.NoError(e.t, err)
	claims, err := e.auth.ValidateToken(token)
	require.NoError(e.t, err)
	return token, claims
}

func (e *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// pngDataURL is a small decodable inline photo.
func pngDataURL(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 10, 12))
	for x := 0; x < 10; x++ {
		for y := 0; y < 12; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 80, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func validRequest(photo string) models.CardRequest {
	return models.CardRequest{
		Employee: models.EmployeeRecord{
			SerialNo:        "S1",
			EmployeeCode:    "E-100",
			EmployeeName:    "Ayesha Khan",
			Designation:     "Driver",
			CNIC:            "4210112345671",
			LicenceNo:       "LIC-9",
			LicenceCategory: "LTV",
			LicenceValidity: "2027-06",
			DateOfIssue:     "2024-12",
			Photo:           photo,
		},
		Vehicle: models.VehicleRecord{
			VehicleNo:    "KHI-123",
			VehicleType:  "Pickup",
			ShiftType:    "Morning",
			Region:       "South",
			DepartureBC:  "BC-7",
			InspectionID: "INS-1",
			ValidFrom:    "2025-01",
		},
	}
}

func storedCard(serial string) models.Card {
	req := validRequest("")
	emp := req.Employee.Normalize()
	emp.SerialNo = serial
	return models.Card{
		ID:        primitive.NewObjectID(),
		Employee:  emp,
		Vehicle:   req.Vehicle.Normalize(),
		CreatedAt: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
	}
}
