package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/sisl/eshop/internal/application/catalog"
	tradeapp "github.com/sisl/eshop/internal/application/trade"
	"github.com/sisl/eshop/internal/domain/integration"
	"github.com/sisl/eshop/internal/domain/trade"
	"github.com/sisl/eshop/internal/infrastructure/auth"
	"github.com/sisl/eshop/internal/infrastructure/cache"
	"github.com/sisl/eshop/internal/infrastructure/config"
	"github.com/sisl/eshop/internal/infrastructure/persistence"
	"github.com/sisl/eshop/internal/infrastructure/persistence/models"
	"github.com/sisl/eshop/internal/infrastructure/scheduler"
	"github.com/sisl/eshop/internal/infrastructure/storage"
	"github.com/sisl/eshop/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// recordingEnqueuer records queued tasks instead of running them
type recordingEnqueuer struct {
	mu    sync.Mutex
	tasks []scheduler.Task
	err   error
}

func (e *recordingEnqueuer) Enqueue(kind scheduler.TaskKind, quotationID uuid.UUID) (*scheduler.Task, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return nil, e.err
	}
	task := scheduler.Task{ID: uuid.New(), Kind: kind, QuotationID: quotationID, EnqueuedAt: time.Now()}
	e.tasks = append(e.tasks, task)
	return &task, nil
}

func (e *recordingEnqueuer) kinds() []scheduler.TaskKind {
	e.mu.Lock()
	defer e.mu.Unlock()
	kinds := make([]scheduler.TaskKind, len(e.tasks))
	for i, t := range e.tasks {
		kinds[i] = t.Kind
	}
	return kinds
}

// stubAccounting answers every sync with fixed keys, or with err when set
type stubAccounting struct {
	err   error
	calls int
}

func (s *stubAccounting) Sync(ctx context.Context, q *trade.Quotation, record integration.CustomerKeyRecorder) (*integration.SyncResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if record != nil && q.AccountingCustomerKey == "" {
		if err := record(ctx, "C-100"); err != nil {
			return nil, err
		}
	}
	return &integration.SyncResult{CustomerKey: "C-100", SalesOrderKey: "SO-200"}, nil
}

// stepClock advances one second per reading so order numbers stay unique
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

// testServer wires the real services over SQLite and local storage
type testServer struct {
	t          *testing.T
	engine     *gin.Engine
	db         *gorm.DB
	objects    *storage.LocalStorage
	jwt        *auth.JWTService
	tasks      *recordingEnqueuer
	accounting *stubAccounting
	quotations *tradeapp.QuotationService
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), persistence.GormConfig(logger.Default.LogMode(logger.Silent)))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.CategoryModel{},
		&models.BrandModel{},
		&models.BannerModel{},
		&models.ProductModel{},
		&models.ProductRelationModel{},
		&models.QuotationModel{},
		&models.QuotationLineModel{},
	))
	return db
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := setupTestDB(t)
	objects, err := storage.NewLocalStorage(t.TempDir(), "/media")
	require.NoError(t, err)

	log := zap.NewNop()
	categoryRepo := persistence.NewGormCategoryRepository(db)
	brandRepo := persistence.NewGormBrandRepository(db)
	bannerRepo := persistence.NewGormBannerRepository(db)
	productRepo := persistence.NewGormProductRepository(db)
	quotationRepo := persistence.NewGormQuotationRepository(db)

	tasks := &recordingEnqueuer{}
	accounting := &stubAccounting{}

	categoryService := catalogapp.NewCategoryService(categoryRepo, productRepo)
	brandService := catalogapp.NewBrandService(brandRepo, productRepo, objects, log)
	bannerService := catalogapp.NewBannerService(bannerRepo, objects, log)
	productService := catalogapp.NewProductService(productRepo, categoryRepo, brandRepo, quotationRepo, objects, log)
	storefrontService := catalogapp.NewStorefrontService(categoryRepo, brandRepo, bannerRepo, productRepo, config.StorefrontConfig{})
	clock := &stepClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	quotationService := tradeapp.NewQuotationService(quotationRepo, productRepo, objects, log,
		tradeapp.WithClock(clock.Now))
	confirmationService := tradeapp.NewConfirmationService(quotationRepo, accounting, cache.NewMemoryLocker(time.Minute), tasks, log)

	jwtService := auth.NewJWTService(config.JWTConfig{Secret: "handler-test-secret", Issuer: "eshop", StaffClaim: "is_staff"})

	categories := NewCategoryHandler(categoryService)
	brands := NewBrandHandler(brandService, 1<<20)
	banners := NewBannerHandler(bannerService, 1<<20)
	products := NewProductHandler(productService, 1<<20)
	storefront := NewStorefrontHandler(storefrontService, categoryService)
	quotations := NewQuotationHandler(quotationService)
	adminQuotations := NewAdminQuotationHandler(quotationService, confirmationService)

	engine := gin.New()
	engine.Use(middleware.RequestID())

	api := engine.Group("/api/v1")
	api.GET("/storefront/home", storefront.Home)
	api.GET("/catalog/products", products.List)
	api.GET("/catalog/products/sku/:sku", storefront.ProductBySKU)
	api.GET("/catalog/categories", storefront.Categories)
	api.GET("/catalog/categories/:name/products", storefront.ProductsByCategory)
	api.GET("/catalog/brands/:id", storefront.BrandDetail)
	api.GET("/catalog/search", storefront.Search)

	public := api.Group("/quotations", middleware.OptionalJWTAuthMiddleware(jwtService))
	public.POST("", quotations.Submit)
	public.GET("/:id", quotations.GetByID)
	public.GET("/:id/document", quotations.Document)

	admin := api.Group("/admin", middleware.StaffAuth(jwtService, log))
	admin.POST("/catalog/categories", categories.Create)
	admin.GET("/catalog/categories", categories.List)
	admin.GET("/catalog/categories/:id", categories.GetByID)
	admin.PUT("/catalog/categories/:id", categories.Update)
	admin.DELETE("/catalog/categories/:id", categories.Delete)
	admin.POST("/catalog/brands", brands.Create)
	admin.GET("/catalog/brands", brands.List)
	admin.POST("/catalog/brands/:id/logo", brands.UploadLogo)
	admin.DELETE("/catalog/brands/:id", brands.Delete)
	admin.POST("/catalog/banners", banners.Create)
	admin.POST("/catalog/banners/:id/image", banners.UploadImage)
	admin.POST("/catalog/products", products.Create)
	admin.GET("/catalog/products/:id", products.GetByID)
	admin.PUT("/catalog/products/:id/relations", products.SetRelations)
	admin.POST("/catalog/products/:id/image", products.UploadImage)
	admin.POST("/catalog/products/:id/clone", products.Clone)
	admin.DELETE("/catalog/products/:id", products.Delete)
	admin.GET("/quotations", adminQuotations.List)
	admin.POST("/quotations/bulk-confirm", adminQuotations.BulkConfirm)
	admin.GET("/quotations/:id", adminQuotations.GetByID)
	admin.PATCH("/quotations/:id", adminQuotations.UpdateHeader)
	admin.POST("/quotations/:id/status", adminQuotations.ChangeStatus)
	admin.POST("/quotations/:id/confirm", adminQuotations.Confirm)
	admin.POST("/quotations/:id/confirm-async", adminQuotations.ConfirmAsync)
	admin.POST("/quotations/:id/compute-total", adminQuotations.ComputeTotal)
	admin.POST("/quotations/:id/lines", adminQuotations.AddLine)
	admin.PUT("/quotations/:id/lines/:line_id", adminQuotations.UpdateLine)
	admin.DELETE("/quotations/:id/lines/:line_id", adminQuotations.DeleteLine)

	return &testServer{
		t:          t,
		engine:     engine,
		db:         db,
		objects:    objects,
		jwt:        jwtService,
		tasks:      tasks,
		accounting: accounting,
		quotations: quotationService,
	}
}

func (s *testServer) token(subject string, staff bool) string {
	s.t.Helper()
	token, err := s.jwt.IssueToken(subject, staff, time.Hour)
	require.NoError(s.t, err)
	return token
}

// do sends a request. A non-empty token is sent as a bearer token.
func (s *testServer) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

// admin sends a request with a staff token
func (s *testServer) admin(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	return s.do(method, path, body, s.token("staff-1", true))
}

// upload posts data as the "image" field of a multipart form with a staff token
func (s *testServer) upload(path, filename string, data []byte) *httptest.ResponseRecorder {
	s.t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", filename)
	require.NoError(s.t, err)
	_, err = part.Write(data)
	require.NoError(s.t, err)
	require.NoError(s.t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.token("staff-1", true))

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

// envelope is the decoded response body
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id"`
	} `json:"error"`
	Meta *struct {
		Total    int64 `json:"total"`
		Page     int   `json:"page"`
		PageSize int   `json:"page_size"`
	} `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

// decodeData decodes the data member into out and returns the envelope
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) envelope {
	t.Helper()
	env := decode(t, w)
	require.True(t, env.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out))
	return env
}

func requireErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	env := decode(t, w)
	require.False(t, env.Success)
	require.NotNil(t, env.Error)
	require.Equal(t, code, env.Error.Code)
}

// catalogFixture is a category, a brand and a product created through the admin API
type catalogFixture struct {
	categoryID uuid.UUID
	brandID    uuid.UUID
	productID  uuid.UUID
}

func (s *testServer) seedCatalog() catalogFixture {
	s.t.Helper()

	var category catalogapp.CategoryResponse
	w := s.admin(http.MethodPost, "/api/v1/admin/catalog/categories", map[string]any{"name": "VFD"})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	decodeData(s.t, w, &category)

	var brand catalogapp.BrandResponse
	w = s.admin(http.MethodPost, "/api/v1/admin/catalog/brands", map[string]any{"name": "Yaskawa"})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	decodeData(s.t, w, &brand)

	product := s.createProduct(category.ID, brand.ID, "GA500 2.2kW", "CIPR-GA50C4004ABBA")
	return catalogFixture{categoryID: category.ID, brandID: brand.ID, productID: product.ID}
}

func (s *testServer) createProduct(categoryID, brandID uuid.UUID, name, sku string) catalogapp.ProductResponse {
	s.t.Helper()

	var product catalogapp.ProductResponse
	w := s.admin(http.MethodPost, "/api/v1/admin/catalog/products", map[string]any{
		"category_id":       categoryID,
		"brand_id":          brandID,
		"name":              name,
		"sku":               sku,
		"original_price":    "100.00",
		"country_of_origin": "Japan",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	decodeData(s.t, w, &product)
	return product
}

func (s *testServer) submitQuotation(productID uuid.UUID, token string) tradeapp.QuotationResponse {
	s.t.Helper()

	var quotation tradeapp.QuotationResponse
	w := s.do(http.MethodPost, "/api/v1/quotations", map[string]any{
		"customer_name": "Acme Automation",
		"phone_no":      "+49 30 1234567",
		"email":         "buyer@acme.example",
		"lines": []map[string]any{
			{"product_id": productID, "quantity": 2},
		},
	}, token)
	require.Equal(s.t, http.StatusAccepted, w.Code, w.Body.String())
	decodeData(s.t, w, &quotation)
	return quotation
}

// Minimal image headers that http.DetectContentType recognizes
var (
	pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
	gifBytes = append([]byte("GIF89a"), make([]byte, 32)...)
)

func jsonBody(s string) io.Reader {
	return bytes.NewBufferString(s)
}
