package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/momocakes/commerce-api/internal/core/domain"
	"github.com/momocakes/commerce-api/internal/core/ports"
)

// stubProductService returns canned results and records the last call.
type stubProductService struct {
	lastCreateInput ports.CreateProductInput
	lastUpdateID    string
	lastUpdate      ports.ProductUpdate
	lastQuantity    int64
	lastDelta       int64
	lastInclude     bool

	product  *domain.Product
	products []domain.Product
	stats    *domain.ProductStats
	err      error

	// getErr overrides err for Get, so upload tests can pass the existence
	// check while failing the later update.
	getErr error
}

func (s *stubProductService) Create(_ context.Context, input ports.CreateProductInput) (*domain.Product, error) {
	s.lastCreateInput = input
	return s.product, s.err
}

func (s *stubProductService) ListActive(_ context.Context) ([]domain.Product, error) {
	return s.products, s.err
}

func (s *stubProductService) ListAll(_ context.Context, includeInactive bool) ([]domain.Product, error) {
	s.lastInclude = includeInactive
	return s.products, s.err
}

func (s *stubProductService) Get(_ context.Context, _ string) (*domain.Product, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.product, nil
}

func (s *stubProductService) Update(_ context.Context, id string, update ports.ProductUpdate) (*domain.Product, error) {
	s.lastUpdateID = id
	s.lastUpdate = update
	return s.product, s.err
}

func (s *stubProductService) SetQuantity(_ context.Context, _ string, quantity int64) (*domain.Product, error) {
	s.lastQuantity = quantity
	return s.product, s.err
}

func (s *stubProductService) Increment(_ context.Context, _ string, amount int64) (*domain.Product, error) {
	s.lastDelta = amount
	return s.product, s.err
}

func (s *stubProductService) Decrement(_ context.Context, _ string, amount int64) (*domain.Product, error) {
	s.lastDelta = -amount
	return s.product, s.err
}

func (s *stubProductService) ToggleActive(_ context.Context, _ string) (*domain.Product, error) {
	return s.product, s.err
}

func (s *stubProductService) Remove(_ context.Context, _ string) error {
	return s.err
}

func (s *stubProductService) Stats(_ context.Context) (*domain.ProductStats, error) {
	return s.stats, s.err
}

// stubUploader records uploads and deletions.
type stubUploader struct {
	uploadErr   error
	uploaded    [][]byte
	deletedKeys []string
}

func (u *stubUploader) Upload(_ context.Context, data []byte, _ string, _ string) (*ports.UploadResult, error) {
	if u.uploadErr != nil {
		return nil, u.uploadErr
	}
	u.uploaded = append(u.uploaded, data)
	return &ports.UploadResult{URL: "https://cdn.example.com/p1.jpg", Key: "products/p1.jpg"}, nil
}

func (u *stubUploader) Delete(_ context.Context, key string) error {
	u.deletedKeys = append(u.deletedKeys, key)
	return nil
}

func sampleProduct() *domain.Product {
	return &domain.Product{ID: "p1", Name: "Cake", Price: 12.5, QuantityAvailable: 10, IsActive: true}
}

func newProductHandler(svc ports.ProductService, uploader ports.ImageUploader) *ProductHandler {
	return NewProductHandler(svc, uploader, "products", zerolog.Nop())
}

func newParamContext(method, target, body, id string) (echo.Context, *httptest.ResponseRecorder) {
	c, rec := newJSONContext(method, target, body)
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c, rec
}

// --- CRUD ---

func TestProductHandler_Create(t *testing.T) {
	svc := &stubProductService{product: sampleProduct()}
	h := newProductHandler(svc, &stubUploader{})

	c, rec := newJSONContext(http.MethodPost, "/products", `{"name":"Cake","price":12.5,"quantity_available":10}`)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if svc.lastCreateInput.Name != "Cake" || svc.lastCreateInput.QuantityAvailable != 10 {
		t.Fatalf("unexpected input forwarded: %+v", svc.lastCreateInput)
	}
}

func TestProductHandler_Create_ZeroPriceAllowed(t *testing.T) {
	svc := &stubProductService{product: sampleProduct()}
	h := newProductHandler(svc, &stubUploader{})

	c, rec := newJSONContext(http.MethodPost, "/products", `{"name":"Freebie","price":0}`)
	if err := h.Create(c); err != nil {
		t.Fatalf("zero price must validate, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestProductHandler_Create_Invalid(t *testing.T) {
	h := newProductHandler(&stubProductService{}, &stubUploader{})

	cases := map[string]string{
		"missing name":      `{"price":1}`,
		"negative price":    `{"name":"Cake","price":-1}`,
		"negative quantity": `{"name":"Cake","quantity_available":-2}`,
		"bad image url":     `{"name":"Cake","image":"not a url"}`,
	}
	for name, body := range cases {
		c, _ := newJSONContext(http.MethodPost, "/products", body)
		err := h.Create(c)
		var httpErr *echo.HTTPError
		if !errors.As(err, &httpErr) || httpErr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 HTTPError, got %v", name, err)
		}
	}
}

func TestProductHandler_Create_DuplicateName(t *testing.T) {
	h := newProductHandler(&stubProductService{err: domain.ErrDuplicateProductName}, &stubUploader{})

	c, _ := newJSONContext(http.MethodPost, "/products", `{"name":"Cake"}`)
	if err := h.Create(c); !errors.Is(err, domain.ErrDuplicateProductName) {
		t.Fatalf("expected ErrDuplicateProductName passthrough, got %v", err)
	}
}

func TestProductHandler_Get_NotFound(t *testing.T) {
	h := newProductHandler(&stubProductService{getErr: domain.ErrProductNotFound}, &stubUploader{})

	c, _ := newParamContext(http.MethodGet, "/products/missing", "", "missing")
	if err := h.Get(c); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound passthrough, got %v", err)
	}
}

func TestProductHandler_ListAll_IncludeInactiveFlag(t *testing.T) {
	svc := &stubProductService{products: []domain.Product{*sampleProduct()}}
	h := newProductHandler(svc, &stubUploader{})

	c, _ := newJSONContext(http.MethodGet, "/products/admin/all", "")
	if err := h.ListAll(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !svc.lastInclude {
		t.Fatalf("expected include_inactive to default to true")
	}

	c, _ = newJSONContext(http.MethodGet, "/products/admin/all?include_inactive=false", "")
	if err := h.ListAll(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if svc.lastInclude {
		t.Fatalf("expected include_inactive=false to be honored")
	}
}

func TestProductHandler_Update_Partial(t *testing.T) {
	svc := &stubProductService{product: sampleProduct()}
	h := newProductHandler(svc, &stubUploader{})

	c, rec := newParamContext(http.MethodPatch, "/products/p1", `{"price":3.25}`, "p1")
	if err := h.Update(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.lastUpdateID != "p1" {
		t.Fatalf("unexpected id forwarded: %s", svc.lastUpdateID)
	}
	if svc.lastUpdate.Price == nil || *svc.lastUpdate.Price != 3.25 {
		t.Fatalf("price not forwarded: %+v", svc.lastUpdate)
	}
	if svc.lastUpdate.Name != nil || svc.lastUpdate.Description != nil {
		t.Fatalf("absent fields must stay nil: %+v", svc.lastUpdate)
	}
}

// --- Quantity operations ---

func TestProductHandler_SetQuantity(t *testing.T) {
	svc := &stubProductService{product: sampleProduct()}
	h := newProductHandler(svc, &stubUploader{})

	c, _ := newParamContext(http.MethodPut, "/products/p1/quantity", `{"quantity_available":0}`, "p1")
	if err := h.SetQuantity(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if svc.lastQuantity != 0 {
		t.Fatalf("expected quantity 0 forwarded, got %d", svc.lastQuantity)
	}
}

func TestProductHandler_SetQuantity_Negative(t *testing.T) {
	h := newProductHandler(&stubProductService{}, &stubUploader{})

	c, _ := newParamContext(http.MethodPut, "/products/p1/quantity", `{"quantity_available":-1}`, "p1")
	err := h.SetQuantity(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestProductHandler_Increment(t *testing.T) {
	svc := &stubProductService{product: sampleProduct()}
	h := newProductHandler(svc, &stubUploader{})

	c, _ := newParamContext(http.MethodPatch, "/products/p1/increment-quantity", `{"quantity":4}`, "p1")
	if err := h.Increment(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if svc.lastDelta != 4 {
		t.Fatalf("expected +4 forwarded, got %d", svc.lastDelta)
	}
}

func TestProductHandler_Decrement_Insufficient(t *testing.T) {
	h := newProductHandler(&stubProductService{err: domain.ErrInsufficientQuantity}, &stubUploader{})

	c, _ := newParamContext(http.MethodPatch, "/products/p1/decrement-quantity", `{"quantity":99}`, "p1")
	if err := h.Decrement(c); !errors.Is(err, domain.ErrInsufficientQuantity) {
		t.Fatalf("expected ErrInsufficientQuantity passthrough, got %v", err)
	}
}

func TestProductHandler_Delta_RejectsNonPositive(t *testing.T) {
	h := newProductHandler(&stubProductService{}, &stubUploader{})

	for _, body := range []string{`{"quantity":0}`, `{"quantity":-3}`, `{}`} {
		c, _ := newParamContext(http.MethodPatch, "/products/p1/increment-quantity", body, "p1")
		err := h.Increment(c)
		var httpErr *echo.HTTPError
		if !errors.As(err, &httpErr) || httpErr.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400 HTTPError, got %v", body, err)
		}
	}
}

func TestProductHandler_Remove(t *testing.T) {
	h := newProductHandler(&stubProductService{}, &stubUploader{})

	c, rec := newParamContext(http.MethodDelete, "/products/p1", "", "p1")
	if err := h.Remove(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestProductHandler_Stats(t *testing.T) {
	stats := &domain.ProductStats{Total: 4, Active: 3, OutOfStock: 1, LowStock: 1}
	h := newProductHandler(&stubProductService{stats: stats}, &stubUploader{})

	c, rec := newJSONContext(http.MethodGet, "/products/admin/stats", "")
	if err := h.Stats(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	var res domain.ProductStats
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if res != *stats {
		t.Fatalf("unexpected stats payload: %+v", res)
	}
}

// --- Image upload ---

func newUploadContext(t *testing.T, contentType string, payload []byte, id string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="photo"`)
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPost, "/products/"+id+"/upload-image", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c, rec
}

func TestProductHandler_UploadImage(t *testing.T) {
	svc := &stubProductService{product: sampleProduct()}
	uploader := &stubUploader{}
	h := newProductHandler(svc, uploader)

	c, rec := newUploadContext(t, "image/jpeg", []byte("fake-jpeg-bytes"), "p1")
	if err := h.UploadImage(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(uploader.uploaded) != 1 {
		t.Fatalf("expected one upload, got %d", len(uploader.uploaded))
	}
	if svc.lastUpdate.Image == nil || *svc.lastUpdate.Image != "https://cdn.example.com/p1.jpg" {
		t.Fatalf("image URL not persisted: %+v", svc.lastUpdate)
	}

	var res uploadImageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if res.ImageURL != "https://cdn.example.com/p1.jpg" {
		t.Fatalf("unexpected image URL in response: %s", res.ImageURL)
	}
}

func TestProductHandler_UploadImage_MissingFile(t *testing.T) {
	h := newProductHandler(&stubProductService{}, &stubUploader{})

	c, _ := newParamContext(http.MethodPost, "/products/p1/upload-image", "", "p1")
	err := h.UploadImage(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestProductHandler_UploadImage_BadContentType(t *testing.T) {
	uploader := &stubUploader{}
	h := newProductHandler(&stubProductService{product: sampleProduct()}, uploader)

	c, _ := newUploadContext(t, "application/pdf", []byte("%PDF"), "p1")
	err := h.UploadImage(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
	if !strings.Contains(httpErr.Message.(string), "JPEG, PNG, and WebP") {
		t.Fatalf("unexpected message: %v", httpErr.Message)
	}
	if len(uploader.uploaded) != 0 {
		t.Fatalf("rejected file must never reach the uploader")
	}
}

func TestProductHandler_UploadImage_TooLarge(t *testing.T) {
	uploader := &stubUploader{}
	h := newProductHandler(&stubProductService{product: sampleProduct()}, uploader)

	c, _ := newUploadContext(t, "image/png", bytes.Repeat([]byte("x"), maxImageSize+1), "p1")
	err := h.UploadImage(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
	if len(uploader.uploaded) != 0 {
		t.Fatalf("oversized file must never reach the uploader")
	}
}

func TestProductHandler_UploadImage_UnknownProduct(t *testing.T) {
	uploader := &stubUploader{}
	h := newProductHandler(&stubProductService{getErr: domain.ErrProductNotFound}, uploader)

	c, _ := newUploadContext(t, "image/jpeg", []byte("bytes"), "missing")
	if err := h.UploadImage(c); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound passthrough, got %v", err)
	}
	if len(uploader.uploaded) != 0 {
		t.Fatalf("unknown product must never reach the uploader")
	}
}

func TestProductHandler_UploadImage_UploadFailure(t *testing.T) {
	svc := &stubProductService{product: sampleProduct()}
	uploader := &stubUploader{uploadErr: errors.New("bucket unavailable")}
	h := newProductHandler(svc, uploader)

	c, _ := newUploadContext(t, "image/jpeg", []byte("bytes"), "p1")
	err := h.UploadImage(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
	// A failed upload must leave the product untouched.
	if svc.lastUpdate.Image != nil {
		t.Fatalf("product mutated after failed upload: %+v", svc.lastUpdate)
	}
}

func TestProductHandler_UploadImage_PersistFailureCleansUp(t *testing.T) {
	svc := &stubProductService{product: sampleProduct(), err: domain.ErrUpdateProductFailed}
	uploader := &stubUploader{}
	h := newProductHandler(svc, uploader)

	c, _ := newUploadContext(t, "image/jpeg", []byte("bytes"), "p1")
	if err := h.UploadImage(c); !errors.Is(err, domain.ErrUpdateProductFailed) {
		t.Fatalf("expected ErrUpdateProductFailed passthrough, got %v", err)
	}
	if len(uploader.deletedKeys) != 1 || uploader.deletedKeys[0] != "products/p1.jpg" {
		t.Fatalf("expected orphaned object cleanup, got %v", uploader.deletedKeys)
	}
}
