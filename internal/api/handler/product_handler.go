package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/momocakes/commerce-api/internal/api/metrics"
	"github.com/momocakes/commerce-api/internal/core/domain"
	"github.com/momocakes/commerce-api/internal/core/ports"
)

// maxImageSize caps uploaded product images at 5MB.
const maxImageSize = 5 * 1024 * 1024

// allowedImageTypes are the MIME types accepted for product images.
var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
	"image/webp": {},
}

// ProductHandler handles HTTP requests for catalog operations.
type ProductHandler struct {
	service  ports.ProductService
	uploader ports.ImageUploader
	folder   string
	logger   zerolog.Logger
}

func NewProductHandler(service ports.ProductService, uploader ports.ImageUploader, folder string, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{service: service, uploader: uploader, folder: folder, logger: logger}
}

// ListActive handles GET /products — the customer-facing catalog.
//
// @Summary      List active, in-stock products
// @Tags         products
// @Produce      json
// @Success      200  {object}  productsResponse
// @Router       /products [get]
func (h *ProductHandler) ListActive(c echo.Context) error {
	products, err := h.service.ListActive(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, productsResponse{Products: products})
}

// Get handles GET /products/:id.
//
// @Summary      Get a product by id
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "Product id"
// @Success      200  {object}  domain.Product
// @Failure      404  {object}  errorResponse
// @Router       /products/{id} [get]
func (h *ProductHandler) Get(c echo.Context) error {
	product, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, product)
}

// Create handles POST /products. Admin-gated.
//
// @Summary      Create a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createProductRequest  true  "Product details"
// @Success      201   {object}  domain.Product
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /products [post]
func (h *ProductHandler) Create(c echo.Context) error {
	var req createProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	product, err := h.service.Create(c.Request().Context(), toCreateProductInput(req))
	if err != nil {
		return err
	}

	metrics.ProductsCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, product)
}

// ListAll handles GET /products/admin/all — the admin view. Pass
// include_inactive=false to filter on is_active alone.
//
// @Summary      List all products
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        include_inactive  query     bool  false  "Include inactive products (default true)"
// @Success      200               {object}  productsResponse
// @Failure      403               {object}  errorResponse
// @Router       /products/admin/all [get]
func (h *ProductHandler) ListAll(c echo.Context) error {
	includeInactive := c.QueryParam("include_inactive") != "false"
	products, err := h.service.ListAll(c.Request().Context(), includeInactive)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, productsResponse{Products: products})
}

// Stats handles GET /products/admin/stats.
//
// @Summary      Catalog statistics
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.ProductStats
// @Failure      403  {object}  errorResponse
// @Router       /products/admin/stats [get]
func (h *ProductHandler) Stats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// Update handles PATCH /products/:id. Admin-gated.
//
// @Summary      Update a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Product id"
// @Param        body  body      updateProductRequest  true  "Fields to update"
// @Success      200   {object}  domain.Product
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /products/{id} [patch]
func (h *ProductHandler) Update(c echo.Context) error {
	var req updateProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	product, err := h.service.Update(c.Request().Context(), c.Param("id"), toProductUpdate(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, product)
}

// SetQuantity handles PUT /products/:id/quantity. Admin-gated.
//
// @Summary      Overwrite available quantity
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Product id"
// @Param        body  body      setQuantityRequest  true  "New quantity"
// @Success      200   {object}  domain.Product
// @Failure      404   {object}  errorResponse
// @Router       /products/{id}/quantity [put]
func (h *ProductHandler) SetQuantity(c echo.Context) error {
	var req setQuantityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	product, err := h.service.SetQuantity(c.Request().Context(), c.Param("id"), req.QuantityAvailable)
	if err != nil {
		metrics.QuantityOpsTotal.WithLabelValues("set", "rejected").Inc()
		return err
	}

	metrics.QuantityOpsTotal.WithLabelValues("set", "ok").Inc()
	return c.JSON(http.StatusOK, product)
}

// Increment handles PATCH /products/:id/increment-quantity. Admin-gated.
//
// @Summary      Increment available quantity
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Product id"
// @Param        body  body      quantityDeltaRequest  true  "Amount to add"
// @Success      200   {object}  domain.Product
// @Failure      404   {object}  errorResponse
// @Router       /products/{id}/increment-quantity [patch]
func (h *ProductHandler) Increment(c echo.Context) error {
	return h.applyDelta(c, "increment", h.service.Increment)
}

// Decrement handles PATCH /products/:id/decrement-quantity. Admin-gated.
// Fails without mutating when the available quantity is insufficient.
//
// @Summary      Decrement available quantity
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Product id"
// @Param        body  body      quantityDeltaRequest  true  "Amount to subtract"
// @Success      200   {object}  domain.Product
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /products/{id}/decrement-quantity [patch]
func (h *ProductHandler) Decrement(c echo.Context) error {
	return h.applyDelta(c, "decrement", h.service.Decrement)
}

// ToggleActive handles PATCH /products/:id/toggle-active. Admin-gated.
//
// @Summary      Toggle the active flag
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Product id"
// @Success      200  {object}  domain.Product
// @Failure      404  {object}  errorResponse
// @Router       /products/{id}/toggle-active [patch]
func (h *ProductHandler) ToggleActive(c echo.Context) error {
	product, err := h.service.ToggleActive(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, product)
}

// Remove handles DELETE /products/:id. Admin-gated.
//
// @Summary      Delete a product
// @Tags         products
// @Security     BearerAuth
// @Param        id  path  string  true  "Product id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /products/{id} [delete]
func (h *ProductHandler) Remove(c echo.Context) error {
	if err := h.service.Remove(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadImage handles POST /products/:id/upload-image. Admin-gated.
// Order matters: validate the file, upload to the media host, and only then
// persist the URL — a failed upload leaves the product untouched.
//
// @Summary      Upload a product image
// @Tags         products
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true  "Product id"
// @Param        image  formData  file    true  "JPEG, PNG or WebP, max 5MB"
// @Success      200    {object}  uploadImageResponse
// @Failure      400    {object}  errorResponse
// @Failure      404    {object}  errorResponse
// @Router       /products/{id}/upload-image [post]
func (h *ProductHandler) UploadImage(c echo.Context) error {
	id := c.Param("id")

	fh, err := c.FormFile("image")
	if err != nil {
		metrics.ImageUploadsTotal.WithLabelValues("rejected").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "please provide an image file")
	}

	contentType := fh.Header.Get("Content-Type")
	if _, ok := allowedImageTypes[contentType]; !ok {
		metrics.ImageUploadsTotal.WithLabelValues("rejected").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "only JPEG, PNG, and WebP images are allowed")
	}
	if fh.Size > maxImageSize {
		metrics.ImageUploadsTotal.WithLabelValues("rejected").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "image size must be less than 5MB")
	}

	// Fail fast on unknown products before touching the media host.
	if _, err := h.service.Get(c.Request().Context(), id); err != nil {
		return err
	}

	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unable to read image file")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxImageSize+1))
	if err != nil || int64(len(data)) > maxImageSize {
		metrics.ImageUploadsTotal.WithLabelValues("rejected").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "unable to read image file")
	}

	result, err := h.uploader.Upload(c.Request().Context(), data, contentType, h.folder)
	if err != nil {
		h.logger.Error().Err(err).Str("product_id", id).Msg("image upload failed")
		metrics.ImageUploadsTotal.WithLabelValues("failed").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "failed to upload image")
	}

	product, err := h.service.Update(c.Request().Context(), id, ports.ProductUpdate{Image: &result.URL})
	if err != nil {
		// The product record is untouched; drop the orphaned object.
		if delErr := h.uploader.Delete(c.Request().Context(), result.Key); delErr != nil {
			h.logger.Warn().Err(delErr).Str("key", result.Key).Msg("orphaned image cleanup failed")
		}
		return err
	}

	metrics.ImageUploadsTotal.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, uploadImageResponse{Product: *product, ImageURL: result.URL})
}

func (h *ProductHandler) applyDelta(
	c echo.Context,
	op string,
	apply func(ctx context.Context, id string, amount int64) (*domain.Product, error),
) error {
	var req quantityDeltaRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	product, err := apply(c.Request().Context(), c.Param("id"), req.Quantity)
	if err != nil {
		metrics.QuantityOpsTotal.WithLabelValues(op, "rejected").Inc()
		return err
	}

	metrics.QuantityOpsTotal.WithLabelValues(op, "ok").Inc()
	return c.JSON(http.StatusOK, product)
}
