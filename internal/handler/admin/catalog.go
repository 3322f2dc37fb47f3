// Package admin contains the JSON API handlers behind the admin role gate:
// catalog management, orders, settings and contact messages.
package admin

import (
	"net/http"
	"time"

	"github.com/lcastillo/botilleria/internal/domain"
	"github.com/lcastillo/botilleria/internal/handler"
	"github.com/lcastillo/botilleria/internal/service"
)

// CatalogHandler manages products, promotions, banners and events.
type CatalogHandler struct {
	catalog *service.AdminCatalogService
}

// NewCatalogHandler creates an admin catalog handler.
func NewCatalogHandler(catalog *service.AdminCatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

// ----- products -----

type productRequest struct {
	Name                string `json:"name"`
	Description         string `json:"description"`
	Category            string `json:"category"`
	PriceCents          int64  `json:"price_cents"`
	WholesalePriceCents int64  `json:"wholesale_price_cents"`
	WholesaleMinQty     int32  `json:"wholesale_min_qty"`
	Stock               int32  `json:"stock"`
	ImageURL            string `json:"image_url"`
	Active              bool   `json:"active"`
	DisplayOrder        int32  `json:"display_order"`
}

func (req productRequest) input() domain.ProductInput {
	return domain.ProductInput{
		Name:                req.Name,
		Description:         req.Description,
		Category:            req.Category,
		PriceCents:          req.PriceCents,
		WholesalePriceCents: req.WholesalePriceCents,
		WholesaleMinQty:     req.WholesaleMinQty,
		Stock:               req.Stock,
		ImageURL:            req.ImageURL,
		Active:              req.Active,
		DisplayOrder:        req.DisplayOrder,
	}
}

type productView struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Description         string    `json:"description"`
	Category            string    `json:"category"`
	PriceCents          int64     `json:"price_cents"`
	WholesalePriceCents int64     `json:"wholesale_price_cents"`
	WholesaleMinQty     int32     `json:"wholesale_min_qty"`
	Stock               int32     `json:"stock"`
	ImageURL            string    `json:"image_url"`
	Active              bool      `json:"active"`
	DisplayOrder        int32     `json:"display_order"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func toProductView(p domain.Product) productView {
	return productView{
		ID:                  p.ID,
		Name:                p.Name,
		Description:         p.Description,
		Category:            p.Category,
		PriceCents:          p.PriceCents,
		WholesalePriceCents: p.WholesalePriceCents,
		WholesaleMinQty:     p.WholesaleMinQty,
		Stock:               p.Stock,
		ImageURL:            p.ImageURL,
		Active:              p.Active,
		DisplayOrder:        p.DisplayOrder,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

// ListProducts returns every product, active or not.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, toProductView(p))
	}
	handler.JSON(w, http.StatusOK, views)
}

// GetProduct returns one product.
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, toProductView(*p))
}

// CreateProduct adds a catalog item.
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	p, err := h.catalog.CreateProduct(r.Context(), req.input())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusCreated, toProductView(*p))
}

// UpdateProduct replaces a product's editable fields.
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	p, err := h.catalog.UpdateProduct(r.Context(), r.PathValue("id"), req.input())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, toProductView(*p))
}

// SetProductActive toggles storefront visibility.
func (h *CatalogHandler) SetProductActive(w http.ResponseWriter, r *http.Request) {
	var req setActiveRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if err := h.catalog.SetProductActive(r.Context(), r.PathValue("id"), req.Active); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.NoContent(w)
}

// DeleteProduct removes a product.
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteProduct(r.Context(), r.PathValue("id")); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.NoContent(w)
}

// ----- promotions -----

type promotionRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	ImageURL     string `json:"image_url"`
	PriceCents   int64  `json:"price_cents"`
	Active       bool   `json:"active"`
	DisplayOrder int32  `json:"display_order"`
}

func (req promotionRequest) input() domain.PromotionInput {
	return domain.PromotionInput{
		Title:        req.Title,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		PriceCents:   req.PriceCents,
		Active:       req.Active,
		DisplayOrder: req.DisplayOrder,
	}
}

type promotionView struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ImageURL     string    `json:"image_url"`
	PriceCents   int64     `json:"price_cents"`
	Active       bool      `json:"active"`
	DisplayOrder int32     `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toPromotionView(p domain.Promotion) promotionView {
	return promotionView{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		ImageURL:     p.ImageURL,
		PriceCents:   p.PriceCents,
		Active:       p.Active,
		DisplayOrder: p.DisplayOrder,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func (h *CatalogHandler) ListPromotions(w http.ResponseWriter, r *http.Request) {
	promotions, err := h.catalog.ListPromotions(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	views := make([]promotionView, 0, len(promotions))
	for _, p := range promotions {
		views = append(views, toPromotionView(p))
	}
	handler.JSON(w, http.StatusOK, views)
}

func (h *CatalogHandler) CreatePromotion(w http.ResponseWriter, r *http.Request) {
	var req promotionRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	p, err := h.catalog.CreatePromotion(r.Context(), req.input())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusCreated, toPromotionView(*p))
}

func (h *CatalogHandler) UpdatePromotion(w http.ResponseWriter, r *http.Request) {
	var req promotionRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	p, err := h.catalog.UpdatePromotion(r.Context(), r.PathValue("id"), req.input())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, toPromotionView(*p))
}

func (h *CatalogHandler) SetPromotionActive(w http.ResponseWriter, r *http.Request) {
	var req setActiveRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if err := h.catalog.SetPromotionActive(r.Context(), r.PathValue("id"), req.Active); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.NoContent(w)
}

func (h *CatalogHandler) DeletePromotion(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeletePromotion(r.Context(), r.PathValue("id")); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.NoContent(w)
}

// ----- banners -----

type bannerRequest struct {
	Title        string `json:"title"`
	ImageURL     string `json:"image_url"`
	LinkURL      string `json:"link_url"`
	Active       bool   `json:"active"`
	DisplayOrder int32  `json:"display_order"`
}

func (req bannerRequest) input() domain.BannerInput {
	return domain.BannerInput{
		Title:        req.Title,
		ImageURL:     req.ImageURL,
		LinkURL:      req.LinkURL,
		Active:       req.Active,
		DisplayOrder: req.DisplayOrder,
	}
}

type bannerView struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	ImageURL     string    `json:"image_url"`
	LinkURL      string    `json:"link_url"`
	Active       bool      `json:"active"`
	DisplayOrder int32     `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toBannerView(b domain.Banner) bannerView {
	return bannerView{
		ID:           b.ID,
		Title:        b.Title,
		ImageURL:     b.ImageURL,
		LinkURL:      b.LinkURL,
		Active:       b.Active,
		DisplayOrder: b.DisplayOrder,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

func (h *CatalogHandler) ListBanners(w http.ResponseWriter, r *http.Request) {
	banners, err := h.catalog.ListBanners(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	views := make([]bannerView, 0, len(banners))
	for _, b := range banners {
		views = append(views, toBannerView(b))
	}
	handler.JSON(w, http.StatusOK, views)
}

func (h *CatalogHandler) CreateBanner(w http.ResponseWriter, r *http.Request) {
	var req bannerRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	b, err := h.catalog.CreateBanner(r.Context(), req.input())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusCreated, toBannerView(*b))
}

func (h *CatalogHandler) UpdateBanner(w http.ResponseWriter, r *http.Request) {
	var req bannerRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	b, err := h.catalog.UpdateBanner(r.Context(), r.PathValue("id"), req.input())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, toBannerView(*b))
}

func (h *CatalogHandler) SetBannerActive(w http.ResponseWriter, r *http.Request) {
	var req setActiveRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if err := h.catalog.SetBannerActive(r.Context(), r.PathValue("id"), req.Active); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.NoContent(w)
}

func (h *CatalogHandler) DeleteBanner(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteBanner(r.Context(), r.PathValue("id")); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.NoContent(w)
}

// ----- events -----

type eventRequest struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ImageURL     string    `json:"image_url"`
	StartsAt     time.Time `json:"starts_at"`
	EndsAt       time.Time `json:"ends_at"`
	Active       bool      `json:"active"`
	DisplayOrder int32     `json:"display_order"`
}

func (req eventRequest) input() domain.EventInput {
	return domain.EventInput{
		Title:        req.Title,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		StartsAt:     req.StartsAt,
		EndsAt:       req.EndsAt,
		Active:       req.Active,
		DisplayOrder: req.DisplayOrder,
	}
}

type eventView struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ImageURL     string    `json:"image_url"`
	StartsAt     time.Time `json:"starts_at"`
	EndsAt       time.Time `json:"ends_at"`
	Active       bool      `json:"active"`
	DisplayOrder int32     `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toEventView(e domain.Event) eventView {
	return eventView{
		ID:           e.ID,
		Title:        e.Title,
		Description:  e.Description,
		ImageURL:     e.ImageURL,
		StartsAt:     e.StartsAt,
		EndsAt:       e.EndsAt,
		Active:       e.Active,
		DisplayOrder: e.DisplayOrder,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func (h *CatalogHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.catalog.ListEvents(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	views := make([]eventView, 0, len(events))
	for _, e := range events {
		views = append(views, toEventView(e))
	}
	handler.JSON(w, http.StatusOK, views)
}

func (h *CatalogHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	e, err := h.catalog.CreateEvent(r.Context(), req.input())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusCreated, toEventView(*e))
}

func (h *CatalogHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	e, err := h.catalog.UpdateEvent(r.Context(), r.PathValue("id"), req.input())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, toEventView(*e))
}

func (h *CatalogHandler) SetEventActive(w http.ResponseWriter, r *http.Request) {
	var req setActiveRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if err := h.catalog.SetEventActive(r.Context(), r.PathValue("id"), req.Active); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.NoContent(w)
}

func (h *CatalogHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteEvent(r.Context(), r.PathValue("id")); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.NoContent(w)
}
