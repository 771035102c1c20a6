/*
handlers.go - HTTP API handlers for the upgrade advisor

PURPOSE:
  Exposes the advisor to the interactive UI. Handlers parse and validate
  the request, delegate to upgrade.Advisor, importer.Importer or the
  store, and serialize DTOs.

ENDPOINTS:
  Hotels:
    GET    /api/hotels                                   List hotels
    POST   /api/hotels                                   Create hotel from JSON definition
    GET    /api/hotels/{hotelID}                         Hotel with categories
    DELETE /api/hotels/{hotelID}                         Delete hotel and its data

  Categories:
    GET    /api/hotels/{hotelID}/categories              List categories
    POST   /api/hotels/{hotelID}/categories              Add category
    PUT    /api/hotels/{hotelID}/categories/{categoryID} Update category
    GET    /api/hotels/{hotelID}/inventory?date=         Inventory status on a date

  Out of service:
    GET    /api/hotels/{hotelID}/out-of-service          Active blocks (?date= covering, ?all=true)
    POST   /api/hotels/{hotelID}/out-of-service          Declare block
    POST   /api/hotels/{hotelID}/out-of-service/{blockID}/end  End block early

  Data and analysis:
    POST   /api/hotels/{hotelID}/imports                 Upload workbook (multipart "file")
    GET    /api/hotels/{hotelID}/categories/{categoryID}/recommendations?from=&to=
    GET    /api/hotels/{hotelID}/categories/{categoryID}/report?from=&to=
    GET    /api/hotels/{hotelID}/trend?days=&category=

ERROR HANDLING:
  Errors are returned as JSON (ErrorResponse) with a status derived from
  the generic sentinels:
  - 400: ErrInvalidInput, ErrMissingColumn, ErrMissingField
  - 404: ErrNotFound
  - 422: ErrDataUnavailable
  - 500: Everything else (persistence)

SECURITY NOTE:
  No authentication. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/warp/upgrade-advisor/factory"
	"github.com/warp/upgrade-advisor/generic"
	"github.com/warp/upgrade-advisor/importer"
	"github.com/warp/upgrade-advisor/logger"
	"github.com/warp/upgrade-advisor/metrics"
	"github.com/warp/upgrade-advisor/report"
	"github.com/warp/upgrade-advisor/upgrade"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	maxUploadBytes  = 32 << 20
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    generic.Store
	Advisor  *upgrade.Advisor
	Importer *importer.Importer
	Log      logger.Logger
	Metrics  *metrics.Metrics

	validate *validator.Validate

	mu              sync.RWMutex
	currentScenario string
}

// NewHandler wires the handler around an advisor; the store is the advisor's.
func NewHandler(advisor *upgrade.Advisor, im *importer.Importer, log logger.Logger, m *metrics.Metrics) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{
		Store:    advisor.Store,
		Advisor:  advisor,
		Importer: im,
		Log:      log,
		Metrics:  m,
		validate: validator.New(),
	}
}

// =============================================================================
// HOTEL HANDLERS
// =============================================================================

// ListHotels returns all hotels without categories.
func (h *Handler) ListHotels(w http.ResponseWriter, r *http.Request) {
	hotels, err := h.Store.ListHotels(r.Context())
	if err != nil {
		h.fail(w, "Failed to list hotels", err)
		return
	}

	dtos := make([]HotelDTO, 0, len(hotels))
	for _, hotel := range hotels {
		dtos = append(dtos, toHotelDTO(hotel, nil))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetHotel returns a hotel with its categories.
func (h *Handler) GetHotel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	hotelID := hotelParam(r)

	hotel, err := h.Store.GetHotel(ctx, hotelID)
	if err != nil {
		h.fail(w, "Failed to get hotel", err)
		return
	}
	categories, err := h.Store.ListCategories(ctx, hotelID)
	if err != nil {
		h.fail(w, "Failed to list categories", err)
		return
	}
	writeJSON(w, http.StatusOK, toHotelDTO(hotel, categories))
}

// CreateHotel creates a hotel and its categories from a factory definition.
// POST /api/hotels
func (h *Handler) CreateHotel(w http.ResponseWriter, r *http.Request) {
	var def factory.HotelJSON
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	hotel, categories, err := factory.FromJSON(def)
	if err != nil {
		h.fail(w, "Invalid hotel definition", err)
		return
	}
	if err := h.saveHotel(r.Context(), hotel, categories); err != nil {
		h.fail(w, "Failed to create hotel", err)
		return
	}

	h.Log.Info("hotel created", "hotel", hotel.ID, "categories", len(categories))
	writeJSON(w, http.StatusCreated, toHotelDTO(hotel, categories))
}

// DeleteHotel removes a hotel with its categories, blocks and series.
func (h *Handler) DeleteHotel(w http.ResponseWriter, r *http.Request) {
	hotelID := hotelParam(r)
	if err := h.Store.DeleteHotel(r.Context(), hotelID); err != nil {
		h.fail(w, "Failed to delete hotel", err)
		return
	}
	h.Metrics.ForgetHotel(string(hotelID))
	h.Log.Info("hotel deleted", "hotel", hotelID)
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// =============================================================================
// CATEGORY HANDLERS
// =============================================================================

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Store.ListCategories(r.Context(), hotelParam(r))
	if err != nil {
		h.fail(w, "Failed to list categories", err)
		return
	}

	dtos := make([]CategoryDTO, 0, len(categories))
	for _, c := range categories {
		dtos = append(dtos, toCategoryDTO(c))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateCategory adds a category; the ID defaults to the slug of its name.
// POST /api/hotels/{hotelID}/categories
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	c := req.category(hotelParam(r))
	if c.ID == "" {
		c.ID = generic.CategoryID(factory.Slug(c.Name))
	}
	h.saveCategory(w, r, c, http.StatusCreated)
}

// UpdateCategory replaces a category's settings.
// PUT /api/hotels/{hotelID}/categories/{categoryID}
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	c := req.category(hotelParam(r))
	c.ID = categoryParam(r)
	if _, err := h.Store.GetCategory(r.Context(), c.HotelID, c.ID); err != nil {
		h.fail(w, "Category not found", err)
		return
	}
	h.saveCategory(w, r, c, http.StatusOK)
}

func (h *Handler) saveCategory(w http.ResponseWriter, r *http.Request, c generic.RoomCategory, status int) {
	saved, err := h.Advisor.SaveCategory(r.Context(), c)
	if err != nil {
		h.fail(w, "Failed to save category", err)
		return
	}
	writeJSON(w, status, toCategoryDTO(saved))
}

// GetInventory reports each category's rooms, out-of-service rooms and
// effective capacity on ?date= (default today).
func (h *Handler) GetInventory(w http.ResponseWriter, r *http.Request) {
	date := h.Advisor.Today()
	if v := r.URL.Query().Get("date"); v != "" {
		d, err := generic.ParseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
			return
		}
		date = d
	}

	hotelID := hotelParam(r)
	lines, err := h.Advisor.Inventory(r.Context(), hotelID, date)
	if err != nil {
		h.fail(w, "Failed to compute inventory", err)
		return
	}

	dto := InventoryDTO{
		HotelID:    string(hotelID),
		Date:       date.String(),
		Categories: make([]InventoryLineDTO, 0, len(lines)),
	}
	for _, l := range lines {
		dto.TotalRooms += l.Total
		dto.OutOfService += l.OutOfService
		dto.EffectiveRooms += l.Effective
		dto.Categories = append(dto.Categories, InventoryLineDTO{
			CategoryID:   string(l.Category.ID),
			Name:         l.Category.Name,
			Total:        l.Total,
			OutOfService: l.OutOfService,
			Effective:    l.Effective,
			EntryLevel:   l.Category.EntryLevel,
			AverageRate:  l.Category.AverageRate,
			UpgradeTo:    string(l.Category.UpgradeTarget),
		})
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// OUT-OF-SERVICE HANDLERS
// =============================================================================

// ListBlocks returns blocks that have not ended, blocks covering ?date=,
// or every block with ?all=true.
func (h *Handler) ListBlocks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	hotelID := hotelParam(r)
	q := r.URL.Query()

	var (
		blocks []generic.OutOfServiceBlock
		err    error
	)
	switch {
	case q.Get("date") != "":
		d, perr := generic.ParseDate(q.Get("date"))
		if perr != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", perr)
			return
		}
		blocks, err = h.Store.ListBlocks(ctx, hotelID, generic.Period{Start: d, End: d})
	case q.Get("all") == "true":
		blocks, err = h.Store.ListBlocks(ctx, hotelID, generic.AllTime)
	default:
		blocks, err = h.Advisor.ActiveBlocks(ctx, hotelID)
	}
	if err != nil {
		h.fail(w, "Failed to list out-of-service blocks", err)
		return
	}

	dtos := make([]BlockDTO, 0, len(blocks))
	for _, b := range blocks {
		dtos = append(dtos, toBlockDTO(b))
	}
	writeJSON(w, http.StatusOK, map[string]any{"blocks": dtos})
}

// CreateBlock declares rooms out of service for a date range.
// POST /api/hotels/{hotelID}/out-of-service
func (h *Handler) CreateBlock(w http.ResponseWriter, r *http.Request) {
	var req BlockRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	// Formats were validated by the datetime tag.
	from := generic.MustParseDate(req.From)
	to := generic.MustParseDate(req.To)

	b, err := h.Advisor.DeclareOutOfService(r.Context(), generic.OutOfServiceBlock{
		HotelID:    hotelParam(r),
		CategoryID: generic.CategoryID(req.CategoryID),
		From:       from,
		To:         to,
		Rooms:      req.Rooms,
		Reason:     strings.TrimSpace(req.Reason),
	})
	if err != nil {
		h.fail(w, "Failed to declare out-of-service block", err)
		return
	}
	writeJSON(w, http.StatusCreated, toBlockDTO(b))
}

// EndBlock puts the rooms back in service from today.
// POST /api/hotels/{hotelID}/out-of-service/{blockID}/end
func (h *Handler) EndBlock(w http.ResponseWriter, r *http.Request) {
	b, err := h.Advisor.EndOutOfService(r.Context(), hotelParam(r), generic.BlockID(chi.URLParam(r, "blockID")))
	if err != nil {
		h.fail(w, "Failed to end out-of-service block", err)
		return
	}
	writeJSON(w, http.StatusOK, toBlockDTO(b))
}

// =============================================================================
// IMPORT HANDLER
// =============================================================================

// ImportWorkbook parses an uploaded BI export and upserts its rows.
//
// Form fields:
//   - file:     the workbook (required)
//   - type:     "daily_production" or "pickup"; detected when empty
//   - category: target category; when empty the room type found in the
//     report title is matched against category names, else the rows go
//     to the hotel-wide series
func (h *Handler) ImportWorkbook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	hotelID := hotelParam(r)

	if _, err := h.Store.GetHotel(ctx, hotelID); err != nil {
		h.fail(w, "Failed to get hotel", err)
		return
	}
	categories, err := h.Store.ListCategories(ctx, hotelID)
	if err != nil {
		h.fail(w, "Failed to list categories", err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form", err)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing file field", err)
		return
	}
	defer file.Close()

	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	res, err := h.Importer.WithRoomTypes(names).Import(file, importer.ReportType(r.FormValue("type")))
	if err != nil {
		h.fail(w, "Failed to import "+header.Filename, err)
		return
	}

	categoryID, err := resolveImportCategory(categories, r.FormValue("category"), res.Metadata.RoomType)
	if err != nil {
		h.fail(w, "Unknown category", err)
		return
	}

	key := generic.SeriesKey{HotelID: hotelID, CategoryID: categoryID}
	var saved int
	switch {
	case len(res.Production) > 0:
		saved, err = h.Store.UpsertProduction(ctx, key, res.Production)
	case len(res.Pickup) > 0:
		saved, err = h.Store.UpsertPickup(ctx, key, res.Pickup)
	}
	if err != nil {
		h.Metrics.Fail("persist")
		h.Log.Error("import upsert failed", "batch", res.BatchID, "series", key.String(), "saved", saved, "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Import stopped after %d rows", saved), err)
		return
	}

	h.Log.Info("import stored", "batch", res.BatchID, "file", header.Filename, "series", key.String(), "saved", saved, "rejected", len(res.Rejected))
	writeJSON(w, http.StatusCreated, toImportDTO(res, categoryID, saved))
}

// resolveImportCategory picks the series an import is stored under.
func resolveImportCategory(categories []generic.RoomCategory, explicit, roomType string) (generic.CategoryID, error) {
	if explicit != "" {
		for _, c := range categories {
			if string(c.ID) == explicit {
				return c.ID, nil
			}
		}
		return "", fmt.Errorf("category %s: %w", explicit, generic.ErrNotFound)
	}
	if roomType != "" {
		for _, c := range categories {
			if strings.EqualFold(c.Name, roomType) {
				return c.ID, nil
			}
		}
	}
	return "", nil
}

// =============================================================================
// ANALYSIS HANDLERS
// =============================================================================

// GetRecommendations runs the decision engine for a category.
// GET /api/hotels/{hotelID}/categories/{categoryID}/recommendations?from=&to=
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	period, err := periodQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}

	rec, err := h.Advisor.Recommend(r.Context(), hotelParam(r), categoryParam(r), period)
	if err != nil {
		h.fail(w, "Failed to compute recommendations", err)
		return
	}
	writeJSON(w, http.StatusOK, toRecommendationsDTO(rec))
}

// GetReport renders the recommendation workbook for download.
// GET /api/hotels/{hotelID}/categories/{categoryID}/report?from=&to=
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	hotelID := hotelParam(r)

	period, err := periodQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}

	rec, err := h.Advisor.Recommend(ctx, hotelID, categoryParam(r), period)
	if err != nil {
		h.fail(w, "Failed to compute recommendations", err)
		return
	}

	inventoryDate := h.Advisor.Today()
	if !period.Start.IsZero() {
		inventoryDate = period.Start
	}
	lines, err := h.Advisor.Inventory(ctx, hotelID, inventoryDate)
	if err != nil {
		h.fail(w, "Failed to compute inventory", err)
		return
	}

	// Rendered to memory so a failure can still answer with JSON.
	var buf bytes.Buffer
	if err := report.Render(&buf, report.FromRecommendations(rec, lines, inventoryDate)); err != nil {
		h.Metrics.Fail("report")
		h.Log.Error("report render failed", "hotel", hotelID, "category", rec.Category.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to render report", err)
		return
	}

	filename := fmt.Sprintf("upgrades-%s-%s-%s.xlsx", hotelID, rec.Category.ID, h.Advisor.Today())
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// GetTrend summarizes recent booking velocity.
// GET /api/hotels/{hotelID}/trend?days=&category=
func (h *Handler) GetTrend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	days := 0
	if v := q.Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "days must be a positive integer", err)
			return
		}
		days = n
	}

	key := generic.SeriesKey{HotelID: hotelParam(r), CategoryID: generic.CategoryID(q.Get("category"))}
	trend, err := h.Advisor.Trend(r.Context(), key, days)
	if err != nil {
		h.fail(w, "Failed to analyze trend", err)
		return
	}
	writeJSON(w, http.StatusOK, toTrendDTO(key, trend))
}

// =============================================================================
// HELPERS
// =============================================================================

func hotelParam(r *http.Request) generic.HotelID {
	return generic.HotelID(chi.URLParam(r, "hotelID"))
}

func categoryParam(r *http.Request) generic.CategoryID {
	return generic.CategoryID(chi.URLParam(r, "categoryID"))
}

// periodQuery reads ?from= and ?to=; either may be omitted.
func periodQuery(r *http.Request) (generic.Period, error) {
	var p generic.Period
	q := r.URL.Query()
	for _, bound := range []struct {
		name string
		dst  *generic.Date
	}{{"from", &p.Start}, {"to", &p.End}} {
		v := q.Get(bound.name)
		if v == "" {
			continue
		}
		d, err := generic.ParseDate(v)
		if err != nil {
			return p, fmt.Errorf("%s: %w", bound.name, err)
		}
		*bound.dst = d
	}
	if !p.Valid() {
		return p, fmt.Errorf("%w: from is after to", generic.ErrInvalidInput)
	}
	return p, nil
}

// decode reads a JSON body and runs the validator over it.
func (h *Handler) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return h.validate.Struct(dst)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case generic.IsNotFound(err):
		return http.StatusNotFound
	case generic.IsClientError(err), errors.As(err, &maxBytes):
		return http.StatusBadRequest
	case generic.IsDataUnavailable(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with its mapped status, logging server-side failures.
func (h *Handler) fail(w http.ResponseWriter, message string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.Log.Error(message, "error", err)
	}
	writeError(w, status, message, err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// saveHotel stores a hotel and then each category through the advisor's
// validation. Categories saved before a failure are kept.
func (h *Handler) saveHotel(ctx context.Context, hotel generic.Hotel, categories []generic.RoomCategory) error {
	if err := h.Store.SaveHotel(ctx, hotel); err != nil {
		return err
	}
	for _, c := range categories {
		if _, err := h.Advisor.SaveCategory(ctx, c); err != nil {
			return fmt.Errorf("category %s: %w", c.ID, err)
		}
	}
	return nil
}
