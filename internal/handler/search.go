package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/greencycle/greencycle-go/internal/middleware"
	"github.com/greencycle/greencycle-go/internal/service"
)

// defaultRadiusKm applies when a search gives coordinates but no radius.
const defaultRadiusKm = 10.0

type SearchHandler struct {
	engine *service.SearchEngine
}

func NewSearchHandler(engine *service.SearchEngine) *SearchHandler {
	return &SearchHandler{engine: engine}
}

// Search handles GET /api/search?q=&type=&latitude=&longitude=&radius=
func (h *SearchHandler) Search(c fiber.Ctx) error {
	q, ok := queryParam(c)
	if !ok {
		return nil
	}
	scope := service.Scope(middleware.ValidateScope(c.Query("type")))
	if !scope.Valid() {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, middleware.CodeInvalidField,
			"type must be one of all, dumps, users, marketplace")
	}
	geo, ok := geoParams(c)
	if !ok {
		return nil
	}

	resp, err := h.engine.Search(c.Context(), q, scope, geo)
	if err != nil {
		middleware.Logger.Error().Err(err).Str("scope", string(scope)).Msg("search failed")
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeInternal, "Search failed")
	}
	return c.JSON(resp)
}

// Dumps handles GET /api/search/dumps
func (h *SearchHandler) Dumps(c fiber.Ctx) error {
	q, ok := queryParam(c)
	if !ok {
		return nil
	}
	geo, ok := geoParams(c)
	if !ok {
		return nil
	}

	results, err := h.engine.SearchDumps(c.Context(), q, geo)
	if err != nil {
		middleware.Logger.Error().Err(err).Msg("dump search failed")
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeInternal, "Search failed")
	}
	return c.JSON(results)
}

// Users handles GET /api/search/users
func (h *SearchHandler) Users(c fiber.Ctx) error {
	q, ok := queryParam(c)
	if !ok {
		return nil
	}

	results, err := h.engine.SearchUsers(c.Context(), q)
	if err != nil {
		middleware.Logger.Error().Err(err).Msg("user search failed")
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, middleware.CodeInternal, "Search failed")
	}
	return c.JSON(results)
}

// Marketplace handles GET /api/search/marketplace
func (h *SearchHandler) Marketplace(c fiber.Ctx) error {
	q, ok := queryParam(c)
	if !ok {
		return nil
	}
	return c.JSON(h.engine.SearchMarketplace(q))
}

// Suggestions handles GET /api/search/suggestions
func (h *SearchHandler) Suggestions(c fiber.Ctx) error {
	q, ok := queryParam(c)
	if !ok {
		return nil
	}
	return c.JSON(h.engine.Suggestions(q))
}

// queryParam reads and validates q. On failure the 400 response is already
// written and ok is false.
func queryParam(c fiber.Ctx) (string, bool) {
	q, errMsg := middleware.ValidateQuery(c.Query("q"))
	if errMsg != "" {
		_ = middleware.ErrorResponse(c, fiber.StatusBadRequest, middleware.CodeInvalidField, errMsg)
		return "", false
	}
	return q, true
}

// geoParams builds the geo filter from latitude, longitude and radius. The
// radius defaults to 10 km, so giving both coordinates is enough to turn
// the filter on.
func geoParams(c fiber.Ctx) (service.GeoFilter, bool) {
	fail := func(msg string) (service.GeoFilter, bool) {
		_ = middleware.ErrorResponse(c, fiber.StatusBadRequest, middleware.CodeInvalidField, msg)
		return service.GeoFilter{}, false
	}

	lat, errMsg := middleware.ParseLatitude(c.Query("latitude"))
	if errMsg != "" {
		return fail(errMsg)
	}
	lon, errMsg := middleware.ParseLongitude(c.Query("longitude"))
	if errMsg != "" {
		return fail(errMsg)
	}
	radius, errMsg := middleware.ParseRadius(c.Query("radius"))
	if errMsg != "" {
		return fail(errMsg)
	}
	if radius == nil {
		r := defaultRadiusKm
		radius = &r
	}
	return service.GeoFilter{Latitude: lat, Longitude: lon, RadiusKm: radius}, true
}
