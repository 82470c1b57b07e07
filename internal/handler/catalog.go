package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tourism-booking-gateway/internal/catalog"
	"github.com/iliyamo/tourism-booking-gateway/internal/middleware"
	"github.com/iliyamo/tourism-booking-gateway/internal/model"
	"github.com/iliyamo/tourism-booking-gateway/internal/upstream"
)

// CatalogHandler serves the public browse endpoints.  Lists are fetched
// page by page from the upstream and narrowed locally by ?search.
type CatalogHandler struct {
	Lister *catalog.Lister
	API    *upstream.Client
}

func NewCatalogHandler(l *catalog.Lister, api *upstream.Client) *CatalogHandler {
	return &CatalogHandler{Lister: l, API: api}
}

// listView keeps the upstream pagination next to the narrowed items.
type listView[T any] struct {
	Items       []T    `json:"items"`
	Search      string `json:"search,omitempty"`
	Matched     int    `json:"matched"`
	CurrentPage int    `json:"current_page"`
	LastPage    int    `json:"last_page"`
	PerPage     int    `json:"per_page"`
	Total       int    `json:"total"`
	HasNext     bool   `json:"has_next"`
}

func toView[T any](r catalog.Result[T]) listView[T] {
	items := r.Items
	if items == nil {
		items = []T{}
	}
	return listView[T]{
		Items:       items,
		Search:      r.Search,
		Matched:     len(items),
		CurrentPage: r.Page.CurrentPage,
		LastPage:    r.Page.LastPage,
		PerPage:     r.Page.PerPage,
		Total:       r.Page.Total,
		HasNext:     r.Page.HasNext(),
	}
}

// firstParam returns the first non-empty query parameter among names.
func firstParam(c echo.Context, names ...string) string {
	for _, n := range names {
		if v := strings.TrimSpace(c.QueryParam(n)); v != "" {
			return v
		}
	}
	return ""
}

// parseQuery reads pagination, structural filters and the search term.
// Both the upstream's Spanish parameter names and English aliases are
// accepted.
func parseQuery(c echo.Context) (catalog.Query, error) {
	var q catalog.Query
	var err error
	if q.Page, err = optInt(c, "page"); err != nil {
		return q, err
	}
	if q.PerPage, err = optInt(c, "per_page"); err != nil {
		return q, err
	}
	if q.PerPage > 100 {
		q.PerPage = 100
	}
	q.Search = firstParam(c, "search", "q")
	q.Category = firstParam(c, "categoria", "category")
	if q.CategoryID, err = optID(c, "categoria_id", "category_id"); err != nil {
		return q, err
	}
	if q.EnterpriseID, err = optID(c, "emprendedor_id", "enterprise_id"); err != nil {
		return q, err
	}

	lat, lng := firstParam(c, "latitud", "lat"), firstParam(c, "longitud", "lng")
	if lat == "" && lng == "" {
		return q, nil
	}
	if lat == "" || lng == "" {
		return q, &model.ValidationError{Field: "latitud", Reason: "latitude and longitude go together"}
	}
	geo := upstream.GeoOptions{RadiusKM: 10}
	if geo.Latitude, err = strconv.ParseFloat(lat, 64); err != nil || geo.Latitude < -90 || geo.Latitude > 90 {
		return q, &model.ValidationError{Field: "latitud", Reason: "must be between -90 and 90"}
	}
	if geo.Longitude, err = strconv.ParseFloat(lng, 64); err != nil || geo.Longitude < -180 || geo.Longitude > 180 {
		return q, &model.ValidationError{Field: "longitud", Reason: "must be between -180 and 180"}
	}
	if r := firstParam(c, "distancia", "radius_km"); r != "" {
		if geo.RadiusKM, err = strconv.ParseFloat(r, 64); err != nil || geo.RadiusKM <= 0 {
			return q, &model.ValidationError{Field: "distancia", Reason: "must be a positive number of kilometres"}
		}
	}
	q.Geo = &geo
	return q, nil
}

func optInt(c echo.Context, name string) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, &model.ValidationError{Field: name, Reason: "must be a positive integer"}
	}
	return n, nil
}

func optID(c echo.Context, names ...string) (uint64, error) {
	v := firstParam(c, names...)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil || n == 0 {
		return 0, &model.ValidationError{Field: names[0], Reason: "must be a positive integer"}
	}
	return n, nil
}

// token forwards the caller's upstream token when they are logged in; the
// catalog endpoints also work anonymously.
func token(c echo.Context) string {
	if s, found := middleware.SessionFrom(c); found {
		return s.Token
	}
	return ""
}

func listHandler[T any](run func(c echo.Context, q catalog.Query) (catalog.Result[T], error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		q, err := parseQuery(c)
		if err != nil {
			return fail(c, err)
		}
		res, err := run(c, q)
		if err != nil {
			return fail(c, err)
		}
		return ok(c, http.StatusOK, toView(res))
	}
}

func detailHandler[T any](get func(c echo.Context, id uint64) (T, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, valid := pathID(c, "id")
		if !valid {
			return errJSON(c, http.StatusBadRequest, "invalid id")
		}
		v, err := get(c, id)
		if err != nil {
			return fail(c, err)
		}
		return ok(c, http.StatusOK, v)
	}
}

func (h *CatalogHandler) Services() echo.HandlerFunc {
	return listHandler(func(c echo.Context, q catalog.Query) (catalog.Result[model.Service], error) {
		return h.Lister.Services(c.Request().Context(), token(c), q)
	})
}

func (h *CatalogHandler) Service() echo.HandlerFunc {
	return detailHandler(func(c echo.Context, id uint64) (model.Service, error) {
		return h.API.GetService(c.Request().Context(), token(c), id)
	})
}

func (h *CatalogHandler) Enterprises() echo.HandlerFunc {
	return listHandler(func(c echo.Context, q catalog.Query) (catalog.Result[model.Enterprise], error) {
		return h.Lister.Enterprises(c.Request().Context(), token(c), q)
	})
}

func (h *CatalogHandler) Enterprise() echo.HandlerFunc {
	return detailHandler(func(c echo.Context, id uint64) (model.Enterprise, error) {
		return h.API.GetEnterprise(c.Request().Context(), token(c), id)
	})
}

func (h *CatalogHandler) Events() echo.HandlerFunc {
	return listHandler(func(c echo.Context, q catalog.Query) (catalog.Result[model.Event], error) {
		return h.Lister.Events(c.Request().Context(), token(c), q)
	})
}

func (h *CatalogHandler) Event() echo.HandlerFunc {
	return detailHandler(func(c echo.Context, id uint64) (model.Event, error) {
		return h.API.GetEvent(c.Request().Context(), token(c), id)
	})
}

func (h *CatalogHandler) Categories() echo.HandlerFunc {
	return listHandler(func(c echo.Context, q catalog.Query) (catalog.Result[model.Category], error) {
		return h.Lister.Categories(c.Request().Context(), token(c), q)
	})
}

func (h *CatalogHandler) Associations() echo.HandlerFunc {
	return listHandler(func(c echo.Context, q catalog.Query) (catalog.Result[model.Association], error) {
		return h.Lister.Associations(c.Request().Context(), token(c), q)
	})
}

func (h *CatalogHandler) Municipalities() echo.HandlerFunc {
	return listHandler(func(c echo.Context, q catalog.Query) (catalog.Result[model.Municipality], error) {
		return h.Lister.Municipalities(c.Request().Context(), token(c), q)
	})
}

func (h *CatalogHandler) Municipality() echo.HandlerFunc {
	return detailHandler(func(c echo.Context, id uint64) (model.Municipality, error) {
		return h.API.GetMunicipality(c.Request().Context(), token(c), id)
	})
}
