package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/iliyamo/tourism-booking-gateway/internal/model"
)

// Listing is a page of T.  Some list endpoints answer with a bare array
// instead of a paginated object; that form is folded into a single page.
type Listing[T any] struct {
	model.Page[T]
}

func (l *Listing[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		l.Page = model.Page[T]{}
		return nil
	}
	if b[0] == '[' {
		var items []T
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		l.Page = model.Page[T]{CurrentPage: 1, LastPage: 1, Data: items, PerPage: len(items), Total: len(items)}
		return nil
	}
	return json.Unmarshal(b, &l.Page)
}

// PageOptions selects a page of a list endpoint.  Zero values let the
// upstream apply its defaults.
type PageOptions struct {
	Page    int
	PerPage int
}

func (o PageOptions) values() url.Values {
	v := url.Values{}
	if o.Page > 0 {
		v.Set("page", strconv.Itoa(o.Page))
	}
	if o.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(o.PerPage))
	}
	return v
}

// GeoOptions is a radius search around a point, in kilometres.
type GeoOptions struct {
	Latitude  float64
	Longitude float64
	RadiusKM  float64
}

func list[T any](ctx context.Context, c *Client, path string, q url.Values, token string) (model.Page[T], error) {
	var env model.Envelope[Listing[T]]
	if err := c.get(ctx, path, q, token, &env); err != nil {
		return model.Page[T]{}, err
	}
	if env.Data.Data == nil {
		env.Data.Data = []T{}
	}
	return env.Data.Page, nil
}

func one[T any](ctx context.Context, c *Client, path, token string) (T, error) {
	var env model.Envelope[model.OneOrMany[T]]
	var zero T
	if err := c.get(ctx, path, nil, token, &env); err != nil {
		return zero, err
	}
	v, ok := env.Data.First()
	if !ok {
		return zero, ErrNotFound
	}
	return v, nil
}

func idPath(prefix string, id uint64) string { return prefix + "/" + strconv.FormatUint(id, 10) }

// ListServices returns a page of the service catalog.
func (c *Client) ListServices(ctx context.Context, token string, opts PageOptions) (model.Page[model.Service], error) {
	return list[model.Service](ctx, c, "/servicios", opts.values(), token)
}

// ListServicesByCategory re-queries the catalog restricted to one category.
func (c *Client) ListServicesByCategory(ctx context.Context, token string, categoryID uint64, opts PageOptions) (model.Page[model.Service], error) {
	return list[model.Service](ctx, c, idPath("/servicios/categoria", categoryID), opts.values(), token)
}

// ListServicesByEnterprise re-queries the catalog restricted to one owner.
func (c *Client) ListServicesByEnterprise(ctx context.Context, token string, enterpriseID uint64, opts PageOptions) (model.Page[model.Service], error) {
	return list[model.Service](ctx, c, idPath("/servicios/emprendedor", enterpriseID), opts.values(), token)
}

// NearbyServices returns services within a radius of a point.
func (c *Client) NearbyServices(ctx context.Context, token string, geo GeoOptions, opts PageOptions) (model.Page[model.Service], error) {
	q := opts.values()
	q.Set("latitud", strconv.FormatFloat(geo.Latitude, 'f', -1, 64))
	q.Set("longitud", strconv.FormatFloat(geo.Longitude, 'f', -1, 64))
	if geo.RadiusKM > 0 {
		q.Set("distancia", strconv.FormatFloat(geo.RadiusKM, 'f', -1, 64))
	}
	return list[model.Service](ctx, c, "/servicios/ubicacion", q, token)
}

// GetService fetches one service with its schedules, sliders and owner.
func (c *Client) GetService(ctx context.Context, token string, id uint64) (model.Service, error) {
	return one[model.Service](ctx, c, idPath("/servicios", id), token)
}

// ListEnterprises returns a page of enterprises.
func (c *Client) ListEnterprises(ctx context.Context, token string, opts PageOptions) (model.Page[model.Enterprise], error) {
	return list[model.Enterprise](ctx, c, "/emprendedores", opts.values(), token)
}

// ListEnterprisesByCategory re-queries enterprises by their category label.
func (c *Client) ListEnterprisesByCategory(ctx context.Context, token, category string, opts PageOptions) (model.Page[model.Enterprise], error) {
	return list[model.Enterprise](ctx, c, "/emprendedores/categoria/"+url.PathEscape(category), opts.values(), token)
}

// GetEnterprise fetches one enterprise.
func (c *Client) GetEnterprise(ctx context.Context, token string, id uint64) (model.Enterprise, error) {
	return one[model.Enterprise](ctx, c, idPath("/emprendedores", id), token)
}

// ListCategories returns every service category.
func (c *Client) ListCategories(ctx context.Context, token string, opts PageOptions) (model.Page[model.Category], error) {
	return list[model.Category](ctx, c, "/categorias", opts.values(), token)
}

// ListAssociations returns a page of associations.
func (c *Client) ListAssociations(ctx context.Context, token string, opts PageOptions) (model.Page[model.Association], error) {
	return list[model.Association](ctx, c, "/asociaciones", opts.values(), token)
}

// ListMunicipalities returns every municipality.
func (c *Client) ListMunicipalities(ctx context.Context, token string, opts PageOptions) (model.Page[model.Municipality], error) {
	return list[model.Municipality](ctx, c, "/municipalidad", opts.values(), token)
}

// GetMunicipality fetches one municipality with its sliders and galleries.
func (c *Client) GetMunicipality(ctx context.Context, token string, id uint64) (model.Municipality, error) {
	return one[model.Municipality](ctx, c, idPath("/municipalidad", id), token)
}

// ListEvents returns a page of events.
func (c *Client) ListEvents(ctx context.Context, token string, opts PageOptions) (model.Page[model.Event], error) {
	return list[model.Event](ctx, c, "/eventos", opts.values(), token)
}

// ListEventsByEnterprise re-queries events organised by one enterprise.
func (c *Client) ListEventsByEnterprise(ctx context.Context, token string, enterpriseID uint64, opts PageOptions) (model.Page[model.Event], error) {
	return list[model.Event](ctx, c, idPath("/eventos/emprendedor", enterpriseID), opts.values(), token)
}

// GetEvent fetches one event.
func (c *Client) GetEvent(ctx context.Context, token string, id uint64) (model.Event, error) {
	return one[model.Event](ctx, c, idPath("/eventos", id), token)
}
