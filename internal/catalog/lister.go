package catalog

import (
	"context"

	"github.com/iliyamo/tourism-booking-gateway/internal/model"
	"github.com/iliyamo/tourism-booking-gateway/internal/upstream"
)

// Source is the part of the upstream client the lister reads from.
type Source interface {
	ListServices(ctx context.Context, token string, opts upstream.PageOptions) (model.Page[model.Service], error)
	ListServicesByCategory(ctx context.Context, token string, categoryID uint64, opts upstream.PageOptions) (model.Page[model.Service], error)
	ListServicesByEnterprise(ctx context.Context, token string, enterpriseID uint64, opts upstream.PageOptions) (model.Page[model.Service], error)
	NearbyServices(ctx context.Context, token string, geo upstream.GeoOptions, opts upstream.PageOptions) (model.Page[model.Service], error)
	ListEnterprises(ctx context.Context, token string, opts upstream.PageOptions) (model.Page[model.Enterprise], error)
	ListEnterprisesByCategory(ctx context.Context, token, category string, opts upstream.PageOptions) (model.Page[model.Enterprise], error)
	ListEvents(ctx context.Context, token string, opts upstream.PageOptions) (model.Page[model.Event], error)
	ListEventsByEnterprise(ctx context.Context, token string, enterpriseID uint64, opts upstream.PageOptions) (model.Page[model.Event], error)
	ListCategories(ctx context.Context, token string, opts upstream.PageOptions) (model.Page[model.Category], error)
	ListAssociations(ctx context.Context, token string, opts upstream.PageOptions) (model.Page[model.Association], error)
	ListMunicipalities(ctx context.Context, token string, opts upstream.PageOptions) (model.Page[model.Municipality], error)
}

// Query combines the structural filters with the local search term.  At most
// one structural filter is applied; Geo wins over CategoryID, which wins over
// EnterpriseID.
type Query struct {
	Page         int
	PerPage      int
	Search       string
	CategoryID   uint64
	Category     string
	EnterpriseID uint64
	Geo          *upstream.GeoOptions
}

func (q Query) pageOptions() upstream.PageOptions {
	return upstream.PageOptions{Page: q.Page, PerPage: q.PerPage}
}

// Result is the upstream page plus the locally narrowed view of it.
// Pagination metadata always describes the upstream page, not Items.
type Result[T any] struct {
	Page   model.Page[T]
	Items  []T
	Search string
}

func narrow[T any](p model.Page[T], search string, fields func(T) []string) Result[T] {
	return Result[T]{Page: p, Items: Filter(p.Data, search, fields), Search: search}
}

// Lister runs catalog queries for one upstream.
type Lister struct {
	src Source
}

func NewLister(src Source) *Lister { return &Lister{src: src} }

// Services lists services.
func (l *Lister) Services(ctx context.Context, token string, q Query) (Result[model.Service], error) {
	var (
		p   model.Page[model.Service]
		err error
	)
	switch {
	case q.Geo != nil:
		p, err = l.src.NearbyServices(ctx, token, *q.Geo, q.pageOptions())
	case q.CategoryID != 0:
		p, err = l.src.ListServicesByCategory(ctx, token, q.CategoryID, q.pageOptions())
	case q.EnterpriseID != 0:
		p, err = l.src.ListServicesByEnterprise(ctx, token, q.EnterpriseID, q.pageOptions())
	default:
		p, err = l.src.ListServices(ctx, token, q.pageOptions())
	}
	if err != nil {
		return Result[model.Service]{}, err
	}
	return narrow(p, q.Search, ServiceFields), nil
}

// Enterprises lists enterprises, optionally by category label.
func (l *Lister) Enterprises(ctx context.Context, token string, q Query) (Result[model.Enterprise], error) {
	var (
		p   model.Page[model.Enterprise]
		err error
	)
	if q.Category != "" {
		p, err = l.src.ListEnterprisesByCategory(ctx, token, q.Category, q.pageOptions())
	} else {
		p, err = l.src.ListEnterprises(ctx, token, q.pageOptions())
	}
	if err != nil {
		return Result[model.Enterprise]{}, err
	}
	return narrow(p, q.Search, EnterpriseFields), nil
}

// Events lists events, optionally by organiser.
func (l *Lister) Events(ctx context.Context, token string, q Query) (Result[model.Event], error) {
	var (
		p   model.Page[model.Event]
		err error
	)
	if q.EnterpriseID != 0 {
		p, err = l.src.ListEventsByEnterprise(ctx, token, q.EnterpriseID, q.pageOptions())
	} else {
		p, err = l.src.ListEvents(ctx, token, q.pageOptions())
	}
	if err != nil {
		return Result[model.Event]{}, err
	}
	return narrow(p, q.Search, EventFields), nil
}

func (l *Lister) Categories(ctx context.Context, token string, q Query) (Result[model.Category], error) {
	p, err := l.src.ListCategories(ctx, token, q.pageOptions())
	if err != nil {
		return Result[model.Category]{}, err
	}
	return narrow(p, q.Search, CategoryFields), nil
}

func (l *Lister) Associations(ctx context.Context, token string, q Query) (Result[model.Association], error) {
	p, err := l.src.ListAssociations(ctx, token, q.pageOptions())
	if err != nil {
		return Result[model.Association]{}, err
	}
	return narrow(p, q.Search, AssociationFields), nil
}

func (l *Lister) Municipalities(ctx context.Context, token string, q Query) (Result[model.Municipality], error) {
	p, err := l.src.ListMunicipalities(ctx, token, q.pageOptions())
	if err != nil {
		return Result[model.Municipality]{}, err
	}
	return narrow(p, q.Search, MunicipalityFields), nil
}
