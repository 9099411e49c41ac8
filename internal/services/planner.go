package services

import (
	"context"
	"disposal-route-service/internal/domain"
	"disposal-route-service/internal/platform/metrics"
	"disposal-route-service/internal/platform/obs"
	"disposal-route-service/internal/ports"
	"disposal-route-service/internal/routing"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrNoRoute          = errors.New("no route found")
	ErrCompanyNotFound  = errors.New("company not found")
	ErrStorageNotFound  = errors.New("storage not found")
	ErrMaterialNotFound = errors.New("material not found")
	ErrCompanyNotPlaced = errors.New("company location is not on the road network")
	ErrNothingToUnload  = errors.New("company holds nothing to unload")
)

var tracer = otel.Tracer("disposal-route-service/internal/services")

type Options struct {
	// ProjectWaypoints runs searches over routing.ProjectWaypoints of the
	// snapshot instead of the raw road graph.
	ProjectWaypoints bool

	// MaxCommitAttempts bounds Unload retries on a commit conflict.
	MaxCommitAttempts int
}

// Planner answers disposal routing questions for companies and commits
// unloads against a NetworkStore. Cache and Metrics are optional.
type Planner struct {
	Store   ports.NetworkStore
	Cache   ports.ScanCache
	Metrics *metrics.Registry
	Options Options
}

type DisposalRouteRequest struct {
	CompanyID domain.CompanyID
	// Material limits the search to one material; nil means every material
	// the company holds, delivered to a single storage.
	Material *domain.MaterialID
	// Partial lets free space add up over several stops. Only honoured
	// together with Material.
	Partial bool
}

func (r DisposalRouteRequest) accumulation() domain.Accumulation {
	if r.Material != nil && r.Partial {
		return domain.Partial
	}
	return domain.SingleStop
}

type DisposalPlan struct {
	Route        domain.Route
	Demands      []domain.Demand
	Accumulation domain.Accumulation
}

type UnloadRequest struct {
	CompanyID domain.CompanyID
	Material  *domain.MaterialID
	Partial   bool
}

type UnloadResult struct {
	Plan     DisposalPlan
	Delta    domain.LedgerDelta
	Attempts int
}

// RouteToStorage finds the shortest storage-only route from a company to a
// storage.
func (p *Planner) RouteToStorage(ctx context.Context, companyID domain.CompanyID, storageID domain.StorageID) (_ domain.Route, err error) {
	defer obs.Time(ctx, "planner.RouteToStorage")(&err)
	ctx, span := tracer.Start(ctx, "planner.RouteToStorage", trace.WithAttributes(
		attribute.Int64("company_id", int64(companyID)),
		attribute.Int64("storage_id", int64(storageID)),
	))
	defer endSpan(span, &err)

	var route domain.Route
	err = p.Store.View(ctx, func(net *domain.Network) error {
		c, err := placedCompany(net, companyID)
		if err != nil {
			return err
		}
		s, ok := net.Storage(storageID)
		if !ok {
			return fmt.Errorf("storage %d: %w", storageID, ErrStorageNotFound)
		}

		res := p.search(ctx, p.graph(net), c.LocationID, routing.Query{Mode: routing.ToDestination, Target: s.LocationID})
		if !res.Found {
			return fmt.Errorf("company %d to storage %d: %w", companyID, storageID, ErrNoRoute)
		}
		route = res.Route
		return nil
	})
	if err != nil {
		return domain.Route{}, fmt.Errorf("route to storage: %w", err)
	}
	return route, nil
}

// DisposalRoute finds the shortest route along which the company's waste fits.
func (p *Planner) DisposalRoute(ctx context.Context, req DisposalRouteRequest) (_ DisposalPlan, err error) {
	defer obs.Time(ctx, "planner.DisposalRoute")(&err)
	ctx, span := tracer.Start(ctx, "planner.DisposalRoute", trace.WithAttributes(requestAttributes(req)...))
	defer endSpan(span, &err)

	var plan DisposalPlan
	err = p.Store.View(ctx, func(net *domain.Network) error {
		var err error
		plan, _, err = p.planDisposal(ctx, net, req)
		return err
	})
	if err != nil {
		return DisposalPlan{}, fmt.Errorf("disposal route: %w", err)
	}
	return plan, nil
}

// ConnectedStorages lists the storages reachable from a company in discovery
// order. Results are cached per origin and network fingerprint.
func (p *Planner) ConnectedStorages(ctx context.Context, companyID domain.CompanyID) (_ []*domain.Storage, err error) {
	defer obs.Time(ctx, "planner.ConnectedStorages")(&err)
	ctx, span := tracer.Start(ctx, "planner.ConnectedStorages", trace.WithAttributes(
		attribute.Int64("company_id", int64(companyID)),
	))
	defer endSpan(span, &err)

	var storages []*domain.Storage
	err = p.Store.View(ctx, func(net *domain.Network) error {
		c, err := placedCompany(net, companyID)
		if err != nil {
			return err
		}

		key := fmt.Sprintf("%d:%016x", c.LocationID, net.Fingerprint())
		if cached, ok := p.cachedScan(ctx, net, key); ok {
			storages = cached
			return nil
		}

		storages = routing.ConnectedStorages(net, c.LocationID)
		p.storeScan(ctx, key, storages)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connected storages: %w", err)
	}
	return storages, nil
}

// Unload finds a disposal route and commits the resulting ledger delta.
// A commit conflict re-reads the network and tries again, up to
// Options.MaxCommitAttempts times.
func (p *Planner) Unload(ctx context.Context, req UnloadRequest) (_ UnloadResult, err error) {
	defer obs.Time(ctx, "planner.Unload")(&err)
	routeReq := DisposalRouteRequest(req)
	ctx, span := tracer.Start(ctx, "planner.Unload", trace.WithAttributes(requestAttributes(routeReq)...))
	defer endSpan(span, &err)

	contract := "full"
	if routeReq.accumulation() == domain.Partial {
		contract = "partial"
	}

	attempts := max(p.Options.MaxCommitAttempts, 1)
	for attempt := 1; ; attempt++ {
		var result UnloadResult
		err = p.Store.Update(ctx, func(net *domain.Network) (domain.LedgerDelta, error) {
			plan, c, err := p.planDisposal(ctx, net, routeReq)
			if err != nil {
				return domain.LedgerDelta{}, err
			}

			var delta domain.LedgerDelta
			if plan.Accumulation == domain.Partial {
				delta, err = routing.PartialUnload(plan.Route, c, *req.Material)
			} else {
				delta, err = routing.FullUnload(plan.Route, c, demandMaterials(plan.Demands))
			}
			if err != nil {
				return domain.LedgerDelta{}, err
			}

			result = UnloadResult{Plan: plan, Delta: delta}
			return delta, nil
		})

		if err == nil {
			result.Attempts = attempt
			span.SetAttributes(attribute.Int("attempts", attempt))
			p.Metrics.RecordUnload(contract, "committed")
			return result, nil
		}
		if !errors.Is(err, ports.ErrConflict) || attempt >= attempts {
			p.Metrics.RecordUnload(contract, "failed")
			return UnloadResult{}, fmt.Errorf("unload: company %d: attempt %d of %d: %w", req.CompanyID, attempt, attempts, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			p.Metrics.RecordUnload(contract, "failed")
			return UnloadResult{}, fmt.Errorf("unload: company %d: %w", req.CompanyID, ctxErr)
		}

		p.Metrics.RecordCommitRetry()
		slog.WarnContext(ctx, "unload commit conflict, retrying",
			slog.String("req_id", obs.RequestID(ctx)),
			slog.Int64("company_id", int64(req.CompanyID)),
			slog.Int("attempt", attempt),
		)
	}
}

// planDisposal resolves the company and demands of req and runs the capacity search.
func (p *Planner) planDisposal(ctx context.Context, net *domain.Network, req DisposalRouteRequest) (DisposalPlan, *domain.Company, error) {
	c, err := placedCompany(net, req.CompanyID)
	if err != nil {
		return DisposalPlan{}, nil, err
	}

	var demands []domain.Demand
	if req.Material != nil {
		m := *req.Material
		if _, ok := net.Material(m); !ok {
			return DisposalPlan{}, nil, fmt.Errorf("material %d: %w", m, ErrMaterialNotFound)
		}
		if amount := c.Materials[m]; amount > 0 {
			demands = []domain.Demand{{Material: m, Amount: amount}}
		}
	} else {
		demands = c.Demands()
	}
	if len(demands) == 0 {
		return DisposalPlan{}, nil, fmt.Errorf("company %d: %w", c.ID, ErrNothingToUnload)
	}

	acc := req.accumulation()
	res := p.search(ctx, p.graph(net), c.LocationID, routing.Query{
		Mode:         routing.ToCapacity,
		Demands:      demands,
		Accumulation: acc,
	})
	if !res.Found {
		return DisposalPlan{}, nil, fmt.Errorf("company %d with %s accumulation: %w", c.ID, acc, ErrNoRoute)
	}

	return DisposalPlan{Route: res.Route, Demands: demands, Accumulation: acc}, c, nil
}

func (p *Planner) graph(net *domain.Network) routing.Graph {
	if p.Options.ProjectWaypoints {
		return routing.ProjectWaypoints(net)
	}
	return net
}

func (p *Planner) search(ctx context.Context, g routing.Graph, origin domain.LocationID, q routing.Query) routing.Result {
	start := time.Now()
	res := routing.Search(g, origin, q)
	p.Metrics.RecordSearch(q.Mode.String(), res.Found, res.Expanded, time.Since(start))

	trace.SpanFromContext(ctx).AddEvent("search", trace.WithAttributes(
		attribute.String("mode", q.Mode.String()),
		attribute.Bool("found", res.Found),
		attribute.Int("expanded", res.Expanded),
		attribute.Int("distance", res.Route.Distance),
	))
	return res
}

// cachedScan resolves cached ids against the snapshot. A cache error or a
// stale id counts as a miss.
func (p *Planner) cachedScan(ctx context.Context, net *domain.Network, key string) ([]*domain.Storage, bool) {
	if p.Cache == nil {
		return nil, false
	}

	ids, ok, err := p.Cache.Get(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "scan cache get failed", slog.String("key", key), slog.Any("err", err))
	}
	if err != nil || !ok {
		p.Metrics.RecordScanCache(false)
		return nil, false
	}

	out := make([]*domain.Storage, 0, len(ids))
	for _, id := range ids {
		s, found := net.Storage(id)
		if !found {
			p.Metrics.RecordScanCache(false)
			return nil, false
		}
		out = append(out, s)
	}
	p.Metrics.RecordScanCache(true)
	return out, true
}

func (p *Planner) storeScan(ctx context.Context, key string, storages []*domain.Storage) {
	if p.Cache == nil {
		return
	}
	ids := make([]domain.StorageID, len(storages))
	for i, s := range storages {
		ids[i] = s.ID
	}
	if err := p.Cache.Put(ctx, key, ids); err != nil {
		slog.WarnContext(ctx, "scan cache put failed", slog.String("key", key), slog.Any("err", err))
	}
}

func placedCompany(net *domain.Network, id domain.CompanyID) (*domain.Company, error) {
	c, ok := net.Company(id)
	if !ok {
		return nil, fmt.Errorf("company %d: %w", id, ErrCompanyNotFound)
	}
	if _, ok := net.Location(c.LocationID); !ok {
		return nil, fmt.Errorf("company %d at location %d: %w", id, c.LocationID, ErrCompanyNotPlaced)
	}
	return c, nil
}

func demandMaterials(demands []domain.Demand) []domain.MaterialID {
	out := make([]domain.MaterialID, len(demands))
	for i, d := range demands {
		out[i] = d.Material
	}
	return out
}

func requestAttributes(req DisposalRouteRequest) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.Int64("company_id", int64(req.CompanyID)),
		attribute.String("accumulation", req.accumulation().String()),
	}
	if req.Material != nil {
		attrs = append(attrs, attribute.Int64("material_id", int64(*req.Material)))
	}
	return attrs
}

func endSpan(span trace.Span, errp *error) {
	if errp != nil && *errp != nil {
		span.RecordError(*errp)
		span.SetStatus(codes.Error, (*errp).Error())
	}
	span.End()
}
