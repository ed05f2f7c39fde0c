package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/retail-backoffice/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo agregaciones en memoria.
type ReportRepo struct {
	s *Store
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

func (r *ReportRepo) SalesSummary(_ context.Context, from, to time.Time) (repository.SalesSummaryResult, error) {
	defer r.s.rlock(false)()
	res := repository.SalesSummaryResult{Total: decimal.Zero}
	for _, sale := range r.s.data.sales {
		if !inRange(sale.CreatedAt, from, to) {
			continue
		}
		if sale.Status == entity.SaleStatusAnnulled {
			res.AnnulledCount++
			continue
		}
		res.SalesCount++
		res.Total = res.Total.Add(sale.Total)
	}
	return res, nil
}

func (r *ReportRepo) SalesByPaymentMethod(_ context.Context, from, to time.Time) ([]repository.PaymentMethodResult, error) {
	defer r.s.rlock(false)()
	byMethod := map[string]*repository.PaymentMethodResult{}
	for _, sale := range r.s.data.sales {
		if sale.Status != entity.SaleStatusActive || !inRange(sale.CreatedAt, from, to) {
			continue
		}
		m, ok := byMethod[sale.PaymentMethod]
		if !ok {
			m = &repository.PaymentMethodResult{PaymentMethod: sale.PaymentMethod, Total: decimal.Zero}
			byMethod[sale.PaymentMethod] = m
		}
		m.SalesCount++
		m.Total = m.Total.Add(sale.Total)
	}
	out := make([]repository.PaymentMethodResult, 0, len(byMethod))
	for _, m := range byMethod {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].PaymentMethod < out[j].PaymentMethod
	})
	return out, nil
}

func (r *ReportRepo) TopProducts(_ context.Context, from, to time.Time, limit int) ([]repository.TopProductResult, error) {
	defer r.s.rlock(false)()
	byProduct := map[string]*repository.TopProductResult{}
	for _, sale := range r.s.data.sales {
		if sale.Status != entity.SaleStatusActive || !inRange(sale.CreatedAt, from, to) {
			continue
		}
		for _, it := range sale.Items {
			t, ok := byProduct[it.ProductID]
			if !ok {
				p := r.s.data.products[it.ProductID]
				t = &repository.TopProductResult{
					ProductID:   it.ProductID,
					Code:        p.Code,
					ProductName: p.Name,
					UnitsSold:   decimal.Zero,
					Revenue:     decimal.Zero,
				}
				byProduct[it.ProductID] = t
			}
			t.UnitsSold = t.UnitsSold.Add(it.Quantity)
			t.Revenue = t.Revenue.Add(it.Subtotal)
		}
	}
	out := make([]repository.TopProductResult, 0, len(byProduct))
	for _, t := range byProduct {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UnitsSold.Equal(out[j].UnitsSold) {
			return out[i].UnitsSold.GreaterThan(out[j].UnitsSold)
		}
		if !out[i].Revenue.Equal(out[j].Revenue) {
			return out[i].Revenue.GreaterThan(out[j].Revenue)
		}
		return out[i].Code < out[j].Code
	})
	return page(out, limit, 0), nil
}

func (r *ReportRepo) StockDrift(_ context.Context) ([]repository.StockDriftResult, error) {
	defer r.s.rlock(false)()
	in := map[string]decimal.Decimal{}
	out := map[string]decimal.Decimal{}
	for _, m := range r.s.data.movements {
		if m.Direction == entity.DirectionIn {
			in[m.ProductID] = in[m.ProductID].Add(m.Quantity)
		} else {
			out[m.ProductID] = out[m.ProductID].Add(m.Quantity)
		}
	}
	var drifts []repository.StockDriftResult
	for _, p := range r.s.data.products {
		d := repository.StockDriftResult{
			ProductID:    p.ID,
			Code:         p.Code,
			ProductName:  p.Name,
			CurrentStock: p.CurrentStock,
			LedgerIn:     in[p.ID],
			LedgerOut:    out[p.ID],
		}
		if !d.Drift().IsZero() {
			drifts = append(drifts, d)
		}
	}
	sort.Slice(drifts, func(i, j int) bool { return drifts[i].Code < drifts[j].Code })
	return drifts, nil
}
