package sales

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fakeRepo struct {
	sales  []Sale
	nextID int64
}

func (f *fakeRepo) Create(_ context.Context, input CreateSaleInput) (*Sale, error) {
	f.nextID++
	s := Sale{
		ID:           f.nextID,
		SaleDate:     input.SaleDate,
		BuyerName:    input.BuyerName,
		SaleAmount:   input.SaleAmount,
		CostAmount:   input.CostAmount,
		ShippingCost: input.ShippingCost,
		GSTAmount:    input.GSTAmount,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	f.sales = append(f.sales, s)
	return &s, nil
}

func (f *fakeRepo) Get(_ context.Context, id int64) (*Sale, error) {
	for i := range f.sales {
		if f.sales[i].ID == id {
			s := f.sales[i]
			return &s, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) List(_ context.Context, req ListSalesRequest) ([]Sale, error) {
	var out []Sale
	for _, s := range f.sales {
		if !req.From.IsZero() && s.SaleDate.Before(req.From) {
			continue
		}
		if !req.To.IsZero() && !s.SaleDate.Before(req.To) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func newTestService(repo *fakeRepo) *Service {
	return NewService(repo, slog.New(slog.DiscardHandler))
}

func TestSaleProfit(t *testing.T) {
	s := Sale{
		SaleAmount:   dec("10000"),
		CostAmount:   dec("7500"),
		ShippingCost: dec("120"),
		GSTAmount:    dec("300"),
	}
	require.True(t, s.Profit().Equal(dec("2080")), "got %s", s.Profit())
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(&fakeRepo{})

	_, err := svc.Create(context.Background(), CreateSaleInput{BuyerName: "  ", SaleAmount: dec("100")})
	require.ErrorIs(t, err, ErrInvalidSale)

	_, err = svc.Create(context.Background(), CreateSaleInput{BuyerName: "Brillante", SaleAmount: decimal.Zero})
	require.ErrorIs(t, err, ErrInvalidSale)

	_, err = svc.Create(context.Background(), CreateSaleInput{
		BuyerName:  "Brillante",
		SaleAmount: dec("100"),
		CostAmount: dec("-1"),
	})
	require.ErrorIs(t, err, ErrInvalidSale)

	sale, err := svc.Create(context.Background(), CreateSaleInput{
		BuyerName:  "Brillante",
		SaleAmount: dec("100"),
	})
	require.NoError(t, err)
	require.False(t, sale.SaleDate.IsZero(), "sale date defaults to now")
}

func TestMonthlySummary(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)

	add := func(day int, sale, cost, shipping, gst string) {
		_, err := svc.Create(context.Background(), CreateSaleInput{
			SaleDate:     time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC),
			BuyerName:    "Brillante",
			SaleAmount:   dec(sale),
			CostAmount:   dec(cost),
			ShippingCost: dec(shipping),
			GSTAmount:    dec(gst),
		})
		require.NoError(t, err)
	}
	add(3, "10000", "7500", "120", "300")
	add(18, "5000", "4200", "80", "150")

	// Outside the month, must not count.
	_, err := svc.Create(context.Background(), CreateSaleInput{
		SaleDate:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		BuyerName:  "Brillante",
		SaleAmount: dec("99999"),
	})
	require.NoError(t, err)

	sum, err := svc.MonthlySummary(context.Background(), 2026, time.March)
	require.NoError(t, err)
	require.Equal(t, 2, sum.SaleCount)
	require.True(t, sum.TotalSales.Equal(dec("15000")))
	require.True(t, sum.TotalCost.Equal(dec("11700")))
	require.True(t, sum.TotalShipping.Equal(dec("200")))
	require.True(t, sum.TotalGST.Equal(dec("450")))
	require.True(t, sum.TotalProfit.Equal(dec("2650")), "got %s", sum.TotalProfit)
}

func TestSummarizeEmptyRange(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	sum := Summarize(from, from.AddDate(0, 1, 0), nil)
	require.Zero(t, sum.SaleCount)
	require.True(t, sum.TotalProfit.IsZero())
}
