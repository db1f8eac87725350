package vendors

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
	purchases []Purchase
	payments  []Payment
	nextID    int64
}

func (f *fakeRepo) CreatePurchase(_ context.Context, input CreatePurchaseInput) (*Purchase, error) {
	f.nextID++
	p := Purchase{
		ID:           f.nextID,
		VendorName:   input.VendorName,
		InvoiceRef:   input.InvoiceRef,
		PurchaseDate: input.PurchaseDate,
		Amount:       input.Amount,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	f.purchases = append(f.purchases, p)
	return &p, nil
}

func (f *fakeRepo) GetPurchase(_ context.Context, id int64) (*Purchase, error) {
	for i := range f.purchases {
		if f.purchases[i].ID == id {
			p := f.purchases[i]
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) ListPurchases(_ context.Context, vendor string, limit, offset int) ([]Purchase, error) {
	return f.purchases, nil
}

func (f *fakeRepo) SetPaid(_ context.Context, id int64, paid bool) error {
	for i := range f.purchases {
		if f.purchases[i].ID == id {
			f.purchases[i].Paid = paid
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeRepo) CreatePayment(_ context.Context, input RecordPaymentInput) (*Payment, error) {
	f.nextID++
	p := Payment{
		ID:         f.nextID,
		PurchaseID: input.PurchaseID,
		Amount:     input.Amount,
		PaidAt:     input.PaidAt,
		CreatedAt:  time.Now(),
	}
	f.payments = append(f.payments, p)
	return &p, nil
}

func (f *fakeRepo) SumPayments(_ context.Context, purchaseID int64) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range f.payments {
		if p.PurchaseID == purchaseID {
			total = total.Add(p.Amount)
		}
	}
	return total, nil
}

func (f *fakeRepo) ListPayments(_ context.Context, purchaseID int64) ([]Payment, error) {
	var out []Payment
	for _, p := range f.payments {
		if p.PurchaseID == purchaseID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeRepo) OutstandingByVendor(_ context.Context) ([]Balance, error) {
	byVendor := map[string]*Balance{}
	for _, p := range f.purchases {
		if p.Paid {
			continue
		}
		b, ok := byVendor[p.VendorName]
		if !ok {
			b = &Balance{VendorName: p.VendorName}
			byVendor[p.VendorName] = b
		}
		b.TotalPurchased = b.TotalPurchased.Add(p.Amount)
		paid, _ := f.SumPayments(context.Background(), p.ID)
		b.TotalPaid = b.TotalPaid.Add(paid)
	}
	var out []Balance
	for _, b := range byVendor {
		b.Outstanding = b.TotalPurchased.Sub(b.TotalPaid)
		if b.Outstanding.Sign() > 0 {
			out = append(out, *b)
		}
	}
	return out, nil
}

func newTestService(repo *fakeRepo) *Service {
	return NewService(repo, slog.New(slog.DiscardHandler))
}

func seedPurchase(t *testing.T, svc *Service, vendor, amount string) *Purchase {
	t.Helper()
	p, err := svc.CreatePurchase(context.Background(), CreatePurchaseInput{
		VendorName: vendor,
		Amount:     dec(amount),
	})
	require.NoError(t, err)
	return p
}

func TestCreatePurchaseValidation(t *testing.T) {
	svc := newTestService(&fakeRepo{})

	_, err := svc.CreatePurchase(context.Background(), CreatePurchaseInput{VendorName: " ", Amount: dec("100")})
	require.ErrorIs(t, err, ErrInvalidPurchase)

	_, err = svc.CreatePurchase(context.Background(), CreatePurchaseInput{VendorName: "Rough Source NV", Amount: decimal.Zero})
	require.ErrorIs(t, err, ErrInvalidPurchase)
}

func TestRecordPaymentMarksPaidWhenSettled(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)
	purchase := seedPurchase(t, svc, "Rough Source NV", "1000")

	_, err := svc.RecordPayment(context.Background(), RecordPaymentInput{PurchaseID: purchase.ID, Amount: dec("400")})
	require.NoError(t, err)
	got, _, err := svc.GetPurchase(context.Background(), purchase.ID)
	require.NoError(t, err)
	require.False(t, got.Paid)

	_, err = svc.RecordPayment(context.Background(), RecordPaymentInput{PurchaseID: purchase.ID, Amount: dec("600")})
	require.NoError(t, err)
	got, payments, err := svc.GetPurchase(context.Background(), purchase.ID)
	require.NoError(t, err)
	require.True(t, got.Paid)
	require.Len(t, payments, 2)
}

func TestRecordPaymentRejectsOverpayment(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)
	purchase := seedPurchase(t, svc, "Rough Source NV", "1000")

	_, err := svc.RecordPayment(context.Background(), RecordPaymentInput{PurchaseID: purchase.ID, Amount: dec("1000.01")})
	require.ErrorIs(t, err, ErrOverpayment)
}

func TestTogglePaid(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)
	purchase := seedPurchase(t, svc, "Rough Source NV", "1000")

	got, err := svc.TogglePaid(context.Background(), purchase.ID)
	require.NoError(t, err)
	require.True(t, got.Paid)

	got, err = svc.TogglePaid(context.Background(), purchase.ID)
	require.NoError(t, err)
	require.False(t, got.Paid)
}

func TestOutstandingSkipsSettledPurchases(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)

	first := seedPurchase(t, svc, "Rough Source NV", "1000")
	seedPurchase(t, svc, "Polished Partners", "500")

	_, err := svc.RecordPayment(context.Background(), RecordPaymentInput{PurchaseID: first.ID, Amount: dec("1000")})
	require.NoError(t, err)

	balances, err := svc.Outstanding(context.Background())
	require.NoError(t, err)
	require.Len(t, balances, 1)
	require.Equal(t, "Polished Partners", balances[0].VendorName)
	require.True(t, balances[0].Outstanding.Equal(dec("500")))
}
