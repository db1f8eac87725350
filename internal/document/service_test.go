package document

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	records    []Record
	nextID     int64
	conflicts  int
	lastErr    error
	createErr  error
	numberSeen []string
}

func (f *fakeRepo) CreateDocument(_ context.Context, rec Record) (*Record, error) {
	f.numberSeen = append(f.numberSeen, rec.Snapshot.Header.Number)
	if f.conflicts > 0 {
		f.conflicts--
		return nil, ErrNumberConflict
	}
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	rec.ID = f.nextID
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	f.records = append(f.records, rec)
	return &rec, nil
}

func (f *fakeRepo) GetDocument(_ context.Context, id int64) (*Record, error) {
	for i := range f.records {
		if f.records[i].ID == id {
			rec := f.records[i]
			return &rec, nil
		}
	}
	return nil, ErrDocumentNotFound
}

func (f *fakeRepo) ListDocuments(_ context.Context, req ListDocumentsRequest) ([]Record, error) {
	var out []Record
	for _, rec := range f.records {
		if req.Kind != "" && rec.Snapshot.Kind != req.Kind {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (f *fakeRepo) LastNumber(_ context.Context, kind Kind) (string, error) {
	if f.lastErr != nil {
		return "", f.lastErr
	}
	for i := len(f.records) - 1; i >= 0; i-- {
		if f.records[i].Snapshot.Kind == kind {
			return f.records[i].Snapshot.Header.Number, nil
		}
	}
	return "", nil
}

type fakeResolver struct {
	recipients map[int64]*Recipient
	err        error
}

func (f *fakeResolver) Resolve(_ context.Context, id int64) (*Recipient, error) {
	if f.err != nil {
		return nil, f.err
	}
	rec, ok := f.recipients[id]
	if !ok {
		return nil, errors.New("recipient not found")
	}
	return rec, nil
}

func newTestService(repo *fakeRepo, resolver *fakeResolver) *Service {
	if resolver == nil {
		resolver = &fakeResolver{recipients: map[int64]*Recipient{
			7: {ID: 7, CompanyName: "Brillante Gems BV", City: "Antwerp", Country: "Belgium"},
		}}
	}
	return NewService(repo, resolver, slog.New(slog.DiscardHandler))
}

func validInput() CreateDocumentInput {
	return CreateDocumentInput{
		Kind:        KindInvoice,
		Date:        time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		RecipientID: 7,
		Items: []LineItemInput{
			{Description: "Round Brilliant", Carat: dec("1.00"), PricePerCarat: dec("500.00")},
		},
	}
}

func TestCreateDocumentGeneratesNumber(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, nil)

	rec, err := svc.CreateDocument(context.Background(), validInput())
	require.NoError(t, err)
	require.Equal(t, "CD-0001A/1403", rec.Snapshot.Header.Number)
	require.Equal(t, 30, rec.Snapshot.Header.PaymentTermsDays)

	rec, err = svc.CreateDocument(context.Background(), validInput())
	require.NoError(t, err)
	require.Equal(t, "CD-0002A/1403", rec.Snapshot.Header.Number)
}

func TestCreateDocumentMemoNumbering(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, nil)

	input := validInput()
	input.Kind = KindMemo
	rec, err := svc.CreateDocument(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, "MO-0001", rec.Snapshot.Header.Number)
}

func TestCreateDocumentRetriesOnNumberConflict(t *testing.T) {
	repo := &fakeRepo{conflicts: 1}
	svc := newTestService(repo, nil)

	rec, err := svc.CreateDocument(context.Background(), validInput())
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Len(t, repo.numberSeen, 2)
}

func TestCreateDocumentGivesUpAfterSecondConflict(t *testing.T) {
	repo := &fakeRepo{conflicts: 2}
	svc := newTestService(repo, nil)

	_, err := svc.CreateDocument(context.Background(), validInput())
	require.ErrorIs(t, err, ErrNumberConflict)
}

func TestCreateDocumentRejectsInvalidInput(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, nil)

	input := validInput()
	input.RecipientID = 0
	_, err := svc.CreateDocument(context.Background(), input)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "recipient_id", verr.Field)

	input = validInput()
	input.Items = nil
	_, err = svc.CreateDocument(context.Background(), input)
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "items", verr.Field)
	require.Empty(t, repo.records)
}

func TestGetDocumentResolvesRecipient(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, nil)

	created, err := svc.CreateDocument(context.Background(), validInput())
	require.NoError(t, err)

	got, err := svc.GetDocument(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Snapshot.Header.Recipient)
	require.Equal(t, "Brillante Gems BV", got.Snapshot.Header.Recipient.CompanyName)
}

func TestGetDocumentDegradesOnResolverFailure(t *testing.T) {
	repo := &fakeRepo{}
	resolver := &fakeResolver{err: errors.New("profile store down")}
	svc := newTestService(repo, resolver)

	svcOK := newTestService(repo, nil)
	created, err := svcOK.CreateDocument(context.Background(), validInput())
	require.NoError(t, err)

	got, err := svc.GetDocument(context.Background(), created.ID)
	require.NoError(t, err)
	require.Nil(t, got.Snapshot.Header.Recipient)
}

func TestGetDocumentNotFound(t *testing.T) {
	svc := newTestService(&fakeRepo{}, nil)
	_, err := svc.GetDocument(context.Background(), 99)
	require.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestListDocumentsFiltersByKind(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, nil)

	_, err := svc.CreateDocument(context.Background(), validInput())
	require.NoError(t, err)
	memo := validInput()
	memo.Kind = KindMemo
	_, err = svc.CreateDocument(context.Background(), memo)
	require.NoError(t, err)

	invoices, err := svc.ListDocuments(context.Background(), ListDocumentsRequest{Kind: KindInvoice})
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	require.Equal(t, KindInvoice, invoices[0].Snapshot.Kind)
}

func TestCreateDocumentHonoursExplicitAdjustments(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, nil)

	input := validInput()
	input.Items = append(input.Items, LineItemInput{Description: "Princess Cut", Carat: dec("0.50"), PricePerCarat: dec("1200.00")})
	input.Discount = dec("50")
	input.ShipmentCost = dec("25")

	rec, err := svc.CreateDocument(context.Background(), input)
	require.NoError(t, err)

	totals, err := rec.Snapshot.ComputeTotals()
	require.NoError(t, err)
	require.True(t, totals.GrandTotal.Equal(decimal.RequireFromString("1075")))
}
