package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/medicare-pharmacy/medicare-backend/internal/errordata"
	"github.com/medicare-pharmacy/medicare-backend/internal/logger"
	"github.com/medicare-pharmacy/medicare-backend/internal/repos"
	"github.com/medicare-pharmacy/medicare-backend/internal/types"
)

type saleFixture struct {
	sales        SaleService
	medicineRepo repos.MedicineRepo
	broadcaster  *fakeBroadcaster
	email        *fakeEmail
	medicine     *types.Medicine
}

func newSaleFixture(t *testing.T, stock int) *saleFixture {
	t.Helper()
	gdb := newTestDB(t)
	log := logger.NewNop()
	medicineRepo := repos.NewMedicineRepo(gdb, log)
	meds, err := medicineRepo.Create(context.Background(), nil, []*types.Medicine{{Name: "Cough <Syrup>", StockQuantity: stock, Price: "45.00"}})
	if err != nil {
		t.Fatalf("create medicine: %v", err)
	}
	broadcaster := &fakeBroadcaster{}
	email := &fakeEmail{}
	svc := NewSaleService(gdb, log, medicineRepo, repos.NewSaleRecordRepo(gdb, log), broadcaster, email, SaleServiceConfig{
		LowStockThreshold: 5,
		AlertEmail:        "stock@example.test",
	})
	return &saleFixture{sales: svc, medicineRepo: medicineRepo, broadcaster: broadcaster, email: email, medicine: meds[0]}
}

func TestSaleService_RecordSaleDecrementsAndBroadcasts(t *testing.T) {
	f := newSaleFixture(t, 20)
	ctx := context.Background()

	view, err := f.sales.RecordSale(ctx, f.medicine.ID, 3)
	if err != nil {
		t.Fatalf("RecordSale: %v", err)
	}
	if view.MedicineName != "Cough <Syrup>" || view.QuantitySold != 3 {
		t.Errorf("view = %+v", view)
	}
	med, _ := f.medicineRepo.GetByID(ctx, nil, f.medicine.ID)
	if med.StockQuantity != 17 {
		t.Errorf("stock = %d, want 17", med.StockQuantity)
	}
	if len(f.broadcaster.sales) != 1 || f.broadcaster.sales[0].ID != view.ID {
		t.Errorf("broadcast = %+v", f.broadcaster.sales)
	}
	if len(f.email.sent) != 0 {
		t.Error("no alert expected above threshold")
	}

	recent, err := f.sales.RecentSales(ctx)
	if err != nil || len(recent) != 1 || recent[0].MedicineName != "Cough <Syrup>" {
		t.Errorf("RecentSales = %+v, %v", recent, err)
	}
}

func TestSaleService_InsufficientStockLeavesStock(t *testing.T) {
	f := newSaleFixture(t, 2)
	ctx := context.Background()

	if _, err := f.sales.RecordSale(ctx, f.medicine.ID, 3); !errordata.Is(err, errordata.KindInsufficientStock) {
		t.Fatalf("RecordSale = %v, want InsufficientStock", err)
	}
	med, _ := f.medicineRepo.GetByID(ctx, nil, f.medicine.ID)
	if med.StockQuantity != 2 {
		t.Errorf("stock = %d, want 2", med.StockQuantity)
	}
	if len(f.broadcaster.sales) != 0 {
		t.Error("failed sale should not be broadcast")
	}
}

func TestSaleService_LowStockSendsEscapedAlert(t *testing.T) {
	f := newSaleFixture(t, 8)
	if _, err := f.sales.RecordSale(context.Background(), f.medicine.ID, 3); err != nil {
		t.Fatalf("RecordSale: %v", err)
	}
	if len(f.email.sent) != 1 {
		t.Fatalf("alerts = %d, want 1", len(f.email.sent))
	}
	alert := f.email.sent[0]
	if alert.To != "stock@example.test" || !strings.Contains(alert.Plain, "5 units left") {
		t.Errorf("alert = %+v", alert)
	}
	if strings.Contains(alert.HTML, "<Syrup>") || !strings.Contains(alert.HTML, "&lt;Syrup&gt;") {
		t.Errorf("html not escaped: %s", alert.HTML)
	}
}

func TestSaleService_Validation(t *testing.T) {
	f := newSaleFixture(t, 10)
	ctx := context.Background()
	if _, err := f.sales.RecordSale(ctx, f.medicine.ID, 0); !errordata.Is(err, errordata.KindInvalidInput) {
		t.Errorf("zero quantity = %v, want InvalidInput", err)
	}
	if _, err := f.sales.RecordSale(ctx, f.medicine.ID+50, 1); !errordata.Is(err, errordata.KindNotFound) {
		t.Errorf("unknown medicine = %v, want NotFound", err)
	}
}

func TestSaleService_BroadcastFailureStillRecords(t *testing.T) {
	f := newSaleFixture(t, 10)
	f.broadcaster.err = errors.New("redis down")
	if _, err := f.sales.RecordSale(context.Background(), f.medicine.ID, 1); err != nil {
		t.Fatalf("RecordSale = %v, want success", err)
	}
}
