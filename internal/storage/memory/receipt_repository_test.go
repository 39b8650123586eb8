package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/rahmet/internal/domain"
	"github.com/vladislavdragonenkov/rahmet/internal/storage/memory"
)

func newReceipt(id string, submittedAt time.Time) domain.Receipt {
	restaurantID := int64(7)
	return domain.Receipt{
		ID:           id,
		SessionID:    "session-1",
		RestaurantID: &restaurantID,
		Lines: []domain.CartLine{
			{Product: domain.Product{ID: 2, Name: "Лимонад", Price: domain.Price(300)}, Quantity: 1},
		},
		TotalAmount:  300,
		Confirmation: "Заказ успешно создан",
		SubmittedAt:  submittedAt,
	}
}

func TestReceiptRepository_SaveGet(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewReceiptRepository()
	receipt := newReceipt("receipt-1", time.Now().UTC())

	if err := repo.Save(ctx, receipt); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	stored, err := repo.Get(ctx, receipt.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.ID != receipt.ID {
		t.Fatalf("expected id %s, got %s", receipt.ID, stored.ID)
	}
	if stored.TotalAmount != 300 {
		t.Fatalf("expected total 300, got %d", stored.TotalAmount)
	}
}

func TestReceiptRepository_SaveDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewReceiptRepository()
	receipt := newReceipt("receipt-1", time.Now().UTC())

	if err := repo.Save(ctx, receipt); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := repo.Save(ctx, receipt); !errors.Is(err, domain.ErrReceiptExists) {
		t.Fatalf("expected ErrReceiptExists, got %v", err)
	}
}

func TestReceiptRepository_GetMissing(t *testing.T) {
	repo := memory.NewReceiptRepository()

	if _, err := repo.Get(context.Background(), "missing"); !errors.Is(err, domain.ErrReceiptNotFound) {
		t.Fatalf("expected ErrReceiptNotFound, got %v", err)
	}
}

func TestReceiptRepository_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewReceiptRepository()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"receipt-1", "receipt-2", "receipt-3"} {
		if err := repo.Save(ctx, newReceipt(id, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("save %s failed: %v", id, err)
		}
	}

	receipts, err := repo.List(ctx, 2)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(receipts) != 2 {
		t.Fatalf("expected 2 receipts, got %d", len(receipts))
	}
	if receipts[0].ID != "receipt-3" || receipts[1].ID != "receipt-2" {
		t.Fatalf("unexpected order: %s, %s", receipts[0].ID, receipts[1].ID)
	}

	all, err := repo.List(ctx, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 receipts without limit, got %d", len(all))
	}
}

func TestReceiptRepository_IsolatedFromCaller(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewReceiptRepository()
	receipt := newReceipt("receipt-1", time.Now().UTC())

	if err := repo.Save(ctx, receipt); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	// Мутации исходного чека не должны менять сохранённую копию.
	receipt.Lines[0].Quantity = 99
	*receipt.RestaurantID = 100

	stored, err := repo.Get(ctx, receipt.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Lines[0].Quantity != 1 {
		t.Fatalf("expected stored quantity 1, got %d", stored.Lines[0].Quantity)
	}
	if *stored.RestaurantID != 7 {
		t.Fatalf("expected stored restaurant 7, got %d", *stored.RestaurantID)
	}
}
