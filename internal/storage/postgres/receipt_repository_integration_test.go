package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/rahmet/internal/domain"
)

func TestReceiptRepository_PostgresSaveGetList(t *testing.T) {
	store := openTestStore(t)
	repo := NewReceiptRepository(store)

	ctx := context.Background()
	restaurantID := int64(7)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first := domain.Receipt{
		ID:           "receipt-1",
		SessionID:    "session-1",
		RestaurantID: &restaurantID,
		Lines: []domain.CartLine{
			{Product: domain.Product{ID: 1, Name: "Бургер", Price: domain.Price(500), Category: "Бургеры"}, Quantity: 2},
			{Product: domain.Product{ID: 2, Name: "Лимонад", Price: domain.Price(300)}, Quantity: 1},
		},
		TotalAmount:  1300,
		Confirmation: "Заказ #1 успешно создан",
		SubmittedAt:  base,
	}
	second := domain.Receipt{
		ID:          "receipt-2",
		SessionID:   "session-2",
		Lines:       []domain.CartLine{{Product: domain.Product{ID: 3, Name: "Соус"}, Quantity: 1}},
		SubmittedAt: base.Add(time.Minute),
	}

	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("save first: %v", err)
	}
	if err := repo.Save(ctx, second); err != nil {
		t.Fatalf("save second: %v", err)
	}

	got, err := repo.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("get receipt: %v", err)
	}
	if got.RestaurantID == nil || *got.RestaurantID != 7 {
		t.Fatalf("unexpected restaurant id: %v", got.RestaurantID)
	}
	if len(got.Lines) != 2 || got.Lines[0].Product.ID != 1 || got.Lines[0].Quantity != 2 {
		t.Fatalf("unexpected lines: %+v", got.Lines)
	}
	if got.Lines[0].Product.PriceOrZero() != 500 || got.TotalAmount != 1300 {
		t.Fatalf("unexpected amounts: %+v", got)
	}
	if !got.SubmittedAt.Equal(base) {
		t.Fatalf("expected submitted_at %v, got %v", base, got.SubmittedAt)
	}

	missingPrice, err := repo.Get(ctx, second.ID)
	if err != nil {
		t.Fatalf("get second receipt: %v", err)
	}
	if missingPrice.RestaurantID != nil {
		t.Fatalf("expected nil restaurant id, got %v", *missingPrice.RestaurantID)
	}
	if missingPrice.Lines[0].Product.Price != nil {
		t.Fatal("expected nil price to survive round trip")
	}

	list, err := repo.List(ctx, 1)
	if err != nil {
		t.Fatalf("list receipts: %v", err)
	}
	if len(list) != 1 || list[0].ID != second.ID {
		t.Fatalf("expected newest receipt first, got %+v", list)
	}
}

func TestReceiptRepository_PostgresDuplicateAndMissing(t *testing.T) {
	store := openTestStore(t)
	repo := NewReceiptRepository(store)
	ctx := context.Background()

	receipt := domain.Receipt{ID: "receipt-dup", SessionID: "session-1", SubmittedAt: time.Now().UTC()}
	if err := repo.Save(ctx, receipt); err != nil {
		t.Fatalf("save receipt: %v", err)
	}
	if err := repo.Save(ctx, receipt); !errors.Is(err, domain.ErrReceiptExists) {
		t.Fatalf("expected ErrReceiptExists, got %v", err)
	}
	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, domain.ErrReceiptNotFound) {
		t.Fatalf("expected ErrReceiptNotFound, got %v", err)
	}
}
