package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/rahmet/internal/domain"
)

// receiptRepositoryInMemory — in-memory реализация ReceiptRepository.
type receiptRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Receipt
}

// NewReceiptRepository возвращает in-memory репозиторий чеков для локального запуска и тестов.
func NewReceiptRepository() domain.ReceiptRepository {
	return &receiptRepositoryInMemory{
		items: make(map[string]domain.Receipt),
	}
}

// Save сохраняет чек, если ID ещё не занят.
func (r *receiptRepositoryInMemory) Save(_ context.Context, receipt domain.Receipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[receipt.ID]; exists {
		return domain.ErrReceiptExists
	}
	r.items[receipt.ID] = cloneReceipt(receipt)
	return nil
}

// Get возвращает чек или ErrReceiptNotFound.
func (r *receiptRepositoryInMemory) Get(_ context.Context, id string) (domain.Receipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	receipt, ok := r.items[id]
	if !ok {
		return domain.Receipt{}, domain.ErrReceiptNotFound
	}
	return cloneReceipt(receipt), nil
}

// List возвращает чеки от новых к старым, ограничивая выборку limit (если >0).
func (r *receiptRepositoryInMemory) List(_ context.Context, limit int) ([]domain.Receipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Receipt, 0, len(r.items))
	for _, receipt := range r.items {
		result = append(result, cloneReceipt(receipt))
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].SubmittedAt.Equal(result[j].SubmittedAt) {
			return result[i].SubmittedAt.After(result[j].SubmittedAt)
		}
		return result[i].ID > result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// cloneReceipt копирует срезы и указатели, чтобы хранилище не зависело от мутаций снаружи.
func cloneReceipt(receipt domain.Receipt) domain.Receipt {
	out := receipt
	if receipt.RestaurantID != nil {
		id := *receipt.RestaurantID
		out.RestaurantID = &id
	}
	if receipt.Lines != nil {
		out.Lines = make([]domain.CartLine, len(receipt.Lines))
		copy(out.Lines, receipt.Lines)
	}
	return out
}

var _ domain.ReceiptRepository = (*receiptRepositoryInMemory)(nil)
