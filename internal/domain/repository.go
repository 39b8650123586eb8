package domain

import "context"

// ReceiptRepository описывает требования к хранилищу чеков отправленных заказов.
type ReceiptRepository interface {
	// Save сохраняет новый чек. Возвращает ErrReceiptExists, если ID уже занят.
	Save(ctx context.Context, receipt Receipt) error
	// Get возвращает чек по идентификатору или ErrReceiptNotFound.
	Get(ctx context.Context, id string) (Receipt, error)
	// List возвращает чеки от новых к старым, limit <= 0 означает "без ограничения".
	List(ctx context.Context, limit int) ([]Receipt, error)
}
