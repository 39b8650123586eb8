package domain

import (
	"errors"
	"time"
)

// CartLine — одна позиция корзины: продукт и количество.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Subtotal возвращает стоимость позиции: qty * price.
func (l CartLine) Subtotal() int64 {
	return int64(l.Quantity) * l.Product.PriceOrZero()
}

// OrderProduct — пара (id продукта, количество) в запросе на создание заказа.
type OrderProduct struct {
	ID       int64 `json:"id"`
	Quantity int   `json:"quantity"`
}

// OrderRequest — тело запроса на создание заказа во внешнем API.
type OrderRequest struct {
	// RestaurantID отсутствует, если корзина собрана вне контекста ресторана.
	RestaurantID *int64         `json:"restaurant_id,omitempty"`
	Products     []OrderProduct `json:"products"`
}

// Validate проверяет запрос так же, как это делает сервер заказов.
// Все найденные нарушения объединяются через errors.Join.
func (r OrderRequest) Validate() error {
	var errs []error
	if len(r.Products) == 0 {
		errs = append(errs, ErrProductsRequired)
	}
	for _, p := range r.Products {
		if p.Quantity <= 0 {
			errs = append(errs, ErrQuantityInvalid)
			break
		}
	}
	return errors.Join(errs...)
}

// Receipt фиксирует успешно отправленный заказ.
type Receipt struct {
	ID           string
	SessionID    string
	RestaurantID *int64
	Lines        []CartLine
	TotalAmount  int64
	Confirmation string
	SubmittedAt  time.Time
}

// OrderEventType — тип события жизненного цикла отправки заказа.
type OrderEventType string

const (
	// OrderEventSubmitted — заказ принят удалённым API.
	OrderEventSubmitted OrderEventType = "order.submitted"
	// OrderEventSubmitFailed — отправка заказа завершилась ошибкой, корзина сохранена.
	OrderEventSubmitFailed OrderEventType = "order.submit_failed"
)

// OrderEvent публикуется после каждой попытки оплаты.
type OrderEvent struct {
	Type         OrderEventType
	SessionID    string
	ReceiptID    string
	RestaurantID *int64
	Products     []OrderProduct
	TotalAmount  int64
	Message      string
	OccurredAt   time.Time
}
