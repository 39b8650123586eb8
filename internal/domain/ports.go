package domain

import "context"

// Catalog отдаёт справочные данные о ресторанах и их меню.
type Catalog interface {
	ListRestaurants(ctx context.Context) ([]Restaurant, error)
	GetRestaurant(ctx context.Context, id int64) (Restaurant, error)
	ListProducts(ctx context.Context, restaurantID int64) ([]Product, error)
}

// OrderSubmitter отправляет заказ во внешний API.
type OrderSubmitter interface {
	// SubmitOrder возвращает текст подтверждения от сервера или ошибку с описанием.
	SubmitOrder(ctx context.Context, req OrderRequest) (string, error)
}

// EventPublisher публикует события отправки заказов наружу.
type EventPublisher interface {
	Publish(ctx context.Context, event OrderEvent) error
}

// NopPublisher используется, когда брокер не настроен.
type NopPublisher struct{}

// Publish ничего не делает.
func (NopPublisher) Publish(context.Context, OrderEvent) error { return nil }

var _ EventPublisher = NopPublisher{}
