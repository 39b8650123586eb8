// Package mockapi — локальный сервер с контрактом удалённого API ресторанов.
//
// Нужен для разработки клиента без доступа к боевому API: отдаёт
// засеянные рестораны и меню и принимает заказы с той же валидацией.
package mockapi

import (
	"fmt"
	"sync"

	"github.com/vladislavdragonenkov/rahmet/internal/domain"
)

// Store хранит каталог и счётчик принятых заказов.
type Store struct {
	mu          sync.RWMutex
	restaurants []domain.Restaurant
	products    map[int64][]domain.Product
	orders      []domain.OrderRequest
}

// NewStore создаёт хранилище с переданными данными.
func NewStore(restaurants []domain.Restaurant, products map[int64][]domain.Product) *Store {
	s := &Store{
		restaurants: append([]domain.Restaurant(nil), restaurants...),
		products:    make(map[int64][]domain.Product, len(products)),
	}
	for id, list := range products {
		s.products[id] = append([]domain.Product(nil), list...)
	}
	return s
}

// NewSeededStore создаёт хранилище с демонстрационным каталогом.
func NewSeededStore() *Store {
	return NewStore(seedRestaurants(), seedProducts())
}

// Restaurants возвращает все рестораны.
func (s *Store) Restaurants() []domain.Restaurant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Restaurant{}, s.restaurants...)
}

// Restaurant ищет ресторан по ID.
func (s *Store) Restaurant(id int64) (domain.Restaurant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.restaurants {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.Restaurant{}, domain.ErrRestaurantNotFound
}

// Products возвращает меню ресторана.
func (s *Store) Products(restaurantID int64) ([]domain.Product, error) {
	if _, err := s.Restaurant(restaurantID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Product{}, s.products[restaurantID]...), nil
}

// PlaceOrder валидирует заказ и возвращает его порядковый номер.
func (s *Store) PlaceOrder(req domain.OrderRequest) (int, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if req.RestaurantID != nil {
		menu, ok := s.products[*req.RestaurantID]
		if !ok && !s.hasRestaurantLocked(*req.RestaurantID) {
			return 0, fmt.Errorf("restaurant %d: %w", *req.RestaurantID, domain.ErrRestaurantNotFound)
		}
		for _, p := range req.Products {
			if !containsProduct(menu, p.ID) {
				return 0, fmt.Errorf("product %d: %w", p.ID, domain.ErrProductNotFound)
			}
		}
	} else {
		for _, p := range req.Products {
			if !s.knownProductLocked(p.ID) {
				return 0, fmt.Errorf("product %d: %w", p.ID, domain.ErrProductNotFound)
			}
		}
	}

	stored := domain.OrderRequest{
		Products: append([]domain.OrderProduct(nil), req.Products...),
	}
	if req.RestaurantID != nil {
		id := *req.RestaurantID
		stored.RestaurantID = &id
	}
	s.orders = append(s.orders, stored)
	return len(s.orders), nil
}

// Orders возвращает принятые заказы.
func (s *Store) Orders() []domain.OrderRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.OrderRequest(nil), s.orders...)
}

func (s *Store) hasRestaurantLocked(id int64) bool {
	for _, r := range s.restaurants {
		if r.ID == id {
			return true
		}
	}
	return false
}

func (s *Store) knownProductLocked(id int64) bool {
	for _, menu := range s.products {
		if containsProduct(menu, id) {
			return true
		}
	}
	return false
}

func containsProduct(menu []domain.Product, id int64) bool {
	for _, p := range menu {
		if p.ID == id {
			return true
		}
	}
	return false
}
