// Package cart хранит позиции заказа, собираемого пользователем, и считает итог.
//
// Корзина принадлежит одной сессии оформления заказа. Каждое изменение
// рассылается подписчикам (экран корзины, родительский экран меню), чтобы они
// могли перерисоваться или синхронизировать собственную копию.
package cart

import (
	"sync"

	"github.com/vladislavdragonenkov/rahmet/internal/domain"
)

// Change описывает изменение содержимого корзины.
type Change struct {
	// Product и Quantity заполнены для SetQuantity; для Clear и Replace они нулевые.
	Product  domain.Product
	Quantity int
	// Lines — снимок позиций после изменения.
	Lines []domain.CartLine
	Total int64
}

// Cart — упорядоченный набор позиций. Один продукт встречается не более одного
// раза, позиции с нулевым количеством не хранятся.
type Cart struct {
	mu      sync.Mutex
	lines   []domain.CartLine
	subs    map[int]chan Change
	nextSub int
	// rev растёт при каждом изменении позиций.
	rev uint64
}

// Snapshot — согласованный срез корзины для отправки заказа.
type Snapshot struct {
	Lines    []domain.CartLine
	Request  domain.OrderRequest
	Total    int64
	Revision uint64
}

// New создаёт пустую корзину.
func New() *Cart {
	return &Cart{
		subs: make(map[int]chan Change),
	}
}

// SetQuantity заменяет количество продукта в корзине.
// Отрицательное количество приводится к нулю, нулевое удаляет позицию.
func (c *Cart) SetQuantity(product domain.Product, quantity int) {
	if quantity < 0 {
		quantity = 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexOf(product.ID)
	switch {
	case idx >= 0 && quantity == 0:
		c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
	case idx >= 0:
		c.lines[idx].Quantity = quantity
	case quantity > 0:
		c.lines = append(c.lines, domain.CartLine{Product: product, Quantity: quantity})
	}
	c.rev++

	c.notifyLocked(Change{Product: product, Quantity: quantity})
}

// Replace перезаписывает содержимое корзины снимком позиций.
// Нулевые и отрицательные количества отбрасываются, для повторяющихся продуктов
// сохраняется позиция первого вхождения и количество последнего.
func (c *Cart) Replace(lines []domain.CartLine) {
	normalized := make([]domain.CartLine, 0, len(lines))
	index := make(map[int64]int, len(lines))
	for _, line := range lines {
		if i, ok := index[line.Product.ID]; ok {
			normalized[i].Quantity = line.Quantity
			continue
		}
		index[line.Product.ID] = len(normalized)
		normalized = append(normalized, line)
	}

	kept := normalized[:0]
	for _, line := range normalized {
		if line.Quantity > 0 {
			kept = append(kept, line)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.lines = kept
	c.rev++
	c.notifyLocked(Change{})
}

// Clear удаляет все позиции.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lines = nil
	c.rev++
	c.notifyLocked(Change{})
}

// Snapshot возвращает позиции, тело запроса и итог, снятые под одной блокировкой.
func (c *Cart) Snapshot(restaurantID *int64) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		Lines:    c.snapshotLocked(),
		Request:  c.orderRequestLocked(restaurantID),
		Total:    c.totalLocked(),
		Revision: c.rev,
	}
}

// Settle убирает из корзины позиции отправленного заказа. Если корзина не
// менялась после снимка, она очищается целиком. Иначе из каждой позиции
// вычитается отправленное количество, а добавленное позже остаётся.
func (c *Cart) Settle(snap Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rev == snap.Revision {
		c.lines = nil
	} else {
		submitted := make(map[int64]int, len(snap.Lines))
		for _, line := range snap.Lines {
			submitted[line.Product.ID] += line.Quantity
		}
		kept := c.lines[:0]
		for _, line := range c.lines {
			line.Quantity -= submitted[line.Product.ID]
			if line.Quantity > 0 {
				kept = append(kept, line)
			}
		}
		c.lines = kept
	}
	c.rev++
	c.notifyLocked(Change{})
}

// Total возвращает сумму qty * price по всем позициям.
func (c *Cart) Total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalLocked()
}

// Lines возвращает копию позиций в порядке добавления.
func (c *Cart) Lines() []domain.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Len возвращает количество позиций.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

// IsEmpty сообщает, пуста ли корзина.
func (c *Cart) IsEmpty() bool {
	return c.Len() == 0
}

// Quantity возвращает количество продукта в корзине, 0 если его нет.
func (c *Cart) Quantity(productID int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if idx := c.indexOf(productID); idx >= 0 {
		return c.lines[idx].Quantity
	}
	return 0
}

// ToOrderRequest формирует тело запроса на создание заказа.
// restaurantID может быть nil, если ресторан не выбран.
func (c *Cart) ToOrderRequest(restaurantID *int64) domain.OrderRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.orderRequestLocked(restaurantID)
}

func (c *Cart) orderRequestLocked(restaurantID *int64) domain.OrderRequest {
	products := make([]domain.OrderProduct, 0, len(c.lines))
	for _, line := range c.lines {
		products = append(products, domain.OrderProduct{ID: line.Product.ID, Quantity: line.Quantity})
	}

	var rid *int64
	if restaurantID != nil {
		v := *restaurantID
		rid = &v
	}

	return domain.OrderRequest{
		RestaurantID: rid,
		Products:     products,
	}
}

func (c *Cart) indexOf(productID int64) int {
	for i, line := range c.lines {
		if line.Product.ID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) totalLocked() int64 {
	var total int64
	for _, line := range c.lines {
		total += line.Subtotal()
	}
	return total
}

func (c *Cart) snapshotLocked() []domain.CartLine {
	out := make([]domain.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}
