// Package checkout связывает корзину с отправкой заказа в удалённый API.
//
// Session владеет одной корзиной, знает выбранный ресторан и после
// подтверждённой отправки сохраняет чек, публикует событие и очищает корзину.
// При ошибке отправки корзина остаётся нетронутой, повтор не выполняется.
package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/rahmet/internal/cart"
	"github.com/vladislavdragonenkov/rahmet/internal/domain"
)

// Metrics — метрики, которые пишет сессия. Реализуется *metrics.CheckoutMetrics.
type Metrics interface {
	RecordCartUpdate()
	RecordSubmitStarted()
	RecordSubmitSucceeded(duration time.Duration, amount int64)
	RecordSubmitFailed(duration time.Duration)
}

// Result — итог асинхронной отправки.
type Result struct {
	Receipt domain.Receipt
	Err     error
}

// SessionOptions задаёт необязательные зависимости сессии.
type SessionOptions struct {
	Restaurant *domain.Restaurant
	Logger     *log.Entry
	Receipts   domain.ReceiptRepository
	Publisher  domain.EventPublisher
	Metrics    Metrics
	Clock      func() time.Time
}

// Option настраивает Session.
type Option func(*SessionOptions)

// WithRestaurant задаёт ресторан, в который уходит заказ.
func WithRestaurant(restaurant domain.Restaurant) Option {
	return func(opts *SessionOptions) {
		opts.Restaurant = &restaurant
	}
}

// WithLogger задаёт logger сессии.
func WithLogger(logger *log.Entry) Option {
	return func(opts *SessionOptions) {
		opts.Logger = logger
	}
}

// WithReceipts включает сохранение чеков.
func WithReceipts(receipts domain.ReceiptRepository) Option {
	return func(opts *SessionOptions) {
		opts.Receipts = receipts
	}
}

// WithPublisher задаёт publisher событий заказа.
func WithPublisher(publisher domain.EventPublisher) Option {
	return func(opts *SessionOptions) {
		opts.Publisher = publisher
	}
}

// WithMetrics задаёт метрики.
func WithMetrics(metrics Metrics) Option {
	return func(opts *SessionOptions) {
		opts.Metrics = metrics
	}
}

// WithClock подменяет источник времени (для тестов).
func WithClock(clock func() time.Time) Option {
	return func(opts *SessionOptions) {
		opts.Clock = clock
	}
}

// Session — одна сессия оформления заказа.
type Session struct {
	id        string
	cart      *cart.Cart
	submitter domain.OrderSubmitter
	receipts  domain.ReceiptRepository
	publisher domain.EventPublisher
	metrics   Metrics
	logger    *log.Entry
	now       func() time.Time

	mu         sync.RWMutex
	restaurant *domain.Restaurant

	// payMu сериализует отправки одной сессии.
	payMu sync.Mutex
}

// NewSession создаёт сессию с пустой корзиной.
func NewSession(submitter domain.OrderSubmitter, options ...Option) *Session {
	opts := SessionOptions{}
	for _, option := range options {
		if option != nil {
			option(&opts)
		}
	}

	id := uuid.NewString()
	logger := opts.Logger
	if logger == nil {
		logger = log.New().WithField("component", "checkout")
	}
	publisher := opts.Publisher
	if publisher == nil {
		publisher = domain.NopPublisher{}
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Session{
		id:         id,
		cart:       cart.New(),
		submitter:  submitter,
		receipts:   opts.Receipts,
		publisher:  publisher,
		metrics:    opts.Metrics,
		logger:     logger.WithField("session_id", id),
		now:        clock,
		restaurant: opts.Restaurant,
	}
}

// ID возвращает идентификатор сессии.
func (s *Session) ID() string {
	return s.id
}

// Cart возвращает корзину сессии.
func (s *Session) Cart() *cart.Cart {
	return s.cart
}

// Restaurant возвращает выбранный ресторан.
func (s *Session) Restaurant() (domain.Restaurant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.restaurant == nil {
		return domain.Restaurant{}, false
	}
	return *s.restaurant, true
}

// SetRestaurant меняет ресторан. Корзина при этом не очищается.
func (s *Session) SetRestaurant(restaurant domain.Restaurant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restaurant = &restaurant
}

// SetQuantity меняет количество продукта в корзине.
func (s *Session) SetQuantity(product domain.Product, quantity int) {
	s.cart.SetQuantity(product, quantity)
	if s.metrics != nil {
		s.metrics.RecordCartUpdate()
	}
}

// Total возвращает итог корзины.
func (s *Session) Total() int64 {
	return s.cart.Total()
}

// Pay отправляет содержимое корзины. При успехе из корзины убираются
// отправленные позиции и возвращается чек; позиции, изменённые во время
// отправки, остаются. При ошибке корзина не меняется, а ошибка оборачивает
// domain.ErrSubmissionFailed.
func (s *Session) Pay(ctx context.Context) (domain.Receipt, error) {
	s.payMu.Lock()
	defer s.payMu.Unlock()

	restaurantID := s.restaurantID()
	snap := s.cart.Snapshot(restaurantID)
	lines, request, total := snap.Lines, snap.Request, snap.Total

	logger := s.logger.WithFields(log.Fields{
		"products": len(request.Products),
		"total":    total,
	})
	if restaurantID != nil {
		logger = logger.WithField("restaurant_id", *restaurantID)
	}

	start := s.now()
	if s.metrics != nil {
		s.metrics.RecordSubmitStarted()
	}

	if s.submitter == nil {
		err := fmt.Errorf("%w: order submitter is not configured", domain.ErrSubmissionFailed)
		s.handleFailure(ctx, logger, request, total, start, err)
		return domain.Receipt{}, err
	}

	confirmation, err := s.submitter.SubmitOrder(ctx, request)
	if err != nil {
		wrapped := fmt.Errorf("%w: %w", domain.ErrSubmissionFailed, err)
		s.handleFailure(ctx, logger, request, total, start, wrapped)
		return domain.Receipt{}, wrapped
	}

	receipt := domain.Receipt{
		ID:           uuid.NewString(),
		SessionID:    s.id,
		RestaurantID: restaurantID,
		Lines:        lines,
		TotalAmount:  total,
		Confirmation: confirmation,
		SubmittedAt:  s.now().UTC(),
	}

	if s.receipts != nil {
		if err := s.receipts.Save(ctx, receipt); err != nil {
			logger.WithError(err).WithField("receipt_id", receipt.ID).Warn("failed to store receipt")
		}
	}

	event := domain.OrderEvent{
		Type:         domain.OrderEventSubmitted,
		SessionID:    s.id,
		ReceiptID:    receipt.ID,
		RestaurantID: restaurantID,
		Products:     request.Products,
		TotalAmount:  total,
		Message:      confirmation,
		OccurredAt:   receipt.SubmittedAt,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.WithError(err).Warn("failed to publish order submitted event")
	}

	s.cart.Settle(snap)
	if s.metrics != nil {
		s.metrics.RecordSubmitSucceeded(s.now().Sub(start), total)
	}

	logger.WithField("receipt_id", receipt.ID).Info("order submitted")
	return receipt, nil
}

// PayAsync запускает Pay в отдельной горутине. Канал получает ровно один
// результат и закрывается.
func (s *Session) PayAsync(ctx context.Context) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		receipt, err := s.Pay(ctx)
		out <- Result{Receipt: receipt, Err: err}
	}()
	return out
}

func (s *Session) handleFailure(
	ctx context.Context,
	logger *log.Entry,
	request domain.OrderRequest,
	total int64,
	start time.Time,
	err error,
) {
	logger.WithError(err).Warn("order submission failed")
	if s.metrics != nil {
		s.metrics.RecordSubmitFailed(s.now().Sub(start))
	}

	event := domain.OrderEvent{
		Type:         domain.OrderEventSubmitFailed,
		SessionID:    s.id,
		RestaurantID: request.RestaurantID,
		Products:     request.Products,
		TotalAmount:  total,
		Message:      err.Error(),
		OccurredAt:   s.now().UTC(),
	}
	if pubErr := s.publisher.Publish(ctx, event); pubErr != nil {
		logger.WithError(pubErr).Warn("failed to publish order submit failed event")
	}
}

func (s *Session) restaurantID() *int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.restaurant == nil {
		return nil
	}
	id := s.restaurant.ID
	return &id
}
