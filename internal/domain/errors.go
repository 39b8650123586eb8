package domain

import "errors"

var (
	// Ошибка пустого списка продуктов в заказе.
	ErrProductsRequired = errors.New("order must contain at least one product")
	// Ошибка некорректного количества продукта (<= 0).
	ErrQuantityInvalid = errors.New("product quantity must be greater than zero")
	// ErrRestaurantNotFound возвращается, если ресторан не найден в каталоге.
	ErrRestaurantNotFound = errors.New("restaurant not found")
	// ErrProductNotFound возвращается, если продукта нет в меню ресторана.
	ErrProductNotFound = errors.New("product not found")
	// ErrReceiptNotFound возвращается, если чек не найден в репозитории.
	ErrReceiptNotFound = errors.New("receipt not found")
	// ErrReceiptExists сигнализирует о повторном сохранении чека с тем же ID.
	ErrReceiptExists = errors.New("receipt already exists")
	// ErrSubmissionFailed — удалённый API не принял заказ, корзина не очищена.
	ErrSubmissionFailed = errors.New("order submission failed")
)

// IsNotFound проверяет, относится ли ошибка к отсутствующей сущности.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRestaurantNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrReceiptNotFound)
}
