package domain

// Restaurant описывает заведение из каталога удалённого API.
type Restaurant struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Location string   `json:"location,omitempty"`
	Images   []string `json:"images,omitempty"`
}

// Product — позиция меню ресторана. Справочные данные, корзина их не меняет.
type Product struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// Image — URL картинки блюда.
	Image string `json:"image,omitempty"`
	// Price — цена за единицу в целых тенге. nil означает, что цена не указана.
	Price *int64 `json:"price,omitempty"`
	// Category используется для сегментов меню ("Пицца", "Напитки" и т.д.).
	Category string `json:"category,omitempty"`
}

// PriceOrZero возвращает цену позиции, отсутствующая цена считается нулевой.
func (p Product) PriceOrZero() int64 {
	if p.Price == nil {
		return 0
	}
	return *p.Price
}

// Price возвращает указатель на цену, удобно для литералов Product.
func Price(v int64) *int64 {
	return &v
}
