package mockapi

import "github.com/vladislavdragonenkov/rahmet/internal/domain"

func seedRestaurants() []domain.Restaurant {
	return []domain.Restaurant{
		{
			ID:       1,
			Name:     "Del Papa",
			Location: "Алматы, пр. Абая 10",
			Images: []string{
				"https://images.rahmet.local/restaurants/1/hall.jpg",
				"https://images.rahmet.local/restaurants/1/terrace.jpg",
				"https://images.rahmet.local/restaurants/1/kitchen.jpg",
			},
		},
		{
			ID:       2,
			Name:     "Salam Bro",
			Location: "Алматы, ул. Панфилова 98",
			Images: []string{
				"https://images.rahmet.local/restaurants/2/front.jpg",
			},
		},
		{
			ID:       3,
			Name:     "Coffee Boom",
			Location: "Алматы, ул. Кабанбай батыра 83",
		},
	}
}

func seedProducts() map[int64][]domain.Product {
	return map[int64][]domain.Product{
		1: {
			{ID: 101, Name: "Маргарита", Description: "Томатный соус, моцарелла, базилик", Price: domain.Price(2500), Category: "Пицца"},
			{ID: 102, Name: "Пепперони", Description: "Пикантная колбаса, моцарелла", Price: domain.Price(2900), Category: "Пицца"},
			{ID: 103, Name: "Цезарь", Description: "Курица, романо, пармезан", Price: domain.Price(2200), Category: "Салаты"},
			{ID: 104, Name: "Том ям", Price: domain.Price(2700), Category: "Супы"},
			{ID: 105, Name: "Лимонад", Description: "Домашний, 0.5 л", Price: domain.Price(800), Category: "Напитки"},
			{ID: 106, Name: "Хлебная корзина"},
		},
		2: {
			{ID: 201, Name: "Донер классический", Price: domain.Price(1500), Category: "Донеры"},
			{ID: 202, Name: "Донер с сыром", Price: domain.Price(1700), Category: "Донеры"},
			{ID: 203, Name: "Айран", Price: domain.Price(400), Category: "Напитки"},
		},
		3: {
			{ID: 301, Name: "Капучино", Price: domain.Price(1100), Category: "Кофе"},
			{ID: 302, Name: "Чизкейк", Price: domain.Price(1600), Category: "Десерты"},
		},
	}
}
