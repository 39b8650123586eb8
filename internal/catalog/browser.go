// Package catalog собирает меню ресторана для экранов выбора блюд.
package catalog

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vladislavdragonenkov/rahmet/internal/domain"
)

const (
	// AllSectionTitle — заголовок первого сегмента со всеми блюдами.
	AllSectionTitle = "Меню"
	// UncategorizedTitle — сегмент для блюд без категории.
	UncategorizedTitle = "Другое"
)

// GalleryPage — одна фотография ресторана с подписью "n/N".
type GalleryPage struct {
	URL   string
	Label string
}

// Section — сегмент меню.
type Section struct {
	Title    string
	Products []domain.Product
}

// Menu — ресторан, его галерея и сегменты блюд.
type Menu struct {
	Restaurant domain.Restaurant
	Gallery    []GalleryPage
	Sections   []Section
}

// Product ищет блюдо меню по ID.
func (m Menu) Product(id int64) (domain.Product, bool) {
	if len(m.Sections) == 0 {
		return domain.Product{}, false
	}
	for _, product := range m.Sections[0].Products {
		if product.ID == id {
			return product, true
		}
	}
	return domain.Product{}, false
}

// Products возвращает все блюда в порядке API.
func (m Menu) Products() []domain.Product {
	if len(m.Sections) == 0 {
		return nil
	}
	return append([]domain.Product(nil), m.Sections[0].Products...)
}

// Browser читает каталог удалённого API.
type Browser struct {
	catalog domain.Catalog
	logger  *log.Entry
}

// NewBrowser создаёт Browser поверх каталога.
func NewBrowser(catalog domain.Catalog, logger *log.Entry) *Browser {
	if logger == nil {
		logger = log.New().WithField("component", "catalog")
	}
	return &Browser{
		catalog: catalog,
		logger:  logger,
	}
}

// Restaurants возвращает список ресторанов.
func (b *Browser) Restaurants(ctx context.Context) ([]domain.Restaurant, error) {
	restaurants, err := b.catalog.ListRestaurants(ctx)
	if err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}
	return restaurants, nil
}

// Menu параллельно загружает ресторан и его блюда и собирает меню.
func (b *Browser) Menu(ctx context.Context, restaurantID int64) (Menu, error) {
	var (
		restaurant domain.Restaurant
		products   []domain.Product
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		restaurant, err = b.catalog.GetRestaurant(gctx, restaurantID)
		if err != nil {
			return fmt.Errorf("get restaurant %d: %w", restaurantID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		products, err = b.catalog.ListProducts(gctx, restaurantID)
		if err != nil {
			return fmt.Errorf("list products of restaurant %d: %w", restaurantID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		b.logger.WithError(err).WithField("restaurant_id", restaurantID).Warn("failed to load menu")
		return Menu{}, err
	}

	menu := BuildMenu(restaurant, products)
	b.logger.WithFields(log.Fields{
		"restaurant_id": restaurantID,
		"products":      len(products),
		"sections":      len(menu.Sections),
	}).Debug("menu loaded")
	return menu, nil
}

// BuildMenu группирует блюда по категориям в порядке первого появления.
// Первым идёт сегмент AllSectionTitle со всеми блюдами, блюда без категории
// попадают в UncategorizedTitle в конце.
func BuildMenu(restaurant domain.Restaurant, products []domain.Product) Menu {
	menu := Menu{
		Restaurant: restaurant,
		Gallery:    buildGallery(restaurant.Images),
	}

	all := Section{Title: AllSectionTitle, Products: append([]domain.Product{}, products...)}
	menu.Sections = append(menu.Sections, all)

	index := make(map[string]int)
	var categorized []Section
	var other []domain.Product
	for _, product := range products {
		if product.Category == "" {
			other = append(other, product)
			continue
		}
		i, ok := index[product.Category]
		if !ok {
			i = len(categorized)
			index[product.Category] = i
			categorized = append(categorized, Section{Title: product.Category})
		}
		categorized[i].Products = append(categorized[i].Products, product)
	}

	menu.Sections = append(menu.Sections, categorized...)
	if len(other) > 0 {
		menu.Sections = append(menu.Sections, Section{Title: UncategorizedTitle, Products: other})
	}
	return menu
}

func buildGallery(images []string) []GalleryPage {
	if len(images) == 0 {
		return nil
	}
	pages := make([]GalleryPage, 0, len(images))
	for i, url := range images {
		pages = append(pages, GalleryPage{
			URL:   url,
			Label: fmt.Sprintf("%d/%d", i+1, len(images)),
		})
	}
	return pages
}
