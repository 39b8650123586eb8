package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/vladislavdragonenkov/rahmet/internal/catalog"
	"github.com/vladislavdragonenkov/rahmet/internal/domain"
)

func formatPrice(amount int64) string {
	return fmt.Sprintf("%d тг", amount)
}

func formatProductPrice(p domain.Product) string {
	if p.Price == nil {
		return "цена не указана"
	}
	return formatPrice(*p.Price)
}

func renderRestaurants(w io.Writer, restaurants []domain.Restaurant) {
	if len(restaurants) == 0 {
		fmt.Fprintln(w, "Ресторанов пока нет")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tНАЗВАНИЕ\tАДРЕС")
	for _, r := range restaurants {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", r.ID, r.Name, r.Location)
	}
	_ = tw.Flush()
}

// renderMenu печатает меню. quantity, если задан, добавляет к блюду
// количество из корзины.
func renderMenu(w io.Writer, menu catalog.Menu, quantity func(productID int64) int) {
	fmt.Fprintf(w, "%s\n", menu.Restaurant.Name)
	if menu.Restaurant.Location != "" {
		fmt.Fprintf(w, "%s\n", menu.Restaurant.Location)
	}
	if len(menu.Gallery) > 0 {
		labels := make([]string, 0, len(menu.Gallery))
		for _, page := range menu.Gallery {
			labels = append(labels, page.Label)
		}
		fmt.Fprintf(w, "Фото: %s\n", strings.Join(labels, " "))
	}

	titles := make([]string, 0, len(menu.Sections))
	for _, s := range menu.Sections {
		titles = append(titles, s.Title)
	}
	fmt.Fprintf(w, "[%s]\n", strings.Join(titles, " | "))

	// Первый сегмент содержит все блюда, печатаем по категориям.
	for _, section := range menu.Sections[1:] {
		fmt.Fprintf(w, "\n%s\n", section.Title)
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, p := range section.Products {
			picked := ""
			if quantity != nil {
				if n := quantity(p.ID); n > 0 {
					picked = fmt.Sprintf("  ×%d", n)
				}
			}
			fmt.Fprintf(tw, "  %d\t%s\t%s%s\n", p.ID, p.Name, formatProductPrice(p), picked)
		}
		_ = tw.Flush()
	}
}

func renderCart(w io.Writer, lines []domain.CartLine, total int64) {
	if len(lines) == 0 {
		fmt.Fprintln(w, "Корзина пуста")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, line := range lines {
		fmt.Fprintf(tw, "  %d × %s\t%s\n", line.Quantity, line.Product.Name, formatPrice(line.Subtotal()))
	}
	_ = tw.Flush()
	renderTotal(w, total)
}

// renderOrderRequest печатает тело запроса, которое ушло бы в API.
func renderOrderRequest(w io.Writer, req domain.OrderRequest) error {
	body, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return fmt.Errorf("encode order request: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", body)
	return err
}

func renderTotal(w io.Writer, total int64) {
	fmt.Fprintf(w, "Итого: %s\n", formatPrice(total))
}

func renderReceipts(w io.Writer, receipts []domain.Receipt) {
	if len(receipts) == 0 {
		fmt.Fprintln(w, "Заказов пока нет")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ЧЕК\tВРЕМЯ\tРЕСТОРАН\tСУММА\tПОДТВЕРЖДЕНИЕ")
	for _, r := range receipts {
		restaurant := "-"
		if r.RestaurantID != nil {
			restaurant = fmt.Sprintf("%d", *r.RestaurantID)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.SubmittedAt.Local().Format(time.DateTime), restaurant, formatPrice(r.TotalAmount), r.Confirmation)
	}
	_ = tw.Flush()
}
