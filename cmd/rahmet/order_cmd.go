package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/rahmet/internal/catalog"
	"github.com/vladislavdragonenkov/rahmet/internal/checkout"
)

// itemSpec — позиция из флага --item в виде id=qty.
type itemSpec struct {
	ProductID int64
	Quantity  int
}

// parseItems разбирает значения --item. Количество по умолчанию 1.
func parseItems(raw []string) ([]itemSpec, error) {
	items := make([]itemSpec, 0, len(raw))
	for _, value := range raw {
		idPart, qtyPart, hasQty := strings.Cut(strings.TrimSpace(value), "=")

		id, err := strconv.ParseInt(strings.TrimSpace(idPart), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid item %q: product id must be a positive integer", value)
		}

		qty := 1
		if hasQty {
			qty, err = strconv.Atoi(strings.TrimSpace(qtyPart))
			if err != nil || qty < 0 {
				return nil, fmt.Errorf("invalid item %q: quantity must be a non-negative integer", value)
			}
			if qty > maxQuantity {
				return nil, fmt.Errorf("invalid item %q: quantity exceeds the limit of %d", value, maxQuantity)
			}
		}
		items = append(items, itemSpec{ProductID: id, Quantity: qty})
	}
	return items, nil
}

// fillCart переносит позиции в корзину сессии, сверяя их с меню.
func fillCart(session *checkout.Session, menu catalog.Menu, items []itemSpec) error {
	for _, item := range items {
		product, ok := menu.Product(item.ProductID)
		if !ok {
			return fmt.Errorf("product %d is not on the menu of %q", item.ProductID, menu.Restaurant.Name)
		}
		session.SetQuantity(product, item.Quantity)
	}
	return nil
}

func newOrderCmd(c *cli) *cobra.Command {
	var (
		restaurantID int64
		rawItems     []string
		dryRun       bool
	)

	cmd := &cobra.Command{
		Use:   "order",
		Short: "Собрать корзину из флагов и отправить заказ",
		Example: `  rahmet order --restaurant 1 --item 101=2 --item 105
  rahmet order --restaurant 1 --item 101=2 --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if restaurantID <= 0 {
				return fmt.Errorf("--restaurant is required")
			}
			items, err := parseItems(rawItems)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			deps, err := c.dependencies(ctx)
			if err != nil {
				return err
			}
			defer deps.Close()

			menu, err := deps.Catalog.Menu(ctx, restaurantID)
			if err != nil {
				return err
			}

			session := deps.NewSession(checkout.WithRestaurant(menu.Restaurant))
			if err := fillCart(session, menu, items); err != nil {
				return err
			}

			fmt.Fprintf(c.out, "%s\n", menu.Restaurant.Name)
			renderCart(c.out, session.Cart().Lines(), session.Total())
			if dryRun {
				rid := menu.Restaurant.ID
				return renderOrderRequest(c.out, session.Cart().ToOrderRequest(&rid))
			}

			receipt, err := session.Pay(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, receipt.Confirmation)
			fmt.Fprintf(c.out, "Чек: %s\n", receipt.ID)
			return nil
		},
	}

	cmd.Flags().Int64Var(&restaurantID, "restaurant", 0, "restaurant id")
	cmd.Flags().StringArrayVar(&rawItems, "item", nil, "product to order as id=qty (repeatable)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the cart without submitting")
	return cmd
}
