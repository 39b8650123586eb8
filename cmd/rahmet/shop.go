package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/rahmet/internal/cart"
	"github.com/vladislavdragonenkov/rahmet/internal/catalog"
	"github.com/vladislavdragonenkov/rahmet/internal/checkout"
)

const shopHelp = `Команды:
  menu             показать меню
  add <id> [n]     добавить n порций (по умолчанию 1)
  set <id> <n>     установить количество, 0 удаляет позицию
  rm <id>          убрать позицию
  show             показать корзину
  clear            очистить корзину
  pay              оформить заказ
  quit             выйти`

// maxQuantity ограничивает количество одной позиции.
const maxQuantity = 999

// shopScreen — построчный экран корзины. Итог перерисовывается по
// уведомлениям корзины, а не после каждой команды.
// picked — копия корзины для экрана меню, её синхронизирует cart.Follow.
type shopScreen struct {
	session *checkout.Session
	menu    catalog.Menu
	out     io.Writer
	changes <-chan cart.Change
	picked  *cart.Cart
}

func newShopScreen(session *checkout.Session, menu catalog.Menu, out io.Writer) (*shopScreen, func()) {
	changes, unsubscribe := session.Cart().Subscribe()
	picked := cart.New()
	stopFollow := cart.Follow(session.Cart(), picked)

	screen := &shopScreen{
		session: session,
		menu:    menu,
		out:     out,
		changes: changes,
		picked:  picked,
	}
	return screen, func() {
		stopFollow()
		unsubscribe()
	}
}

// run читает команды до quit или конца ввода.
func (s *shopScreen) run(ctx context.Context, in io.Reader) error {
	renderMenu(s.out, s.menu, s.picked.Quantity)
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, shopHelp)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		quit, err := s.exec(ctx, strings.Fields(scanner.Text()))
		if err != nil {
			fmt.Fprintf(s.out, "Ошибка: %v\n", err)
		}
		s.drainChanges()
		if quit {
			return nil
		}
	}
}

func (s *shopScreen) exec(ctx context.Context, fields []string) (bool, error) {
	if len(fields) == 0 {
		return false, nil
	}

	switch fields[0] {
	case "quit", "exit", "q":
		if !s.session.Cart().IsEmpty() {
			fmt.Fprintln(s.out, "Корзина не оформлена, позиции не сохранены")
		}
		return true, nil
	case "help", "?":
		fmt.Fprintln(s.out, shopHelp)
	case "menu":
		renderMenu(s.out, s.menu, s.picked.Quantity)
	case "show":
		renderCart(s.out, s.session.Cart().Lines(), s.session.Total())
	case "clear":
		s.session.Cart().Clear()
	case "add":
		if len(fields) < 2 || len(fields) > 3 {
			return false, fmt.Errorf("usage: add <id> [n]")
		}
		id, err := parseProductID(fields[1])
		if err != nil {
			return false, err
		}
		n := 1
		if len(fields) == 3 {
			if n, err = parseCount(fields[2]); err != nil {
				return false, err
			}
		}
		total := s.session.Cart().Quantity(id) + n
		if total > maxQuantity {
			return false, fmt.Errorf("quantity %d exceeds the limit of %d", total, maxQuantity)
		}
		return false, s.setQuantity(id, total)
	case "set":
		if len(fields) != 3 {
			return false, fmt.Errorf("usage: set <id> <n>")
		}
		id, err := parseProductID(fields[1])
		if err != nil {
			return false, err
		}
		n, err := parseCount(fields[2])
		if err != nil {
			return false, err
		}
		return false, s.setQuantity(id, n)
	case "rm":
		if len(fields) != 2 {
			return false, fmt.Errorf("usage: rm <id>")
		}
		id, err := parseProductID(fields[1])
		if err != nil {
			return false, err
		}
		return false, s.setQuantity(id, 0)
	case "pay":
		select {
		case result := <-s.session.PayAsync(ctx):
			if result.Err != nil {
				return false, result.Err
			}
			fmt.Fprintln(s.out, result.Receipt.Confirmation)
			fmt.Fprintf(s.out, "Чек: %s\n", result.Receipt.ID)
		case <-ctx.Done():
			return false, ctx.Err()
		}
	default:
		return false, fmt.Errorf("unknown command %q, type help", fields[0])
	}
	return false, nil
}

func (s *shopScreen) setQuantity(id int64, quantity int) error {
	product, ok := s.menu.Product(id)
	if !ok {
		return fmt.Errorf("product %d is not on the menu", id)
	}
	s.session.SetQuantity(product, quantity)
	return nil
}

// drainChanges печатает итог по последнему уведомлению корзины, если оно есть.
// Канал хранит только самое свежее изменение.
func (s *shopScreen) drainChanges() {
	select {
	case change, ok := <-s.changes:
		if !ok {
			return
		}
		if change.Product.ID != 0 {
			fmt.Fprintf(s.out, "%s: %d шт.\n", change.Product.Name, change.Quantity)
		}
		renderTotal(s.out, change.Total)
	default:
	}
}

func parseProductID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid product id %q", raw)
	}
	return id, nil
}

func parseCount(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid quantity %q", raw)
	}
	if n > maxQuantity {
		return 0, fmt.Errorf("quantity %d exceeds the limit of %d", n, maxQuantity)
	}
	return n, nil
}

func newShopCmd(c *cli) *cobra.Command {
	var serveMetrics bool

	cmd := &cobra.Command{
		Use:   "shop <restaurant-id>",
		Short: "Интерактивная корзина ресторана",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			restaurantID, err := parseRestaurantID(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			deps, err := c.dependencies(ctx)
			if err != nil {
				return err
			}
			defer deps.Close()

			if serveMetrics {
				deps.StartMetricsServer(ctx)
			}

			menu, err := deps.Catalog.Menu(ctx, restaurantID)
			if err != nil {
				return err
			}

			session := deps.NewSession(checkout.WithRestaurant(menu.Restaurant))
			screen, closeScreen := newShopScreen(session, menu, c.out)
			defer closeScreen()

			return screen.run(ctx, c.in)
		},
	}

	cmd.Flags().BoolVar(&serveMetrics, "serve-metrics", false, "expose /metrics and health checks on metrics_addr while shopping")
	return cmd
}
