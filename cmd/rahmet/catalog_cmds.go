package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newRestaurantsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "restaurants",
		Short: "Список ресторанов",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := c.dependencies(cmd.Context())
			if err != nil {
				return err
			}
			defer deps.Close()

			restaurants, err := deps.Catalog.Restaurants(cmd.Context())
			if err != nil {
				return err
			}
			renderRestaurants(c.out, restaurants)
			return nil
		},
	}
}

func newMenuCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "menu <restaurant-id>",
		Short: "Меню ресторана по категориям",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			restaurantID, err := parseRestaurantID(args[0])
			if err != nil {
				return err
			}

			deps, err := c.dependencies(cmd.Context())
			if err != nil {
				return err
			}
			defer deps.Close()

			menu, err := deps.Catalog.Menu(cmd.Context(), restaurantID)
			if err != nil {
				return err
			}
			renderMenu(c.out, menu, nil)
			return nil
		},
	}
}

func parseRestaurantID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid restaurant id %q", raw)
	}
	return id, nil
}
