package cart_test

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/vladislavdragonenkov/rahmet/internal/cart"
	"github.com/vladislavdragonenkov/rahmet/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var (
	productA = domain.Product{ID: 1, Name: "Маргарита", Price: domain.Price(500)}
	productB = domain.Product{ID: 2, Name: "Лимонад", Price: domain.Price(300)}
	productC = domain.Product{ID: 3, Name: "Хлеб"}
)

func TestCart_ExampleScenario(t *testing.T) {
	c := cart.New()
	require.True(t, c.IsEmpty())
	require.Zero(t, c.Total())

	c.SetQuantity(productA, 2)
	assert.Equal(t, int64(1000), c.Total())

	c.SetQuantity(productB, 1)
	assert.Equal(t, int64(1300), c.Total())

	c.SetQuantity(productA, 0)
	assert.Equal(t, int64(300), c.Total())
	require.Equal(t, 1, c.Len())

	want := []domain.CartLine{{Product: productB, Quantity: 1}}
	if diff := cmp.Diff(want, c.Lines()); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}

	restaurantID := int64(7)
	req := c.ToOrderRequest(&restaurantID)
	require.NotNil(t, req.RestaurantID)
	assert.Equal(t, int64(7), *req.RestaurantID)
	assert.Equal(t, []domain.OrderProduct{{ID: productB.ID, Quantity: 1}}, req.Products)

	c.Clear()
	assert.Zero(t, c.Total())
	assert.Empty(t, c.Lines())
}

func TestCart_SetQuantityReplacesExisting(t *testing.T) {
	c := cart.New()
	c.SetQuantity(productA, 1)
	c.SetQuantity(productB, 1)
	c.SetQuantity(productA, 4)

	lines := c.Lines()
	require.Len(t, lines, 2)
	// Порядок добавления сохраняется при замене количества.
	assert.Equal(t, productA.ID, lines[0].Product.ID)
	assert.Equal(t, 4, lines[0].Quantity)
	assert.Equal(t, 4, c.Quantity(productA.ID))
}

func TestCart_SetQuantityKeepsStoredProduct(t *testing.T) {
	c := cart.New()
	c.SetQuantity(productA, 1)

	renamed := productA
	renamed.Name = "Маргарита (большая)"
	c.SetQuantity(renamed, 2)

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, productA.Name, lines[0].Product.Name)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestCart_ZeroQuantityOnMissingProductIsNoop(t *testing.T) {
	c := cart.New()
	c.SetQuantity(productA, 1)

	c.SetQuantity(productB, 0)

	assert.Equal(t, 1, c.Len())
	assert.Zero(t, c.Quantity(productB.ID))
}

func TestCart_NegativeQuantityIsClamped(t *testing.T) {
	c := cart.New()

	c.SetQuantity(productA, -3)
	assert.True(t, c.IsEmpty(), "negative quantity must not create a line")

	c.SetQuantity(productA, 2)
	c.SetQuantity(productA, -1)
	assert.True(t, c.IsEmpty(), "negative quantity must remove an existing line")
}

func TestCart_MissingPriceCountsAsZero(t *testing.T) {
	c := cart.New()
	c.SetQuantity(productC, 5)
	c.SetQuantity(productB, 2)

	assert.Equal(t, int64(600), c.Total())
	assert.Equal(t, 2, c.Len())
}

func TestCart_SetQuantityIsIdempotent(t *testing.T) {
	once := cart.New()
	once.SetQuantity(productA, 3)
	once.SetQuantity(productB, 1)

	twice := cart.New()
	twice.SetQuantity(productA, 3)
	twice.SetQuantity(productA, 3)
	twice.SetQuantity(productB, 1)
	twice.SetQuantity(productB, 1)

	if diff := cmp.Diff(once.Lines(), twice.Lines()); diff != "" {
		t.Fatalf("carts differ (-once +twice):\n%s", diff)
	}
	assert.Equal(t, once.Total(), twice.Total())
}

func TestCart_RandomSequencesKeepInvariants(t *testing.T) {
	products := []domain.Product{productA, productB, productC,
		{ID: 4, Price: domain.Price(150)},
		{ID: 5, Price: domain.Price(990)},
	}
	rnd := rand.New(rand.NewSource(42))

	for run := 0; run < 50; run++ {
		c := cart.New()
		expected := map[int64]int{}

		for step := 0; step < 100; step++ {
			p := products[rnd.Intn(len(products))]
			qty := rnd.Intn(7) - 2
			c.SetQuantity(p, qty)
			if qty <= 0 {
				delete(expected, p.ID)
			} else {
				expected[p.ID] = qty
			}

			seen := map[int64]bool{}
			var total int64
			for _, line := range c.Lines() {
				require.False(t, seen[line.Product.ID], "duplicate product %d", line.Product.ID)
				require.Positive(t, line.Quantity)
				seen[line.Product.ID] = true
				total += int64(line.Quantity) * line.Product.PriceOrZero()
			}
			require.Equal(t, len(expected), c.Len())
			require.Equal(t, total, c.Total())
		}
	}
}

func TestCart_ToOrderRequest(t *testing.T) {
	t.Run("empty cart", func(t *testing.T) {
		req := cart.New().ToOrderRequest(nil)
		assert.Nil(t, req.RestaurantID)
		require.NotNil(t, req.Products)
		assert.Empty(t, req.Products)
	})

	t.Run("insertion order", func(t *testing.T) {
		c := cart.New()
		c.SetQuantity(productB, 2)
		c.SetQuantity(productA, 1)
		c.SetQuantity(productC, 3)

		req := c.ToOrderRequest(nil)
		assert.Equal(t, []domain.OrderProduct{
			{ID: productB.ID, Quantity: 2},
			{ID: productA.ID, Quantity: 1},
			{ID: productC.ID, Quantity: 3},
		}, req.Products)
	})

	t.Run("restaurant id is copied", func(t *testing.T) {
		c := cart.New()
		c.SetQuantity(productA, 1)
		id := int64(3)
		req := c.ToOrderRequest(&id)
		id = 99
		require.NotNil(t, req.RestaurantID)
		assert.Equal(t, int64(3), *req.RestaurantID)
	})

	t.Run("snapshot is detached from cart", func(t *testing.T) {
		c := cart.New()
		c.SetQuantity(productA, 1)
		req := c.ToOrderRequest(nil)
		c.SetQuantity(productA, 5)
		assert.Equal(t, 1, req.Products[0].Quantity)
	})
}

func TestCart_ClearFromAnyState(t *testing.T) {
	c := cart.New()
	c.Clear()
	assert.Zero(t, c.Total())

	c.SetQuantity(productA, 2)
	c.SetQuantity(productB, 7)
	c.Clear()
	assert.Zero(t, c.Total())
	assert.Empty(t, c.Lines())
	assert.True(t, c.IsEmpty())
}

func TestCart_LinesReturnsCopy(t *testing.T) {
	c := cart.New()
	c.SetQuantity(productA, 1)

	lines := c.Lines()
	lines[0].Quantity = 100

	assert.Equal(t, 1, c.Quantity(productA.ID))
}

func TestCart_Replace(t *testing.T) {
	c := cart.New()
	c.SetQuantity(productC, 1)

	c.Replace([]domain.CartLine{
		{Product: productA, Quantity: 2},
		{Product: productB, Quantity: 0},
		{Product: productA, Quantity: 3},
		{Product: productB, Quantity: -1},
		{Product: productC, Quantity: 1},
	})

	want := []domain.CartLine{
		{Product: productA, Quantity: 3},
		{Product: productC, Quantity: 1},
	}
	if diff := cmp.Diff(want, c.Lines()); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestCart_SnapshotIsConsistent(t *testing.T) {
	c := cart.New()
	c.SetQuantity(productA, 2)
	c.SetQuantity(productC, 1)
	id := int64(4)

	snap := c.Snapshot(&id)
	c.SetQuantity(productB, 1)

	assert.Len(t, snap.Lines, 2)
	assert.Equal(t, int64(1000), snap.Total)
	assert.Equal(t, []domain.OrderProduct{
		{ID: productA.ID, Quantity: 2},
		{ID: productC.ID, Quantity: 1},
	}, snap.Request.Products)
	require.NotNil(t, snap.Request.RestaurantID)
	assert.Equal(t, int64(4), *snap.Request.RestaurantID)
	assert.NotEqual(t, snap.Revision, c.Snapshot(nil).Revision)
}

func TestCart_Settle(t *testing.T) {
	t.Run("unchanged cart is cleared", func(t *testing.T) {
		c := cart.New()
		c.SetQuantity(productA, 2)
		c.Settle(c.Snapshot(nil))
		assert.True(t, c.IsEmpty())
	})

	t.Run("later changes survive", func(t *testing.T) {
		c := cart.New()
		c.SetQuantity(productA, 2)
		c.SetQuantity(productB, 1)
		snap := c.Snapshot(nil)

		c.SetQuantity(productA, 3)
		c.SetQuantity(productC, 4)
		c.SetQuantity(productB, 0)
		c.Settle(snap)

		want := []domain.CartLine{
			{Product: productA, Quantity: 1},
			{Product: productC, Quantity: 4},
		}
		if diff := cmp.Diff(want, c.Lines()); diff != "" {
			t.Fatalf("lines mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("reduced line is removed", func(t *testing.T) {
		c := cart.New()
		c.SetQuantity(productA, 3)
		snap := c.Snapshot(nil)
		c.SetQuantity(productA, 1)
		c.Settle(snap)
		assert.Zero(t, c.Quantity(productA.ID))
	})

	t.Run("subscribers are notified", func(t *testing.T) {
		c := cart.New()
		c.SetQuantity(productA, 1)
		snap := c.Snapshot(nil)
		changes, unsubscribe := c.Subscribe()
		defer unsubscribe()

		c.Settle(snap)
		change := <-changes
		assert.Empty(t, change.Lines)
	})
}
