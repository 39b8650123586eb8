package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/rahmet/internal/domain"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL,
		WithHTTPClient(srv.Client()),
		WithLogger(log.WithField("test", "api")),
	)
	require.NoError(t, err)
	return client
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient("not a url")
	require.Error(t, err)

	_, err = NewClient("/relative/only")
	require.Error(t, err)

	c, err := NewClient(" http://localhost:8080 ", WithTimeout(time.Second))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", c.BaseURL())
	assert.Equal(t, time.Second, c.http.Timeout)
}

func TestClient_ListRestaurants(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/restaurants", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"name":"Mamma Mia","location":"Baker Street 221B","images":["a.jpg"]}]`))
	}))

	restaurants, err := client.ListRestaurants(context.Background())
	require.NoError(t, err)
	require.Len(t, restaurants, 1)
	assert.Equal(t, domain.Restaurant{
		ID: 1, Name: "Mamma Mia", Location: "Baker Street 221B", Images: []string{"a.jpg"},
	}, restaurants[0])
}

func TestClient_GetRestaurantNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/restaurants/42", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"restaurant not found"}`))
	}))

	_, err := client.GetRestaurant(context.Background(), 42)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRestaurantNotFound)
	assert.True(t, domain.IsNotFound(err))
}

func TestClient_ListProducts(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/restaurants/3/products", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"id":10,"name":"Пепперони","price":2900,"category":"Пицца"},
			{"id":11,"name":"Вода"}
		]`))
	}))

	products, err := client.ListProducts(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, int64(2900), products[0].PriceOrZero())
	assert.Nil(t, products[1].Price)
	assert.Zero(t, products[1].PriceOrZero())
}

func TestClient_SubmitOrder(t *testing.T) {
	var received domain.OrderRequest
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/orders", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{"message":"Заказ #1 успешно создан"}`))
	}))

	restaurantID := int64(7)
	msg, err := client.SubmitOrder(context.Background(), domain.OrderRequest{
		RestaurantID: &restaurantID,
		Products:     []domain.OrderProduct{{ID: 2, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Заказ #1 успешно создан", msg)
	require.NotNil(t, received.RestaurantID)
	assert.Equal(t, int64(7), *received.RestaurantID)
	assert.Equal(t, []domain.OrderProduct{{ID: 2, Quantity: 1}}, received.Products)
}

func TestClient_SubmitOrderSendsEmptyArray(t *testing.T) {
	var raw map[string]json.RawMessage
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	}))

	_, err := client.SubmitOrder(context.Background(), domain.OrderRequest{})
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw["products"]))
	_, hasRestaurant := raw["restaurant_id"]
	assert.False(t, hasRestaurant)
}

func TestClient_SubmitOrderErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "json error body",
			status:     http.StatusBadRequest,
			body:       `{"error":"order must contain at least one product"}`,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "order must contain at least one product",
		},
		{
			name:       "plain text body",
			status:     http.StatusBadGateway,
			body:       "upstream down\n",
			wantStatus: http.StatusBadGateway,
			wantMsg:    "upstream down",
		},
		{
			name:       "empty body",
			status:     http.StatusInternalServerError,
			wantStatus: http.StatusInternalServerError,
			wantMsg:    http.StatusText(http.StatusInternalServerError),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))

			_, err := client.SubmitOrder(context.Background(), domain.OrderRequest{})
			require.Error(t, err)

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
		})
	}
}

func TestClient_ContextCanceled(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.ListRestaurants(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_DecodeError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))

	_, err := client.ListRestaurants(context.Background())
	require.Error(t, err)
}

func TestClient_Ping(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	require.NoError(t, client.Ping(context.Background()))
}
