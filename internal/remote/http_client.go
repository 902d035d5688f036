package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"shopcart/internal/domain"
)

// HTTPClient talks to a shopping-cart endpoint that serves
// GET {BaseURL}/{cartKey} and POST {BaseURL}/{cartKey}.
type HTTPClient struct {
	HTTPClient *http.Client
	BaseURL    string
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		BaseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *HTTPClient) GetCart(ctx context.Context, cartKey string) (domain.ResponseCart, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cartURL(cartKey), nil)
	if err != nil {
		return domain.ResponseCart{}, fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req)
}

func (c *HTTPClient) SetCart(ctx context.Context, cartKey string, cart domain.RequestCart) (domain.ResponseCart, error) {
	body, err := json.Marshal(cart)
	if err != nil {
		return domain.ResponseCart{}, fmt.Errorf("failed to marshal cart: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cartURL(cartKey), bytes.NewReader(body))
	if err != nil {
		return domain.ResponseCart{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *HTTPClient) cartURL(cartKey string) string {
	return c.BaseURL + "/" + url.PathEscape(cartKey)
}

func (c *HTTPClient) do(req *http.Request) (domain.ResponseCart, error) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return domain.ResponseCart{}, fmt.Errorf("failed to call cart endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.ResponseCart{}, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return domain.ResponseCart{}, fmt.Errorf("%w: %s", ErrUnknownCartKey, strings.TrimSpace(string(body)))
	}
	if resp.StatusCode != http.StatusOK {
		return domain.ResponseCart{}, fmt.Errorf("cart endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var cart domain.ResponseCart
	if err := json.Unmarshal(body, &cart); err != nil {
		return domain.ResponseCart{}, fmt.Errorf("failed to unmarshal cart: %w", err)
	}
	if cart.Products == nil {
		cart.Products = []domain.ResponseCartProduct{}
	}
	return cart, nil
}
