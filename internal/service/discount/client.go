package discount

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client looks up discounts over the discount service's HTTP API. Every
// failure mode — connection refused, timeout, non-200, bad body — degrades to
// a zero discount; this boundary never surfaces an error to checkout.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type couponResponse struct {
	ProductName string `json:"productName"`
	Description string `json:"description"`
	AmountCents int64  `json:"amountCents"`
}

// DiscountFor returns the discount in cents for one product, or zero.
func (c *Client) DiscountFor(ctx context.Context, productName string) int64 {
	endpoint := fmt.Sprintf("%s/api/discounts/%s", c.baseURL, url.PathEscape(productName))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.logger.Warn("discount request build failed, assuming zero",
			zap.String("product_name", productName), zap.Error(err))
		return 0
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("discount service unreachable, assuming zero",
			zap.String("product_name", productName), zap.Error(err))
		return 0
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// No coupon for this product; expected, not logged.
		return 0
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("discount service returned unexpected status, assuming zero",
			zap.String("product_name", productName), zap.Int("status", resp.StatusCode))
		return 0
	}

	var coupon couponResponse
	if err := json.NewDecoder(resp.Body).Decode(&coupon); err != nil {
		c.logger.Warn("discount response undecodable, assuming zero",
			zap.String("product_name", productName), zap.Error(err))
		return 0
	}
	if coupon.AmountCents < 0 {
		return 0
	}
	return coupon.AmountCents
}
