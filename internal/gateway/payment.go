package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	PaymentShopID = "11"
	PaymentAPIKey = "a15400e46c83635eb181-946abb51ff26a868317c"

	PaymentStatusOK      = "ok"
	PaymentStatusInvalid = "invalid"
	PaymentStatusFail    = "fail"
)

type PaymentTokenRequest struct {
	ShopID string `json:"shop_id"`
	Token  string `json:"token"`
	APIKey string `json:"api_key"`
	Price  int    `json:"price"`
}

type PaymentTokenResult struct {
	Status string `json:"status"`
}

// PaymentGateway authorizes a card token against the external payment
// service. A non-ok status is a business answer, not an error; an error
// means the service could not be reached and the caller must roll back.
type PaymentGateway interface {
	Token(ctx context.Context, baseURL string, req PaymentTokenRequest) (*PaymentTokenResult, error)
}

type paymentGateway struct {
	client *resty.Client
}

func NewPaymentGateway(timeout time.Duration) PaymentGateway {
	return &paymentGateway{
		client: resty.New().SetTimeout(timeout),
	}
}

func (g *paymentGateway) Token(ctx context.Context, baseURL string, req PaymentTokenRequest) (*PaymentTokenResult, error) {
	var result PaymentTokenResult
	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&result).
		Post(baseURL + "/token")
	if err != nil {
		return nil, fmt.Errorf("request payment service: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("payment service returned %d", resp.StatusCode())
	}
	return &result, nil
}
