package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

type ShipmentCreateRequest struct {
	ToAddress   string `json:"to_address"`
	ToName      string `json:"to_name"`
	FromAddress string `json:"from_address"`
	FromName    string `json:"from_name"`
}

type ShipmentCreateResult struct {
	ReserveID   string `json:"reserve_id"`
	ReserveTime int64  `json:"reserve_time"`
}

type ShipmentStatusResult struct {
	Status      string `json:"status"`
	ReserveTime int64  `json:"reserve_time"`
}

// ShipmentGateway wraps the external shipment service. Create reserves
// a courier pickup, Request fetches the pickup QR label bytes, Status
// polls the courier-side state of a reservation.
type ShipmentGateway interface {
	Create(ctx context.Context, baseURL string, req ShipmentCreateRequest) (*ShipmentCreateResult, error)
	Request(ctx context.Context, baseURL string, reserveID string) ([]byte, error)
	Status(ctx context.Context, baseURL string, reserveID string) (*ShipmentStatusResult, error)
}

type shipmentGateway struct {
	client *resty.Client
}

func NewShipmentGateway(timeout time.Duration) ShipmentGateway {
	return &shipmentGateway{
		client: resty.New().SetTimeout(timeout),
	}
}

func (g *shipmentGateway) Create(ctx context.Context, baseURL string, req ShipmentCreateRequest) (*ShipmentCreateResult, error) {
	var result ShipmentCreateResult
	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&result).
		Post(baseURL + "/create")
	if err != nil {
		return nil, fmt.Errorf("request shipment service: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("shipment service returned %d", resp.StatusCode())
	}
	return &result, nil
}

func (g *shipmentGateway) Request(ctx context.Context, baseURL string, reserveID string) ([]byte, error) {
	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"reserve_id": reserveID}).
		Post(baseURL + "/request")
	if err != nil {
		return nil, fmt.Errorf("request shipment service: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("shipment service returned %d", resp.StatusCode())
	}
	return resp.Body(), nil
}

func (g *shipmentGateway) Status(ctx context.Context, baseURL string, reserveID string) (*ShipmentStatusResult, error) {
	var result ShipmentStatusResult
	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"reserve_id": reserveID}).
		SetResult(&result).
		Post(baseURL + "/status")
	if err != nil {
		return nil, fmt.Errorf("request shipment service: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("shipment service returned %d", resp.StatusCode())
	}
	return &result, nil
}
