// internal/services/shipping_service.go
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/floramart/floramart-backend/internal/config"
	"github.com/floramart/floramart-backend/internal/models"
)

// supportedDistricts is the Ho Chi Minh City delivery area. Requests for
// districts outside this set are rejected before any upstream call.
var supportedDistricts = map[int]string{
	1442: "Quan 1",
	1443: "Quan 2",
	1444: "Quan 3",
	1446: "Quan 4",
	1447: "Quan 5",
	1448: "Quan 6",
	1449: "Quan 7",
	1450: "Quan 8",
	1452: "Quan 10",
	1453: "Quan 11",
	1454: "Quan 12",
	1455: "Quan Binh Thanh",
	1456: "Quan Binh Tan",
	1457: "Quan Go Vap",
	1458: "Quan Phu Nhuan",
	1459: "Quan Tan Binh",
	1460: "Quan Tan Phu",
	1461: "Quan Thu Duc",
	1462: "Quan 9",
}

type ShippingService struct {
	config   *config.Config
	client   *http.Client
	feeCache *cache.Cache
	// BaseURL can be pointed at a test server.
	BaseURL string
}

type CalculateFeeRequest struct {
	ToDistrictID int    `json:"to_district_id" validate:"required"`
	ToWardCode   string `json:"to_ward_code" validate:"required"`
	Weight       int    `json:"weight"`
}

type FeeResult struct {
	Total       int  `json:"total"`
	ServiceFee  int  `json:"service_fee"`
	FromCache   bool `json:"from_cache"`
	ServiceID   int  `json:"service_id"`
	ServiceType int  `json:"service_type_id"`
}

type courierService struct {
	ServiceID     int `json:"service_id"`
	ServiceTypeID int `json:"service_type_id"`
}

type courierWard struct {
	WardCode string `json:"WardCode"`
	WardName string `json:"WardName"`
}

type courierEnvelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func NewShippingService(cfg *config.Config) *ShippingService {
	ttl := time.Duration(cfg.Shipping.FeeCacheTTL) * time.Minute
	return &ShippingService{
		config:   cfg,
		client:   &http.Client{Timeout: 10 * time.Second},
		feeCache: cache.New(ttl, 10*time.Minute),
		BaseURL:  cfg.Shipping.BaseURL,
	}
}

// CalculateFee quotes a delivery fee for a destination. Quotes are cached
// per (district, ward, weight); a cache hit refreshes the entry's TTL so
// hot destinations stay warm.
func (s *ShippingService) CalculateFee(req *CalculateFeeRequest) (*FeeResult, error) {
	if _, ok := supportedDistricts[req.ToDistrictID]; !ok {
		return nil, fmt.Errorf("%w: delivery is only available within Ho Chi Minh City", ErrConflict)
	}

	weight := req.Weight
	if weight <= 0 {
		weight = 500
	}

	key := fmt.Sprintf("fee:%d:%s:%d", req.ToDistrictID, req.ToWardCode, weight)
	if cached, ok := s.feeCache.Get(key); ok {
		result := cached.(FeeResult)
		result.FromCache = true
		s.feeCache.Set(key, cached, cache.DefaultExpiration)
		return &result, nil
	}

	service, err := s.pickService(req.ToDistrictID)
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"from_district_id": s.config.Shipping.FromDistrictID,
		"to_district_id":   req.ToDistrictID,
		"to_ward_code":     req.ToWardCode,
		"service_id":       service.ServiceID,
		"service_type_id":  service.ServiceTypeID,
		"weight":           weight,
		"shop_id":          s.config.Shipping.ShopID,
	}

	var fee struct {
		Total      int `json:"total"`
		ServiceFee int `json:"service_fee"`
	}
	if err := s.post("/shiip/public-api/v2/shipping-order/fee", payload, &fee); err != nil {
		return nil, fmt.Errorf("failed to calculate shipping fee: %w", err)
	}

	result := FeeResult{
		Total:       fee.Total,
		ServiceFee:  fee.ServiceFee,
		ServiceID:   service.ServiceID,
		ServiceType: service.ServiceTypeID,
	}
	s.feeCache.Set(key, result, cache.DefaultExpiration)
	return &result, nil
}

// pickService asks the courier for services on the route and takes the
// first one offered.
func (s *ShippingService) pickService(toDistrictID int) (*courierService, error) {
	payload := map[string]interface{}{
		"shop_id":       s.config.Shipping.ShopID,
		"from_district": s.config.Shipping.FromDistrictID,
		"to_district":   toDistrictID,
	}

	var services []courierService
	if err := s.post("/shiip/public-api/v2/shipping-order/available-services", payload, &services); err != nil {
		return nil, fmt.Errorf("failed to list courier services: %w", err)
	}
	if len(services) == 0 {
		return nil, fmt.Errorf("%w: no courier service covers this route", ErrConflict)
	}
	return &services[0], nil
}

// CreateShippingOrder registers a paid order with the courier and returns
// the tracking code.
func (s *ShippingService) CreateShippingOrder(order *models.Order) (string, error) {
	if _, ok := supportedDistricts[order.ShippingDistrict]; !ok {
		return "", fmt.Errorf("%w: delivery is only available within Ho Chi Minh City", ErrConflict)
	}

	wardCode, err := s.resolveWard(order.ShippingDistrict, order.ShippingWardCode)
	if err != nil {
		return "", err
	}

	service, err := s.pickService(order.ShippingDistrict)
	if err != nil {
		return "", err
	}

	items := make([]map[string]interface{}, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, map[string]interface{}{
			"name":     item.FlowerName,
			"quantity": item.Quantity,
			"price":    int(item.UnitPrice),
		})
	}

	payload := map[string]interface{}{
		"shop_id":          s.config.Shipping.ShopID,
		"to_name":          order.RecipientName,
		"to_phone":         order.RecipientPhone,
		"to_address":       order.ShippingAddress,
		"to_district_id":   order.ShippingDistrict,
		"to_ward_code":     wardCode,
		"service_id":       service.ServiceID,
		"service_type_id":  service.ServiceTypeID,
		"payment_type_id":  2,
		"required_note":    "CHOXEMHANGKHONGTHU",
		"weight":           500,
		"cod_amount":       0,
		"items":            items,
		"from_district_id": s.config.Shipping.FromDistrictID,
	}

	var created struct {
		OrderCode string `json:"order_code"`
	}
	if err := s.post("/shiip/public-api/v2/shipping-order/create", payload, &created); err != nil {
		return "", fmt.Errorf("failed to create shipping order: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"order_id":   order.ID,
		"order_code": created.OrderCode,
	}).Info("Shipping order registered")

	return created.OrderCode, nil
}

// resolveWard accepts either a ward code or a ward name and returns the
// courier's ward code. Name matching is case-insensitive.
func (s *ShippingService) resolveWard(districtID int, codeOrName string) (string, error) {
	payload := map[string]interface{}{"district_id": districtID}

	var wards []courierWard
	if err := s.post("/shiip/public-api/master-data/ward", payload, &wards); err != nil {
		return "", fmt.Errorf("failed to list wards: %w", err)
	}

	for _, ward := range wards {
		if ward.WardCode == codeOrName {
			return ward.WardCode, nil
		}
	}
	for _, ward := range wards {
		if strings.EqualFold(ward.WardName, codeOrName) {
			return ward.WardCode, nil
		}
	}
	return "", fmt.Errorf("ward %q %w in district %d", codeOrName, ErrNotFound, districtID)
}

// SupportedDistricts returns the delivery area for address pickers.
func (s *ShippingService) SupportedDistricts() map[int]string {
	out := make(map[int]string, len(supportedDistricts))
	for id, name := range supportedDistricts {
		out[id] = name
	}
	return out
}

func (s *ShippingService) post(path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Token", s.config.Shipping.Token)
	req.Header.Set("ShopId", fmt.Sprintf("%d", s.config.Shipping.ShopID))

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("courier request failed: %w", err)
	}
	defer resp.Body.Close()

	var envelope courierEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode courier response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || envelope.Code != 200 {
		return fmt.Errorf("courier error (code %d): %s", envelope.Code, envelope.Message)
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("failed to decode courier data: %w", err)
		}
	}
	return nil
}
