// internal/services/shipping_service_test.go
package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/floramart/floramart-backend/internal/models"
)

type ShippingServiceTestSuite struct {
	suite.Suite
	service  *ShippingService
	server   *httptest.Server
	upstream int64
}

func (suite *ShippingServiceTestSuite) SetupTest() {
	atomic.StoreInt64(&suite.upstream, 0)

	mux := http.NewServeMux()
	mux.HandleFunc("/shiip/public-api/v2/shipping-order/available-services", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&suite.upstream, 1)
		suite.writeEnvelope(w, []courierService{{ServiceID: 53320, ServiceTypeID: 2}})
	})
	mux.HandleFunc("/shiip/public-api/v2/shipping-order/fee", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&suite.upstream, 1)
		suite.Equal("test-token", r.Header.Get("Token"))
		suite.writeEnvelope(w, map[string]int{"total": 22000, "service_fee": 20000})
	})
	mux.HandleFunc("/shiip/public-api/master-data/ward", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&suite.upstream, 1)
		suite.writeEnvelope(w, []courierWard{
			{WardCode: "20109", WardName: "Phuong Ben Nghe"},
			{WardCode: "20110", WardName: "Phuong Ben Thanh"},
		})
	})
	mux.HandleFunc("/shiip/public-api/v2/shipping-order/create", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&suite.upstream, 1)
		suite.writeEnvelope(w, map[string]string{"order_code": "GHN123456"})
	})
	suite.server = httptest.NewServer(mux)

	suite.service = NewShippingService(newTestConfig())
	suite.service.BaseURL = suite.server.URL
}

func (suite *ShippingServiceTestSuite) TearDownTest() {
	suite.server.Close()
}

func (suite *ShippingServiceTestSuite) writeEnvelope(w http.ResponseWriter, data interface{}) {
	raw, err := json.Marshal(data)
	suite.Require().NoError(err)
	json.NewEncoder(w).Encode(courierEnvelope{Code: 200, Message: "Success", Data: raw})
}

func (suite *ShippingServiceTestSuite) TestFeeOutsideDeliveryAreaRejected() {
	_, err := suite.service.CalculateFee(&CalculateFeeRequest{
		ToDistrictID: 1542, // Hanoi
		ToWardCode:   "20109",
	})
	suite.ErrorIs(err, ErrConflict)

	// The whitelist check trips before any courier call.
	suite.Zero(atomic.LoadInt64(&suite.upstream))
}

func (suite *ShippingServiceTestSuite) TestFeeQuoteAndCache() {
	req := &CalculateFeeRequest{ToDistrictID: 1442, ToWardCode: "20109"}

	first, err := suite.service.CalculateFee(req)
	suite.Require().NoError(err)
	suite.Equal(22000, first.Total)
	suite.Equal(20000, first.ServiceFee)
	suite.False(first.FromCache)

	calls := atomic.LoadInt64(&suite.upstream)

	second, err := suite.service.CalculateFee(req)
	suite.Require().NoError(err)
	suite.Equal(22000, second.Total)
	suite.True(second.FromCache)
	suite.Equal(calls, atomic.LoadInt64(&suite.upstream))

	// A different weight is a different quote.
	heavy, err := suite.service.CalculateFee(&CalculateFeeRequest{
		ToDistrictID: 1442, ToWardCode: "20109", Weight: 2000,
	})
	suite.Require().NoError(err)
	suite.False(heavy.FromCache)
}

func (suite *ShippingServiceTestSuite) TestCreateShippingOrder() {
	order := &models.Order{
		RecipientName:    "Nguyen Van A",
		RecipientPhone:   "0901234567",
		ShippingAddress:  "12 Nguyen Hue",
		ShippingDistrict: 1442,
		ShippingWardCode: "20109",
		Items: []models.OrderItem{{
			FlowerName: "Red Rose Bouquet",
			UnitPrice:  25,
			Quantity:   2,
		}},
	}

	code, err := suite.service.CreateShippingOrder(order)
	suite.Require().NoError(err)
	suite.Equal("GHN123456", code)
}

func (suite *ShippingServiceTestSuite) TestWardResolvedByName() {
	order := &models.Order{
		RecipientName:    "Nguyen Van A",
		RecipientPhone:   "0901234567",
		ShippingAddress:  "12 Nguyen Hue",
		ShippingDistrict: 1442,
		ShippingWardCode: "phuong ben thanh",
		Items:            []models.OrderItem{{FlowerName: "Rose", UnitPrice: 10, Quantity: 1}},
	}

	code, err := suite.service.CreateShippingOrder(order)
	suite.Require().NoError(err)
	suite.Equal("GHN123456", code)
}

func (suite *ShippingServiceTestSuite) TestUnknownWardRejected() {
	order := &models.Order{
		RecipientName:    "Nguyen Van A",
		RecipientPhone:   "0901234567",
		ShippingAddress:  "12 Nguyen Hue",
		ShippingDistrict: 1442,
		ShippingWardCode: "Phuong Khong Ton Tai",
		Items:            []models.OrderItem{{FlowerName: "Rose", UnitPrice: 10, Quantity: 1}},
	}

	_, err := suite.service.CreateShippingOrder(order)
	suite.ErrorIs(err, ErrNotFound)
}

func (suite *ShippingServiceTestSuite) TestCourierErrorSurfaced() {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(courierEnvelope{Code: 400, Message: "invalid token"})
	}))
	defer failing.Close()

	suite.service.BaseURL = failing.URL
	_, err := suite.service.CalculateFee(&CalculateFeeRequest{ToDistrictID: 1442, ToWardCode: "20109"})
	suite.Require().Error(err)
	suite.Contains(err.Error(), "invalid token")
}

func (suite *ShippingServiceTestSuite) TestSupportedDistrictsIsACopy() {
	districts := suite.service.SupportedDistricts()
	suite.Equal("Quan 1", districts[1442])

	districts[1442] = "mutated"
	suite.Equal("Quan 1", suite.service.SupportedDistricts()[1442])
}

func TestShippingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ShippingServiceTestSuite))
}
