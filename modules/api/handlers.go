package api

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Serhii-Leonenko/price-analyzer/modules/alert"
	"github.com/Serhii-Leonenko/price-analyzer/modules/catalog"
	"github.com/Serhii-Leonenko/price-analyzer/modules/currency"
	"github.com/Serhii-Leonenko/price-analyzer/modules/pricing"
	"github.com/Serhii-Leonenko/price-analyzer/pkg/money"
)

// trendRank orders trends for the trend ordering filter: rising products
// first, unknown last.
var trendRank = map[string]int{
	string(pricing.TrendUp):      0,
	string(pricing.TrendStable):  1,
	string(pricing.TrendDown):    2,
	string(pricing.TrendUnknown): 3,
}

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	catalogPort  catalog.CatalogPort
	pricingPort  pricing.PricingPort
	currencyPort currency.CurrencyPort
	alertPort    alert.AlertPort
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(catalogPort catalog.CatalogPort, pricingPort pricing.PricingPort, currencyPort currency.CurrencyPort, alertPort alert.AlertPort) *Handlers {
	return &Handlers{
		catalogPort:  catalogPort,
		pricingPort:  pricingPort,
		currencyPort: currencyPort,
		alertPort:    alertPort,
	}
}

// currencyParam reads the display currency, defaulting to USD.
func currencyParam(c *fiber.Ctx) string {
	return strings.ToUpper(c.Query("currency", "USD"))
}

// convert converts a cent amount to the display currency. A missing amount
// or an unavailable rate both come back as nil; the API renders them as
// JSON null rather than failing the request.
func (h *Handlers) convert(ctx context.Context, cents *int64, code string) *decimal.Decimal {
	if cents == nil {
		return nil
	}
	resp, err := h.currencyPort.Convert(ctx, *cents, code, time.Now())
	if err != nil {
		return nil
	}
	return resp.Amount
}

// ListProducts handles GET /products. Supports search by name, display
// currency and ordering by price or trend.
func (h *Handlers) ListProducts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	currencyCode := currencyParam(c)
	ordering := strings.ToLower(c.Query("ordering", "price"))

	products, err := h.catalogPort.ListProducts(ctx, c.Query("search"))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to list products")
	}

	items := make([]ProductListItem, 0, len(products.Products))
	for _, product := range products.Products {
		priceRange, err := h.pricingPort.PriceRangeToday(ctx, product.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load price range")
		}
		trend, err := h.pricingPort.GetTrend(ctx, product.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load trend")
		}

		items = append(items, ProductListItem{
			ID:       product.ID,
			Name:     product.Name,
			PriceMin: h.convert(ctx, priceRange.MinPriceCents, currencyCode),
			PriceMax: h.convert(ctx, priceRange.MaxPriceCents, currencyCode),
			Trend:    trend.Trend,
			Currency: currencyCode,
		})
	}

	sortProducts(items, ordering)

	return c.JSON(items)
}

// sortProducts applies the ordering filter. Products without a price sort
// as zero; unrecognized orderings leave the name order intact.
func sortProducts(items []ProductListItem, ordering string) {
	reverse := strings.HasPrefix(ordering, "-")
	key := strings.TrimPrefix(ordering, "-")

	switch key {
	case "price":
		sort.SliceStable(items, func(i, j int) bool {
			a, b := decimal.Zero, decimal.Zero
			if items[i].PriceMin != nil {
				a = *items[i].PriceMin
			}
			if items[j].PriceMin != nil {
				b = *items[j].PriceMin
			}
			if reverse {
				return a.GreaterThan(b)
			}
			return a.LessThan(b)
		})
	case "trend":
		sort.SliceStable(items, func(i, j int) bool {
			a, b := trendRank[items[i].Trend], trendRank[items[j].Trend]
			if reverse {
				return a > b
			}
			return a < b
		})
	}
}

// GetProduct handles GET /products/:id.
func (h *Handlers) GetProduct(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}
	currencyCode := currencyParam(c)

	product, err := h.catalogPort.GetProduct(ctx, uint(id))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "product not found")
	}

	priceRange, err := h.pricingPort.PriceRangeToday(ctx, product.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load price range")
	}

	return c.JSON(ProductDetail{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		PriceMin:    h.convert(ctx, priceRange.MinPriceCents, currencyCode),
		PriceMax:    h.convert(ctx, priceRange.MaxPriceCents, currencyCode),
		Currency:    currencyCode,
	})
}

// AllPrices handles GET /products/:id/all-prices.
func (h *Handlers) AllPrices(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}
	currencyCode := currencyParam(c)

	if _, err := h.catalogPort.GetProduct(ctx, uint(id)); err != nil {
		return fiber.NewError(fiber.StatusNotFound, "product not found")
	}

	prices, err := h.pricingPort.TodayPrices(ctx, uint(id))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load prices")
	}

	result := make([]StorePrice, 0, len(prices.Prices))
	for _, price := range prices.Prices {
		cents := price.PriceCents
		result = append(result, StorePrice{
			Store:     price.StoreName,
			StoreSlug: price.StoreSlug,
			Price:     h.convert(ctx, &cents, currencyCode),
		})
	}
	return c.JSON(result)
}

// PriceHistory handles GET /products/:id/price-history. Alongside the raw
// observations it returns one averaged point per day, skipping
// observations whose conversion is unavailable.
func (h *Handlers) PriceHistory(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}
	currencyCode := currencyParam(c)

	if _, err := h.catalogPort.GetProduct(ctx, uint(id)); err != nil {
		return fiber.NewError(fiber.StatusNotFound, "product not found")
	}

	history, err := h.pricingPort.History(ctx, uint(id))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load history")
	}

	points := make([]HistoryPoint, 0, len(history.History))
	sums := make(map[string]decimal.Decimal)
	counts := make(map[string]int)

	for _, point := range history.History {
		cents := point.PriceCents
		converted := h.convert(ctx, &cents, currencyCode)
		points = append(points, HistoryPoint{
			Store:     point.StoreName,
			StoreSlug: point.StoreSlug,
			Price:     converted,
			CreatedAt: point.CreatedAt,
		})

		if converted != nil {
			day := point.CreatedAt.Format("2006-01-02")
			sums[day] = sums[day].Add(*converted)
			counts[day]++
		}
	}

	days := make([]string, 0, len(sums))
	for day := range sums {
		days = append(days, day)
	}
	sort.Strings(days)

	averages := make([]DailyAverage, 0, len(days))
	for _, day := range days {
		mean := sums[day].Div(decimal.NewFromInt(int64(counts[day]))).Round(2)
		averages = append(averages, DailyAverage{Price: mean, Date: day})
	}

	return c.JSON(PriceHistoryResponse{History: points, AverageHistory: averages})
}

// CreateAlert handles POST /alerts. The target price is given in US
// dollars; the currency selects how notifications are displayed.
func (h *Handlers) CreateAlert(c *fiber.Ctx) error {
	var body CreateAlertBody
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	// User accounts live outside this system; user_id is their UUID.
	if _, err := uuid.Parse(body.UserID); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "user_id must be a valid UUID")
	}
	if body.Email == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email is required")
	}
	if body.ProductID == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "product_id is required")
	}
	if !body.TargetPrice.IsPositive() {
		return fiber.NewError(fiber.StatusBadRequest, "target_price must be positive")
	}

	created, err := h.alertPort.CreateAlert(c.UserContext(), alert.CreateAlertRequest{
		UserID:           body.UserID,
		Email:            body.Email,
		ProductID:        body.ProductID,
		TargetPriceCents: money.USDToCents(body.TargetPrice),
		CurrencyCode:     body.Currency,
	})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to create alert")
	}

	return c.Status(fiber.StatusCreated).JSON(toAlertBody(created))
}

// ListAlerts handles GET /alerts?user_id=.
func (h *Handlers) ListAlerts(c *fiber.Ctx) error {
	userID := c.Query("user_id")
	if _, err := uuid.Parse(userID); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "user_id must be a valid UUID")
	}

	alerts, err := h.alertPort.ListAlerts(c.UserContext(), userID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to list alerts")
	}

	response := AlertListResponse{Alerts: make([]AlertBody, 0, len(alerts.Alerts)), Total: alerts.Total}
	for _, a := range alerts.Alerts {
		alertCopy := a
		response.Alerts = append(response.Alerts, toAlertBody(&alertCopy))
	}
	return c.JSON(response)
}

// toAlertBody converts an alert service response to the API shape.
func toAlertBody(a *alert.AlertResponse) AlertBody {
	return AlertBody{
		ID:               a.ID,
		UserID:           a.UserID,
		ProductID:        a.ProductID,
		TargetPriceCents: a.TargetPriceCents,
		CurrencyCode:     a.CurrencyCode,
		IsActive:         a.IsActive,
		TriggeredAt:      a.TriggeredAt,
		CreatedAt:        a.CreatedAt,
	}
}
