package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dujiao-next/storefront/internal/cache"
	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	dashboardCacheTTL      = 45 * time.Second
	dashboardCustomMaxDays = 90
	dashboardTopProducts   = 5
	dashboardDefaultRange  = "7d"
	dashboardCustomRange   = "custom"
)

// dashboardPresetDays 预置区间包含今天在内的天数
var dashboardPresetDays = map[string]int{"today": 1, "7d": 7, "30d": 30}

// DashboardService 后台首页的订单、退款与库存汇总，结果短时缓存
type DashboardService struct {
	repo     repository.DashboardRepository
	currency string
}

func NewDashboardService(repo repository.DashboardRepository, currency string) *DashboardService {
	return &DashboardService{repo: repo, currency: normalizeWalletCurrency(currency)}
}

// DashboardQueryInput Range 为 today/7d/30d/custom，custom 需要 From 与 To
type DashboardQueryInput struct {
	Range        string
	From         *time.Time
	To           *time.Time
	Timezone     string
	ForceRefresh bool
}

type DashboardOverviewResponse struct {
	Range       string                    `json:"range"`
	From        string                    `json:"from"`
	To          string                    `json:"to"`
	Timezone    string                    `json:"timezone"`
	Currency    string                    `json:"currency"`
	KPI         DashboardKPI              `json:"kpi"`
	ItemStatus  []DashboardItemStatus     `json:"item_status"`
	TopProducts []DashboardProductRanking `json:"top_products"`
	Alerts      []DashboardAlertItem      `json:"alerts"`
}

// DashboardKPI 金额字段为两位小数字符串，PaymentRate 为百分比
type DashboardKPI struct {
	OrdersTotal        int64  `json:"orders_total"`
	PaidOrders         int64  `json:"paid_orders"`
	GMVPaid            string `json:"gmv_paid"`
	DiscountTotal      string `json:"discount_total"`
	RefundedTotal      string `json:"refunded_total"`
	PaymentRate        string `json:"payment_rate"`
	CancelledItems     int64  `json:"cancelled_items"`
	PendingReturns     int64  `json:"pending_returns"`
	NewUsers           int64  `json:"new_users"`
	ActiveProducts     int64  `json:"active_products"`
	OutOfStockVariants int64  `json:"out_of_stock_variants"`
}

type DashboardItemStatus struct {
	Status   string `json:"status"`
	Items    int64  `json:"items"`
	Quantity int64  `json:"quantity"`
}

type DashboardProductRanking struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Orders      int64  `json:"orders"`
	Quantity    int64  `json:"quantity"`
	Amount      string `json:"amount"`
}

type DashboardAlertItem struct {
	Type  string `json:"type"`
	Level string `json:"level"`
	Value int64  `json:"value"`
}

// dashboardWindow 左闭右开的统计区间
type dashboardWindow struct {
	rangeKey string
	startAt  time.Time
	endAt    time.Time
	timezone string
}

func (w dashboardWindow) cacheKey() string {
	return fmt.Sprintf("dashboard:overview:%s:%d:%d:%s", w.rangeKey, w.startAt.Unix(), w.endAt.Unix(), w.timezone)
}

// GetOverview 未强制刷新时优先读缓存；缓存不可用不影响结果
func (s *DashboardService) GetOverview(ctx context.Context, input DashboardQueryInput) (*DashboardOverviewResponse, error) {
	if s == nil || s.repo == nil {
		return &DashboardOverviewResponse{}, nil
	}
	window, err := resolveDashboardWindow(input, time.Now())
	if err != nil {
		return nil, err
	}
	key := window.cacheKey()
	if !input.ForceRefresh {
		var cached DashboardOverviewResponse
		if hit, err := cache.GetJSON(ctx, key, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	result, err := s.aggregate(window)
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, key, result, dashboardCacheTTL); err != nil {
		logger.Debugw("dashboard_cache_write_failed", "key", key, "error", err)
	}
	return result, nil
}

func (s *DashboardService) aggregate(window dashboardWindow) (*DashboardOverviewResponse, error) {
	overview, err := s.repo.GetOverview(window.startAt, window.endAt)
	if err != nil {
		return nil, err
	}
	statusRows, err := s.repo.GetItemStatusBreakdown(window.startAt, window.endAt)
	if err != nil {
		return nil, err
	}
	productRows, err := s.repo.GetTopProducts(window.startAt, window.endAt, dashboardTopProducts)
	if err != nil {
		return nil, err
	}

	result := &DashboardOverviewResponse{
		Range:       window.rangeKey,
		From:        window.startAt.Format(time.RFC3339),
		To:          window.endAt.Add(-time.Second).Format(time.RFC3339),
		Timezone:    window.timezone,
		Currency:    s.currency,
		ItemStatus:  make([]DashboardItemStatus, 0, len(statusRows)),
		TopProducts: make([]DashboardProductRanking, 0, len(productRows)),
		Alerts:      buildDashboardAlerts(overview),
		KPI: DashboardKPI{
			OrdersTotal:        overview.OrdersTotal,
			PaidOrders:         overview.PaidOrders,
			GMVPaid:            fixed2(overview.GMVPaid),
			DiscountTotal:      fixed2(overview.DiscountTotal),
			RefundedTotal:      fixed2(overview.RefundedTotal),
			PaymentRate:        paymentRate(overview.PaidOrders, overview.OrdersTotal),
			CancelledItems:     overview.CancelledItems,
			PendingReturns:     overview.PendingReturns,
			NewUsers:           overview.NewUsers,
			ActiveProducts:     overview.ActiveProducts,
			OutOfStockVariants: overview.OutOfStockVariant,
		},
	}
	for _, row := range statusRows {
		result.ItemStatus = append(result.ItemStatus, DashboardItemStatus(row))
	}
	for _, row := range productRows {
		name := strings.TrimSpace(row.ProductName)
		if name == "" {
			name = "-"
		}
		result.TopProducts = append(result.TopProducts, DashboardProductRanking{
			ProductID:   row.ProductID,
			ProductName: name,
			Orders:      row.Orders,
			Quantity:    row.Quantity,
			Amount:      fixed2(row.Amount),
		})
	}
	return result, nil
}

// resolveDashboardWindow 未知时区回落为服务器时区；自定义区间最长 90 天且包含 To 当秒
func resolveDashboardWindow(input DashboardQueryInput, now time.Time) (dashboardWindow, error) {
	rangeKey := strings.ToLower(strings.TrimSpace(input.Range))
	if rangeKey == "" {
		rangeKey = dashboardDefaultRange
	}
	location := time.Local
	if tz := strings.TrimSpace(input.Timezone); tz != "" {
		if loaded, err := time.LoadLocation(tz); err == nil {
			location = loaded
		}
	}
	window := dashboardWindow{rangeKey: rangeKey, timezone: location.String()}

	if days, ok := dashboardPresetDays[rangeKey]; ok {
		local := now.In(location)
		tomorrow := time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, location)
		window.startAt = tomorrow.AddDate(0, 0, -days)
		window.endAt = tomorrow
		return window, nil
	}
	if rangeKey != dashboardCustomRange || input.From == nil || input.To == nil {
		return dashboardWindow{}, ErrDashboardRangeInvalid
	}
	startAt, endAt := input.From.In(location), input.To.In(location)
	if endAt.Before(startAt) || endAt.Sub(startAt) > dashboardCustomMaxDays*24*time.Hour {
		return dashboardWindow{}, ErrDashboardRangeInvalid
	}
	window.startAt = startAt
	window.endAt = endAt.Add(time.Second)
	return window, nil
}

func fixed2(value float64) string {
	return decimal.NewFromFloat(value).StringFixed(2)
}

func paymentRate(paid, total int64) string {
	if total <= 0 {
		return "0.00"
	}
	return decimal.NewFromInt(paid).Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(total)).StringFixed(2)
}

func buildDashboardAlerts(overview repository.DashboardOverviewRow) []DashboardAlertItem {
	alerts := make([]DashboardAlertItem, 0, 2)
	if overview.OutOfStockVariant > 0 {
		alerts = append(alerts, DashboardAlertItem{Type: "out_of_stock_variants", Level: "error", Value: overview.OutOfStockVariant})
	}
	if overview.PendingReturns > 0 {
		alerts = append(alerts, DashboardAlertItem{Type: "pending_returns", Level: "warning", Value: overview.PendingReturns})
	}
	return alerts
}
