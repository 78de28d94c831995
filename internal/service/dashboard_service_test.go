package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dujiao-next/storefront/internal/repository"
)

type stubDashboardRepo struct {
	overview repository.DashboardOverviewRow
	statuses []repository.DashboardItemStatusRow
	products []repository.DashboardProductRankingRow
	calls    int
}

func (r *stubDashboardRepo) GetOverview(time.Time, time.Time) (repository.DashboardOverviewRow, error) {
	r.calls++
	return r.overview, nil
}

func (r *stubDashboardRepo) GetItemStatusBreakdown(time.Time, time.Time) ([]repository.DashboardItemStatusRow, error) {
	return r.statuses, nil
}

func (r *stubDashboardRepo) GetTopProducts(time.Time, time.Time, int) ([]repository.DashboardProductRankingRow, error) {
	return r.products, nil
}

func TestResolveDashboardWindowPresets(t *testing.T) {
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	now := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC) // 3 月 11 日 01:30 IST

	window, err := resolveDashboardWindow(DashboardQueryInput{Range: "today", Timezone: "Asia/Kolkata"}, now)
	if err != nil {
		t.Fatalf("resolve today failed: %v", err)
	}
	if want := time.Date(2026, 3, 11, 0, 0, 0, 0, kolkata); !window.startAt.Equal(want) {
		t.Fatalf("today start want %s got %s", want, window.startAt)
	}
	if window.endAt.Sub(window.startAt) != 24*time.Hour {
		t.Fatalf("today window should span one day")
	}

	window, err = resolveDashboardWindow(DashboardQueryInput{}, now)
	if err != nil || window.rangeKey != "7d" {
		t.Fatalf("empty range should default to 7d: %+v err=%v", window, err)
	}
	if days := window.endAt.Sub(window.startAt).Hours() / 24; days != 7 {
		t.Fatalf("7d window spans %.0f days", days)
	}
}

func TestResolveDashboardWindowCustomBounds(t *testing.T) {
	now := time.Now()
	from := now.AddDate(0, 0, -10)
	if _, err := resolveDashboardWindow(DashboardQueryInput{Range: "custom", From: &from, To: &now}, now); err != nil {
		t.Fatalf("10 day custom range should pass: %v", err)
	}
	tooEarly := now.AddDate(0, 0, -91)
	if _, err := resolveDashboardWindow(DashboardQueryInput{Range: "custom", From: &tooEarly, To: &now}, now); !errors.Is(err, ErrDashboardRangeInvalid) {
		t.Fatalf("91 day range want ErrDashboardRangeInvalid got %v", err)
	}
	if _, err := resolveDashboardWindow(DashboardQueryInput{Range: "custom", From: &now, To: &from}, now); !errors.Is(err, ErrDashboardRangeInvalid) {
		t.Fatalf("reversed range want ErrDashboardRangeInvalid got %v", err)
	}
	if _, err := resolveDashboardWindow(DashboardQueryInput{Range: "custom"}, now); !errors.Is(err, ErrDashboardRangeInvalid) {
		t.Fatalf("custom range without bounds should fail")
	}
	if _, err := resolveDashboardWindow(DashboardQueryInput{Range: "1y"}, now); !errors.Is(err, ErrDashboardRangeInvalid) {
		t.Fatalf("unknown range should fail")
	}
}

func TestDashboardOverviewFormatsKPI(t *testing.T) {
	repo := &stubDashboardRepo{
		overview: repository.DashboardOverviewRow{
			OrdersTotal:       3,
			PaidOrders:        2,
			GMVPaid:           1954.96,
			RefundedTotal:     45.04,
			PendingReturns:    1,
			OutOfStockVariant: 2,
		},
		statuses: []repository.DashboardItemStatusRow{{Status: "Delivered", Items: 2, Quantity: 3}},
		products: []repository.DashboardProductRankingRow{{ProductID: 1, ProductName: " ", Orders: 2, Quantity: 3, Amount: 999.5}},
	}
	svc := NewDashboardService(repo, "inr")

	result, err := svc.GetOverview(context.Background(), DashboardQueryInput{Range: "30d", ForceRefresh: true})
	if err != nil {
		t.Fatalf("overview failed: %v", err)
	}
	if result.KPI.GMVPaid != "1954.96" || result.KPI.RefundedTotal != "45.04" {
		t.Fatalf("money formatting mismatch: %+v", result.KPI)
	}
	if result.KPI.PaymentRate != "66.67" {
		t.Fatalf("payment rate want 66.67 got %s", result.KPI.PaymentRate)
	}
	if result.TopProducts[0].ProductName != "-" || result.TopProducts[0].Amount != "999.50" {
		t.Fatalf("product ranking mismatch: %+v", result.TopProducts[0])
	}
	if len(result.Alerts) != 2 || result.Alerts[0].Type != "out_of_stock_variants" {
		t.Fatalf("alerts mismatch: %+v", result.Alerts)
	}
	if result.ItemStatus[0].Status != "Delivered" {
		t.Fatalf("item status mismatch: %+v", result.ItemStatus)
	}
}
