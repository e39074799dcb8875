package orders

import (
	"sort"
	"strings"
	"time"

	"github.com/insomniafuel/storefront-core/pkg/enums"
	"github.com/insomniafuel/storefront-core/pkg/types"
	"github.com/shopspring/decimal"
)

// DefaultPageSize matches the admin board's page length.
const DefaultPageSize = 20

// Sort orders the admin board listing.
type Sort string

const (
	SortNewest    Sort = "newest"
	SortOldest    Sort = "oldest"
	SortTotalHigh Sort = "total_high"
	SortTotalLow  Sort = "total_low"
)

// Window restricts a listing to a recency bucket.
type Window string

const (
	WindowAll   Window = "all"
	WindowToday Window = "today"
	WindowWeek  Window = "week"
)

// Query narrows and orders a snapshot of orders for display.
type Query struct {
	// Status filters to one lifecycle status; nil means all.
	Status *enums.OrderStatus
	// Search matches against customer name, email and order id,
	// case-insensitively.
	Search string
	Window Window
	Sort   Sort
	// Page is 1-based. PageSize defaults to DefaultPageSize.
	Page     int
	PageSize int
	// Now anchors the recency window; zero means time.Now().
	Now time.Time
}

// Page is one page of a filtered listing.
type Page struct {
	Orders    []types.Order
	Total     int
	Page      int
	PageCount int
}

// Summary aggregates a snapshot for the board header.
type Summary struct {
	Total        int
	ByStatus     map[enums.OrderStatus]int
	Unpaid       int
	Revenue      decimal.Decimal
	OrdersToday  int
	RevenueToday decimal.Decimal
}

// Summarize computes the board header counts relative to now. Revenue
// counts paid orders only; today's revenue additionally excludes
// cancelled ones.
func Summarize(orders []types.Order, now time.Time) Summary {
	if now.IsZero() {
		now = time.Now()
	}
	summary := Summary{
		Total:        len(orders),
		ByStatus:     make(map[enums.OrderStatus]int, len(enums.OrderStatuses())),
		Revenue:      decimal.Zero,
		RevenueToday: decimal.Zero,
	}
	for _, order := range orders {
		summary.ByStatus[order.Status]++
		paid := order.PaymentStatus != enums.PaymentStatusUnpaid
		if !paid {
			summary.Unpaid++
		} else {
			summary.Revenue = summary.Revenue.Add(order.Amount())
		}
		if sameDay(order.CreatedAt, now) {
			summary.OrdersToday++
			if paid && order.Status != enums.OrderStatusCancelled {
				summary.RevenueToday = summary.RevenueToday.Add(order.Amount())
			}
		}
	}
	return summary
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}

// Select applies the query to a snapshot and returns the requested
// page. The input slice is not modified.
func Select(orders []types.Order, query Query) Page {
	now := query.Now
	if now.IsZero() {
		now = time.Now()
	}

	filtered := make([]types.Order, 0, len(orders))
	needle := strings.ToLower(strings.TrimSpace(query.Search))
	for _, order := range orders {
		if query.Status != nil && order.Status != *query.Status {
			continue
		}
		if !inWindow(order.CreatedAt, query.Window, now) {
			continue
		}
		if needle != "" && !matches(order, needle) {
			continue
		}
		filtered = append(filtered, order)
	}

	sortOrders(filtered, query.Sort)

	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pageCount := (len(filtered) + pageSize - 1) / pageSize
	if pageCount == 0 {
		pageCount = 1
	}
	page := query.Page
	if page < 1 {
		page = 1
	}
	if page > pageCount {
		page = pageCount
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	return Page{
		Orders:    filtered[start:end],
		Total:     len(filtered),
		Page:      page,
		PageCount: pageCount,
	}
}

func inWindow(createdAt time.Time, window Window, now time.Time) bool {
	switch window {
	case WindowToday:
		return sameDay(createdAt, now)
	case WindowWeek:
		return createdAt.After(now.AddDate(0, 0, -7))
	default:
		return true
	}
}

func matches(order types.Order, needle string) bool {
	if strings.Contains(strings.ToLower(order.ID), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(order.CustomerName()), needle) {
		return true
	}
	if order.Email != nil && strings.Contains(strings.ToLower(*order.Email), needle) {
		return true
	}
	return false
}

func sortOrders(orders []types.Order, by Sort) {
	switch by {
	case SortOldest:
		sort.SliceStable(orders, func(i, j int) bool {
			return orders[i].CreatedAt.Before(orders[j].CreatedAt)
		})
	case SortTotalHigh:
		sort.SliceStable(orders, func(i, j int) bool {
			return orders[i].Amount().GreaterThan(orders[j].Amount())
		})
	case SortTotalLow:
		sort.SliceStable(orders, func(i, j int) bool {
			return orders[i].Amount().LessThan(orders[j].Amount())
		})
	default: // newest first
		sort.SliceStable(orders, func(i, j int) bool {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		})
	}
}
