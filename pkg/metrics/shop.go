package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ShopMetrics counts storefront business events.
type ShopMetrics struct {
	ordersPlaced       *prometheus.CounterVec
	statusTransitions  *prometheus.CounterVec
	promotionsApplied  *prometheus.CounterVec
	pointsMoved        *prometheus.CounterVec
	promotionCacheHits *prometheus.CounterVec
}

// NewShopMetrics registers the shop metrics on the provided registerer. A nil
// registerer yields a no-op recorder.
func NewShopMetrics(reg prometheus.Registerer) *ShopMetrics {
	if reg == nil {
		return &ShopMetrics{}
	}
	m := &ShopMetrics{
		ordersPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shop_orders_placed_total",
			Help: "Orders stored, by kind.",
		}, []string{"kind"}),
		statusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shop_order_transitions_total",
			Help: "Accepted order status transitions.",
		}, []string{"from", "to"}),
		promotionsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shop_promotions_applied_total",
			Help: "Orders placed with a winning promotion.",
		}, []string{"promotion"}),
		pointsMoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shop_loyalty_points_total",
			Help: "Absolute loyalty points moved, by ledger kind.",
		}, []string{"kind"}),
		promotionCacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shop_promotion_cache_lookups_total",
			Help: "Active promotion cache lookups, by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.ordersPlaced, m.statusTransitions, m.promotionsApplied, m.pointsMoved, m.promotionCacheHits)
	return m
}

func (m *ShopMetrics) IncOrderPlaced(kind string) {
	if m == nil || m.ordersPlaced == nil {
		return
	}
	m.ordersPlaced.WithLabelValues(normalizeLabel(kind)).Inc()
}

func (m *ShopMetrics) IncTransition(from, to string) {
	if m == nil || m.statusTransitions == nil {
		return
	}
	m.statusTransitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

func (m *ShopMetrics) IncPromotionApplied(name string) {
	if m == nil || m.promotionsApplied == nil {
		return
	}
	m.promotionsApplied.WithLabelValues(normalizeLabel(name)).Inc()
}

// AddPoints records the magnitude of a ledger movement.
func (m *ShopMetrics) AddPoints(kind string, amount int64) {
	if m == nil || m.pointsMoved == nil {
		return
	}
	if amount < 0 {
		amount = -amount
	}
	m.pointsMoved.WithLabelValues(normalizeLabel(kind)).Add(float64(amount))
}

// ObservePromotionCache records a cache "hit", "miss" or "error".
func (m *ShopMetrics) ObservePromotionCache(result string) {
	if m == nil || m.promotionCacheHits == nil {
		return
	}
	m.promotionCacheHits.WithLabelValues(normalizeLabel(result)).Inc()
}
