package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the widget counters on a private registry.
// All methods are safe on a nil *Collector so tests can skip metrics entirely.
type Collector struct {
	registry *prometheus.Registry

	extractMemo     *prometheus.CounterVec
	catalogItems    *prometheus.GaugeVec
	paymentChecks   *prometheus.CounterVec
	cartReplaces    prometheus.Counter
	imagePatches    *prometheus.CounterVec
	sendRejections  *prometheus.CounterVec
	transportErrors prometheus.Counter
}

// NewCollector creates and registers every metric.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		extractMemo: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_extract_memo_total",
				Help: "Mention extraction memo lookups",
			},
			[]string{"result"},
		),
		catalogItems: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "storefront_catalog_items",
				Help: "Items in the last built catalog index",
			},
			[]string{"kind"},
		),
		paymentChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_payment_checks_total",
				Help: "Payment status checks by outcome",
			},
			[]string{"outcome"},
		),
		cartReplaces: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_cart_agent_replaces_total",
			Help: "Client carts replaced by an assistant-reported cart",
		}),
		imagePatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_image_patches_total",
				Help: "Image backfill patches by outcome",
			},
			[]string{"outcome"},
		),
		sendRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_send_rejections_total",
				Help: "Chat sends rejected by the send guard",
			},
			[]string{"reason"},
		),
		transportErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_chat_transport_errors_total",
			Help: "Chat transport failures answered with the fallback reply",
		}),
	}

	c.registry.MustRegister(
		c.extractMemo,
		c.catalogItems,
		c.paymentChecks,
		c.cartReplaces,
		c.imagePatches,
		c.sendRejections,
		c.transportErrors,
	)
	return c
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) MemoHit() {
	if c != nil {
		c.extractMemo.WithLabelValues("hit").Inc()
	}
}

func (c *Collector) MemoMiss() {
	if c != nil {
		c.extractMemo.WithLabelValues("miss").Inc()
	}
}

// CatalogSize records the indexed item count for one kind.
func (c *Collector) CatalogSize(kind string, n int) {
	if c != nil {
		c.catalogItems.WithLabelValues(kind).Set(float64(n))
	}
}

// PaymentCheck counts one status check; outcome is paid, pending, not_found or error.
func (c *Collector) PaymentCheck(outcome string) {
	if c != nil {
		c.paymentChecks.WithLabelValues(outcome).Inc()
	}
}

func (c *Collector) CartReplaced() {
	if c != nil {
		c.cartReplaces.Inc()
	}
}

// ImagePatch counts one backfill result; outcome is applied, stale or failed.
func (c *Collector) ImagePatch(outcome string) {
	if c != nil {
		c.imagePatches.WithLabelValues(outcome).Inc()
	}
}

// SendRejected counts one guard rejection; reason is in_flight or duplicate.
func (c *Collector) SendRejected(reason string) {
	if c != nil {
		c.sendRejections.WithLabelValues(reason).Inc()
	}
}

func (c *Collector) TransportError() {
	if c != nil {
		c.transportErrors.Inc()
	}
}
