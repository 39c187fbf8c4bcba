// Package metrics defines the custom Prometheus metrics for the commerce
// API. It is the single source of truth for metric names, labels, and help
// strings; all metrics register with the default registry via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "commerce"

// RegistrationsTotal counts successful account registrations by role.
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of accounts registered, by role.",
	},
	[]string{"role"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "failure", or "throttled"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokenRefreshesTotal counts refresh-token rotations.
// Label:
//   - result: "rotated" or "rejected"
var TokenRefreshesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refreshes_total",
		Help:      "Total number of refresh-token rotation attempts, by result.",
	},
	[]string{"result"},
)

// ProductsCreatedTotal counts products added to the catalog.
var ProductsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "products_created_total",
		Help:      "Total number of products created.",
	},
)

// QuantityOpsTotal counts inventory quantity mutations.
// Labels:
//   - op: "set", "increment", or "decrement"
//   - result: "ok" or "rejected"
var QuantityOpsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quantity_ops_total",
		Help:      "Total number of inventory quantity operations, by op and result.",
	},
	[]string{"op", "result"},
)

// ImageUploadsTotal counts product image uploads.
// Label:
//   - result: "ok", "rejected" (validation), or "failed" (media host)
var ImageUploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "image_uploads_total",
		Help:      "Total number of product image upload attempts, by result.",
	},
	[]string{"result"},
)
