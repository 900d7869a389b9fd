package redisx

import "time"

const (
	// Cached order status for tracking polls:
	// order_status:{order_id} -> {"status":"...","user_id":N}
	KeyOrderStatus = "order_status:%d"

	// Catalog cache: the full product list and single products.
	KeyProductList = "catalog:products"
	KeyProduct     = "catalog:product:%d"

	// Dedup for event consumers: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLCatalog     = 10 * time.Minute
	TTLDedup       = 48 * time.Hour
)
