package domain

import (
	"sort"
	"strconv"
)

type OrderType string

const (
	OrderTypeNormal    OrderType = "normal"
	OrderTypeVoiceChat OrderType = "voice_chat"
)

const (
	OrderStatusPlaced            = "Placed"
	OrderStatusInTransit         = "In Transit"
	OrderStatusInNearestHub      = "In Nearest Hub"
	OrderStatusOutForDelivery    = "Out for Delivery"
	OrderStatusDelivered         = "Delivered"
	OrderStatusCancelled         = "Cancelled"
	OrderStatusCancelledBySeller = "Cancelled By Seller"
)

// StatusOptions lists every status the console may set, in the normal
// progression order. Any transition between them is legal.
var StatusOptions = []string{
	OrderStatusPlaced,
	OrderStatusInTransit,
	OrderStatusInNearestHub,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusCancelledBySeller,
}

func ValidStatus(status string) bool {
	for _, s := range StatusOptions {
		if s == status {
			return true
		}
	}
	return false
}

func ValidOrderType(t string) bool {
	return OrderType(t) == OrderTypeNormal || OrderType(t) == OrderTypeVoiceChat
}

// FieldNotAvailable is the sentinel for document fields the storefront never
// filled in.
const FieldNotAvailable = "N/A"

// Order is the unified shape both source variants normalize into.
type Order struct {
	OrderID         string    `json:"orderId"`
	UserID          string    `json:"userId"`
	OrderType       OrderType `json:"orderType"`
	OrderStatus     string    `json:"orderStatus"`
	Timestamp       int64     `json:"timestamp"`
	GrandTotal      float64   `json:"grandTotal"`
	Subtotal        float64   `json:"subtotal"`
	DeliveryFee     float64   `json:"deliveryFee"`
	PlatformFee     float64   `json:"platformFee"`
	DeliveryAddress string    `json:"deliveryAddress"`
	PaymentMethod   string    `json:"paymentMethod"`
	PaymentStatus   string    `json:"paymentStatus"`
	ItemCount       int       `json:"itemCount"`

	// Voice-chat orders only.
	ProductName        string  `json:"productName,omitempty"`
	ProductPrice       float64 `json:"productPrice,omitempty"`
	ProductDescription string  `json:"productDescription,omitempty"`
	ImageURL           string  `json:"imageUrl,omitempty"`
	CustomerName       string  `json:"customerName,omitempty"`
}

// OrderKey identifies an order within the merged view. Later snapshots for
// the same key replace the entry, never duplicate it.
type OrderKey struct {
	OrderID string
	UserID  string
}

func (o Order) Key() OrderKey {
	return OrderKey{OrderID: o.OrderID, UserID: o.UserID}
}

// NormalizeNormalOrder builds an Order from a raw standard-order document,
// applying every field default in one place so the merge step stays
// variant-agnostic.
func NormalizeNormalOrder(userID, orderID string, doc map[string]string) Order {
	return Order{
		OrderID:         orderID,
		UserID:          userID,
		OrderType:       OrderTypeNormal,
		OrderStatus:     docString(doc, "orderStatus", OrderStatusPlaced),
		Timestamp:       docInt64(doc, "timestamp", 0),
		GrandTotal:      docFloat(doc, "grandTotal", 0),
		Subtotal:        docFloat(doc, "subtotal", 0),
		DeliveryFee:     docFloat(doc, "deliveryFee", 0),
		PlatformFee:     docFloat(doc, "platformFee", 0),
		DeliveryAddress: docString(doc, "deliveryAddress", FieldNotAvailable),
		PaymentMethod:   docString(doc, "paymentMethod", FieldNotAvailable),
		PaymentStatus:   docString(doc, "paymentStatus", FieldNotAvailable),
		ItemCount:       int(docInt64(doc, "itemCount", 0)),
	}
}

// NormalizeVoiceOrder builds an Order from a raw voice-chat order document.
// Voice orders describe a single product, so itemCount defaults to 1.
func NormalizeVoiceOrder(userID, orderID string, doc map[string]string) Order {
	return Order{
		OrderID:            orderID,
		UserID:             userID,
		OrderType:          OrderTypeVoiceChat,
		OrderStatus:        docString(doc, "orderStatus", OrderStatusPlaced),
		Timestamp:          docInt64(doc, "timestamp", 0),
		GrandTotal:         docFloat(doc, "grandTotal", 0),
		Subtotal:           docFloat(doc, "subtotal", 0),
		DeliveryFee:        docFloat(doc, "deliveryFee", 0),
		PlatformFee:        docFloat(doc, "platformFee", 0),
		DeliveryAddress:    docString(doc, "deliveryAddress", FieldNotAvailable),
		PaymentMethod:      docString(doc, "paymentMethod", FieldNotAvailable),
		PaymentStatus:      docString(doc, "paymentStatus", FieldNotAvailable),
		ItemCount:          int(docInt64(doc, "itemCount", 1)),
		ProductName:        doc["productName"],
		ProductPrice:       docFloat(doc, "productPrice", 0),
		ProductDescription: doc["productDescription"],
		ImageURL:           doc["imageUrl"],
		CustomerName:       doc["customerName"],
	}
}

// SortByTimestampDesc orders newest first. Orders with no timestamp carry 0
// and therefore sort after every timestamped order. Ties break on user and
// order id so repeated publishes of the same set come out identical.
func SortByTimestampDesc(orders []Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if orders[i].Timestamp != orders[j].Timestamp {
			return orders[i].Timestamp > orders[j].Timestamp
		}
		if orders[i].UserID != orders[j].UserID {
			return orders[i].UserID < orders[j].UserID
		}
		return orders[i].OrderID < orders[j].OrderID
	})
}

func docString(doc map[string]string, key, fallback string) string {
	if v, ok := doc[key]; ok && v != "" {
		return v
	}
	return fallback
}

func docFloat(doc map[string]string, key string, fallback float64) float64 {
	if v, ok := doc[key]; ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func docInt64(doc map[string]string, key string, fallback int64) int64 {
	if v, ok := doc[key]; ok && v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
