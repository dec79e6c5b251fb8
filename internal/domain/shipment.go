package domain

import "time"

// ShipmentEntity is the entity name reported by shipment lookups.
const ShipmentEntity = "Shipment"

// ShipmentStatus is the carrier-reported state of a parcel.
type ShipmentStatus string

// Shipment statuses.
const (
	ShipmentStatusUnknown        ShipmentStatus = "unknown"
	ShipmentStatusLabelCreated   ShipmentStatus = "label_created"
	ShipmentStatusInTransit      ShipmentStatus = "in_transit"
	ShipmentStatusOutForDelivery ShipmentStatus = "out_for_delivery"
	ShipmentStatusDelivered      ShipmentStatus = "delivered"
	ShipmentStatusReturned       ShipmentStatus = "returned"
)

// ShipmentEvent is one scan reported by the carrier.
type ShipmentEvent struct {
	At       time.Time
	Location string
	Note     string
}

// Shipment tracks the parcel of a shipped order.
type Shipment struct {
	OrderID        string
	TrackingNumber string
	Carrier        string
	Status         ShipmentStatus
	EstimatedAt    *time.Time
	Events         []ShipmentEvent
}

// Delivered reports whether the parcel reached the customer.
func (s *Shipment) Delivered() bool {
	return s.Status == ShipmentStatusDelivered
}
