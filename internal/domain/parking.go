package domain

import "time"

type GeoPoint struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

type ParkingSpot struct {
	Name            string    `json:"name" validate:"required"`
	Description     string    `json:"description,omitempty"`
	Address         string    `json:"address" validate:"required"`
	Location        GeoPoint  `json:"location"`
	TotalSpots      int64     `json:"totalSpots" validate:"gte=0"`
	AvailableSpots  int64     `json:"availableSpots" validate:"gte=0,ltefield=TotalSpots"`
	PricePerHour    float64   `json:"pricePerHour" validate:"gte=0"`
	HasEVCharging   bool      `json:"hasEVCharging"`
	EVChargingPrice float64   `json:"evChargingPrice" validate:"gte=0"`
	IsActive        bool      `json:"isActive"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "active"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
)

type Reservation struct {
	UserID    string    `json:"userId" validate:"required"`
	SpotID    string    `json:"spotId" validate:"required"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime" validate:"gtfield=StartTime"`
	Duration  string    `json:"duration"`
	Price     float64   `json:"price" validate:"gte=0"`
	Status    string    `json:"status" validate:"required,oneof=active completed cancelled"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
