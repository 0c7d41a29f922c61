package domain

import "time"

const (
	RecipientAll  = "all"
	RecipientUser = "user"
)

type Notification struct {
	Title         string    `json:"title" validate:"required"`
	Message       string    `json:"message" validate:"required"`
	Type          string    `json:"type" validate:"required,oneof=general booking system promotion"`
	RecipientType string    `json:"recipientType" validate:"required,oneof=all user"`
	RecipientID   string    `json:"recipientId,omitempty" validate:"required_if=RecipientType user"`
	SentBy        string    `json:"sentBy" validate:"required"`
	SentAt        time.Time `json:"sentAt"`
	ReadBy        []string  `json:"readBy,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Admin-only records.

type Setting struct {
	CommissionRate float64         `json:"commissionRate" validate:"gte=0,lte=100"`
	PaymentMethods map[string]bool `json:"paymentMethods,omitempty"`
	Notifications  map[string]bool `json:"notifications,omitempty"`
	AppVersion     string          `json:"appVersion,omitempty"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

type SystemLog struct {
	Action    string    `json:"action" validate:"required"`
	UserID    string    `json:"userId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Backup struct {
	Timestamp    time.Time `json:"timestamp"`
	ParkingSpots int64     `json:"parkingSpots" validate:"gte=0"`
	Users        int64     `json:"users" validate:"gte=0"`
	Bookings     int64     `json:"bookings" validate:"gte=0"`
	CreatedBy    string    `json:"createdBy" validate:"required"`
}

// Fields converts the record into document fields.
func (b Backup) Fields() Fields {
	return Fields{
		"timestamp":    b.Timestamp.UTC(),
		"parkingSpots": b.ParkingSpots,
		"users":        b.Users,
		"bookings":     b.Bookings,
		"createdBy":    b.CreatedBy,
	}
}

func (l SystemLog) Fields() Fields {
	f := Fields{
		"action":    l.Action,
		"timestamp": l.Timestamp.UTC(),
	}
	if l.UserID != "" {
		f["userId"] = l.UserID
	}
	return f
}
