package models

import "github.com/mamadbah2/hatchlog/internal/dates"

// User is an account owning incubation, medication and feeding records.
type User struct {
	ID           string        `bson:"_id,omitempty" json:"id"`
	Name         string        `bson:"name" json:"name"`
	Email        string        `bson:"email" json:"email"`
	PasswordHash string        `bson:"passwordHash" json:"-"`
	IsAdmin      bool          `bson:"isAdmin" json:"isAdmin"`
	Phone        string        `bson:"phone" json:"phone,omitempty"`
	RegisterDate dates.Instant `bson:"registerDate" json:"registerDate"`
	LastLogin    dates.Instant `bson:"lastLogin" json:"lastLogin"`
}

// Device is a client a user has signed in from.
type Device struct {
	ID           string        `bson:"_id,omitempty" json:"id"`
	UserID       string        `bson:"userId" json:"userId"`
	UserAgent    string        `bson:"userAgent" json:"userAgent"`
	DeviceName   string        `bson:"deviceName" json:"deviceName"`
	RegisteredAt dates.Instant `bson:"registeredAt" json:"registeredAt"`
	LastSeen     dates.Instant `bson:"lastSeen" json:"lastSeen"`
}

// ActivityLog is an audit entry.
type ActivityLog struct {
	ID         string        `bson:"_id,omitempty" json:"id"`
	UserID     string        `bson:"userId" json:"userId"`
	Action     string        `bson:"action" json:"action"`
	DeviceInfo string        `bson:"deviceInfo" json:"deviceInfo"`
	Timestamp  dates.Instant `bson:"timestamp" json:"timestamp"`
}

// ActivationCode gates registration for one email address.
type ActivationCode struct {
	ID        string         `bson:"_id,omitempty" json:"id"`
	Code      string         `bson:"code" json:"code"`
	Email     string         `bson:"email" json:"email"`
	Used      bool           `bson:"used" json:"used"`
	CreatedBy string         `bson:"createdBy" json:"createdBy"`
	CreatedAt dates.Instant  `bson:"createdAt" json:"createdAt"`
	UsedAt    *dates.Instant `bson:"usedAt" json:"usedAt,omitempty"`
}
