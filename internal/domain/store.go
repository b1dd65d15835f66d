package domain

import (
	"time"

	"github.com/google/uuid"
)

// WhatsAppConfig drives order notifications sent through the WhatsApp Cloud
// API. Templates support {{customerName}}, {{orderNumber}} and {{total}}
// placeholders.
type WhatsAppConfig struct {
	Enabled       bool   `json:"enabled"`
	PhoneNumber   string `json:"phoneNumber"`
	PhoneNumberID string `json:"phoneNumberId"`
	OrderTemplate string `json:"orderTemplate"`
	PaidTemplate  string `json:"paidTemplate"`
	ReadyTemplate string `json:"readyTemplate"`
}

type AIConfig struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	// Write-only: accepted on PATCH, never echoed back.
	OpenAIAPIKey string `json:"-"`
}

type TaxRate struct {
	Name string  `json:"name"`
	Rate float64 `json:"rate"`
}

type Store struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Slug       string    `gorm:"uniqueIndex;size:140" json:"slug"`
	Name       string    `gorm:"size:180" json:"name"`
	OwnerEmail string    `gorm:"size:140;index" json:"ownerEmail"`

	LogoURL    string `gorm:"size:255" json:"logoUrl"`
	Slogan     string `gorm:"size:180" json:"slogan"`
	BrandColor string `gorm:"size:20" json:"brandColor"`

	Currency     string `gorm:"size:8;default:USD" json:"currency"`
	Country      string `gorm:"size:80" json:"country"`
	Timezone     string `gorm:"size:60" json:"timezone"`
	DateFormat   string `gorm:"size:20" json:"dateFormat"`
	NumberFormat string `gorm:"size:20" json:"numberFormat"`

	WhatsApp WhatsAppConfig `gorm:"type:jsonb;serializer:json" json:"whatsapp"`
	AI       AIConfig       `gorm:"type:jsonb;serializer:json" json:"ai"`
	Taxes    []TaxRate      `gorm:"type:jsonb;serializer:json" json:"taxes"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
