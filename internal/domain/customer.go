package domain

import (
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StoreID    uuid.UUID `gorm:"type:uuid;index" json:"storeId"`
	Name       string    `gorm:"size:140" json:"name"`
	Phone      string    `gorm:"size:50;index" json:"phone"`
	Email      string    `gorm:"size:140" json:"email"`
	Address    string    `gorm:"size:255" json:"address"`
	OrderCount int       `gorm:"type:int;default:0" json:"orderCount"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
