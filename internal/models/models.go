package models

import "github.com/shopspring/decimal"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"      json:"id"`
	Username     string `gorm:"uniqueIndex;not null;size:10"  json:"username"`
	PasswordHash string `gorm:"not null"                      json:"-"`
	Role         string `gorm:"not null;default:user"         json:"role"`
}

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"       json:"id"`
	Name        string          `gorm:"not null"                       json:"name"`
	Description string          `gorm:"not null;default:''"            json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"    json:"price"`
	Image       string          `gorm:"not null;default:''"            json:"image"`
	Category    string          `gorm:"index;not null;default:''"      json:"category"`
}

// Discount codes are stored upper-case; Percent is in [0,100].
type Discount struct {
	Code    string          `gorm:"primaryKey;size:32"          json:"code"`
	Percent decimal.Decimal `gorm:"type:decimal(5,2);not null"  json:"percent"`
}

func All() []any {
	return []any{&User{}, &Product{}, &Discount{}}
}
