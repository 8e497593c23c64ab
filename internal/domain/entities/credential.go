package entities

import (
	"time"

	"github.com/google/uuid"
)

// TenantCredential holds the scoring API key of a tenant
type TenantCredential struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID  string    `json:"tenant_id" gorm:"type:varchar(100);not null;uniqueIndex"`
	Provider  string    `json:"provider" gorm:"type:varchar(30);not null;default:'groq'"`
	APIKey    string    `json:"-" gorm:"type:text;not null"`
	Active    bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (TenantCredential) TableName() string {
	return "tenant_credentials"
}
