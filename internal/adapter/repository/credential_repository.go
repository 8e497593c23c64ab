package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/johnquangdev/interview-assistant/internal/domain/entities"
	"github.com/johnquangdev/interview-assistant/internal/domain/repositories"
)

// CredentialRepository handles tenant credential lookups
type CredentialRepository struct {
	db *gorm.DB
}

var _ repositories.CredentialRepository = (*CredentialRepository)(nil)

// NewCredentialRepository creates a new credential repository
func NewCredentialRepository(db *gorm.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// FindActive returns the active credential of a tenant, nil when absent
func (r *CredentialRepository) FindActive(ctx context.Context, tenantID string) (*entities.TenantCredential, error) {
	var cred entities.TenantCredential
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND active = ?", tenantID, true).
		First(&cred).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cred, nil
}
