package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/halcyonweb/mediakit/internal/common"
	"github.com/halcyonweb/mediakit/pkg/types"
)

// GormUserSource is the database-backed UserSource
type GormUserSource struct {
	db *common.Database
}

// NewGormUserSource creates a UserSource over the shared database
func NewGormUserSource(db *common.Database) *GormUserSource {
	return &GormUserSource{db: db}
}

var _ UserSource = (*GormUserSource)(nil)

func (s *GormUserSource) UserByID(ctx context.Context, id uuid.UUID) (*types.User, error) {
	var user types.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormUserSource) UpdateUser(ctx context.Context, user *types.User) error {
	return s.db.WithContext(ctx).Save(user).Error
}

// GormServiceSource is the database-backed ServiceSource
type GormServiceSource struct {
	db *common.Database
}

// NewGormServiceSource creates a ServiceSource over the shared database
func NewGormServiceSource(db *common.Database) *GormServiceSource {
	return &GormServiceSource{db: db}
}

var _ ServiceSource = (*GormServiceSource)(nil)

func (s *GormServiceSource) ActiveServices(ctx context.Context) ([]types.SiteService, error) {
	var services []types.SiteService
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("display_order").
		Find(&services).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load services: %w", err)
	}
	return services, nil
}

func (s *GormServiceSource) CreateService(ctx context.Context, svc *types.SiteService) error {
	return s.db.WithContext(ctx).Create(svc).Error
}

func (s *GormServiceSource) UpdateService(ctx context.Context, svc *types.SiteService) error {
	return s.db.WithContext(ctx).Save(svc).Error
}

func (s *GormServiceSource) DeleteService(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Delete(&types.SiteService{}, "id = ?", id).Error
}

func (s *GormServiceSource) ReorderServices(ctx context.Context, orderedIDs []uuid.UUID) error {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	for position, id := range orderedIDs {
		err := tx.Model(&types.SiteService{}).
			Where("id = ?", id).
			Update("display_order", position).Error
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to reorder service %s: %w", id, err)
		}
	}
	return tx.Commit().Error
}

func (s *GormServiceSource) SetServiceActive(ctx context.Context, id uuid.UUID, active bool) error {
	return s.db.WithContext(ctx).Model(&types.SiteService{}).
		Where("id = ?", id).
		Update("is_active", active).Error
}
