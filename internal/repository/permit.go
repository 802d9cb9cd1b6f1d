package repository

import (
	"context"

	"github.com/questx-lab/petquest/internal/entity"
	"github.com/questx-lab/petquest/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type PermitRepository interface {
	Revoke(ctx context.Context, subject, permitName string) error
	IsRevoked(ctx context.Context, subject, permitName string) (bool, error)
}

type permitRepository struct{}

func NewPermitRepository() *permitRepository {
	return &permitRepository{}
}

func (r *permitRepository) Revoke(ctx context.Context, subject, permitName string) error {
	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entity.RevokedPermit{Subject: subject, PermitName: permitName}).Error
}

func (r *permitRepository) IsRevoked(ctx context.Context, subject, permitName string) (bool, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.RevokedPermit{}).
		Where("subject=? AND permit_name=?", subject, permitName).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
