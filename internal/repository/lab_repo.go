package repository

import (
	"context"
	"strings"

	"labbooking/internal/domain"

	"gorm.io/gorm"
)

type LabRepository struct {
	db *gorm.DB
}

func NewLabRepository(db *gorm.DB) *LabRepository {
	return &LabRepository{db: db}
}

type labModel struct {
	ID   int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Name string `gorm:"column:name;not null;uniqueIndex"`
}

func (labModel) TableName() string { return "labs" }

func toDomainLab(m labModel) *domain.Lab {
	return &domain.Lab{ID: m.ID, Name: m.Name}
}

func (r *LabRepository) Create(ctx context.Context, l *domain.Lab) error {
	m := labModel{Name: strings.TrimSpace(l.Name)}
	if err := conn(ctx, r.db).Create(&m).Error; err != nil {
		return translate(err)
	}
	*l = *toDomainLab(m)
	return nil
}

func (r *LabRepository) GetByID(ctx context.Context, id int64) (*domain.Lab, error) {
	var m labModel
	if err := conn(ctx, r.db).First(&m, id).Error; err != nil {
		return nil, err
	}
	return toDomainLab(m), nil
}

func (r *LabRepository) GetByName(ctx context.Context, name string) (*domain.Lab, error) {
	var m labModel
	if err := conn(ctx, r.db).Where("name = ?", strings.TrimSpace(name)).First(&m).Error; err != nil {
		return nil, err
	}
	return toDomainLab(m), nil
}

func (r *LabRepository) List(ctx context.Context) ([]domain.Lab, error) {
	var rows []labModel
	if err := conn(ctx, r.db).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Lab, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainLab(m))
	}
	return out, nil
}

func (r *LabRepository) Delete(ctx context.Context, id int64) error {
	tx := conn(ctx, r.db).Delete(&labModel{}, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
