package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"switchseed/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var _ Store = (*SQLStore)(nil)

type SQLStore struct {
	db *gorm.DB
}

func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Ping verifies the underlying database connection is healthy.
func (s *SQLStore) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sql store is not initialized")
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// GetSwitchByName returns the switch identified by name, or ErrSwitchNotFound.
func (s *SQLStore) GetSwitchByName(ctx context.Context, name string) (*model.Switch, error) {
	var sw model.Switch
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&sw).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSwitchNotFound
		}
		return nil, err
	}
	return &sw, nil
}

// CreateSwitch inserts sw. A second switch with the same name is rejected by
// the unique index and reported as ErrSwitchExists.
func (s *SQLStore) CreateSwitch(ctx context.Context, sw *model.Switch) error {
	err := s.db.WithContext(ctx).Create(sw).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %s", ErrSwitchExists, sw.Name)
	}
	return err
}

// ListSwitches returns every switch ordered by name.
func (s *SQLStore) ListSwitches(ctx context.Context) ([]model.Switch, error) {
	var switches []model.Switch
	if err := s.db.WithContext(ctx).Order("name").Find(&switches).Error; err != nil {
		return nil, err
	}
	return switches, nil
}

func (s *SQLStore) LogAuditEvent(logger *zap.SugaredLogger, event model.AuditLog) {
	if event.Message == "" {
		event.Message = event.Action
	}

	err := s.db.WithContext(context.Background()).Create(&event).Error
	if err != nil {
		logger.Errorf("failed to write %v audit log: %v", event, err)
	}
}

// ListAuditEvents returns audit entries for action, oldest first.
func (s *SQLStore) ListAuditEvents(ctx context.Context, action string) ([]model.AuditLog, error) {
	var events []model.AuditLog
	err := s.db.WithContext(ctx).
		Where("action = ?", action).
		Order("id").
		Find(&events).Error
	return events, err
}
