package db

import (
	"context"
	"errors"

	"switchseed/model"

	"go.uber.org/zap"
)

var (
	ErrSwitchNotFound = errors.New("switch not found")
	ErrSwitchExists   = errors.New("switch already exists")
)

type Store interface {
	GetSwitchByName(ctx context.Context, name string) (*model.Switch, error)
	CreateSwitch(ctx context.Context, sw *model.Switch) error
	ListSwitches(ctx context.Context) ([]model.Switch, error)
	LogAuditEvent(logger *zap.SugaredLogger, event model.AuditLog)
}
