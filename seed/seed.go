// Package seed creates the feature switches a local development database
// needs, leaving any switch that already exists untouched.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"

	"switchseed/db"
	"switchseed/model"

	"go.uber.org/zap"
)

const (
	SlsxEnabledEnvVar = "SLSX_ENABLED"
	seededNote        = "seeded for local development"
	disabledValue     = "False"
)

var ErrMissingEnv = errors.New("required environment variable is not set")

// DefaultSwitches is the seed table used when no config file overrides it.
var DefaultSwitches = []model.SwitchDefault{
	{Name: "outreach_email", Active: true},
	{Name: "wellknown_applications", Active: true},
	{Name: "login", Active: true},
	{Name: "signup", Active: true},
	{Name: "require-scopes", Active: true},
	{Name: "slsx-enable", Active: true},
}

// EnvOverrides maps a switch name to the environment variable that decides
// its value at creation time. The seed table value is ignored for these.
var EnvOverrides = map[string]string{
	"slsx-enable": SlsxEnabledEnvVar,
}

// LookupFunc reports the value of an environment variable and whether it is set.
type LookupFunc func(key string) (string, bool)

// ParseEnabled reports whether an override value enables its switch. Only the
// exact string "False" disables.
func ParseEnabled(value string) bool {
	return value != disabledValue
}

type Result struct {
	Switch  model.Switch
	Created bool
}

type Seeder struct {
	Store  db.Store
	Lookup LookupFunc
	Out    io.Writer
	Logger *zap.SugaredLogger
}

// Seed walks defaults in order. Existing switches are reported and left as
// they are; missing ones are created. The run stops at the first error, and
// switches created before it are kept.
func (s *Seeder) Seed(ctx context.Context, defaults []model.SwitchDefault) ([]Result, error) {
	results := make([]Result, 0, len(defaults))
	for _, d := range defaults {
		existing, err := s.Store.GetSwitchByName(ctx, d.Name)
		if err == nil {
			// reports the seed entry, not the stored value
			s.printf("Feature switch already exists: %s\n", d)
			results = append(results, Result{Switch: *existing})
			continue
		}
		if !errors.Is(err, db.ErrSwitchNotFound) {
			return results, fmt.Errorf("seed: looking up switch %s: %w", d.Name, err)
		}

		active, err := s.effectiveValue(d)
		if err != nil {
			return results, err
		}
		sw := model.Switch{Name: d.Name, Active: active, Note: seededNote}
		if err := s.Store.CreateSwitch(ctx, &sw); err != nil {
			return results, fmt.Errorf("seed: creating switch %s: %w", d.Name, err)
		}
		s.printf("Feature switch created: %s\n", sw)
		s.Store.LogAuditEvent(s.logger(), model.AuditLog{
			SwitchID: &sw.ID,
			Action:   model.ActionSwitchCreated,
			Message:  fmt.Sprintf("created %s", sw),
		})
		results = append(results, Result{Switch: sw, Created: true})
	}
	return results, nil
}

func (s *Seeder) effectiveValue(d model.SwitchDefault) (bool, error) {
	envVar, ok := EnvOverrides[d.Name]
	if !ok {
		return d.Active, nil
	}
	if s.Lookup == nil {
		return false, fmt.Errorf("seed: %s: %w", envVar, ErrMissingEnv)
	}
	value, ok := s.Lookup(envVar)
	if !ok {
		return false, fmt.Errorf("seed: %s: %w", envVar, ErrMissingEnv)
	}
	s.logger().Debugw("switch value taken from environment", "switch", d.Name, "env", envVar, "value", value)
	return ParseEnabled(value), nil
}

func (s *Seeder) printf(format string, args ...any) {
	if s.Out == nil {
		return
	}
	if _, err := fmt.Fprintf(s.Out, format, args...); err != nil {
		s.logger().Warnf("failed to write seed output: %v", err)
	}
}

func (s *Seeder) logger() *zap.SugaredLogger {
	if s.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return s.Logger
}
