package model

import (
	"fmt"

	"gorm.io/gorm"
)

// A Switch is a named on/off toggle consulted by the host application.
//
// Names are unique; a Switch is created once and the seeder never changes it
// afterwards.
type Switch struct {
	gorm.Model
	Name   string `gorm:"uniqueIndex;not null;size:100;check:name <> ''"`
	Active bool   `gorm:"not null"`
	Note   string `gorm:"size:254"`
}

// String renders the switch the same way as its seed entry.
func (s Switch) String() string {
	return SwitchDefault{Name: s.Name, Active: s.Active}.String()
}

// SwitchDefault is one row of a seed table: a switch name and the value it
// gets when it is first created.
type SwitchDefault struct {
	Name   string `mapstructure:"name"`
	Active bool   `mapstructure:"active"`
}

func (d SwitchDefault) String() string {
	return fmt.Sprintf("(%s, %t)", d.Name, d.Active)
}

type AuditLog struct {
	gorm.Model
	SwitchID *uint  `gorm:"index"`
	Action   string `gorm:"index"` // e.g. "SWITCH_CREATED"
	Message  string // human-readable message, optional
	Metadata string // optional JSON blob for advanced inspection
}

const (
	ActionSwitchCreated = "SWITCH_CREATED"
)
