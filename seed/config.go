package seed

import (
	"errors"
	"fmt"

	"switchseed/model"

	"github.com/spf13/viper"
)

const switchesKey = "switches"

var ErrEmptySwitchName = errors.New("switch name is empty")

// LoadDefaults returns the seed table from v's "switches" key, or
// DefaultSwitches when v carries none.
//
//	switches:
//	  - name: login
//	    active: true
func LoadDefaults(v *viper.Viper) ([]model.SwitchDefault, error) {
	if v == nil || !v.IsSet(switchesKey) {
		return DefaultSwitches, nil
	}
	var defaults []model.SwitchDefault
	if err := v.UnmarshalKey(switchesKey, &defaults); err != nil {
		return nil, fmt.Errorf("seed: reading %s: %w", switchesKey, err)
	}
	seen := make(map[string]struct{}, len(defaults))
	unique := defaults[:0]
	for i, d := range defaults {
		if d.Name == "" {
			return nil, fmt.Errorf("seed: %s[%d]: %w", switchesKey, i, ErrEmptySwitchName)
		}
		if _, dup := seen[d.Name]; dup {
			continue
		}
		seen[d.Name] = struct{}{}
		unique = append(unique, d)
	}
	return unique, nil
}
