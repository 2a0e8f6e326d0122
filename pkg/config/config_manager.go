package config

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// ConfigManager layers command-line flags over a loaded Config.
// Priority: explicit flags > non-zero flags > config file > defaults.
type ConfigManager struct {
	Config *Config
	flags  map[string]flagValue
}

type flagValue struct {
	value interface{}
	// explicit values override the file even when they are zero.
	explicit bool
}

// NewConfigManager wraps cfg; the merge writes into it.
func NewConfigManager(cfg *Config) *ConfigManager {
	return &ConfigManager{
		Config: cfg,
		flags:  make(map[string]flagValue),
	}
}

// RegisterFlag records a flag value under its config key, the yaml path with
// nested sections joined by dots ("diff.contextLines"). Zero values leave the
// file setting alone.
func (cm *ConfigManager) RegisterFlag(key string, value interface{}) {
	cm.flags[key] = flagValue{value: value}
}

// SetFlag records a flag the operator passed on the command line, so that
// "--push=false" or "-U 0" win over the file.
func (cm *ConfigManager) SetFlag(key string, value interface{}) {
	cm.flags[key] = flagValue{value: value, explicit: true}
}

// MergeConfiguration writes the registered flags into the config and
// validates the result. Keys that name no field and values of the wrong type
// are errors.
func (cm *ConfigManager) MergeConfiguration() (*Config, error) {
	applied := make(map[string]bool, len(cm.flags))
	if err := cm.merge(reflect.ValueOf(cm.Config).Elem(), "", applied); err != nil {
		return nil, err
	}
	var unknown []string
	for key := range cm.flags {
		if !applied[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(unknown, ", "))
	}
	if err := cm.Config.Validate(); err != nil {
		return nil, err
	}
	return cm.Config, nil
}

func (cm *ConfigManager) merge(section reflect.Value, prefix string, applied map[string]bool) error {
	sectionType := section.Type()
	for i := 0; i < sectionType.NumField(); i++ {
		field := sectionType.Field(i)
		name, _, _ := strings.Cut(field.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			continue
		}
		key := prefix + name
		fieldValue := section.Field(i)

		if fieldValue.Kind() == reflect.Struct {
			if err := cm.merge(fieldValue, key+".", applied); err != nil {
				return err
			}
			continue
		}

		fv, ok := cm.flags[key]
		if !ok {
			continue
		}
		applied[key] = true
		v := reflect.ValueOf(fv.value)
		if !fv.explicit && isZeroValue(v) {
			continue
		}
		if !v.IsValid() || v.Kind() != fieldValue.Kind() || !v.Type().ConvertibleTo(fieldValue.Type()) {
			return fmt.Errorf("flag for %s: cannot use %T as %s", key, fv.value, fieldValue.Type())
		}
		fieldValue.Set(v.Convert(fieldValue.Type()))
	}
	return nil
}

func isZeroValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Invalid:
		return true
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
