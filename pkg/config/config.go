// Package config loads configuration structs from YAML files and environment
// variables using struct tags: `yaml`, `env`, `default` and `required`.
// Environment variables take precedence over YAML values; defaults apply only
// to fields left unset by both.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

var durationType = reflect.TypeOf(time.Duration(0))

// Validator interface allows config structs to implement custom validation logic.
// If a config struct implements this interface, validation is automatically
// called after loading configuration from files and environment variables.
type Validator interface {
	Validate() error
}

// setFromString assigns a string value to a struct field, converting to the
// field's kind. time.Duration is handled before the kind switch since it is an
// int64 underneath.
func setFromString(field reflect.Value, raw string) error {
	if field.Type() == durationType {
		duration, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("failed to convert %q to duration: %w", raw, err)
		}
		field.SetInt(int64(duration))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int, reflect.Int64:
		intVal, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("failed to convert %q to int: %w", raw, err)
		}
		field.SetInt(intVal)
	case reflect.Float64:
		floatVal, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("failed to convert %q to float64: %w", raw, err)
		}
		field.SetFloat(floatVal)
	case reflect.Bool:
		boolVal, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("failed to convert %q to bool: %w", raw, err)
		}
		field.SetBool(boolVal)
	case reflect.Slice:
		// Comma-separated string slices only
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type %s", field.Type())
		}
		values := strings.Split(raw, ",")
		slice := reflect.MakeSlice(field.Type(), len(values), len(values))
		for i, v := range values {
			slice.Index(i).SetString(strings.TrimSpace(v))
		}
		field.Set(slice)
	default:
		return fmt.Errorf("unsupported kind %s", field.Kind())
	}
	return nil
}

// applyEnv walks the struct recursively, overwriting fields whose `env` tag
// names a set environment variable. Returns the set of fields explicitly set
// from the environment, keyed by "StructName.FieldName".
func applyEnv(val reflect.Value, typeOfT reflect.Type) (map[string]bool, error) {
	setFields := make(map[string]bool)

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typeOfT.Field(i)

		if field.Kind() == reflect.Struct && field.Type() != durationType {
			nested, err := applyEnv(field, fieldType.Type)
			if err != nil {
				return nil, err
			}
			for k, v := range nested {
				setFields[k] = v
			}
			continue
		}

		tag := fieldType.Tag.Get("env")
		if tag == "" {
			continue
		}
		envVal := os.Getenv(tag)
		if envVal == "" {
			continue
		}

		if err := setFromString(field, envVal); err != nil {
			return nil, fmt.Errorf("env %s: %w", tag, err)
		}
		// Struct type + field name avoids collisions between embedded structs
		setFields[typeOfT.Name()+"."+fieldType.Name] = true
	}
	return setFields, nil
}

// applyDefaultsAndRequired fills defaults into zero-valued fields not set from
// the environment and collects errors for missing required fields.
func applyDefaultsAndRequired(val reflect.Value, typeOfT reflect.Type, setFields map[string]bool) error {
	var result error

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typeOfT.Field(i)

		if field.Kind() == reflect.Struct && field.Type() != durationType {
			if err := applyDefaultsAndRequired(field, fieldType.Type, setFields); err != nil {
				result = multierror.Append(result, err)
			}
			continue
		}

		required := false
		switch strings.ToLower(fieldType.Tag.Get("required")) {
		case "true", "1":
			required = true
		}
		defaultTag := fieldType.Tag.Get("default")
		if required && defaultTag != "" { // a default always satisfies required
			required = false
		}

		if field.IsZero() && required {
			result = multierror.Append(result, fmt.Errorf(
				"required field env:%s / yaml:%s is missing",
				fieldType.Tag.Get("env"), fieldType.Tag.Get("yaml")))
			continue
		}

		fieldKey := typeOfT.Name() + "." + fieldType.Name
		if field.IsZero() && defaultTag != "" && !setFields[fieldKey] {
			if err := setFromString(field, defaultTag); err != nil {
				result = multierror.Append(result, fmt.Errorf("default for %s: %w", fieldKey, err))
			}
		}
	}
	return result
}

// GetConfigFromEnvVars loads configuration from environment variables only.
// Example usage:
//
//	var cfg MyConfig
//	err := GetConfigFromEnvVars(&cfg)
func GetConfigFromEnvVars[T any](dest *T) error {
	val := reflect.ValueOf(dest).Elem()
	typeOfT := val.Type()

	setFields, err := applyEnv(val, typeOfT)
	if err != nil {
		return err
	}
	if err := applyDefaultsAndRequired(val, typeOfT, setFields); err != nil {
		var zero T
		*dest = zero // don't hand back a half-populated config
		return err
	}

	if validator, ok := any(*dest).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}
	return nil
}

// GetConfig loads configuration from a YAML file first, then overlays
// environment variables. If filepath is empty, only environment variables are
// used. If allowFileErrors is true, file read/parse errors fall back to env
// vars only.
// Example usage:
//
//	var cfg MyConfig
//	err := GetConfig(&cfg, "config.yaml", true)
func GetConfig[T any](dest *T, filepath string, allowFileErrors bool) error {
	if filepath == "" {
		return GetConfigFromEnvVars(dest)
	}

	data, err := os.ReadFile(filepath) //nolint:gosec // G304: operator-supplied config path
	if err != nil {
		if allowFileErrors {
			return GetConfigFromEnvVars(dest)
		}
		return fmt.Errorf("failed to read file: %w", err)
	}
	if err := yaml.Unmarshal(data, dest); err != nil {
		if allowFileErrors {
			return GetConfigFromEnvVars(dest)
		}
		return fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	return GetConfigFromEnvVars(dest)
}
