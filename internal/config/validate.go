package config

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rileyhilliard/systrix/internal/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their YAML key so messages match what users wrote.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but systrix only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Grab the latest systrix release")
	}

	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if stderrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return fieldError(fieldErrs[0])
		}
		return errors.WrapWithCode(err, errors.ErrConfig, "Config validation failed", "")
	}

	thresholds := map[string]ThresholdValues{
		"cpu":    cfg.Thresholds.CPU,
		"memory": cfg.Thresholds.Memory,
		"disk":   cfg.Thresholds.Disk,
	}
	for _, name := range []string{"cpu", "memory", "disk"} {
		if err := validateThresholds(name, thresholds[name]); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig, "Invalid thresholds", "")
		}
	}

	return nil
}

// fieldError turns a validator failure into a readable config error.
func fieldError(fe validator.FieldError) error {
	key := fe.Namespace()
	if i := strings.Index(key, "."); i >= 0 {
		key = key[i+1:] // drop the root struct name
	}

	var msg string
	switch fe.Tag() {
	case "oneof":
		msg = fmt.Sprintf("%s must be one of [%s] (got %v)", key, strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	case "gte":
		msg = fmt.Sprintf("%s must be at least %s (got %v)", key, fe.Param(), fe.Value())
	case "lte":
		msg = fmt.Sprintf("%s must be at most %s (got %v)", key, fe.Param(), fe.Value())
	case "required":
		msg = fmt.Sprintf("%s is required", key)
	default:
		msg = fmt.Sprintf("%s failed the %q check (got %v)", key, fe.Tag(), fe.Value())
	}

	return errors.New(errors.ErrConfig, msg, "Fix the value in your config file or SYSTRIX_* environment")
}

// validateThresholds checks a threshold configuration for a single metric type.
func validateThresholds(name string, thresh ThresholdValues) error {
	// Warning should be less than critical (if both are non-zero)
	if thresh.Warning > 0 && thresh.Critical > 0 && thresh.Warning >= thresh.Critical {
		return fmt.Errorf("thresholds.%s.warning (%d%%) is higher than critical (%d%%) - should be the other way around", name, thresh.Warning, thresh.Critical)
	}
	return nil
}
