// Package decode turns loosely typed maps (YAML settings, RPC parameters)
// into validated structs.
package decode

import (
	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

var validate = validator.New()

// Struct decodes in into out, fills defaults and validates the result.
// Unknown keys are errors.
//
// Defaults only fill fields that are still zero after decoding. Fields
// where an explicit zero must be rejected should be pointers, so that an
// absent key (nil) gets the default and a given 0 reaches validation.
func Struct(in map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create decoder")
	}

	if err := decoder.Decode(in); err != nil {
		return errors.Wrap(err, "failed to decode")
	}

	if err := defaults.Set(out); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}

	if err := validate.Struct(out); err != nil {
		return errors.Wrap(err, "validation failed")
	}
	return nil
}
