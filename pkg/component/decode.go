package component

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// DecodeData decodes a flow.data region into a typed payload. ApiCall
// components use it to read the values their producer steps left behind
// without hand-rolling type assertions.
func DecodeData(data map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := dec.Decode(data); err != nil {
		return fmt.Errorf("failed to decode flow data: %w", err)
	}
	return nil
}
