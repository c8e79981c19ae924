// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"
)

var (
	validOutputFlagValues   = []string{"text", "json", "yaml"}
	validEncodingFlagValues = []string{"json", "yaml"}
	validStoreSchemes       = []string{"file", "bolt", "s3", "mem"}
)

// GlobalFlagsValidator checks the flags NewGlobalFlags adds once their
// sources have been resolved.
func GlobalFlagsValidator(_ context.Context, c *cli.Command) error {
	if err := StoreValidator(c.String("store")); err != nil {
		return fmt.Errorf("--store: %w", err)
	}
	return nil
}

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// JammedFlagValidator verifies that the arg following a flag does not begin
// with '--'.  urfave/cli allows this and I don't see how to turn it off.
func JammedFlagValidator(value any) error {
	if strings.HasPrefix(value.(string), "--") {
		return errors.New("must not begin with '--'")
	}
	return nil
}

func OutputValidator(value any) error {
	if !slices.Contains(validOutputFlagValues, value.(string)) {
		return fmt.Errorf("must be one of %v", validOutputFlagValues)
	}
	return nil
}

func EncodingValidator(value any) error {
	if !slices.Contains(validEncodingFlagValues, value.(string)) {
		return fmt.Errorf("must be one of %v", validEncodingFlagValues)
	}
	return nil
}

func StoreValidator(value any) error {
	s := value.(string)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if !slices.Contains(validStoreSchemes, u.Scheme) {
		return fmt.Errorf("scheme must be one of %v", validStoreSchemes)
	}
	return nil
}
