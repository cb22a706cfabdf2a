package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{ErrInsufficientData, CodeInsufficientData},
		{fmt.Errorf("generate: %w", ErrInvalidHorizon), CodeInvalidHorizon},
		{fmt.Errorf("update: %w", ErrInvalidParameter), CodeInvalidParameter},
		{ErrArithmeticOverflow, CodeArithmeticOverflow},
		{ErrNotFound, CodeNotFound},
		{errors.New("redis: connection refused"), CodeInternal},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Code(tc.err), tc.err.Error())
	}
}
