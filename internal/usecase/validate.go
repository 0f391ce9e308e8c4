package usecase

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var inputValidator = validator.New(validator.WithRequiredStructEnabled())

func validateInput(ctx context.Context, payload any) error {
	if err := inputValidator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}
