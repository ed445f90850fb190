package withdraw

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/simaogato/wallet-backend/internal/domain"
)

// Validator rejects structurally invalid input before the wrapped use case
// runs. On rejection no repository or exchange call happens.
type Validator struct {
	next     UseCase
	validate *validator.Validate
}

// NewValidator wraps a use case with input validation.
func NewValidator(next UseCase) *Validator {
	return &Validator{next: next, validate: validator.New()}
}

// Execute validates the input and either short-circuits with ResultInvalid or
// forwards the call unchanged.
func (v *Validator) Execute(ctx context.Context, input Input) (Output, error) {
	var fieldErrors []string

	if err := v.validate.Struct(input); err != nil {
		for _, fe := range err.(validator.ValidationErrors) {
			fieldErrors = append(fieldErrors, fe.Field()+" failed "+fe.Tag()+" validation")
		}
	}
	if !input.Amount.IsPositive() {
		fieldErrors = append(fieldErrors, "amount must be positive")
	}
	if _, err := domain.ParseCurrency(input.Currency); err != nil {
		fieldErrors = append(fieldErrors, err.Error())
	}

	if len(fieldErrors) > 0 {
		return Output{Result: ResultInvalid, FieldErrors: fieldErrors}, nil
	}

	return v.next.Execute(ctx, input)
}
