package getaccount

import (
	"context"

	"github.com/go-playground/validator/v10"
)

// Validator rejects structurally invalid input before the wrapped use case
// runs. On rejection no repository call happens.
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
	if err := v.validate.Struct(input); err != nil {
		var fieldErrors []string
		for _, fe := range err.(validator.ValidationErrors) {
			fieldErrors = append(fieldErrors, fe.Field()+" failed "+fe.Tag()+" validation")
		}
		return Output{Result: ResultInvalid, FieldErrors: fieldErrors}, nil
	}

	return v.next.Execute(ctx, input)
}
