package validations

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	domainSubscriber "github.com/omnipost/omnipost/domains/subscriber"
	pkgError "github.com/omnipost/omnipost/pkg/error"
)

func ValidateCreateSubscriber(ctx context.Context, request domainSubscriber.CreateRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.OwnerID, validation.Required),
		validation.Field(&request.Email, validation.Required, is.EmailFormat),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
