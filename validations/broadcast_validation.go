package validations

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	domainBroadcast "github.com/omnipost/omnipost/domains/broadcast"
	pkgError "github.com/omnipost/omnipost/pkg/error"
)

func ValidateCreateBroadcast(ctx context.Context, request domainBroadcast.CreateRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Channel, validation.Required),
		validation.Field(&request.Message, validation.Required),
		validation.Field(&request.Recipients, validation.Required, validation.Each(validation.Required)),
		validation.Field(&request.BatchSize, validation.Min(0)),
		validation.Field(&request.BatchIntervalMinutes, validation.Min(0)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
