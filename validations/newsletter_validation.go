package validations

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	domainNewsletter "github.com/omnipost/omnipost/domains/newsletter"
	pkgError "github.com/omnipost/omnipost/pkg/error"
)

func ValidateScheduleNewsletter(ctx context.Context, request domainNewsletter.ScheduleRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.OwnerID, validation.Required),
		validation.Field(&request.Subject, validation.Required, validation.Length(1, 500)),
		validation.Field(&request.Body, validation.Required),
		validation.Field(&request.ScheduledAt, validation.Required),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
