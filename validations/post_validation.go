package validations

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	domainPost "github.com/omnipost/omnipost/domains/post"
	pkgError "github.com/omnipost/omnipost/pkg/error"
)

func ValidateSchedulePost(ctx context.Context, request domainPost.ScheduleRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Channel, validation.Required),
		validation.Field(&request.Text, validation.Required, validation.Length(1, 10000)),
		validation.Field(&request.ScheduledAt, validation.Required),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
