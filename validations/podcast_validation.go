package validations

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	domainPodcast "github.com/omnipost/omnipost/domains/podcast"
	pkgError "github.com/omnipost/omnipost/pkg/error"
)

func ValidateScheduleEpisode(ctx context.Context, request domainPodcast.ScheduleRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Title, validation.Required, validation.Length(1, 500)),
		validation.Field(&request.AudioRef, validation.Required),
		validation.Field(&request.Platforms, validation.Required, validation.Each(validation.Required)),
		validation.Field(&request.ScheduledAt, validation.Required),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
