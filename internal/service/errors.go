package service

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/furrow/internal/app"
	"github.com/alexanderramin/furrow/internal/lifecycle"
	"github.com/alexanderramin/furrow/internal/repository"
	"github.com/alexanderramin/furrow/internal/sowing"
)

// classify wraps known domain errors in an app.RequestError so outer layers can
// map them to exit codes and HTTP statuses. Other errors pass through.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var re *app.RequestError
	if errors.As(err, &re) {
		return err
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return app.NewRequestError(app.ErrNotFound, err)
	case errors.Is(err, lifecycle.ErrAlreadyHarvested), errors.Is(err, lifecycle.ErrReadyForHarvest),
		errors.Is(err, lifecycle.ErrBeforeLastTransition):
		return app.NewRequestError(app.ErrInvalidState, err)
	case errors.Is(err, lifecycle.ErrUnknownCategory):
		return app.NewRequestError(app.ErrDataIntegrity, err)
	case errors.Is(err, sowing.ErrUnknownVariety):
		return app.NewRequestError(app.ErrUnknownVariety, err)
	case errors.Is(err, sowing.ErrNothingToPlant):
		return app.NewRequestError(app.ErrInvalidRequest, err)
	}
	return err
}

func invalid(format string, args ...any) error {
	return app.NewRequestError(app.ErrInvalidRequest, fmt.Errorf(format, args...))
}
