package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	v1 "github.com/moviehub/catalog/api/catalog/v1"
	"github.com/moviehub/catalog/internal/biz"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-playground/validator/v10"
)

// failure describes how a domain error is presented.
type failure struct {
	err    error
	reason string
	status int
}

var failures = []failure{
	{biz.ErrMissingUpstreamData, v1.ReasonMissingUpstreamData, http.StatusNotFound},
	{biz.ErrUpstreamUnavailable, v1.ReasonUpstreamUnavailable, http.StatusBadGateway},
	{biz.ErrDuplicateMovie, v1.ReasonDuplicateMovie, http.StatusConflict},
	{biz.ErrMovieNotFound, v1.ReasonMovieNotFound, http.StatusNotFound},
	{biz.ErrInvalidRating, v1.ReasonInvalidRating, http.StatusUnprocessableEntity},
	{biz.ErrAlreadyRated, v1.ReasonAlreadyRated, http.StatusConflict},
	{biz.ErrRatingNotFound, v1.ReasonRatingNotFound, http.StatusNotFound},
	{biz.ErrInsufficientCandidates, v1.ReasonInsufficientCandidates, http.StatusUnprocessableEntity},
	{biz.ErrUnknownMovieReference, v1.ReasonUnknownMovieReference, http.StatusUnprocessableEntity},
	{biz.ErrReconciliationConflict, v1.ReasonReconciliationConflict, http.StatusConflict},
	{biz.ErrAlreadyInWatchlist, v1.ReasonAlreadyInWatchlist, http.StatusConflict},
	{biz.ErrWatchlistEntryNotFound, v1.ReasonWatchlistEntryNotFound, http.StatusNotFound},
	{biz.ErrInvalidListOptions, v1.ReasonInvalidListOptions, http.StatusBadRequest},
	{biz.ErrUserNotFound, v1.ReasonUnauthenticated, http.StatusUnauthorized},
}

func ok(status int, message string, content interface{}) *v1.Reply {
	return &v1.Reply{
		Success: true,
		Message: message,
		Content: content,
		Status:  status,
	}
}

func rejected(status int, reason, message string) *v1.Reply {
	return &v1.Reply{
		Success: false,
		Message: message,
		Reason:  reason,
		Status:  status,
	}
}

// fail turns err into a failed reply. Cancellation is the one outcome that is
// returned as an error, so it reaches the transport unchanged.
func (s *CatalogService) fail(ctx context.Context, op string, err error) (*v1.Reply, error) {
	switch {
	case stderrors.Is(err, context.Canceled):
		return nil, errors.ClientClosed("CANCELED", "request canceled").WithCause(err)
	case stderrors.Is(err, context.DeadlineExceeded):
		return nil, errors.GatewayTimeout("DEADLINE_EXCEEDED", "request deadline exceeded").WithCause(err)
	}

	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) {
		return rejected(http.StatusBadRequest, v1.ReasonInvalidRequest, validationMessage(verrs)), nil
	}

	for _, f := range failures {
		if stderrors.Is(err, f.err) {
			return rejected(f.status, f.reason, err.Error()), nil
		}
	}

	s.log.WithContext(ctx).Errorf("%s failed: %v", op, err)
	return rejected(http.StatusInternalServerError, v1.ReasonInternal, "internal error"), nil
}

func validationMessage(verrs validator.ValidationErrors) string {
	if len(verrs) == 0 {
		return "invalid request"
	}
	fe := verrs[0]
	if fe.Param() != "" {
		return fmt.Sprintf("%s failed on %s=%s", fe.Field(), fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag())
}

func unauthenticated() *v1.Reply {
	return rejected(http.StatusUnauthorized, v1.ReasonUnauthenticated, "viewer identity required")
}
