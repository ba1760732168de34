package services

import (
	"go.uber.org/zap"

	apperrors "github.com/modavia/order-service/common/errors"
	"github.com/modavia/order-service/models"
)

// TransitionPolicy decides whether an admin-requested status change is
// accepted. It exists as a named hook so stricter policies can replace the
// default without touching callers.
type TransitionPolicy func(from, to models.OrderStatus) *apperrors.Error

// PermissiveTransitionPolicy accepts every valid target status, matching the
// legacy behavior of admin overrides. Transitions that are off the legal
// graph (e.g. delivered back to pending) are logged so they can be audited.
func PermissiveTransitionPolicy(logger *zap.Logger) TransitionPolicy {
	return func(from, to models.OrderStatus) *apperrors.Error {
		if !to.IsValid() {
			return apperrors.InvalidInput("Unknown order status: "+string(to), nil)
		}
		if from != to && !from.CanTransitionTo(to) {
			logger.Warn("Admin override of order status outside transition graph",
				zap.String("from", string(from)),
				zap.String("to", string(to)),
			)
		}
		return nil
	}
}

// StrictTransitionPolicy rejects any status change that is not on the legal
// transition graph. Not wired by default; available for deployments that
// want the state machine enforced for admins as well.
func StrictTransitionPolicy() TransitionPolicy {
	return func(from, to models.OrderStatus) *apperrors.Error {
		if !to.IsValid() {
			return apperrors.InvalidInput("Unknown order status: "+string(to), nil)
		}
		if from == to {
			return nil
		}
		if !from.CanTransitionTo(to) {
			return apperrors.InvalidInput("Illegal status transition from "+string(from)+" to "+string(to), nil)
		}
		return nil
	}
}
