package models

import "testing"

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusDelivered, false},
		{StatusProcessing, StatusShipped, true},
		{StatusProcessing, StatusCancelled, true},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusCancelled, true},
		{StatusDelivered, StatusPending, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusProcessing, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	for _, s := range []OrderStatus{StatusDelivered, StatusCancelled} {
		if !s.IsTerminal() {
			t.Errorf("expected %s to be terminal", s)
		}
	}
	for _, s := range []OrderStatus{StatusPending, StatusProcessing, StatusShipped} {
		if s.IsTerminal() {
			t.Errorf("expected %s not to be terminal", s)
		}
	}
}

func TestOrderStatusIsValid(t *testing.T) {
	for _, s := range []OrderStatus{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled} {
		if !s.IsValid() {
			t.Errorf("expected %s to be valid", s)
		}
	}
	if OrderStatus("returned").IsValid() {
		t.Error("expected unknown status to be invalid")
	}
}

func TestPaymentEnums(t *testing.T) {
	if !PaymentStripe.IsValid() || !PaymentCashOnDelivery.IsValid() {
		t.Error("expected known payment methods to be valid")
	}
	if PaymentMethod("check").IsValid() {
		t.Error("expected unknown payment method to be invalid")
	}
	if !PaymentCompleted.IsValid() || !PaymentRefunded.IsValid() {
		t.Error("expected known payment statuses to be valid")
	}
	if PaymentStatus("settled").IsValid() {
		t.Error("expected unknown payment status to be invalid")
	}
}
