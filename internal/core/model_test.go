package core_test

import (
	"testing"

	"pos-backoffice/internal/core"
)

func TestOrderStatus_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		from    core.OrderStatus
		to      core.OrderStatus
		allowed bool
	}{
		{"created to invoiced", core.OrderCreated, core.OrderInvoiced, true},
		{"created to cancelled", core.OrderCreated, core.OrderCancelled, true},
		{"invoiced to cancelled", core.OrderInvoiced, core.OrderCancelled, true},
		{"invoiced back to created", core.OrderInvoiced, core.OrderCreated, false},
		{"cancelled to created", core.OrderCancelled, core.OrderCreated, false},
		{"cancelled to invoiced", core.OrderCancelled, core.OrderInvoiced, false},
		{"created to created", core.OrderCreated, core.OrderCreated, false},
		{"invoiced to invoiced", core.OrderInvoiced, core.OrderInvoiced, false},
		{"unknown source status", core.OrderStatus("SHIPPED"), core.OrderCancelled, false},
		{"unknown target status", core.OrderCreated, core.OrderStatus("SHIPPED"), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tc.from, tc.to, got, tc.allowed)
			}
		})
	}
}

func TestOrderStatus_Valid(t *testing.T) {
	for _, s := range []core.OrderStatus{core.OrderCreated, core.OrderInvoiced, core.OrderCancelled} {
		if !s.Valid() {
			t.Errorf("expected %s to be a valid status", s)
		}
	}
	for _, s := range []core.OrderStatus{"", "created", "SHIPPED", "DELETED"} {
		if s.Valid() {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestOrderStatus_AllowsItemMutation(t *testing.T) {
	if !core.OrderCreated.AllowsItemMutation() {
		t.Error("expected CREATED orders to allow item mutation")
	}
	if core.OrderInvoiced.AllowsItemMutation() {
		t.Error("expected INVOICED orders to reject item mutation")
	}
	if core.OrderCancelled.AllowsItemMutation() {
		t.Error("expected CANCELLED orders to reject item mutation")
	}
}
