package domain

import "testing"

func TestWithdrawalStatus_CanTransitionTo(t *testing.T) {
	t.Parallel()

	all := []WithdrawalStatus{
		WithdrawalStatusPending,
		WithdrawalStatusApproved,
		WithdrawalStatusRejected,
		WithdrawalStatusProcessed,
	}

	allowed := map[WithdrawalStatus]map[WithdrawalStatus]bool{
		WithdrawalStatusPending:  {WithdrawalStatusApproved: true, WithdrawalStatusRejected: true},
		WithdrawalStatusApproved: {WithdrawalStatusProcessed: true},
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[from][to]
			if got := from.CanTransitionTo(to); got != want {
				t.Errorf("%s -> %s: got %v, want %v", from, to, got, want)
			}
		}
	}

	if !WithdrawalStatusRejected.IsTerminal() || !WithdrawalStatusProcessed.IsTerminal() {
		t.Error("rejected and processed must be terminal")
	}
	if WithdrawalStatusPending.IsTerminal() {
		t.Error("pending is not terminal")
	}
}

func TestWithdrawal_Validate(t *testing.T) {
	t.Parallel()

	if err := (&Withdrawal{Amount: dec("0")}).Validate(); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if err := (&Withdrawal{Amount: dec("1")}).Validate(); err != nil {
		t.Fatalf("expected valid withdrawal, got %v", err)
	}
}
