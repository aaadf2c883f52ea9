package storage

import (
	"errors"
	"testing"
)

func TestCreateAndLookupUser(t *testing.T) {
	store := openTestStore(t)

	u, err := store.CreateUser("ada", "hash-a", false)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	if u.ID == 0 || u.Username != "ada" || u.PasswordHash != "hash-a" {
		t.Errorf("user = %+v", u)
	}
	if u.IsMember || u.IsAdmin {
		t.Error("new user should not be member or admin")
	}

	byName, err := store.UserByName("ada")
	if err != nil || byName.ID != u.ID {
		t.Errorf("UserByName = %+v, %v", byName, err)
	}
	byID, err := store.UserByID(u.ID)
	if err != nil || byID.Username != "ada" {
		t.Errorf("UserByID = %+v, %v", byID, err)
	}

	if _, err := store.UserByName("nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing user error = %v, want ErrNotFound", err)
	}
	if _, err := store.CreateUser("ada", "other", false); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate error = %v, want ErrDuplicate", err)
	}
}

func TestAdminIsMember(t *testing.T) {
	store := openTestStore(t)

	u, err := store.CreateUser("root", "hash", true)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	if !u.IsAdmin || !u.IsMember {
		t.Errorf("admin = %+v, want admin and member", u)
	}
}

func TestSetMembership(t *testing.T) {
	store := openTestStore(t)
	u, _ := store.CreateUser("ada", "hash", false)

	if err := store.SetMembership(u.ID, true); err != nil {
		t.Fatalf("SetMembership() failed: %v", err)
	}
	got, _ := store.UserByID(u.ID)
	if !got.IsMember {
		t.Error("membership not granted")
	}

	if err := store.SetMembership(u.ID, false); err != nil {
		t.Fatalf("SetMembership() failed: %v", err)
	}
	got, _ = store.UserByID(u.ID)
	if got.IsMember {
		t.Error("membership not revoked")
	}

	if err := store.SetMembership(999, true); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown user error = %v, want ErrNotFound", err)
	}
}

func TestPaymentRequestLifecycle(t *testing.T) {
	store := openTestStore(t)
	ada, _ := store.CreateUser("ada", "hash", false)
	bob, _ := store.CreateUser("bob", "hash", false)

	req, err := store.CreatePaymentRequest(ada.ID, 100)
	if err != nil {
		t.Fatalf("CreatePaymentRequest() failed: %v", err)
	}
	if req.Status != PaymentPending || req.Amount != 100 || req.Username != "ada" {
		t.Errorf("request = %+v", req)
	}
	if !req.VerifiedAt.IsZero() {
		t.Error("pending request should have no verification time")
	}

	// A second request while one is pending returns the same one.
	again, err := store.CreatePaymentRequest(ada.ID, 250)
	if err != nil {
		t.Fatalf("CreatePaymentRequest() failed: %v", err)
	}
	if again.ID != req.ID || again.Amount != 100 {
		t.Errorf("expected existing pending request, got %+v", again)
	}

	if _, err := store.CreatePaymentRequest(bob.ID, 100); err != nil {
		t.Fatalf("CreatePaymentRequest() failed: %v", err)
	}

	pending, err := store.PaymentRequests(PaymentPending)
	if err != nil {
		t.Fatalf("PaymentRequests() failed: %v", err)
	}
	if len(pending) != 2 || pending[0].Username != "ada" || pending[1].Username != "bob" {
		t.Errorf("pending = %+v", pending)
	}

	verified, err := store.VerifyPayment(req.ID)
	if err != nil {
		t.Fatalf("VerifyPayment() failed: %v", err)
	}
	if verified.Status != PaymentVerified || verified.VerifiedAt.IsZero() {
		t.Errorf("verified = %+v", verified)
	}

	got, _ := store.UserByID(ada.ID)
	if !got.IsMember {
		t.Error("verification should grant membership")
	}
	other, _ := store.UserByID(bob.ID)
	if other.IsMember {
		t.Error("verification must not touch other users")
	}

	pending, _ = store.PaymentRequests(PaymentPending)
	if len(pending) != 1 || pending[0].Username != "bob" {
		t.Errorf("pending after verify = %+v", pending)
	}
	all, _ := store.PaymentRequests("")
	if len(all) != 2 {
		t.Errorf("all requests = %d, want 2", len(all))
	}

	// After verification a new request opens a fresh one.
	fresh, err := store.CreatePaymentRequest(ada.ID, 100)
	if err != nil {
		t.Fatalf("CreatePaymentRequest() failed: %v", err)
	}
	if fresh.ID == req.ID {
		t.Error("expected a new request after the old one was verified")
	}
}

func TestVerifyPaymentErrors(t *testing.T) {
	store := openTestStore(t)
	ada, _ := store.CreateUser("ada", "hash", false)
	req, _ := store.CreatePaymentRequest(ada.ID, 100)

	if _, err := store.VerifyPayment(req.ID + 100); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown id error = %v, want ErrNotFound", err)
	}
	if _, err := store.VerifyPayment(req.ID); err != nil {
		t.Fatalf("VerifyPayment() failed: %v", err)
	}
	if _, err := store.VerifyPayment(req.ID); !errors.Is(err, ErrAlreadyVerified) {
		t.Errorf("second verify error = %v, want ErrAlreadyVerified", err)
	}
	if _, err := store.PaymentRequest(req.ID + 100); !errors.Is(err, ErrNotFound) {
		t.Errorf("PaymentRequest unknown id = %v, want ErrNotFound", err)
	}
}
