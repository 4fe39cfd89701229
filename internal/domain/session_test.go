package domain

import (
	"errors"
	"testing"
)

func TestSessionContext_Room(t *testing.T) {
	chat := NewSessionContext("u1", RoleDoctor, "Dr. Who", "r9")
	if chat.Kind() != SessionChat || chat.Room() != "relation_r9" {
		t.Fatalf("chat session: kind=%v room=%q", chat.Kind(), chat.Room())
	}

	notif := NewSessionContext("u1", RolePatient, "Pat", "")
	if notif.Kind() != SessionNotification || notif.Room() != "user_u1" {
		t.Fatalf("notification session: kind=%v room=%q", notif.Kind(), notif.Room())
	}
}

func TestAuthError_Unwrap(t *testing.T) {
	err := error(NewAuthError(ReasonRelationNotFound, ErrRelationNotFound))

	var ae *AuthError
	if !errors.As(err, &ae) || ae.Reason != ReasonRelationNotFound {
		t.Fatalf("errors.As failed: %v", err)
	}
	if !errors.Is(err, ErrRelationNotFound) {
		t.Fatalf("errors.Is failed: %v", err)
	}
	if NewAuthError(ReasonMissingUserID, nil).Error() != "auth: MissingUserId" {
		t.Fatalf("unexpected message: %s", NewAuthError(ReasonMissingUserID, nil).Error())
	}
}
