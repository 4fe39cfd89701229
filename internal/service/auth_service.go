package service

import (
	"context"
	"errors"
	"strings"

	"github.com/quick-clinic/realtime-service/internal/domain"
)

// TokenVerifier checks that token was issued for userID.
type TokenVerifier interface {
	VerifySubject(token, userID string) error
}

type AuthRequest struct {
	UserID     string
	RelationID string
	Token      string
}

type AuthService struct {
	gw       Gateway
	verifier TokenVerifier
}

// NewAuthService builds the connection authenticator. verifier may be nil.
func NewAuthService(gw Gateway, verifier TokenVerifier) *AuthService {
	return &AuthService{gw: gw, verifier: verifier}
}

func (s *AuthService) Authenticate(ctx context.Context, req AuthRequest) (domain.SessionContext, error) {
	userID := strings.TrimSpace(req.UserID)
	relationID := strings.TrimSpace(req.RelationID)
	if userID == "" {
		return domain.SessionContext{}, domain.NewAuthError(domain.ReasonMissingUserID, nil)
	}

	if s.verifier != nil {
		if err := s.verifier.VerifySubject(req.Token, userID); err != nil {
			return domain.SessionContext{}, domain.NewAuthError(domain.ReasonUnauthorized, err)
		}
	}

	if relationID != "" {
		rel, err := s.gw.GetRelation(ctx, relationID)
		if err != nil {
			if errors.Is(err, domain.ErrRelationNotFound) {
				return domain.SessionContext{}, domain.NewAuthError(domain.ReasonRelationNotFound, err)
			}
			return domain.SessionContext{}, persistErr("get relation", err)
		}
		switch userID {
		case rel.DoctorUserID:
			return domain.NewSessionContext(userID, domain.RoleDoctor, rel.DoctorName, rel.ID), nil
		case rel.PatientUserID:
			return domain.NewSessionContext(userID, domain.RolePatient, rel.PatientName, rel.ID), nil
		default:
			return domain.SessionContext{}, domain.NewAuthError(domain.ReasonUnauthorized, nil)
		}
	}

	u, err := s.gw.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.SessionContext{}, domain.NewAuthError(domain.ReasonUserNotFound, err)
		}
		return domain.SessionContext{}, persistErr("get user", err)
	}
	return domain.NewSessionContext(u.ID, u.Role, u.Name, ""), nil
}
