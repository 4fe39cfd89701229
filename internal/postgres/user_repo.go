package postgres

import (
	"context"

	"github.com/quick-clinic/realtime-service/internal/domain"
)

type UserRepository struct {
	q querier
}

func NewUserRepository(q querier) *UserRepository {
	return &UserRepository{q: q}
}

func (r *UserRepository) Get(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.q.QueryRow(ctx, qGetUser, id).Scan(&u.ID, &u.Name, &u.Role)
	if err != nil {
		return nil, mapPgError(err, domain.ErrUserNotFound)
	}
	return &u, nil
}

type RelationRepository struct {
	q querier
}

func NewRelationRepository(q querier) *RelationRepository {
	return &RelationRepository{q: q}
}

func (r *RelationRepository) Get(ctx context.Context, id string) (*domain.Relation, error) {
	var rel domain.Relation
	err := r.q.QueryRow(ctx, qGetRelation, id).Scan(
		&rel.ID,
		&rel.DoctorUserID, &rel.DoctorName,
		&rel.PatientUserID, &rel.PatientName,
	)
	if err != nil {
		return nil, mapPgError(err, domain.ErrRelationNotFound)
	}
	return &rel, nil
}
