package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/barnabasli/alexandria/internal/dto"
	"github.com/barnabasli/alexandria/internal/entity"
	"github.com/barnabasli/alexandria/internal/repository/specification"
	"github.com/barnabasli/alexandria/internal/repository/unitofwork"
)

type IMembershipService interface {
	// IsApprovedMember reports whether the user may touch the
	// organization's papers and queries.
	IsApprovedMember(ctx context.Context, userId uuid.UUID, organizationId uuid.UUID) (bool, error)

	// RequireApprovedMember is the gate form: it returns
	// ErrNotApprovedMember instead of false.
	RequireApprovedMember(ctx context.Context, userId uuid.UUID, organizationId uuid.UUID) error

	GetMemberships(ctx context.Context, userId uuid.UUID) ([]*dto.GetMembershipResponse, error)
}

type membershipService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewMembershipService(uowFactory unitofwork.RepositoryFactory) IMembershipService {
	return &membershipService{
		uowFactory: uowFactory,
	}
}

func (s *membershipService) IsApprovedMember(ctx context.Context, userId uuid.UUID, organizationId uuid.UUID) (bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	membership, err := uow.MembershipRepository().FindOne(ctx,
		specification.ForMember{UserID: userId, OrganizationID: organizationId},
		specification.WithStatus{Status: entity.MembershipStatusApproved},
	)
	if err != nil {
		return false, err
	}
	return membership != nil, nil
}

func (s *membershipService) RequireApprovedMember(ctx context.Context, userId uuid.UUID, organizationId uuid.UUID) error {
	approved, err := s.IsApprovedMember(ctx, userId, organizationId)
	if err != nil {
		return err
	}
	if !approved {
		return ErrNotApprovedMember
	}
	return nil
}

func (s *membershipService) GetMemberships(ctx context.Context, userId uuid.UUID) ([]*dto.GetMembershipResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	memberships, err := uow.MembershipRepository().FindAll(ctx,
		specification.FilterBy{Field: "user_id", Value: userId},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.GetMembershipResponse, 0, len(memberships))
	for _, m := range memberships {
		result = append(result, &dto.GetMembershipResponse{
			OrganizationId: m.OrganizationId,
			UserId:         m.UserId,
			Status:         m.Status,
		})
	}
	return result, nil
}
