package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/barnabasli/alexandria/internal/dto"
	"github.com/barnabasli/alexandria/internal/entity"
	"github.com/barnabasli/alexandria/internal/repository/specification"
	"github.com/barnabasli/alexandria/internal/repository/unitofwork"
)

type IOrganizationService interface {
	// GetMine lists organizations where the user's membership is approved.
	GetMine(ctx context.Context, userId uuid.UUID) ([]*dto.GetOrganizationResponse, error)
	GetOne(ctx context.Context, userId uuid.UUID, organizationId uuid.UUID) (*dto.GetOrganizationResponse, error)
}

type organizationService struct {
	uowFactory        unitofwork.RepositoryFactory
	membershipService IMembershipService
}

func NewOrganizationService(uowFactory unitofwork.RepositoryFactory, membershipService IMembershipService) IOrganizationService {
	return &organizationService{
		uowFactory:        uowFactory,
		membershipService: membershipService,
	}
}

func (s *organizationService) GetMine(ctx context.Context, userId uuid.UUID) ([]*dto.GetOrganizationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	memberships, err := uow.MembershipRepository().FindAll(ctx,
		specification.FilterBy{Field: "user_id", Value: userId},
		specification.WithStatus{Status: entity.MembershipStatusApproved},
	)
	if err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return []*dto.GetOrganizationResponse{}, nil
	}

	ids := make([]uuid.UUID, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.OrganizationId)
	}

	orgs, err := uow.OrganizationRepository().FindAll(ctx,
		specification.ByIDs{IDs: ids},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.GetOrganizationResponse, 0, len(orgs))
	for _, org := range orgs {
		result = append(result, &dto.GetOrganizationResponse{
			Id:        org.Id,
			Name:      org.Name,
			CreatedAt: org.CreatedAt,
		})
	}
	return result, nil
}

func (s *organizationService) GetOne(ctx context.Context, userId uuid.UUID, organizationId uuid.UUID) (*dto.GetOrganizationResponse, error) {
	if err := s.membershipService.RequireApprovedMember(ctx, userId, organizationId); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	org, err := uow.OrganizationRepository().FindOne(ctx, specification.ByID{ID: organizationId})
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, ErrOrganizationNotFound
	}

	return &dto.GetOrganizationResponse{
		Id:        org.Id,
		Name:      org.Name,
		CreatedAt: org.CreatedAt,
	}, nil
}
