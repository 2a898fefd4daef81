package mapper

import (
	"github.com/barnabasli/alexandria/internal/entity"
	"github.com/barnabasli/alexandria/internal/model"
)

type MembershipMapper struct{}

func NewMembershipMapper() *MembershipMapper {
	return &MembershipMapper{}
}

func (m *MembershipMapper) ToEntity(ms *model.Membership) *entity.Membership {
	if ms == nil {
		return nil
	}
	return &entity.Membership{
		Id:             ms.Id,
		UserId:         ms.UserId,
		OrganizationId: ms.OrganizationId,
		Status:         ms.Status,
		RoleInOrg:      ms.RoleInOrg,
		RequestedAt:    ms.RequestedAt,
		ApprovedAt:     ms.ApprovedAt,
	}
}

func (m *MembershipMapper) ToModel(ms *entity.Membership) *model.Membership {
	if ms == nil {
		return nil
	}
	return &model.Membership{
		Id:             ms.Id,
		UserId:         ms.UserId,
		OrganizationId: ms.OrganizationId,
		Status:         ms.Status,
		RoleInOrg:      ms.RoleInOrg,
		RequestedAt:    ms.RequestedAt,
		ApprovedAt:     ms.ApprovedAt,
	}
}
