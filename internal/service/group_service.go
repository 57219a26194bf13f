package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/event-planner/internal/apperr"
	"github.com/iliyamo/event-planner/internal/appctx"
	"github.com/iliyamo/event-planner/internal/model"
	"github.com/iliyamo/event-planner/internal/repository"
)

// GroupView is a group plus its members when requested.
type GroupView struct {
	Group   model.Group
	Members []model.User
}

// GroupService owns explicit group management. The first-login
// default group is created by AuthService; this service covers groups
// users create deliberately.
type GroupService struct {
	groups repository.GroupRepository
	tx     repository.TxRunner
}

// NewGroupService wires the group service.
func NewGroupService(groups repository.GroupRepository, tx repository.TxRunner) *GroupService {
	return &GroupService{groups: groups, tx: tx}
}

// Create makes a new group owned by the caller and enrolls the owner
// as its first member. Group names are globally unique.
func (s *GroupService) Create(ctx context.Context, actx appctx.Context, cred model.Credential, name string, description *string) (*model.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.New(apperr.KindMissingField, "name is required")
	}

	group := &model.Group{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		OwnerID:     cred.ID,
	}
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		existing, err := s.groups.Get(ctx, repository.GroupQuery{Name: name})
		if err != nil {
			return apperr.Internal(err)
		}
		if existing != nil {
			return apperr.New(apperr.KindGroupNameExists, "a group with this name already exists")
		}
		if err := s.groups.Create(ctx, group); err != nil {
			// Covers the race window between the existence check and
			// the insert; the unique name index is the arbiter.
			if errors.Is(err, repository.ErrDuplicate) {
				return apperr.New(apperr.KindGroupNameExists, "a group with this name already exists")
			}
			return apperr.Internal(err)
		}
		if err := s.groups.AddMember(ctx, group.ID, cred.ID); err != nil {
			return apperr.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	actx.Infof("group %s (%q) created", group.ID, group.Name)
	return group, nil
}

// ListMine returns every group the caller belongs to.
func (s *GroupService) ListMine(ctx context.Context, actx appctx.Context, cred model.Credential) ([]model.Group, error) {
	groups, err := s.groups.ListForMember(ctx, cred.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return groups, nil
}

// Get returns a group with its member list loaded eagerly.
func (s *GroupService) Get(ctx context.Context, actx appctx.Context, id uuid.UUID) (*GroupView, error) {
	group, err := s.groups.Get(ctx, repository.GroupQuery{ID: &id})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if group == nil {
		return nil, apperr.New(apperr.KindNotFound, "group not found")
	}
	members, err := s.groups.ListMembers(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &GroupView{Group: *group, Members: members}, nil
}
