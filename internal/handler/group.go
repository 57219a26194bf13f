package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-planner/internal/model"
	"github.com/iliyamo/event-planner/internal/service"
)

// GroupHandler exposes explicit group creation and group reads.
type GroupHandler struct {
	Groups *service.GroupService
}

func NewGroupHandler(groups *service.GroupService) *GroupHandler {
	return &GroupHandler{Groups: groups}
}

type createGroupReq struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type groupPart struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	OwnerID     string  `json:"owner_id"`
}

func toGroupPart(g model.Group) groupPart {
	return groupPart{
		ID:          g.ID.String(),
		Name:        g.Name,
		Description: g.Description,
		OwnerID:     g.OwnerID.String(),
	}
}

// Create makes a group owned by the caller.
func (h *GroupHandler) Create(c echo.Context) error {
	cred, ok := credential(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createGroupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	group, err := h.Groups.Create(ctx, actionCtx(c, "create_group"), cred, req.Name, req.Description)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, toGroupPart(*group))
}

// List returns the groups the caller is a member of.
func (h *GroupHandler) List(c echo.Context) error {
	cred, ok := credential(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	groups, err := h.Groups.ListMine(ctx, actionCtx(c, "list_groups"), cred)
	if err != nil {
		return respondErr(c, err)
	}
	resp := make([]groupPart, 0, len(groups))
	for _, g := range groups {
		resp = append(resp, toGroupPart(g))
	}
	return c.JSON(http.StatusOK, echo.Map{"groups": resp})
}

// Get returns a group with its member list.
func (h *GroupHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondErr(c, err)
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	view, err := h.Groups.Get(ctx, actionCtx(c, "get_group"), id)
	if err != nil {
		return respondErr(c, err)
	}

	members := make([]userPart, 0, len(view.Members))
	for i := range view.Members {
		members = append(members, toUserPart(&view.Members[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"group":   toGroupPart(view.Group),
		"members": members,
	})
}
