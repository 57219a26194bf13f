package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-planner/internal/model"
	"github.com/iliyamo/event-planner/internal/service"
)

// TagHandler exposes the tag vocabulary and the category enumeration.
type TagHandler struct {
	Tags *service.TagService
}

func NewTagHandler(tags *service.TagService) *TagHandler {
	return &TagHandler{Tags: tags}
}

type createTagReq struct {
	Name        string  `json:"name"`
	Color       string  `json:"color"`
	Description *string `json:"description"`
}

// Create adds a tag to the vocabulary. Creating an existing tag
// returns it unchanged.
func (h *TagHandler) Create(c echo.Context) error {
	if _, ok := credential(c); !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createTagReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	tag, err := h.Tags.Create(ctx, actionCtx(c, "create_tag"), req.Name, req.Color, req.Description)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, tagPart{ID: tag.ID.String(), Name: tag.Name, Color: tag.Color})
}

// List returns the whole tag vocabulary. Public and cacheable.
func (h *TagHandler) List(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	tags, err := h.Tags.List(ctx)
	if err != nil {
		return respondErr(c, err)
	}
	resp := make([]tagPart, 0, len(tags))
	for _, t := range tags {
		resp = append(resp, tagPart{ID: t.ID.String(), Name: t.Name, Color: t.Color})
	}
	return c.JSON(http.StatusOK, echo.Map{"tags": resp})
}

// Categories returns the closed category enumeration. Public and
// cacheable; the list only changes with a deploy.
func (h *TagHandler) Categories(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"categories": model.EventCategories})
}
