package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-planner/internal/apperr"
	"github.com/iliyamo/event-planner/internal/model"
	"github.com/iliyamo/event-planner/internal/service"
)

// EventHandler exposes event creation, the monthly calendar view and
// single-event read/update/delete.
type EventHandler struct {
	Events *service.EventService
}

func NewEventHandler(events *service.EventService) *EventHandler {
	return &EventHandler{Events: events}
}

// ----- DTOs -----

type createEventReq struct {
	GroupID     string    `json:"group_id"`
	Name        string    `json:"name"`
	Destination string    `json:"destination"`
	Cost        string    `json:"cost"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Priority    string    `json:"priority"`
	Category    string    `json:"category"`
	Description *string   `json:"description"`
	TagIDs      []string  `json:"tag_ids"`
}

type updateEventReq struct {
	Name        *string    `json:"name"`
	Destination *string    `json:"destination"`
	Cost        *string    `json:"cost"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Priority    *string    `json:"priority"`
	Category    *string    `json:"category"`
	Description *string    `json:"description"`
	TagIDs      []string   `json:"tag_ids"`
}

type tagPart struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type eventPart struct {
	ID          string    `json:"id"`
	GroupID     string    `json:"group_id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Destination string    `json:"destination"`
	Cost        string    `json:"cost"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Priority    string    `json:"priority"`
	Category    string    `json:"category"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type eventResp struct {
	eventPart
	Owner *userPart `json:"owner,omitempty"`
	Tags  []tagPart `json:"tags,omitempty"`
}

type calendarDayResp struct {
	Date   string      `json:"date"`
	Events []eventPart `json:"events"`
}

func toEventPart(e model.Event) eventPart {
	return eventPart{
		ID:          e.ID.String(),
		GroupID:     e.GroupID.String(),
		OwnerID:     e.OwnerID.String(),
		Name:        e.Name,
		Destination: e.Destination,
		Cost:        e.Cost,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		Priority:    string(e.Priority),
		Category:    string(e.Category),
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toEventResp(v *service.EventView) eventResp {
	resp := eventResp{eventPart: toEventPart(v.Event)}
	if v.Owner != nil {
		owner := toUserPart(v.Owner)
		resp.Owner = &owner
	}
	for _, t := range v.Tags {
		resp.Tags = append(resp.Tags, tagPart{ID: t.ID.String(), Name: t.Name, Color: t.Color})
	}
	return resp
}

func parseUUIDs(raw []string) ([]uuid.UUID, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, apperr.New(apperr.KindValidation, "invalid tag id")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseGroupID separates an absent group_id from a present but
// unparseable one; the two report different error kinds.
func parseGroupID(raw string) (uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return uuid.Nil, apperr.New(apperr.KindMissingField, "group_id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.New(apperr.KindValidation, "invalid group_id")
	}
	return id, nil
}

// parseInclude reads the ?include= query parameter, a comma-separated
// list of relation names.
func parseInclude(c echo.Context) service.IncludeOptions {
	var inc service.IncludeOptions
	for _, part := range strings.Split(c.QueryParam("include"), ",") {
		switch strings.TrimSpace(strings.ToLower(part)) {
		case "owner":
			inc.Owner = true
		case "tags":
			inc.Tags = true
		}
	}
	return inc
}

// Create adds an event to a group's calendar.
func (h *EventHandler) Create(c echo.Context) error {
	cred, ok := credential(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createEventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	groupID, err := parseGroupID(req.GroupID)
	if err != nil {
		return respondErr(c, err)
	}
	tagIDs, err := parseUUIDs(req.TagIDs)
	if err != nil {
		return respondErr(c, err)
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	view, err := h.Events.Create(ctx, actionCtx(c, "create_event"), cred, service.CreateEventInput{
		GroupID:     groupID,
		Name:        req.Name,
		Destination: req.Destination,
		Cost:        req.Cost,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Priority:    model.EventPriority(strings.ToUpper(req.Priority)),
		Category:    model.EventCategory(strings.ToUpper(req.Category)),
		Description: req.Description,
		TagIDs:      tagIDs,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, toEventResp(view))
}

// List returns one month of a group's events bucketed by day.
func (h *EventHandler) List(c echo.Context) error {
	if _, ok := credential(c); !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	month, _ := strconv.Atoi(c.QueryParam("month"))
	year, _ := strconv.Atoi(c.QueryParam("year"))
	groupID, err := parseGroupID(c.QueryParam("group_id"))
	if err != nil {
		return respondErr(c, err)
	}

	q := service.ListCalendarQuery{Month: month, Year: year, GroupID: groupID}
	if raw := c.QueryParam("owner_id"); raw != "" {
		ownerID, err := uuid.Parse(raw)
		if err != nil {
			return respondErr(c, apperr.New(apperr.KindValidation, "invalid owner_id"))
		}
		q.OwnerID = &ownerID
	}
	tagIDs, err := parseUUIDs(c.QueryParams()["tag_id"])
	if err != nil {
		return respondErr(c, err)
	}
	q.TagIDs = tagIDs
	q.Page, _ = strconv.Atoi(c.QueryParam("page"))
	q.PageSize, _ = strconv.Atoi(c.QueryParam("page_size"))

	ctx, cancel := requestCtx(c)
	defer cancel()

	days, err := h.Events.ListCalendar(ctx, actionCtx(c, "list_calendar"), q)
	if err != nil {
		return respondErr(c, err)
	}

	resp := make([]calendarDayResp, 0, len(days))
	for _, d := range days {
		day := calendarDayResp{Date: d.Date, Events: make([]eventPart, 0, len(d.Events))}
		for _, e := range d.Events {
			day.Events = append(day.Events, toEventPart(e))
		}
		resp = append(resp, day)
	}
	return c.JSON(http.StatusOK, echo.Map{"days": resp})
}

// Get returns a single event, optionally with its owner and tags.
func (h *EventHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondErr(c, err)
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	view, err := h.Events.Get(ctx, actionCtx(c, "get_event"), id, parseInclude(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, toEventResp(view))
}

// Update applies a partial update to an event the caller owns.
func (h *EventHandler) Update(c echo.Context) error {
	cred, ok := credential(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return respondErr(c, err)
	}
	var req updateEventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	in := service.UpdateEventInput{
		Name:        req.Name,
		Destination: req.Destination,
		Cost:        req.Cost,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Description: req.Description,
	}
	if req.Priority != nil {
		p := model.EventPriority(strings.ToUpper(*req.Priority))
		in.Priority = &p
	}
	if req.Category != nil {
		cat := model.EventCategory(strings.ToUpper(*req.Category))
		in.Category = &cat
	}
	if req.TagIDs != nil {
		tagIDs, err := parseUUIDs(req.TagIDs)
		if err != nil {
			return respondErr(c, err)
		}
		if tagIDs == nil {
			tagIDs = []uuid.UUID{}
		}
		in.TagIDs = tagIDs
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	view, err := h.Events.Update(ctx, actionCtx(c, "update_event"), cred, id, in)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, toEventResp(view))
}

// Delete removes an event the caller owns.
func (h *EventHandler) Delete(c echo.Context) error {
	cred, ok := credential(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return respondErr(c, err)
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.Events.Delete(ctx, actionCtx(c, "delete_event"), cred, id); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
