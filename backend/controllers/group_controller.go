package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"lumina/backend/middleware"
	"lumina/backend/models"
	"lumina/backend/repository"
	"lumina/backend/utils"
)

type GroupController struct {
	Repo      *repository.Repository
	Validator *utils.Validator
}

func NewGroupController(repo *repository.Repository, v *utils.Validator) *GroupController {
	return &GroupController{Repo: repo, Validator: v}
}

type CreateGroupRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100" example:"Algorithms club"`
	Description string `json:"description" validate:"max=500"`
	IsPublic    *bool  `json:"is_public"`
}

type MembershipResponse struct {
	Message string `json:"message"`
	GroupID uint   `json:"group_id"`
}

// groupError maps store errors to responses. Private groups the user cannot
// see are reported exactly like missing ones.
func groupError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return utils.NotFound(c, "Study group not found")
	case errors.Is(err, repository.ErrAlreadyMember):
		return utils.Conflict(c, "Already a member of this group")
	case errors.Is(err, repository.ErrNotMember):
		return utils.Conflict(c, "Not a member of this group")
	default:
		return utils.InternalServerError(c, "Could not process study group request")
	}
}

// Create godoc
// @Summary Create a study group
// @Description The creator becomes the first member. Groups are public unless is_public is false.
// @Tags study-groups
// @Accept json
// @Produce json
// @Param group body CreateGroupRequest true "Group"
// @Success 201 {object} repository.GroupView
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /study-groups [post]
func (gc *GroupController) Create(c *fiber.Ctx) error {
	var input CreateGroupRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	if errs := gc.Validator.Validate(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	user := middleware.CurrentUser(c)
	group := models.StudyGroup{
		Name:        input.Name,
		Description: input.Description,
		CreatorID:   user.ID,
		IsPublic:    input.IsPublic == nil || *input.IsPublic,
	}
	if err := gc.Repo.CreateGroup(c.UserContext(), &group); err != nil {
		return utils.InternalServerError(c, "Could not create study group")
	}

	return utils.Created(c, repository.GroupView{
		StudyGroup:  group,
		MemberCount: 1,
		IsMember:    true,
		IsCreator:   true,
	})
}

// List godoc
// @Summary List study groups
// @Description Public groups plus private groups the user created or joined
// @Tags study-groups
// @Produce json
// @Success 200 {array} repository.GroupView
// @Security ApiKeyAuth
// @Router /study-groups [get]
func (gc *GroupController) List(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	groups, err := gc.Repo.VisibleGroups(c.UserContext(), user.ID)
	if err != nil {
		return utils.InternalServerError(c, "Could not load study groups")
	}
	return c.JSON(groups)
}

// Get godoc
// @Summary Study group details
// @Tags study-groups
// @Produce json
// @Param id path int true "Group ID"
// @Success 200 {object} repository.GroupView
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /study-groups/{id} [get]
func (gc *GroupController) Get(c *fiber.Ctx) error {
	groupID, err := paramID(c)
	if err != nil {
		return utils.NotFound(c, "Study group not found")
	}
	user := middleware.CurrentUser(c)
	view, err := gc.Repo.GroupForUser(c.UserContext(), groupID, user.ID)
	if err != nil {
		return groupError(c, err)
	}
	return c.JSON(view)
}

// Join godoc
// @Summary Join a study group
// @Tags study-groups
// @Produce json
// @Param id path int true "Group ID"
// @Success 200 {object} MembershipResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /study-groups/{id}/join [post]
func (gc *GroupController) Join(c *fiber.Ctx) error {
	groupID, err := paramID(c)
	if err != nil {
		return utils.NotFound(c, "Study group not found")
	}
	user := middleware.CurrentUser(c)
	if err := gc.Repo.JoinGroup(c.UserContext(), groupID, user.ID); err != nil {
		return groupError(c, err)
	}
	return c.JSON(MembershipResponse{Message: "Joined study group", GroupID: groupID})
}

// Leave godoc
// @Summary Leave a study group
// @Tags study-groups
// @Produce json
// @Param id path int true "Group ID"
// @Success 200 {object} MembershipResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /study-groups/{id}/leave [post]
func (gc *GroupController) Leave(c *fiber.Ctx) error {
	groupID, err := paramID(c)
	if err != nil {
		return utils.NotFound(c, "Study group not found")
	}
	user := middleware.CurrentUser(c)
	if err := gc.Repo.LeaveGroup(c.UserContext(), groupID, user.ID); err != nil {
		return groupError(c, err)
	}
	return c.JSON(MembershipResponse{Message: "Left study group", GroupID: groupID})
}
