package handlers

import (
	"errors"
	"fmt"

	"github.com/biosecret/go-todo/auth"
	"github.com/biosecret/go-todo/database"
	"github.com/biosecret/go-todo/middleware"
	"github.com/biosecret/go-todo/models"
	"github.com/biosecret/go-todo/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ProfileHandler serves registration, login and the caller's own profile.
type ProfileHandler struct {
	store database.ProfileStore
	codec *auth.TokenCodec
	log   logrus.FieldLogger
}

func NewProfileHandler(store database.ProfileStore, codec *auth.TokenCodec, log logrus.FieldLogger) *ProfileHandler {
	return &ProfileHandler{store: store, codec: codec, log: log}
}

// CreateProfile registers a new user
//
//	@Summary	Register a profile
//	@Tags		profile
//	@Accept		json
//	@Produce	json
//	@Param		body	body		models.CreateProfileRequest	true	"profile"
//	@Success	200		{object}	models.Response
//	@Failure	400		{object}	models.Response
//	@Router		/CreateProfile [post]
func (h *ProfileHandler) CreateProfile(c *fiber.Ctx) error {
	var req models.CreateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return failData(c, fiber.StatusBadRequest, err.Error())
	}
	if field := req.MissingField(); field != "" {
		return failData(c, fiber.StatusBadRequest, fmt.Sprintf("%s is required", field))
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return failData(c, fiber.StatusBadRequest, err.Error())
	}

	profile := models.Profile{
		UserName:     req.UserName,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		EmailAddress: req.EmailAddress,
		MobileNumber: req.MobileNumber,
		City:         req.City,
		Password:     hashed,
	}
	if err := h.store.CreateProfile(c.UserContext(), &profile); err != nil {
		h.log.WithError(err).WithField("userName", req.UserName).Warn("create profile failed")
		return failData(c, fiber.StatusBadRequest, err.Error())
	}

	h.log.WithField("userName", profile.UserName).Info("profile created")
	return success(c, profile)
}

// UserLogin exchanges userName and password for a session token
//
//	@Summary	Log in
//	@Tags		profile
//	@Accept		json
//	@Produce	json
//	@Param		body	body		models.LoginRequest	true	"credentials"
//	@Success	200		{object}	models.Response
//	@Failure	401		{object}	models.Response
//	@Failure	404		{object}	models.Response
//	@Router		/UserLogin [post]
func (h *ProfileHandler) UserLogin(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return failData(c, fiber.StatusBadRequest, err.Error())
	}

	candidates, err := h.store.FindProfiles(c.UserContext(), req.UserName)
	if err != nil {
		h.log.WithError(err).Error("login lookup failed")
		return failData(c, fiber.StatusNotFound, err.Error())
	}

	matched := utils.Filter(func(p models.Profile) bool {
		return auth.CheckPassword(p.Password, req.Password)
	})(candidates)
	if len(matched) == 0 {
		return failMessage(c, fiber.StatusUnauthorized, "Invalid username or password")
	}

	token, err := h.codec.Issue(req.UserName)
	if err != nil {
		return failData(c, fiber.StatusNotFound, err.Error())
	}

	return c.Status(fiber.StatusOK).JSON(models.Response{
		Status: statusSuccess,
		Token:  token,
		Data:   matched,
	})
}

// SelectProfile returns the caller's profile
//
//	@Summary	Read own profile
//	@Tags		profile
//	@Produce	json
//	@Security	TokenKey
//	@Success	200	{object}	models.Response
//	@Failure	404	{object}	models.Response
//	@Router		/SelectProfile [get]
func (h *ProfileHandler) SelectProfile(c *fiber.Ctx) error {
	userName := middleware.UserName(c)

	profile, err := h.store.FindProfile(c.UserContext(), userName)
	if errors.Is(err, database.ErrNotFound) {
		return failMessage(c, fiber.StatusNotFound, "User not found")
	}
	if err != nil {
		h.log.WithError(err).WithField("userName", userName).Error("select profile failed")
		return failMessage(c, fiber.StatusInternalServerError, err.Error())
	}

	return success(c, profile)
}

// UpdateProfile patches the caller's profile and returns the result
//
//	@Summary	Update own profile
//	@Tags		profile
//	@Accept		json
//	@Produce	json
//	@Security	TokenKey
//	@Param		body	body		models.ProfilePatch	true	"fields to change"
//	@Success	200		{object}	models.Response
//	@Failure	404		{object}	models.Response
//	@Router		/UpdateProfile [post]
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	userName := middleware.UserName(c)

	var patch models.ProfilePatch
	if err := c.BodyParser(&patch); err != nil {
		return failMessage(c, fiber.StatusBadRequest, err.Error())
	}
	if patch.Password != nil {
		hashed, err := auth.HashPassword(*patch.Password)
		if err != nil {
			return failMessage(c, fiber.StatusInternalServerError, err.Error())
		}
		patch.Password = &hashed
	}

	profile, err := h.store.UpdateProfile(c.UserContext(), userName, patch)
	if errors.Is(err, database.ErrNotFound) {
		return failMessage(c, fiber.StatusNotFound, "User not found")
	}
	if err != nil {
		h.log.WithError(err).WithField("userName", userName).Error("update profile failed")
		return failMessage(c, fiber.StatusInternalServerError, err.Error())
	}

	return success(c, profile)
}
