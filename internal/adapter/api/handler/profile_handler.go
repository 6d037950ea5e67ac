package handler

import (
	"github.com/labstack/echo/v4"

	"planmarket/internal/usecase"
	"planmarket/pkg/response"
)

type ProfileHandler struct {
	profileUseCase *usecase.ProfileUseCase
}

func NewProfileHandler(profileUseCase *usecase.ProfileUseCase) *ProfileHandler {
	return &ProfileHandler{
		profileUseCase: profileUseCase,
	}
}

type updateProfileRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,min=1,max=100"`
	Username *string `json:"username" validate:"omitempty,username"`
	Bio      *string `json:"bio" validate:"omitempty,max=1000"`
	Website  *string `json:"website" validate:"omitempty,url"`
}

func (h *ProfileHandler) GetProfile(c echo.Context) error {
	profile, err := h.profileUseCase.GetProfile(c.Request().Context(), c.Get("uid").(string))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, profile)
}

func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	var req updateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	profile, err := h.profileUseCase.UpdateProfile(c.Request().Context(), c.Get("uid").(string), usecase.UpdateProfileInput{
		FullName: req.FullName,
		Username: req.Username,
		Bio:      req.Bio,
		Website:  req.Website,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, profile)
}

func (h *ProfileHandler) UploadAvatar(c echo.Context) error {
	upload, closer, err := formUpload(c, "avatar")
	if err != nil {
		return response.Error(c, err)
	}
	defer closer.Close()

	profile, err := h.profileUseCase.UploadAvatar(c.Request().Context(), c.Get("uid").(string), upload)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, profile)
}

func (h *ProfileHandler) SellerProfile(c echo.Context) error {
	seller, err := h.profileUseCase.SellerProfile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, seller)
}
