package service

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/victorivanov/parley/internal/database"
	"github.com/victorivanov/parley/internal/models"
)

type UserService struct {
	users database.UserRepository
}

func NewUserService(users database.UserRepository) *UserService {
	return &UserService{users: users}
}

// Current returns the signed-in user.
func (s *UserService) Current(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, internalError("get user", err)
	}
	if user == nil {
		return nil, NotFound("NOT_FOUND", "user not found")
	}
	return user, nil
}

// UpdateProfileRequest changes the caller's display name and avatar. Nil
// fields are left alone.
type UpdateProfileRequest struct {
	Name  *string `json:"name"`
	Image *string `json:"image"`
}

func (r UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(1, 80)),
		validation.Field(&r.Image, is.URL),
	)
}

func (s *UserService) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*models.User, error) {
	if err := Validation(req.Validate()); err != nil {
		return nil, err
	}
	user, err := s.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Image != nil {
		user.Image = req.Image
		if *req.Image == "" {
			user.Image = nil
		}
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, internalError("update user", err)
	}
	return user, nil
}
