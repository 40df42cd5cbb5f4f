package usecase

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// UserUsecase は /users の業務ロジックです。
type UserUsecase struct {
	userRepo repo.UserRepository
}

// DI
func NewUserUsecase(userRepo repo.UserRepository) *UserUsecase {
	return &UserUsecase{userRepo: userRepo}
}

type UpdateUserInput struct {
	Username string
	Email    string
}

func (u *UserUsecase) GetUser(ctx context.Context, userID int64) (model.User, error) {
	if userID <= 0 {
		return model.User{}, NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		return model.User{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if user == nil {
		return model.User{}, NewHTTPError(http.StatusNotFound, "user not found")
	}

	return *user, nil
}

// UpdateUser はusernameとemailだけ更新できる。
// 本人または管理者のみ（チェックはhandler側のrequesterで行う）。
func (u *UserUsecase) UpdateUser(ctx context.Context, requesterID int64, requesterRole model.Role, targetID int64, in UpdateUserInput) (model.User, error) {
	if targetID <= 0 {
		return model.User{}, NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	if requesterID != targetID && requesterRole != model.RoleAdmin {
		return model.User{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}

	username := strings.TrimSpace(in.Username)
	if len(username) < 3 || len(username) > 255 {
		return model.User{}, NewHTTPError(http.StatusBadRequest, "invalid username")
	}

	email := strings.TrimSpace(in.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return model.User{}, NewHTTPError(http.StatusBadRequest, "invalid email")
	}

	user, err := u.userRepo.FindByID(ctx, targetID)
	if err != nil {
		return model.User{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if user == nil {
		return model.User{}, NewHTTPError(http.StatusNotFound, "user not found")
	}

	//email重複チェック（自分自身は除く）
	if email != user.Email {
		existing, err := u.userRepo.FindByEmail(ctx, email)
		if err != nil {
			return model.User{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if existing != nil {
			return model.User{}, NewHTTPError(http.StatusConflict, "email already exists")
		}
	}

	user.Username = username
	user.Email = email

	if err := u.userRepo.Update(ctx, user); err != nil {
		return model.User{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return *user, nil
}

// DeleteUser は管理者のみ。
func (u *UserUsecase) DeleteUser(ctx context.Context, requesterRole model.Role, targetID int64) error {
	if targetID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	if requesterRole != model.RoleAdmin {
		return NewHTTPError(http.StatusForbidden, "forbidden")
	}

	err := u.userRepo.Delete(ctx, targetID)
	if errors.Is(err, repo.ErrUserNotFound) {
		return NewHTTPError(http.StatusNotFound, "user not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return nil
}
