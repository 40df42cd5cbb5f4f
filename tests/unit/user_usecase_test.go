package unit

import (
	"app/internal/domain/model"
	"app/internal/usecase"
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestUserUsecase_GetUser_NotFound(t *testing.T) {
	repoMock := new(UserRepoMock)
	uc := usecase.NewUserUsecase(repoMock)

	repoMock.On("FindByID", mock.Anything, int64(99)).Return(nil, nil)

	_, err := uc.GetUser(context.Background(), 99)
	assertHTTPStatus(t, err, http.StatusNotFound)
}

func TestUserUsecase_GetUser_Success(t *testing.T) {
	repoMock := new(UserRepoMock)
	uc := usecase.NewUserUsecase(repoMock)

	repoMock.On("FindByID", mock.Anything, int64(1)).
		Return(&model.User{ID: 1, Username: "alice", Email: "a@example.com"}, nil)

	u, err := uc.GetUser(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
}

// 他人の更新は管理者のみ
func TestUserUsecase_UpdateUser_ForbiddenForOtherUser(t *testing.T) {
	repoMock := new(UserRepoMock)
	uc := usecase.NewUserUsecase(repoMock)

	_, err := uc.UpdateUser(context.Background(), 1, model.RoleUser, 2, usecase.UpdateUserInput{
		Username: "alice", Email: "a@example.com",
	})
	assertHTTPStatus(t, err, http.StatusForbidden)

	repoMock.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUserUsecase_UpdateUser_AdminCanUpdateOthers(t *testing.T) {
	repoMock := new(UserRepoMock)
	uc := usecase.NewUserUsecase(repoMock)

	repoMock.On("FindByID", mock.Anything, int64(2)).
		Return(&model.User{ID: 2, Username: "bob", Email: "b@example.com"}, nil)
	repoMock.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.ID == 2 && u.Username == "bobby"
	})).Return(nil)

	out, err := uc.UpdateUser(context.Background(), 1, model.RoleAdmin, 2, usecase.UpdateUserInput{
		Username: "bobby", Email: "b@example.com",
	})
	assert.NoError(t, err)
	assert.Equal(t, "bobby", out.Username)

	repoMock.AssertExpectations(t)
}

func TestUserUsecase_UpdateUser_EmailConflict(t *testing.T) {
	repoMock := new(UserRepoMock)
	uc := usecase.NewUserUsecase(repoMock)

	repoMock.On("FindByID", mock.Anything, int64(1)).
		Return(&model.User{ID: 1, Username: "alice", Email: "a@example.com"}, nil)
	repoMock.On("FindByEmail", mock.Anything, "taken@example.com").
		Return(&model.User{ID: 2, Email: "taken@example.com"}, nil)

	_, err := uc.UpdateUser(context.Background(), 1, model.RoleUser, 1, usecase.UpdateUserInput{
		Username: "alice", Email: "taken@example.com",
	})
	assertHTTPStatus(t, err, http.StatusConflict)

	repoMock.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

// emailが変わらない場合は重複チェックをしない
func TestUserUsecase_UpdateUser_SameEmailSkipsDupCheck(t *testing.T) {
	repoMock := new(UserRepoMock)
	uc := usecase.NewUserUsecase(repoMock)

	repoMock.On("FindByID", mock.Anything, int64(1)).
		Return(&model.User{ID: 1, Username: "alice", Email: "a@example.com"}, nil)
	repoMock.On("Update", mock.Anything, mock.Anything).Return(nil)

	_, err := uc.UpdateUser(context.Background(), 1, model.RoleUser, 1, usecase.UpdateUserInput{
		Username: "alice2", Email: "a@example.com",
	})
	assert.NoError(t, err)

	repoMock.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
}

func TestUserUsecase_DeleteUser_AdminOnly(t *testing.T) {
	repoMock := new(UserRepoMock)
	uc := usecase.NewUserUsecase(repoMock)

	err := uc.DeleteUser(context.Background(), model.RoleUser, 2)
	assertHTTPStatus(t, err, http.StatusForbidden)

	repoMock.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestUserUsecase_DeleteUser_Success(t *testing.T) {
	repoMock := new(UserRepoMock)
	uc := usecase.NewUserUsecase(repoMock)

	repoMock.On("Delete", mock.Anything, int64(2)).Return(nil)

	err := uc.DeleteUser(context.Background(), model.RoleAdmin, 2)
	assert.NoError(t, err)
	repoMock.AssertExpectations(t)
}
