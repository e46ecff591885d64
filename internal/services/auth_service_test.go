// internal/services/auth_service_test.go
package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/floramart/floramart-backend/internal/models"
)

type AuthServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *AuthService
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.service = NewAuthService(suite.db, newTestConfig())
}

func (suite *AuthServiceTestSuite) registerRequest() *RegisterRequest {
	userSeq++
	return &RegisterRequest{
		Username: fmt.Sprintf("florist%d", userSeq),
		Email:    fmt.Sprintf("florist%d@example.com", userSeq),
		Password: "Sup3rSecret!",
		FullName: "Tran Thi Hoa",
		Role:     models.UserRoleSeller,
	}
}

func (suite *AuthServiceTestSuite) TestRegisterIssuesTokens() {
	resp, err := suite.service.Register(suite.registerRequest())
	suite.Require().NoError(err)
	suite.NotEmpty(resp.AccessToken)
	suite.NotEmpty(resp.RefreshToken)
	suite.Equal("Bearer", resp.TokenType)
	suite.Equal(models.UserRoleSeller, resp.User.Role)
}

func (suite *AuthServiceTestSuite) TestRegisterDuplicateEmailRejected() {
	req := suite.registerRequest()
	_, err := suite.service.Register(req)
	suite.Require().NoError(err)

	dup := suite.registerRequest()
	dup.Email = req.Email
	_, err = suite.service.Register(dup)
	suite.ErrorIs(err, ErrConflict)
}

func (suite *AuthServiceTestSuite) TestRegisterAdminRoleRejected() {
	req := suite.registerRequest()
	req.Role = models.UserRoleAdmin
	_, err := suite.service.Register(req)
	suite.Error(err)
}

func (suite *AuthServiceTestSuite) TestRegisterWeakPasswordRejected() {
	req := suite.registerRequest()
	req.Password = "short"
	_, err := suite.service.Register(req)
	suite.Error(err)
	suite.Contains(err.Error(), "validation failed")
}

func (suite *AuthServiceTestSuite) TestLogin() {
	req := suite.registerRequest()
	_, err := suite.service.Register(req)
	suite.Require().NoError(err)

	resp, err := suite.service.Login(&LoginRequest{Email: req.Email, Password: req.Password})
	suite.Require().NoError(err)
	suite.NotEmpty(resp.AccessToken)
	suite.NotNil(resp.User.LastLoginAt)

	_, err = suite.service.Login(&LoginRequest{Email: req.Email, Password: "WrongPass1!"})
	suite.Error(err)
}

func (suite *AuthServiceTestSuite) TestLoginSuspendedRejected() {
	req := suite.registerRequest()
	resp, err := suite.service.Register(req)
	suite.Require().NoError(err)

	suite.db.Model(&models.User{}).Where("id = ?", resp.User.ID).
		Update("status", models.UserStatusSuspended)

	_, err = suite.service.Login(&LoginRequest{Email: req.Email, Password: req.Password})
	suite.Error(err)
}

func (suite *AuthServiceTestSuite) TestRefreshToken() {
	resp, err := suite.service.Register(suite.registerRequest())
	suite.Require().NoError(err)

	refreshed, err := suite.service.RefreshToken(resp.RefreshToken)
	suite.Require().NoError(err)
	suite.NotEmpty(refreshed.AccessToken)
	suite.Equal(resp.User.ID, refreshed.User.ID)

	_, err = suite.service.RefreshToken("not-a-token")
	suite.Error(err)

	// An access token is not a refresh token.
	_, err = suite.service.RefreshToken(resp.AccessToken)
	suite.Error(err)
}

func (suite *AuthServiceTestSuite) TestUpdateProfile() {
	resp, err := suite.service.Register(suite.registerRequest())
	suite.Require().NoError(err)

	updated, err := suite.service.UpdateProfile(resp.User.ID, &UpdateProfileRequest{
		FullName:  "Tran Thi Hong",
		AvatarURL: "/uploads/avatars/hong.jpg",
	})
	suite.Require().NoError(err)
	suite.Equal("Tran Thi Hong", updated.FullName)

	var reloaded models.User
	suite.db.First(&reloaded, resp.User.ID)
	suite.Equal("/uploads/avatars/hong.jpg", reloaded.AvatarURL)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
