package services

import (
	"errors"
	"strings"

	"github.com/konstanta-tech/tracker/internal/config"
	"github.com/konstanta-tech/tracker/internal/models"
	"github.com/konstanta-tech/tracker/internal/permission"
	"github.com/konstanta-tech/tracker/internal/utils"
	"github.com/konstanta-tech/tracker/pkg/response"
	"gorm.io/gorm"
)

type AuthService struct {
	db        *gorm.DB
	jwtConfig *config.JWTConfig
}

func NewAuthService(db *gorm.DB, jwtCfg *config.JWTConfig) *AuthService {
	return &AuthService{db: db, jwtConfig: jwtCfg}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,max=255"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"omitempty,role"`
}

// AuthResponse is returned by login and registration.
type AuthResponse struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"accessToken"`
}

// Login checks the credentials and issues an access token.
func (s *AuthService) Login(req *LoginRequest) (*AuthResponse, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, response.NewBadRequest("email and password are required")
	}

	var user models.User
	if err := s.db.Where("email = ?", utils.NormalizeEmail(req.Email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewBadRequest("user not found")
		}
		return nil, err
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		return nil, response.NewBadRequest("invalid password")
	}

	return s.issue(&user)
}

// Register creates an account. Only an administrator caller may choose a role
// other than developer; anonymous sign-ups always get developer.
func (s *AuthService) Register(req *RegisterRequest, caller *Actor) (*AuthResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, response.NewBadRequest("name is required")
	}
	if err := utils.ValidateEmail(req.Email); err != nil {
		return nil, response.NewBadRequest("invalid email address")
	}

	role := permission.Developer
	if req.Role != "" && req.Role != role {
		if caller == nil || !caller.IsAdmin() {
			return nil, response.NewForbidden("only administrators can assign roles")
		}
		if !permission.IsValidRole(req.Role) {
			return nil, response.NewBadRequest("invalid role")
		}
		role = req.Role
	}

	email := utils.NormalizeEmail(req.Email)
	if taken, err := emailTaken(s.db, email, 0); err != nil {
		return nil, err
	} else if taken {
		return nil, response.NewBadRequest("user with this email already exists")
	}

	if err := utils.ValidatePassword(req.Password); err != nil {
		return nil, response.NewBadRequest(err.Error())
	}
	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:     name,
		Email:    email,
		Role:     role,
		Password: hashed,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}

	return s.issue(&user)
}

// Authenticate resolves token claims to the live user record. A deleted user
// or a role that changed since the token was issued is rejected.
func (s *AuthService) Authenticate(claims *utils.Claims) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewForbidden("user no longer exists")
		}
		return nil, err
	}
	if user.Role != claims.Role {
		return nil, response.NewForbidden("role has changed, please sign in again")
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (s *AuthService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, "user not found")
	}
	return &user, nil
}

// CreateAdminIfNotExists creates the bootstrap administrator when no admin exists.
func (s *AuthService) CreateAdminIfNotExists(email, password string) error {
	var count int64
	if err := s.db.Model(&models.User{}).Where("role = ?", permission.Admin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	admin := models.User{
		Name:     "Administrator",
		Email:    utils.NormalizeEmail(email),
		Role:     permission.Admin,
		Password: hashedPassword,
	}
	return s.db.Create(&admin).Error
}

func (s *AuthService) issue(user *models.User) (*AuthResponse, error) {
	token, err := utils.GenerateToken(user.ID, user.Role, s.jwtConfig.ExpireHour)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{User: user, AccessToken: token}, nil
}

func emailTaken(db *gorm.DB, email string, exceptID uint) (bool, error) {
	var count int64
	q := db.Model(&models.User{}).Where("email = ?", email)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
