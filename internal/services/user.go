package services

import (
	"strings"

	"github.com/konstanta-tech/tracker/internal/models"
	"github.com/konstanta-tech/tracker/internal/permission"
	"github.com/konstanta-tech/tracker/internal/utils"
	"github.com/konstanta-tech/tracker/pkg/response"
	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

type UpdateUserRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=100"`
	Email    *string `json:"email" binding:"omitempty,max=255"`
	Role     *string `json:"role" binding:"omitempty,role"`
	Password *string `json:"password" binding:"omitempty,min=6"`
}

// List returns every user ordered by id.
func (s *UserService) List() ([]models.User, error) {
	users := []models.User{}
	if err := s.db.Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *UserService) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, "user not found")
	}
	return &user, nil
}

// Update merges the supplied fields into the user. Users may edit themselves;
// administrators may edit anyone and are the only ones who may change roles.
func (s *UserService) Update(actor Actor, id uint, req *UpdateUserRequest) (*models.User, error) {
	if actor.ID != id && !actor.IsAdmin() {
		return nil, response.NewForbidden("you can only edit your own profile")
	}

	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, "user not found")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, response.NewBadRequest("name cannot be empty")
		}
		user.Name = name
	}
	if req.Email != nil {
		if err := utils.ValidateEmail(*req.Email); err != nil {
			return nil, response.NewBadRequest("invalid email address")
		}
		email := utils.NormalizeEmail(*req.Email)
		taken, err := emailTaken(s.db, email, user.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, response.NewBadRequest("user with this email already exists")
		}
		user.Email = email
	}
	if req.Role != nil && *req.Role != user.Role {
		if !actor.IsAdmin() {
			return nil, response.NewForbidden("only administrators can change roles")
		}
		if !permission.IsValidRole(*req.Role) {
			return nil, response.NewBadRequest("invalid role")
		}
		user.Role = *req.Role
	}
	if req.Password != nil {
		if err := utils.ValidatePassword(*req.Password); err != nil {
			return nil, response.NewBadRequest(err.Error())
		}
		hashed, err := utils.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}

	if err := s.db.Save(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete removes a user. Their tasks become unassigned, their team
// memberships and authored comments are removed.
func (s *UserService) Delete(actor Actor, id uint) error {
	if !actor.IsAdmin() {
		return response.NewForbidden("only administrators can delete users")
	}
	if actor.ID == id {
		return response.NewBadRequest("you cannot delete your own account")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			return notFoundOr(err, "user not found")
		}

		if err := tx.Model(&models.Task{}).
			Where("assigned_to = ?", id).
			Update("assigned_to", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}

		var commentIDs []uint
		if err := tx.Model(&models.Comment{}).Where("user_id = ?", id).Pluck("id", &commentIDs).Error; err != nil {
			return err
		}
		if err := deleteComments(tx, commentIDs); err != nil {
			return err
		}

		return tx.Delete(&user).Error
	})
}
