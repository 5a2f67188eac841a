package service

import (
	"errors"

	"lilium-backend/internal/apperr"
	"lilium-backend/internal/model"
	"lilium-backend/internal/repository"
	"lilium-backend/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateUserRequest struct {
	Email       string         `json:"email" validate:"required,email"`
	Password    string         `json:"password" validate:"required,min=8"`
	FullName    string         `json:"full_name" validate:"required"`
	PhoneNumber string         `json:"phone_number"`
	Role        string         `json:"role" validate:"required"`
	Zones       model.ZoneList `json:"zones"`
	CompanyID   *uuid.UUID     `json:"company_id"`
}

type UpdateUserRequest struct {
	FullName    *string         `json:"full_name"`
	PhoneNumber *string         `json:"phone_number"`
	Role        *string         `json:"role"`
	Zones       *model.ZoneList `json:"zones"`
	CompanyID   *uuid.UUID      `json:"company_id"`
	IsActive    *bool           `json:"is_active"`
}

type UserService interface {
	CreateUser(req *CreateUserRequest, creatorID string) (*model.UserResponse, error)
	UpdateUser(id uuid.UUID, req *UpdateUserRequest, updaterID string) (*model.UserResponse, error)
	GetUser(id uuid.UUID) (*model.UserResponse, error)
	GetAllUsers() ([]model.UserResponse, error)
	DeleteUser(id uuid.UUID, deleterID string) error
}

type userService struct {
	userRepo    repository.UserRepository
	companyRepo repository.CompanyRepository
}

func NewUserService(userRepo repository.UserRepository, companyRepo repository.CompanyRepository) UserService {
	return &userService{userRepo: userRepo, companyRepo: companyRepo}
}

func (s *userService) CreateUser(req *CreateUserRequest, creatorID string) (*model.UserResponse, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return nil, apperr.InvalidStatef("user", "validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
	}
	if !model.ValidRole(req.Role) {
		return nil, apperr.InvalidStatef("user", "unknown role %q", req.Role)
	}

	// Vendor-side roles must be attached to a company.
	if req.Role == model.RoleVendor || req.Role == model.RoleCompanyManager {
		if req.CompanyID == nil {
			return nil, apperr.InvalidStatef("user", "role %s requires a company", req.Role)
		}
		if _, err := s.companyRepo.FindByID(*req.CompanyID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFoundf("company", "company %s not found", *req.CompanyID)
			}
			return nil, apperr.Wrap("company", err)
		}
	}

	if existing, err := s.userRepo.FindByEmail(req.Email); err == nil && existing.ID != uuid.Nil {
		return nil, apperr.Conflictf("user", "email already registered")
	}

	user := &model.User{
		Email:       req.Email,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Role:        req.Role,
		Zones:       req.Zones,
		CompanyID:   req.CompanyID,
		IsActive:    true,
	}
	user.CreatedBy = creatorID
	user.UpdatedBy = creatorID

	if err := user.SetPassword(req.Password); err != nil {
		return nil, apperr.Wrap("user", err)
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, apperr.Wrap("user", err)
	}

	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) UpdateUser(id uuid.UUID, req *UpdateUserRequest, updaterID string) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("user", "user %s not found", id)
		}
		return nil, apperr.Wrap("user", err)
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = *req.PhoneNumber
	}
	if req.Role != nil {
		if !model.ValidRole(*req.Role) {
			return nil, apperr.InvalidStatef("user", "unknown role %q", *req.Role)
		}
		user.Role = *req.Role
	}
	if req.Zones != nil {
		user.Zones = *req.Zones
	}
	if req.CompanyID != nil {
		user.CompanyID = req.CompanyID
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.UpdatedBy = updaterID

	if err := s.userRepo.Update(user); err != nil {
		return nil, apperr.Wrap("user", err)
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) GetUser(id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("user", "user %s not found", id)
		}
		return nil, apperr.Wrap("user", err)
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) GetAllUsers() ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll()
	if err != nil {
		return nil, apperr.Wrap("user", err)
	}
	responses := make([]model.UserResponse, len(users))
	for i := range users {
		responses[i] = users[i].ToResponse()
	}
	return responses, nil
}

func (s *userService) DeleteUser(id uuid.UUID, deleterID string) error {
	if _, err := s.userRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("user", "user %s not found", id)
		}
		return apperr.Wrap("user", err)
	}
	return apperr.Wrap("user", s.userRepo.Delete(id, deleterID))
}
