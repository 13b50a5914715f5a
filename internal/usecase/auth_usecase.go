package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go-clinic-scheduling/internal/converter"
	"go-clinic-scheduling/internal/delivery/dto"
	"go-clinic-scheduling/internal/domain/entity"
	"go-clinic-scheduling/internal/domain/repository"
	"go-clinic-scheduling/internal/service"
	"go-clinic-scheduling/pkg/jwt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrDuplicateUser    = errors.New("an account with this contact already exists, please log in instead")
	ErrAuthFailed       = errors.New("invalid credentials")
	ErrInvalidToken     = errors.New("invalid or expired token")
	ErrTokenRevoked     = errors.New("token has been revoked")
	ErrUserNotFound     = errors.New("user not found")
	ErrRoleNotFound     = errors.New("role not found")
	ErrSTRAlreadyExists = errors.New("STR number already exists")
	ErrInvalidFee       = errors.New("consultation fee must not be negative")
)

type AuthUsecase interface {
	IdentityProvider
	RegisterPatient(ctx context.Context, req *dto.RegisterPatientRequest) (*dto.UserResponse, error)
	RegisterDoctor(ctx context.Context, req *dto.RegisterDoctorRequest) (*dto.UserResponse, error)
	RegisterAdmin(ctx context.Context, req *dto.RegisterAdminRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, userID uuid.UUID, accessTokenID string, refreshToken string) error
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
}

type authUsecase struct {
	tx                 repository.Transactor
	log                *logrus.Logger
	userRepo           repository.UserRepository
	roleRepo           repository.RoleRepository
	doctorProfileRepo  repository.DoctorProfileRepository
	patientProfileRepo repository.PatientProfileRepository
	appointmentRepo    repository.AppointmentRepository
	auditService       service.AuditService
	jwtService         *jwt.JWTService
	tokenStore         *service.TokenStore
}

func NewAuthUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	patientProfileRepo repository.PatientProfileRepository,
	appointmentRepo repository.AppointmentRepository,
	auditService service.AuditService,
	jwtService *jwt.JWTService,
	tokenStore *service.TokenStore,
) AuthUsecase {
	return &authUsecase{
		tx:                 tx,
		log:                log,
		userRepo:           userRepo,
		roleRepo:           roleRepo,
		doctorProfileRepo:  doctorProfileRepo,
		patientProfileRepo: patientProfileRepo,
		appointmentRepo:    appointmentRepo,
		auditService:       auditService,
		jwtService:         jwtService,
		tokenStore:         tokenStore,
	}
}

func (u *authUsecase) RegisterPatient(ctx context.Context, req *dto.RegisterPatientRequest) (*dto.UserResponse, error) {
	userID, err := u.CreatePatientIdentity(ctx, req)
	if err != nil {
		return nil, err
	}
	return u.GetCurrentUser(ctx, userID)
}

// CreatePatientIdentity registers a patient. An inactive patient with no
// appointments (left behind by a failed booking) is reactivated with the
// new details instead of being reported as a duplicate.
func (u *authUsecase) CreatePatientIdentity(ctx context.Context, info *dto.RegistrationInfo) (uuid.UUID, error) {
	var dob *time.Time
	if info.DateOfBirth != "" {
		parsed, err := time.Parse(dateLayout, info.DateOfBirth)
		if err != nil {
			return uuid.Nil, ErrInvalidDate
		}
		dob = &parsed
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(info.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return uuid.Nil, err
	}

	var userID uuid.UUID
	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		existing, err := u.findByAnyContact(ctx, tx, info.Email, info.PhoneNumber)
		if err != nil {
			return err
		}
		if existing != nil {
			reusable, err := u.isReusable(ctx, tx, existing)
			if err != nil {
				return err
			}
			if !reusable {
				return ErrDuplicateUser
			}
			existing.FullName = info.FullName
			existing.Password = string(hashedPassword)
			existing.Email = optional(info.Email)
			existing.PhoneNumber = optional(info.PhoneNumber)
			active := true
			existing.IsActive = &active
			if err := u.userRepo.Update(ctx, tx, existing); err != nil {
				if isDuplicateKeyError(err, "users") {
					return ErrDuplicateUser
				}
				u.log.Warnf("Failed to reactivate user %s: %+v", existing.ID, err)
				return err
			}
			userID = existing.ID
			return u.auditService.LogUpdate(ctx, tx, &userID, entity.AuditActionUserRegister,
				"user", userID.String(), map[string]interface{}{"is_active": false}, map[string]interface{}{"is_active": true})
		}

		active := true
		user := &entity.User{
			Email:       optional(info.Email),
			PhoneNumber: optional(info.PhoneNumber),
			Password:    string(hashedPassword),
			FullName:    info.FullName,
			RoleID:      entity.RoleIDPatient,
			IsActive:    &active,
		}
		if err := u.userRepo.Create(ctx, tx, user); err != nil {
			if isDuplicateKeyError(err, "users") {
				return ErrDuplicateUser
			}
			if isForeignKeyError(err, "role") {
				return ErrRoleNotFound
			}
			u.log.Warnf("Failed to create user: %+v", err)
			return err
		}

		patientProfile := &entity.PatientProfile{
			UserID:      user.ID,
			DateOfBirth: dob,
			Gender:      info.Gender,
			Address:     info.Address,
		}
		if err := u.patientProfileRepo.Create(ctx, tx, patientProfile); err != nil {
			u.log.Warnf("Failed to create patient profile: %+v", err)
			return err
		}

		userID = user.ID
		return u.auditService.LogCreate(ctx, tx, &userID, entity.AuditActionUserRegister,
			"user", userID.String(), map[string]interface{}{"role": entity.RolePatient, "contact": user.Contact()})
	})
	if err != nil {
		return uuid.Nil, err
	}

	return userID, nil
}

// VerifyCredentials only accepts active patients. The error never says
// whether the contact or the password was wrong.
func (u *authUsecase) VerifyCredentials(ctx context.Context, contact, password string) (uuid.UUID, error) {
	user, err := u.authenticate(ctx, contact, password)
	if err != nil {
		return uuid.Nil, err
	}
	if user.RoleID != entity.RoleIDPatient {
		return uuid.Nil, ErrAuthFailed
	}
	return user.ID, nil
}

func (u *authUsecase) DeactivateIdentity(ctx context.Context, userID uuid.UUID) error {
	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := u.userRepo.SetActive(ctx, tx, userID, false); err != nil {
			u.log.Warnf("Failed to deactivate user %s: %+v", userID, err)
			return err
		}
		return u.auditService.LogUpdate(ctx, tx, nil, entity.AuditActionUserDeactivate,
			"user", userID.String(), map[string]interface{}{"is_active": true}, map[string]interface{}{"is_active": false})
	})
	if err != nil {
		return err
	}

	if err := u.tokenStore.RevokeAll(ctx, userID); err != nil {
		u.log.Warnf("Failed to revoke tokens of user %s: %+v", userID, err)
	}
	return nil
}

func (u *authUsecase) RegisterDoctor(ctx context.Context, req *dto.RegisterDoctorRequest) (*dto.UserResponse, error) {
	fee := decimal.Zero
	if req.ConsultationFee != nil {
		if req.ConsultationFee.IsNegative() {
			return nil, ErrInvalidFee
		}
		fee = *req.ConsultationFee
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	var userID uuid.UUID
	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		existing, err := u.findByAnyContact(ctx, tx, req.Email, req.PhoneNumber)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrDuplicateUser
		}

		active := true
		user := &entity.User{
			Email:       optional(req.Email),
			PhoneNumber: optional(req.PhoneNumber),
			Password:    string(hashedPassword),
			FullName:    req.FullName,
			RoleID:      entity.RoleIDDoctor,
			IsActive:    &active,
		}
		if err := u.userRepo.Create(ctx, tx, user); err != nil {
			if isDuplicateKeyError(err, "users") {
				return ErrDuplicateUser
			}
			if isForeignKeyError(err, "role") {
				return ErrRoleNotFound
			}
			u.log.Warnf("Failed to create user: %+v", err)
			return err
		}

		doctorProfile := &entity.DoctorProfile{
			UserID:          user.ID,
			STRNumber:       req.STRNumber,
			Specialization:  req.Specialization,
			Biography:       req.Biography,
			ConsultationFee: fee,
		}
		if err := u.doctorProfileRepo.Create(ctx, tx, doctorProfile); err != nil {
			if isDuplicateKeyError(err, "str_number") {
				return ErrSTRAlreadyExists
			}
			u.log.Warnf("Failed to create doctor profile: %+v", err)
			return err
		}

		userID = user.ID
		return u.auditService.LogCreate(ctx, tx, actorFromContext(ctx), entity.AuditActionUserRegister,
			"user", userID.String(), map[string]interface{}{"role": entity.RoleDoctor, "contact": user.Contact()})
	})
	if err != nil {
		return nil, err
	}

	return u.GetCurrentUser(ctx, userID)
}

// RegisterAdmin is only reachable from the CLI; no HTTP route creates admins.
func (u *authUsecase) RegisterAdmin(ctx context.Context, req *dto.RegisterAdminRequest) (*dto.UserResponse, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	var userID uuid.UUID
	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		role, err := u.roleRepo.FindByName(ctx, tx, entity.RoleAdmin)
		if err != nil {
			u.log.Warnf("Failed to find admin role: %+v", err)
			return err
		}
		if role == nil {
			return ErrRoleNotFound
		}

		existing, err := u.findByAnyContact(ctx, tx, req.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrDuplicateUser
		}

		active := true
		user := &entity.User{
			Email:    optional(req.Email),
			Password: string(hashedPassword),
			FullName: req.FullName,
			RoleID:   role.ID,
			IsActive: &active,
		}
		if err := u.userRepo.Create(ctx, tx, user); err != nil {
			if isDuplicateKeyError(err, "users") {
				return ErrDuplicateUser
			}
			u.log.Warnf("Failed to create user: %+v", err)
			return err
		}

		userID = user.ID
		return u.auditService.LogCreate(ctx, tx, nil, entity.AuditActionUserRegister,
			"user", userID.String(), map[string]interface{}{"role": entity.RoleAdmin, "contact": user.Contact()})
	})
	if err != nil {
		return nil, err
	}

	return u.GetCurrentUser(ctx, userID)
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := u.authenticate(ctx, req.Contact, req.Password)
	if err != nil {
		return nil, err
	}

	tokens, err := u.issueTokens(ctx, user.ID, user.Contact(), user.RoleID)
	if err != nil {
		return nil, err
	}

	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		return u.auditService.LogCreate(ctx, tx, &user.ID, entity.AuditActionUserLogin, "user", user.ID.String(), nil)
	})
	if err != nil {
		u.log.Warnf("Failed to record login of user %s: %+v", user.ID, err)
	}

	return tokens, nil
}

// Logout revokes the current access token and, when given, its refresh token.
func (u *authUsecase) Logout(ctx context.Context, userID uuid.UUID, accessTokenID string, refreshToken string) error {
	if err := u.tokenStore.Revoke(ctx, userID, accessTokenID, jwt.AccessToken); err != nil {
		u.log.Warnf("Failed to delete access token: %+v", err)
		return err
	}

	if refreshToken != "" {
		claims, err := u.jwtService.ValidateToken(refreshToken)
		if err == nil && claims.TokenType == jwt.RefreshToken && claims.UserID == userID {
			if err := u.tokenStore.Revoke(ctx, userID, claims.TokenID, jwt.RefreshToken); err != nil {
				u.log.Warnf("Failed to delete refresh token: %+v", err)
				return err
			}
		}
	}

	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		return u.auditService.LogCreate(ctx, tx, &userID, entity.AuditActionUserLogout, "user", userID.String(), nil)
	})
	if err != nil {
		u.log.Warnf("Failed to record logout of user %s: %+v", userID, err)
	}
	return nil
}

func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := u.jwtService.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != jwt.RefreshToken {
		return nil, ErrInvalidToken
	}

	exists, err := u.tokenStore.Exists(ctx, claims.UserID, claims.TokenID, jwt.RefreshToken)
	if err != nil {
		u.log.Warnf("Failed to check refresh token in Redis: %+v", err)
		return nil, err
	}
	if !exists {
		return nil, ErrTokenRevoked
	}

	// Rotate: the old refresh token is single use
	if err := u.tokenStore.Revoke(ctx, claims.UserID, claims.TokenID, jwt.RefreshToken); err != nil {
		u.log.Warnf("Failed to delete old refresh token: %+v", err)
		return nil, err
	}

	return u.issueTokens(ctx, claims.UserID, claims.Contact, claims.RoleID)
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := u.userRepo.FindByID(ctx, u.tx.Conn(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return converter.UserToResponse(user), nil
}

func (u *authUsecase) authenticate(ctx context.Context, contact, password string) (*entity.User, error) {
	user, err := u.userRepo.FindByContact(ctx, u.tx.Conn(ctx), strings.TrimSpace(contact), false)
	if err != nil {
		u.log.Warnf("Failed to find user by contact: %+v", err)
		return nil, err
	}
	if user == nil || !user.Active() {
		return nil, ErrAuthFailed
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrAuthFailed
	}
	return user, nil
}

func (u *authUsecase) issueTokens(ctx context.Context, userID uuid.UUID, contact string, roleID int) (*dto.TokenResponse, error) {
	accessToken, accessTokenID, err := u.jwtService.GenerateAccessToken(userID, contact, roleID)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, refreshTokenID, err := u.jwtService.GenerateRefreshToken(userID, contact, roleID)
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	if err := u.tokenStore.Store(ctx, userID, accessTokenID, jwt.AccessToken, u.jwtService.GetAccessExpiry()); err != nil {
		u.log.Warnf("Failed to store access token in Redis: %+v", err)
		return nil, err
	}
	if err := u.tokenStore.Store(ctx, userID, refreshTokenID, jwt.RefreshToken, u.jwtService.GetRefreshExpiry()); err != nil {
		u.log.Warnf("Failed to store refresh token in Redis: %+v", err)
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.jwtService.GetAccessExpiry().Seconds()),
	}, nil
}

// findByAnyContact returns the user owning either contact, if any. The row
// stays locked until tx ends so two registrations cannot both reactivate it.
func (u *authUsecase) findByAnyContact(ctx context.Context, tx *gorm.DB, contacts ...string) (*entity.User, error) {
	for _, contact := range contacts {
		if contact == "" {
			continue
		}
		user, err := u.userRepo.FindByContact(ctx, tx, contact, true)
		if err != nil {
			u.log.Warnf("Failed to find user by contact: %+v", err)
			return nil, err
		}
		if user != nil {
			return user, nil
		}
	}
	return nil, nil
}

// isReusable is true for a deactivated patient that never booked.
func (u *authUsecase) isReusable(ctx context.Context, tx *gorm.DB, user *entity.User) (bool, error) {
	if user.Active() || user.RoleID != entity.RoleIDPatient {
		return false, nil
	}
	count, err := u.appointmentRepo.CountByPatientID(ctx, tx, user.ID)
	if err != nil {
		u.log.Warnf("Failed to count appointments of user %s: %+v", user.ID, err)
		return false, err
	}
	return count == 0, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
