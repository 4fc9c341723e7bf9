package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/cradoe/kycflow/internal/config"
	"github.com/cradoe/kycflow/internal/errHandler"
	"github.com/cradoe/kycflow/internal/helper"
	"github.com/cradoe/kycflow/internal/models"
	"github.com/cradoe/kycflow/internal/repository"
	"github.com/cradoe/kycflow/internal/request"
	"github.com/cradoe/kycflow/internal/response"
	"github.com/cradoe/kycflow/internal/token"
	"github.com/cradoe/kycflow/internal/validator"

	"github.com/cradoe/gopass"
)

const (
	UserActivityLogRegistrationDescription  = "Created account"
	UserActivityLogLoginDescription         = "Logged in"
	UserActivityLogFailedLoginDescription   = "Failed login attempt"
	UserActivityLogLockedAccountDescription = "Account locked"
)

type AuthHandler struct {
	UserRepo     repository.UserRepository
	ActivityRepo repository.ActivityRepository
	Helper       *helper.HelperRepository
	Gate         *token.Gate
	Config       *config.Config
	ErrHandler   *errHandler.ErrorHandler
}

func NewAuthHandler(handler *AuthHandler) *AuthHandler {
	return &AuthHandler{
		UserRepo:     handler.UserRepo,
		ActivityRepo: handler.ActivityRepo,
		Helper:       handler.Helper,
		Gate:         handler.Gate,
		Config:       handler.Config,
		ErrHandler:   handler.ErrHandler,
	}
}

func (h *AuthHandler) HandleAuthRegister(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username  string              `json:"username"`
		Email     string              `json:"email"`
		Password  string              `json:"password"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	// password strength is checked before anything else; weak credentials
	// on a verification service are not acceptable
	_, errs := gopass.Validate(input.Password)
	if errs != nil {
		h.ErrHandler.FailedValidation(w, r, errs)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Username), "Username is required")
	input.Validator.Check(validator.Matches(input.Username, validator.RgxUsername), "Username must be 3-30 characters of letters, digits or underscores")

	input.Validator.Check(validator.NotBlank(input.Email), "Email is required")
	input.Validator.Check(validator.IsEmail(input.Email), "Must be a valid email address")

	usernameTaken, err := h.UserRepo.CheckIfUsernameExist(input.Username)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	input.Validator.Check(!usernameTaken, "Username is already in use")

	emailTaken, err := h.UserRepo.CheckIfEmailExist(input.Email)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	input.Validator.Check(!emailTaken, "Email is already in use")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	hashedPassword, err := gopass.Hash(input.Password)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	createdUser := &models.User{
		Username:       input.Username,
		Email:          input.Email,
		Role:           token.RoleMember,
		HashedPassword: hashedPassword,
	}

	userID, err := h.UserRepo.Insert(createdUser)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	h.Helper.BackgroundTask(r, func() error {
		_, err := h.ActivityRepo.Insert(&models.ActivityLog{
			UserID:      nullableUserID(userID),
			Entity:      repository.ActivityLogUserEntity,
			EntityId:    userID,
			Description: UserActivityLogRegistrationDescription,
		})
		if err != nil {
			log.Printf("Error logging user registration action: %v", err)
			return err
		}

		return nil
	})

	data := map[string]string{
		"id":       userID,
		"username": createdUser.Username,
		"email":    createdUser.Email,
		"role":     createdUser.Role,
	}

	message := "Account created successfully"

	err = response.JSONCreatedResponse(w, data, message)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *AuthHandler) HandleAuthToken(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	user, found, err := h.UserRepo.GetByUsername(input.Username)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !found {
		message := "Incorrect username/password"
		response.JSONErrorResponse(w, nil, message, http.StatusUnauthorized, nil)
		return
	}

	passwordMatches, err := gopass.ComparePasswordAndHash(input.Password, user.HashedPassword)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !passwordMatches {
		h.Helper.BackgroundTask(r, func() error {
			_, err := h.ActivityRepo.Insert(&models.ActivityLog{
				UserID:      nullableUserID(user.ID),
				Entity:      repository.ActivityLogUserEntity,
				EntityId:    user.ID,
				Description: UserActivityLogFailedLoginDescription,
			})
			if err != nil {
				log.Printf("Error logging failed login action: %v", err)
				return err
			}

			return nil
		})

		// lock the account after 3 consecutive failed attempts
		count := h.ActivityRepo.CountConsecutiveFailedLoginAttempts(user.ID, UserActivityLogFailedLoginDescription)
		if count >= 2 {
			h.Helper.BackgroundTask(r, func() error {
				if err := h.UserRepo.Lock(user.ID); err != nil {
					log.Printf("Error locking account after failed logins: %v", err)
					return err
				}

				return nil
			})

			h.Helper.BackgroundTask(r, func() error {
				_, err := h.ActivityRepo.Insert(&models.ActivityLog{
					UserID:      nullableUserID(user.ID),
					Entity:      repository.ActivityLogUserEntity,
					EntityId:    user.ID,
					Description: UserActivityLogLockedAccountDescription,
				})
				if err != nil {
					log.Printf("Error logging account lock action: %v", err)
					return err
				}

				return nil
			})

			message := "Account has been locked. Please contact support"
			response.JSONErrorResponse(w, nil, message, http.StatusForbidden, nil)
			return
		}

		message := "Incorrect username/password"
		response.JSONErrorResponse(w, nil, message, http.StatusUnauthorized, nil)
		return
	}

	if user.Status != repository.UserAccountActiveStatus {
		message := "Account has been locked. Please contact support"
		response.JSONErrorResponse(w, nil, message, http.StatusForbidden, nil)
		return
	}

	h.Helper.BackgroundTask(r, func() error {
		_, err := h.ActivityRepo.Insert(&models.ActivityLog{
			UserID:      nullableUserID(user.ID),
			Entity:      repository.ActivityLogUserEntity,
			EntityId:    user.ID,
			Description: UserActivityLogLoginDescription,
		})
		if err != nil {
			log.Printf("Error logging successful login action: %v", err)
			return err
		}

		return nil
	})

	authToken, expiry, err := h.Gate.Issue(user.ID, user.Role)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := map[string]string{
		"auth_token":   authToken,
		"token_expiry": expiry.Format(time.RFC3339),
	}
	message := "Login successful"
	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
