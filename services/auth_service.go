package services

import (
	"log"
	"strings"

	"matchday-bets/config"
	"matchday-bets/middleware"
	"matchday-bets/models"
	"matchday-bets/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuthService struct {
	DB       *gorm.DB
	Settings *config.Settings
}

func NewAuthService(db *gorm.DB, settings *config.Settings) *AuthService {
	return &AuthService{DB: db, Settings: settings}
}

type signupIn struct {
	Name      string `json:"name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

type loginIn struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type modifyUserIn struct {
	Password string `json:"password"`
}

func (s *AuthService) Signup(c *fiber.Ctx) error {
	var in signupIn
	if err := c.BodyParser(&in); err != nil {
		return utils.Fail(c, fiber.StatusUnprocessableEntity, "invalid request body")
	}

	var fieldErrors []utils.FieldError
	for field, value := range map[string]string{
		"name":       in.Name,
		"first_name": in.FirstName,
		"last_name":  in.LastName,
		"password":   in.Password,
	} {
		if value == "" {
			fieldErrors = append(fieldErrors, utils.FieldError{Field: field, Error: "field required"})
		}
	}
	if len(fieldErrors) > 0 {
		return utils.Fail(c, fiber.StatusUnprocessableEntity, fieldErrors)
	}

	if err := utils.ValidatePassword(in.Password); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, unsatisfiedPasswordMessage(err.Error()))
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		log.Printf("[AUTH] password hash failed: %v", err)
		return utils.Fail(c, fiber.StatusInternalServerError, "signup failed")
	}

	role := models.RoleUser
	if in.Name == models.AdminName {
		role = models.RoleAdmin
	}

	user := models.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
		Role:         role,
	}

	err = withTransientRetry(s.DB, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("name = ?", in.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return gorm.ErrDuplicatedKey
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return materialiseBets(tx, &user)
	})
	if err != nil {
		if err == gorm.ErrDuplicatedKey || isUniqueViolation(err) {
			return utils.Fail(c, fiber.StatusUnauthorized, nameAlreadyExistsMessage(in.Name))
		}
		log.Printf("[AUTH] signup failed for %s: %v", in.Name, err)
		return utils.Fail(c, fiber.StatusServiceUnavailable, serviceUnavailableMessage)
	}

	log.Printf("[AUTH] signed up successfully: %s", user.Name)

	return utils.OK(c, fiber.StatusCreated, UserOut{
		ID:       user.ID,
		Name:     user.Name,
		FullName: user.FullName(),
	})
}

// materialiseBets clones the full match-reference set for a new user: one
// match per reference, one bet of the reference's kind per match, and zeroed
// standings rows for every (group, team) pair. Runs in the signup
// transaction so a failed signup leaves nothing behind.
func materialiseBets(tx *gorm.DB, user *models.User) error {
	var refs []models.MatchReference
	if err := tx.Find(&refs).Error; err != nil {
		return err
	}

	matches := make([]models.Match, 0, len(refs))
	var scoreBets []models.ScoreBet
	var binaryBets []models.BinaryBet

	for _, ref := range refs {
		match := models.Match{
			ID:      uuid.NewString(),
			UserID:  user.ID,
			GroupID: ref.GroupID,
			Index:   ref.Index,
			Team1ID: ref.Team1ID,
			Team2ID: ref.Team2ID,
		}
		matches = append(matches, match)

		switch ref.BetKind {
		case models.BetKindScore:
			scoreBets = append(scoreBets, models.ScoreBet{
				ID:      uuid.NewString(),
				MatchID: match.ID,
				UserID:  user.ID,
			})
		case models.BetKindBinary:
			binaryBets = append(binaryBets, models.BinaryBet{
				ID:      uuid.NewString(),
				MatchID: match.ID,
				UserID:  user.ID,
			})
		}
	}

	if len(matches) > 0 {
		if err := tx.Create(&matches).Error; err != nil {
			return err
		}
	}
	if len(scoreBets) > 0 {
		if err := tx.Create(&scoreBets).Error; err != nil {
			return err
		}
	}
	if len(binaryBets) > 0 {
		if err := tx.Create(&binaryBets).Error; err != nil {
			return err
		}
	}

	positions := BuildGroupPositions(refs, user.ID)
	if len(positions) > 0 {
		if err := tx.Create(&positions).Error; err != nil {
			return err
		}
	}

	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}

func (s *AuthService) Login(c *fiber.Ctx) error {
	var in loginIn
	if err := c.BodyParser(&in); err != nil {
		return utils.Fail(c, fiber.StatusUnprocessableEntity, "invalid request body")
	}

	var user models.User
	err := s.DB.Where("name = ?", in.Name).First(&user).Error
	if err != nil {
		// Burn one hash verification so unknown names cost the same as
		// wrong passwords.
		utils.BurnPasswordCheck(in.Password)
		return utils.Fail(c, fiber.StatusUnauthorized, invalidCredentialsMessage)
	}

	if !utils.CheckPassword(user.PasswordHash, in.Password) {
		return utils.Fail(c, fiber.StatusUnauthorized, invalidCredentialsMessage)
	}

	log.Printf("[AUTH] logged in successfully: %s", user.Name)

	return utils.OK(c, fiber.StatusCreated, UserOut{
		ID:       user.ID,
		Name:     user.Name,
		FullName: user.FullName(),
	})
}

func (s *AuthService) CurrentUser(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	return utils.OK(c, fiber.StatusOK, userResult(user))
}

// ModifyUser lets the admin reset another user's password.
func (s *AuthService) ModifyUser(c *fiber.Ctx) error {
	userID := c.Params("user_id")

	var in modifyUserIn
	if err := c.BodyParser(&in); err != nil {
		return utils.Fail(c, fiber.StatusUnprocessableEntity, "invalid request body")
	}

	if err := utils.ValidatePassword(in.Password); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, unsatisfiedPasswordMessage(err.Error()))
	}

	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		return utils.Fail(c, fiber.StatusNotFound, userNotFoundMessage(userID))
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, "password update failed")
	}

	if err := s.DB.Model(&user).Update("password_hash", hash).Error; err != nil {
		return utils.Fail(c, fiber.StatusServiceUnavailable, serviceUnavailableMessage)
	}

	log.Printf("[AUTH] password modified for %s", user.Name)

	return utils.OK(c, fiber.StatusOK, userResult(&user))
}

// DeleteUser removes a user with everything they own. Admin only.
func (s *AuthService) DeleteUser(c *fiber.Ctx) error {
	userID := c.Params("user_id")

	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		return utils.Fail(c, fiber.StatusNotFound, userNotFoundMessage(userID))
	}

	err := withTransientRetry(s.DB, func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&models.ScoreBet{},
			&models.BinaryBet{},
			&models.Match{},
			&models.GroupPosition{},
		} {
			if err := tx.Where("user_id = ?", user.ID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		return utils.Fail(c, fiber.StatusServiceUnavailable, serviceUnavailableMessage)
	}

	return utils.OK(c, fiber.StatusOK, UserOut{ID: user.ID, Name: user.Name, FullName: user.FullName()})
}
