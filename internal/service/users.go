package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/planner-back/internal/config"
	"github.com/Rogue-Bear-Innovations/planner-back/internal/db"
	"github.com/Rogue-Bear-Innovations/planner-back/internal/models"
	"github.com/Rogue-Bear-Innovations/planner-back/internal/token"
)

// Mailer delivers account links to users.
type Mailer interface {
	SendActivation(to, link string) error
	SendPasswordReset(to, link string) error
}

type Users struct {
	db         *gorm.DB
	logger     *zap.SugaredLogger
	mailer     Mailer
	links      *token.Links
	bcryptCost int
	clientURL  string
}

func NewUsers(conn *gorm.DB, l *zap.SugaredLogger, cfg *config.Config, mailer Mailer, links *token.Links) *Users {
	return &Users{
		db:         conn,
		logger:     l,
		mailer:     mailer,
		links:      links,
		bcryptCost: cfg.BcryptCost,
		clientURL:  strings.TrimRight(cfg.ClientURL, "/"),
	}
}

// Signup creates an inactive account and mails its activation link.
func (s *Users) Signup(ctx context.Context, req models.SignupReq) (*db.User, error) {
	if req.Password == "" {
		return nil, badRequest("Need Password")
	}
	verr := &ValidationError{}
	if err := Validate(req); err != nil && !verr.merge(err) {
		return nil, err
	}
	birthday, err := ParseDate("birthday", req.Birthday)
	if err != nil && !verr.merge(err) {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&db.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return nil, errors.Wrap(err, "count users")
	}
	if count > 0 {
		return nil, fieldError("email", "user with this email already exists.")
	}

	hash, err := s.bcryptGen(req.Password)
	if err != nil {
		return nil, errors.Wrap(err, "bcryptGen")
	}
	user := db.User{
		Email:        req.Email,
		Password:     hash,
		Nickname:     req.Nickname,
		Gender:       req.Gender,
		Birthday:     birthday,
		Photo:        req.Photo,
		GoogleCalURL: req.GoogleCalURL,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, errors.Wrap(err, "create user")
	}
	s.logger.Infow("user signed up", "user_id", user.ID)

	if err := s.sendLink(&user, token.PurposeActivation); err != nil {
		s.logger.Errorw("activation mail failed", "user_id", user.ID, "error", err)
	}
	return &user, nil
}

// Login checks credentials of an active user and rotates the session token.
func (s *Users) Login(ctx context.Context, req models.LoginReq) (*db.User, error) {
	if req.Email == "" || req.Password == "" {
		return nil, badRequest("Missing data")
	}

	user := db.User{}
	res := s.db.WithContext(ctx).Where("email = ?", req.Email).First(&user)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(res.Error, "find user")
	}
	if err := s.bcryptCheck(user.Password, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	t := uuid.New().String()
	if err := s.db.WithContext(ctx).Model(&user).Update("token", t).Error; err != nil {
		return nil, errors.Wrap(err, "update token")
	}
	user.Token = &t
	return &user, nil
}

func (s *Users) Logout(ctx context.Context, user *db.User) error {
	if err := s.db.WithContext(ctx).Model(user).Update("token", nil).Error; err != nil {
		return errors.Wrap(err, "clear token")
	}
	user.Token = nil
	return nil
}

// Authenticate resolves a session token to its active owner.
func (s *Users) Authenticate(ctx context.Context, sessionToken string) (*db.User, error) {
	if sessionToken == "" {
		return nil, ErrUnauthenticated
	}
	user := db.User{}
	res := s.db.WithContext(ctx).Where("token = ? AND is_active = ?", sessionToken, true).First(&user)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, errors.Wrap(res.Error, "find user by token")
	}
	return &user, nil
}

// CertifyEmail activates the account behind an activation link and
// provisions its default collections.
func (s *Users) CertifyEmail(ctx context.Context, uid64, linkToken string) (*db.User, error) {
	user, err := s.userFromUID(ctx, uid64)
	if err != nil {
		return nil, err
	}
	if user.IsActive {
		return nil, ErrInvalidLink
	}
	if err := s.links.Verify(token.PurposeActivation, user.ID, linkState(user), linkToken); err != nil {
		return nil, ErrInvalidLink
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).Update("is_active", true).Error; err != nil {
			return errors.Wrap(err, "activate user")
		}
		return provisionDefaults(tx, user.ID)
	})
	if err != nil {
		return nil, err
	}
	user.IsActive = true
	s.logger.Infow("user activated", "user_id", user.ID)
	return user, nil
}

func (s *Users) RequestPasswordReset(ctx context.Context, email string) (*db.User, error) {
	if email == "" {
		return nil, badRequest("Need email")
	}
	user := db.User{}
	res := s.db.WithContext(ctx).Where("email = ?", email).First(&user)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, notFound("Email not found")
		}
		return nil, errors.Wrap(res.Error, "find user")
	}
	if err := s.sendLink(&user, token.PurposePasswordReset); err != nil {
		return nil, err
	}
	return &user, nil
}

// ResetPassword sets a new password through a reset link. Rotating the hash
// invalidates the link and every open session.
func (s *Users) ResetPassword(ctx context.Context, req models.ResetPasswordReq) (*db.User, error) {
	if req.UID64 == "" || req.Token == "" || req.Password == "" {
		return nil, badRequest("Missing request data")
	}
	user, err := s.userFromUID(ctx, req.UID64)
	if err != nil {
		return nil, err
	}
	if err := s.links.Verify(token.PurposePasswordReset, user.ID, linkState(user), req.Token); err != nil {
		return nil, ErrInvalidLink
	}

	hash, err := s.bcryptGen(req.Password)
	if err != nil {
		return nil, errors.Wrap(err, "bcryptGen")
	}
	updates := map[string]interface{}{"password": hash, "token": nil}
	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, errors.Wrap(err, "update password")
	}
	s.logger.Infow("password reset", "user_id", user.ID)
	return user, nil
}

func (s *Users) UpdateProfile(ctx context.Context, user *db.User, req models.ProfileUpdateReq) (*db.User, error) {
	verr := &ValidationError{}
	if err := Validate(req); err != nil && !verr.merge(err) {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Birthday != nil {
		birthday, err := ParseDate("birthday", *req.Birthday)
		if err != nil && !verr.merge(err) {
			return nil, err
		}
		updates["birthday"] = birthday
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if req.Nickname != nil {
		updates["nickname"] = *req.Nickname
	}
	if req.Gender != nil {
		updates["gender"] = *req.Gender
	}
	if req.Photo != nil {
		updates["photo"] = *req.Photo
	}
	if req.GoogleCalURL != nil {
		updates["google_cal_url"] = *req.GoogleCalURL
	}
	if req.Password != nil {
		hash, err := s.bcryptGen(*req.Password)
		if err != nil {
			return nil, errors.Wrap(err, "bcryptGen")
		}
		updates["password"] = hash
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
			return nil, errors.Wrap(err, "update profile")
		}
	}

	updated := db.User{}
	if err := s.db.WithContext(ctx).First(&updated, user.ID).Error; err != nil {
		return nil, errors.Wrap(err, "reload user")
	}
	return &updated, nil
}

// DeleteProfile removes the user. Everything the user owns goes with it
// through the foreign keys.
func (s *Users) DeleteProfile(ctx context.Context, user *db.User) error {
	if err := s.db.WithContext(ctx).Delete(&db.User{}, user.ID).Error; err != nil {
		return errors.Wrap(err, "delete user")
	}
	s.logger.Infow("user deleted", "user_id", user.ID)
	return nil
}

func (s *Users) userFromUID(ctx context.Context, uid64 string) (*db.User, error) {
	id, err := token.DecodeUID(uid64)
	if err != nil {
		return nil, notFound("User not found")
	}
	user := db.User{}
	res := s.db.WithContext(ctx).First(&user, id)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, notFound("User not found")
		}
		return nil, errors.Wrap(res.Error, "find user")
	}
	return &user, nil
}

func (s *Users) sendLink(user *db.User, purpose token.Purpose) error {
	uid, t, err := s.links.Make(purpose, user.ID, linkState(user))
	if err != nil {
		return err
	}
	if purpose == token.PurposeActivation {
		return s.mailer.SendActivation(user.Email, s.clientURL+"/api/v1/users/certified/email/"+uid+"/"+t+"/")
	}
	return s.mailer.SendPasswordReset(user.Email, s.clientURL+"/password/reset/"+uid+"/"+t+"/")
}

// linkState is the per-user part of a link signing key.
func linkState(user *db.User) string {
	return user.Password + "|" + strconv.FormatBool(user.IsActive)
}

func (s *Users) bcryptGen(pass string) (string, error) {
	passwordHashB, err := bcrypt.GenerateFromPassword([]byte(pass), s.bcryptCost)
	if err != nil {
		return "", errors.Wrap(err, "generate password hash")
	}
	return string(passwordHashB), nil
}

func (s *Users) bcryptCheck(hash, pass string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pass))
}
