package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"classifieds-api/internal/core/auth"
	"classifieds-api/internal/core/events"
	"classifieds-api/internal/core/metrics"
	"classifieds-api/internal/domain"
	"classifieds-api/internal/validate"
	"classifieds-api/pkg/utils"
)

type RegisterInput struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmpassword" validate:"required,eqfield=Password"`
	FullName        string `json:"fullname" validate:"required,min=2"`
	Role            string `json:"role" validate:"omitempty,oneof=user admin"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session 登录结果
type Session struct {
	Token string
	User  domain.PublicUser
}

type UserService struct {
	users   domain.UserRepository
	jwt     *auth.JWTer
	revoker auth.Revoker
	events  events.Publisher
	log     *zap.Logger
}

// NewUserService revoker 可为 nil（未配置 Redis）
func NewUserService(users domain.UserRepository, j *auth.JWTer, revoker auth.Revoker, ev events.Publisher, l *zap.Logger) *UserService {
	if ev == nil {
		ev = events.Nop{}
	}
	return &UserService{users: users, jwt: j, revoker: revoker, events: ev, log: l}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*domain.PublicUser, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)
	if err := validate.Struct(&in); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = domain.RoleUser
	}

	existing, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.Conflict("User already exists with this email")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		ID:           utils.NewID(),
		Email:        in.Email,
		FullName:     in.FullName,
		PasswordHash: hash,
		Role:         in.Role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		// 并发注册：唯一索引兜底
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.Conflict("User already exists with this email")
		}
		return nil, err
	}

	metrics.UsersRegistered.Inc()
	pub := u.Public()
	events.Emit(ctx, s.events, s.log, events.UserRegistered, pub)
	return &pub, nil
}

func (s *UserService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validate.Struct(&in); err != nil {
		return nil, err
	}

	u, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	// 邮箱不存在与密码错误返回同一错误
	if u == nil || !utils.CheckPassword(in.Password, u.PasswordHash) {
		metrics.Logins.WithLabelValues("rejected").Inc()
		return nil, domain.Auth(domain.MsgInvalidCredentials)
	}

	tok, err := s.jwt.Issue(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, err
	}
	metrics.Logins.WithLabelValues("ok").Inc()
	return &Session{Token: tok, User: u.Public()}, nil
}

// Logout 吊销 token；token 缺失或无效时同样视为成功
func (s *UserService) Logout(ctx context.Context, token string) {
	if token == "" || s.revoker == nil {
		return
	}
	c, err := s.jwt.Parse(token)
	if err != nil {
		return
	}
	if err := s.revoker.Revoke(ctx, c.ID, c.Remaining()); err != nil {
		s.log.Warn("revoke token failed", zap.String("uid", c.UID), zap.Error(err))
	}
}

// Authenticate 解析并校验 token（含吊销检查）
func (s *UserService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	if token == "" {
		return nil, domain.Unauthenticated("Access denied. No token provided.")
	}
	c, err := s.jwt.Parse(token)
	if err != nil {
		return nil, domain.Unauthenticated("Invalid token.")
	}
	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(ctx, c.ID)
		if err != nil {
			// Redis 故障时放行，避免全站不可用
			s.log.Warn("check revoked token failed", zap.Error(err))
		} else if revoked {
			return nil, domain.Unauthenticated("Invalid token.")
		}
	}
	return c, nil
}

// CurrentUser token 有效但用户已不存在时同样返回 Unauthenticated
func (s *UserService) CurrentUser(ctx context.Context, token string) (*domain.PublicUser, error) {
	c, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, c.UID)
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.PublicUser, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.Unauthenticated("Invalid token. User not found.")
	}
	pub := u.Public()
	return &pub, nil
}

// List 管理端用户列表
func (s *UserService) List(ctx context.Context, q string, page, limit int) ([]domain.PublicUser, domain.Pagination, error) {
	page, limit = domain.NormalizePage(page, limit, domain.DefaultWishlistLimit)
	users, total, err := s.users.List(ctx, q, domain.Offset(page, limit), limit)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	out := make([]domain.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	return out, domain.NewPagination(page, limit, total), nil
}
