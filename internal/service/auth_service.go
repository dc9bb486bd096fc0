package service

import (
	"exam_tutor_backend/internal/config"
	"exam_tutor_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
)

// AuthService 管理端登录：口令换 JWT，管理接口统一走 Bearer 鉴权
type AuthService struct {
	jwtCfg   config.JWTConfig
	adminCfg config.AdminConfig
}

func NewAuthService(jwtCfg config.JWTConfig, adminCfg config.AdminConfig) *AuthService {
	return &AuthService{jwtCfg: jwtCfg, adminCfg: adminCfg}
}

// LoginRequest 管理端登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录成功返回的令牌
type LoginResponse struct {
	Token string `json:"token"`
}

// Login 校验 bcrypt 口令哈希并签发 admin 角色令牌
func (s *AuthService) Login(req *LoginRequest) (*LoginResponse, error) {
	if s.adminCfg.PasswordHash == "" {
		return nil, util.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.adminCfg.PasswordHash), []byte(req.Password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(req.Username, "admin", s.jwtCfg.Secret, s.jwtCfg.ExpireTime)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{Token: token}, nil
}
