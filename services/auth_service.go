package services

import (
	"golang.org/x/crypto/bcrypt"
)

// AuthService authenticates the competition administrator. Results entry and
// the bulk reset are the only privileged operations; participants never log in.
type AuthService interface {
	VerifyAdminPassword(password string) error
}

type authService struct {
	adminPasswordHash []byte
}

func NewAuthService(adminPasswordHash string) AuthService {
	return &authService{adminPasswordHash: []byte(adminPasswordHash)}
}

func (s *authService) VerifyAdminPassword(password string) error {
	if err := bcrypt.CompareHashAndPassword(s.adminPasswordHash, []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
