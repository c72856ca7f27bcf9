package jwttoken

import (
	authmw "walletreg/pkg/platform/middleware/auth"
)

// JWTServiceAdapter exposes JWTService as the auth middleware's validator.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*authmw.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	account, err := claims.AccountID()
	if err != nil {
		return nil, err
	}
	return &authmw.JWTClaims{
		Caller: account,
		JTI:    claims.ID, // JWT ID, logged for traceability
	}, nil
}
