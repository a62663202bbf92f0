package domain

import (
	"github.com/golang-jwt/jwt"
	"github.com/ideationmarket/goapi/base/ctx"
)

type JwtCustomClaims struct {
	Address string `json:"data"`
	jwt.StandardClaims
}

// AuthUsecase issues and verifies the bearer tokens that establish
// caller identity. A token is only issued against a valid personal-sign
// signature from the address it names.
type AuthUsecase interface {
	SignToken(ctx ctx.Ctx, address Address, signature string) (string, error)
	ParseToken(ctx ctx.Ctx, token string) (address string, err error)
}
