package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the bearer-token payload issued by the external identity
// system. This service never issues tokens; it only verifies and reads them.
type Claims struct {
	EmployeeID string `json:"eid"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

func ParseToken(secret, tokenString string) (ActorContext, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return ActorContext{}, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return ActorContext{}, errors.New("invalid token")
	}

	actor := ActorContext{EmployeeID: claims.EmployeeID, Role: Role(claims.Role)}
	if actor.EmployeeID == "" || !ValidRole(actor.Role) {
		return ActorContext{}, errors.New("invalid token claims")
	}
	return actor, nil
}
