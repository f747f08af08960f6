package controllers

import (
	"errors"
	"time"

	"kbase/models"

	"github.com/golang-jwt/jwt/v5"
)

var jwtSecret = "CHANGE_ME"
var jwtTTL = 24 * time.Hour

// InitAuth injeta o segredo e o TTL vindos da configuração. Chamar uma
// vez no boot, antes de subir as rotas.
func InitAuth(secret string, ttlHours int) {
	if secret != "" {
		jwtSecret = secret
	}
	if ttlHours > 0 {
		jwtTTL = time.Duration(ttlHours) * time.Hour
	}
}

// signToken emite o JWT HS256 com as claims que o gate precisa para
// derivar role e setor sem consulta extra.
func signToken(user models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":         user.ID,
		"email":       user.Email,
		"is_master":   user.IsMaster,
		"permissions": user.PermissionList(),
		"iat":         now.Unix(),
		"exp":         now.Add(jwtTTL).Unix(),
	})
	return token.SignedString([]byte(jwtSecret))
}

// parseToken valida assinatura e expiração e devolve o id do usuário.
func parseToken(tokenString string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("método de assinatura inesperado")
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, errors.New("token inválido ou expirado")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("claims do token inválidas")
	}
	sub, ok := claims["sub"].(float64)
	if !ok || sub <= 0 {
		return 0, errors.New("claims do token inválidas")
	}
	return int64(sub), nil
}
