// Package token реализует клиентский разбор JWT токена без проверки подписи.
//
// Клиент не владеет секретным ключом бэкенда, поэтому подпись проверить не может:
// задача пакета — извлечь subject и срок действия, чтобы решить,
// имеет ли смысл предъявлять токен серверу вообще.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformed токен не разбирается или не содержит нужных claims.
// Для вызывающих равнозначен истёкшему токену: и тот и другой непригодны.
var ErrMalformed = errors.New("malformed token")

// Claims данные, извлечённые из токена на стороне клиента.
type Claims struct {
	SubjectID int       // Идентификатор пользователя из claim "sub"
	ExpiresAt time.Time // Срок действия из claim "exp"
}

// Parse разбирает строку JWT без проверки подписи и возвращает Claims.
//
// Возвращает ErrMalformed, если токен не разбирается, не содержит exp
// или subject не является числовым идентификатором.
func Parse(tokenStr string) (*Claims, error) {
	const op = "token.Parse"

	parser := jwt.NewParser()
	var claims jwt.RegisteredClaims
	if _, _, err := parser.ParseUnverified(tokenStr, &claims); err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrMalformed)
	}
	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%s: missing exp: %w", op, ErrMalformed)
	}
	subject, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%s: non-numeric subject: %w", op, ErrMalformed)
	}
	return &Claims{
		SubjectID: subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// IsExpired сообщает, истёк ли токен к моменту now.
// Граница включается: токен с exp == now считается истёкшим.
func (c *Claims) IsExpired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}
