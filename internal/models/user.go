// Package models содержит доменную модель пользователя и сессии клиента.
package models

import "time"

// User представляет вошедшего пользователя со стороны клиента.
// Клиент знает только идентификатор и имя — хэш пароля остаётся на бэкенде.
type User struct {
	ID       int    `json:"user_id"`
	Username string `json:"username"`
}

// Credentials данные формы входа.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Registration данные формы регистрации нового пользователя.
type Registration struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Session описывает текущее состояние аутентификации клиента.
// Инвариант: IsAuthenticated == true влечёт непустой Token
// и ExpiresAt в будущем на момент последней проверки.
type Session struct {
	Token           string
	User            User
	ExpiresAt       time.Time
	IsAuthenticated bool
	IsLoading       bool
}
