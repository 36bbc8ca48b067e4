// Package session реализует хранилище сессии клиента — единственный
// источник правды о том, кто вошёл в систему и с каким токеном.
//
// Store гидрирует сессию из долговременного состояния при старте,
// выполняет вход, регистрацию и выход, отслеживает истечение токена
// и сообщает шлюзу о каждой смене токена.
package session

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/magabrotheeeer/qc-admin/internal/gateway"
	"github.com/magabrotheeeer/qc-admin/internal/lib/sl"
	"github.com/magabrotheeeer/qc-admin/internal/lib/token"
	"github.com/magabrotheeeer/qc-admin/internal/models"
	"github.com/magabrotheeeer/qc-admin/internal/statestore"
)

// AuthError структурированная ошибка аутентификации для показа пользователю.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// genericAuthFailure запасной текст, когда бэкенд не прислал своего сообщения.
const genericAuthFailure = "Authentication failed"

// Gateway описывает контракт шлюза, нужный хранилищу сессии:
// выполнение запросов и обновление общего bearer-токена.
type Gateway interface {
	JSON(ctx context.Context, method, path string, body, out any, opts ...gateway.Option) gateway.Result
	SetToken(tokenStr string)
}

// Store хранилище сессии. Все мутации происходят через
// Hydrate/Login/Logout/CheckExpiry, читатели получают копию через Session().
type Store struct {
	log     *slog.Logger
	state   *statestore.Store
	gateway Gateway
	session models.Session
}

// New создаёт Store в состоянии загрузки: до вызова Hydrate
// о пользователе ничего не известно.
func New(log *slog.Logger, state *statestore.Store, gw Gateway) *Store {
	return &Store{
		log:     log,
		state:   state,
		gateway: gw,
		session: models.Session{IsLoading: true},
	}
}

// Session возвращает копию текущего состояния сессии.
func (s *Store) Session() models.Session {
	return s.session
}

// Hydrate восстанавливает сессию из сохранённого состояния без обращения к серверу.
//
// Отсутствующий токен даёт неавторизованную сессию. Неразбираемый или
// истёкший токен приравнивается к отсутствующему: сохранённые учётные
// данные очищаются. Валидный токен даёт авторизованную сессию
// и передаётся шлюзу для всех последующих запросов.
func (s *Store) Hydrate() {
	const op = "session.Hydrate"

	defer func() { s.session.IsLoading = false }()

	st, err := s.state.Load()
	if err != nil {
		s.log.Error("failed to load persisted state", sl.Op(op), sl.Err(err))
		s.reset()
		return
	}
	if st.AccessToken == "" {
		s.reset()
		return
	}

	claims, err := token.Parse(st.AccessToken)
	if err != nil || claims.IsExpired(time.Now()) {
		s.log.Info("persisted token invalid or expired, purging", sl.Op(op), sl.Token(st.AccessToken))
		s.purge()
		return
	}

	s.session = models.Session{
		Token:           st.AccessToken,
		User:            models.User{ID: claims.SubjectID, Username: st.Username},
		ExpiresAt:       claims.ExpiresAt,
		IsAuthenticated: true,
		IsLoading:       true, // снимается в defer
	}
	s.gateway.SetToken(st.AccessToken)
	s.log.Info("session hydrated", sl.Op(op), slog.String("username", st.Username))
}

// loginResponse форма ответа бэкенда на POST /login.
type loginResponse struct {
	AccessToken string `json:"access_token"`
	UserID      int    `json:"user_id"`
	Username    string `json:"username"`
}

// Login выполняет вход и при успехе сохраняет токен с именем пользователя,
// переводит сессию в авторизованное состояние и обновляет токен шлюза.
//
// Любой сбой превращается в *AuthError с текстом бэкенда,
// либо с общим "Authentication failed".
func (s *Store) Login(ctx context.Context, creds models.Credentials) (*models.User, error) {
	const op = "session.Login"

	var resp loginResponse
	res := s.gateway.JSON(ctx, http.MethodPost, "/login", creds, &resp,
		gateway.WithFallback(genericAuthFailure))
	if !res.OK {
		s.log.Error("login failed", sl.Op(op), slog.String("username", creds.Username))
		return nil, &AuthError{Message: res.Err}
	}

	expiresAt := time.Time{}
	if claims, err := token.Parse(resp.AccessToken); err == nil {
		expiresAt = claims.ExpiresAt
	}

	if err := s.state.Save(statestore.State{AccessToken: resp.AccessToken, Username: resp.Username}); err != nil {
		s.log.Error("failed to persist credentials", sl.Op(op), sl.Err(err))
	}

	user := models.User{ID: resp.UserID, Username: resp.Username}
	s.session = models.Session{
		Token:           resp.AccessToken,
		User:            user,
		ExpiresAt:       expiresAt,
		IsAuthenticated: true,
	}
	s.gateway.SetToken(resp.AccessToken)
	s.log.Info("login succeeded", sl.Op(op), slog.String("username", resp.Username))
	return &user, nil
}

// registerResponse форма ответа бэкенда на POST /register.
type registerResponse struct {
	Message string `json:"message"`
}

// Register создаёт учётную запись. Состояние сессии не меняется:
// регистрация не означает входа.
func (s *Store) Register(ctx context.Context, reg models.Registration) (string, error) {
	const op = "session.Register"

	var resp registerResponse
	res := s.gateway.JSON(ctx, http.MethodPost, "/register", reg, &resp,
		gateway.WithFallback(genericAuthFailure))
	if !res.OK {
		s.log.Error("registration failed", sl.Op(op), slog.String("username", reg.Username))
		return "", &AuthError{Message: res.Err}
	}
	s.log.Info("registration succeeded", sl.Op(op), slog.String("username", reg.Username))
	return resp.Message, nil
}

// Logout очищает сохранённые учётные данные и сбрасывает сессию.
// Идемпотентен: выход без сессии — не ошибка.
func (s *Store) Logout() {
	const op = "session.Logout"

	s.purge()
	s.log.Info("logged out", sl.Op(op))
}

// CheckExpiry проверяет срок действия токена на момент now.
// Истёкшая сессия принудительно завершается; возвращает true, если это произошло.
func (s *Store) CheckExpiry(now time.Time) bool {
	const op = "session.CheckExpiry"

	if !s.session.IsAuthenticated {
		return false
	}
	if s.session.ExpiresAt.After(now) {
		return false
	}
	s.log.Info("session expired, forcing logout", sl.Op(op))
	s.purge()
	return true
}

// purge очищает долговременное состояние и сбрасывает сессию с токеном шлюза.
func (s *Store) purge() {
	if err := s.state.Purge(); err != nil {
		s.log.Error("failed to purge persisted state", sl.Err(err))
	}
	s.reset()
}

// reset переводит сессию в неавторизованное состояние.
func (s *Store) reset() {
	loading := s.session.IsLoading
	s.session = models.Session{IsLoading: loading}
	s.gateway.SetToken("")
}
