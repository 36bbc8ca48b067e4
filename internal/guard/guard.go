// Package guard реализует защиту экранов: машину из трёх состояний,
// которая скрывает защищённое содержимое, пока сессия гидрируется,
// и перенаправляет неавторизованных на вход.
package guard

import (
	"log/slog"
	"sync"

	"github.com/magabrotheeeer/qc-admin/internal/lib/sl"
	"github.com/magabrotheeeer/qc-admin/internal/models"
)

// State состояние защиты экранов.
type State int

const (
	// StateLoading начальное состояние: гидрация сессии ещё идёт.
	StateLoading State = iota
	// StateAuthorized сессия авторизована, защищённое содержимое доступно.
	StateAuthorized
	// StateUnauthorized сессии нет, вместо содержимого — переход на вход.
	StateUnauthorized
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthorized:
		return "authorized"
	default:
		return "unauthorized"
	}
}

// Guard машина состояний защиты экранов.
//
// Переход из StateLoading происходит ровно один раз — когда гидрация
// завершилась. Возврата в StateLoading в течение жизни процесса нет;
// дальнейшие вызовы Resolve переключают только между терминальными
// состояниями (истечение сессии, повторный вход).
type Guard struct {
	log        *slog.Logger
	onRedirect func()

	mu    sync.Mutex
	state State
}

// New создаёт Guard в состоянии загрузки.
// onRedirect вызывается при каждой попытке доступа без авторизации.
func New(log *slog.Logger, onRedirect func()) *Guard {
	return &Guard{
		log:        log,
		onRedirect: onRedirect,
		state:      StateLoading,
	}
}

// State возвращает текущее состояние.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Resolve переводит Guard в терминальное состояние по текущей сессии.
// Сессия в состоянии загрузки игнорируется: до конца гидрации решения нет.
func (g *Guard) Resolve(sess models.Session) {
	const op = "guard.Resolve"

	if sess.IsLoading {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	next := StateUnauthorized
	if sess.IsAuthenticated {
		next = StateAuthorized
	}
	if g.state != next {
		g.log.Info("guard state changed", sl.Op(op),
			slog.String("from", g.state.String()), slog.String("to", next.String()))
	}
	g.state = next
}

// Allow сообщает, можно ли показывать защищённое содержимое.
// В состоянии загрузки содержимое придерживается без перенаправления;
// неавторизованный доступ вызывает onRedirect.
func (g *Guard) Allow() bool {
	g.mu.Lock()
	state := g.state
	g.mu.Unlock()

	switch state {
	case StateAuthorized:
		return true
	case StateUnauthorized:
		if g.onRedirect != nil {
			g.onRedirect()
		}
		return false
	default:
		return false
	}
}
