// Package admin собирает клиент воедино: конфиг, шлюз, сессию, защиту
// экранов и контроллеры сущностей — и предоставляет командный интерфейс
// административных операций.
package admin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/qc-admin/internal/config"
	"github.com/magabrotheeeer/qc-admin/internal/gateway"
	"github.com/magabrotheeeer/qc-admin/internal/guard"
	"github.com/magabrotheeeer/qc-admin/internal/images"
	"github.com/magabrotheeeer/qc-admin/internal/labelstudio"
	"github.com/magabrotheeeer/qc-admin/internal/models"
	"github.com/magabrotheeeer/qc-admin/internal/resource"
	"github.com/magabrotheeeer/qc-admin/internal/session"
	"github.com/magabrotheeeer/qc-admin/internal/statestore"
)

// ErrUnauthorized команда требует входа, а сессии нет.
var ErrUnauthorized = errors.New("not logged in")

// App собранный административный клиент.
type App struct {
	log  *slog.Logger
	cfg  *config.Config
	out  io.Writer
	gw   *gateway.Client
	sess *session.Store
	gate *guard.Guard

	companies *resource.Controller[models.Company]
	products  *resource.Controller[models.Product]
	steps     *resource.StepController
	classes   *resource.Controller[models.ClassCount]
	imgs      *images.Service
	ls        *labelstudio.Service
}

// New создаёт App со всеми зависимостями, Run ещё не гидрирует сессию.
func New(cfg *config.Config, logger *slog.Logger, out io.Writer) *App {
	gw := gateway.New(cfg.APIBaseURL, cfg.HTTPClient, logger)
	state := statestore.New(cfg.StateFile)
	sess := session.New(logger, state, gw)

	app := &App{
		log:       logger,
		cfg:       cfg,
		out:       out,
		gw:        gw,
		sess:      sess,
		companies: resource.Companies(logger, gw),
		products:  resource.Products(logger, gw),
		steps:     resource.Steps(logger, gw),
		classes:   resource.Classes(logger, gw),
		imgs:      images.New(logger, gw),
		ls:        labelstudio.New(logger, gw),
	}
	app.gate = guard.New(logger, func() {
		fmt.Fprintln(out, "Not logged in. Run `qc-admin login <username> <password>` first.")
	})
	return app
}

// Run гидрирует сессию, разрешает защиту экранов и выполняет команду.
func (a *App) Run(ctx context.Context, args []string) error {
	a.sess.Hydrate()
	if a.sess.CheckExpiry(time.Now()) {
		fmt.Fprintln(a.out, "Session expired, please log in again.")
	}
	a.gate.Resolve(a.sess.Session())

	if len(args) == 0 {
		a.usage()
		return nil
	}
	return a.dispatch(ctx, args[0], args[1:])
}

// protected выполняет действие только при авторизованной сессии.
func (a *App) protected(fn func() error) error {
	if !a.gate.Allow() {
		return ErrUnauthorized
	}
	return fn()
}

func (a *App) usage() {
	fmt.Fprint(a.out, `qc-admin — administrative client for the QC data-management backend

Usage:
  qc-admin login <username> <password>
  qc-admin register <username> <email> <password>
  qc-admin logout
  qc-admin whoami

  qc-admin company  list | create <name> | update <id> <name> | delete <id>
  qc-admin product  list | create <name> <company-id> | update <id> <name> <company-id> | delete <id>
  qc-admin step     list | available <product-id> | create <name> <product-id> <number> | update <id> <name> <product-id> <number> | delete <id>
  qc-admin class    list | create <name> <product-id> | update <id> <name> <product-id> | delete <id>

  qc-admin images   list | by-company <company-id> | upload <product-id> <step-id> <file> | delete <id> | download <dir> | stats
  qc-admin annotate status | set-key <key> | test | watch | projects | create-project <product-id> | import <product-id> <project-id>
`)
}
