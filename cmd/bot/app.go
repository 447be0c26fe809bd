package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	tele "gopkg.in/telebot.v4"

	"dialogbot/core/bootstrap"
	corecmd "dialogbot/core/cmd"
	coretelegram "dialogbot/core/telegram"
	"dialogbot/core/telegram/dialog"
	"dialogbot/core/telegram/pagination"
	"dialogbot/core/telegram/router"
	"dialogbot/core/telegram/state"
	"dialogbot/core/users"
)

type app struct {
	cfg *appConfig
	db  *sqlx.DB

	users *users.Service
	store state.Store

	reg    *coretelegram.Registry
	rtr    *router.Router
	survey *dialog.Dialog
	pager  *pagination.Pager

	// bot is set once the runtime is up; used by broadcast handlers.
	bot *tele.Bot
}

func newApp(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*appConfig)
	if !ok {
		return nil, fmt.Errorf("app: unexpected config type %T", carrier)
	}

	res, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:   cfg,
		db:    res.DB,
		users: users.NewService(res.DB),
		store: state.NewPostgresStore(res.DB),
	}

	a.survey, err = buildSurvey(cfg.Dialog.StrictChoices, a.store)
	if err != nil {
		return nil, err
	}
	a.pager = pagination.New("users_page", "Known users", a.users, 5)

	a.reg = coretelegram.NewRegistry()
	a.registerCommands()
	a.rtr = a.buildRouter()

	return a, nil
}

func (a *app) buildRouter() *router.Router {
	r := router.New()
	for _, rt := range router.CommandRoutes(a.reg.Commands()) {
		r.Handle(router.GroupCommands, rt)
	}
	a.survey.Mount(r)
	a.pager.Mount(r)
	r.Fallback(func(c tele.Context) error {
		if c.Callback() != nil {
			return a.reg.CallbackNotFound()(c)
		}
		if fb := a.reg.TextFallback(); fb != nil {
			return fb(c)
		}
		return nil
	})
	return r
}

func (a *app) TelegramRunOptions() (coretelegram.RunOptions, error) {
	core := a.cfg.CoreConfig()

	var routes []coretelegram.Route
	for _, b := range a.rtr.Bindings(tele.OnText, tele.OnCallback) {
		routes = append(routes, coretelegram.Route{Endpoint: b.Endpoint, Handler: b.Handler})
	}

	return coretelegram.RunOptions{
		Config:      core,
		Registry:    a.reg,
		Middlewares: coretelegram.DefaultMiddlewares(core, a.users, a.store, nil),
		Routes:      routes,
		OnStart: func(_ context.Context, rt coretelegram.Runtime) error {
			a.bot = rt.Bot
			return nil
		},
		OnStop: func(context.Context, coretelegram.Runtime) error {
			return a.db.Close()
		},
	}, nil
}
