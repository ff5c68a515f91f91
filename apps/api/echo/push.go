package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core/push"
)

type pushApi struct {
	deps ServerDeps
}

func registerPushAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := pushApi{deps: deps}

	sg := g.Group("/push", jwt)
	sg.GET("/vapid-public-key", api.vapidPublicKey)
	sg.POST("/subscribe", api.subscribe)
}

// Handlers

func (api *pushApi) vapidPublicKey(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"public_key": api.deps.Conf.Push.VAPIDPublicKey})
}

func (api *pushApi) subscribe(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data push.NewSubscription
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubscription")
	}
	if err = data.Validate(api.deps.Validate); err != nil {
		return err
	}

	sub, err := api.deps.PushSvc.Subscribe(ctx.Request().Context(), ctxUsr.ID, data)
	if err != nil {
		return errors.Wrap(err, "subscribing")
	}
	return ctx.JSON(http.StatusCreated, sub)
}
