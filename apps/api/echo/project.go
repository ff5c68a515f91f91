package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core/project"
	"github.com/trezcool/kazi/core/user"
)

type projectApi struct {
	deps ServerDeps
}

func registerProjectAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := projectApi{deps: deps}

	pg := g.Group("/projects", jwt)
	pg.POST("", api.create)
	pg.GET("", api.query)
	pg.GET("/mine", api.queryMine)
	pg.GET("/user/:username", api.queryByUsername)
	pg.GET("/:id", api.retrieve)
	pg.PUT("/:id", api.update)
	pg.DELETE("/:id", api.destroy)
}

// Handlers

func (api *projectApi) create(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data project.NewProject
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewProject")
	}
	if err = data.Validate(api.deps.Validate); err != nil {
		return err
	}

	prj, err := api.deps.ProjectSvc.Create(ctx.Request().Context(), data, ctxUsr)
	if err != nil {
		return errors.Wrap(err, "creating project")
	}
	return ctx.JSON(http.StatusCreated, prj)
}

func (api *projectApi) query(ctx echo.Context) error {
	page, _ := strconv.Atoi(ctx.QueryParam("page"))
	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))

	projects, err := api.deps.ProjectSvc.Query(ctx.Request().Context(), page, limit)
	if err != nil {
		return errors.Wrap(err, "querying projects")
	}
	if projects == nil {
		projects = []project.Detail{}
	}
	return ctx.JSON(http.StatusOK, projects)
}

func (api *projectApi) queryMine(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	projects, err := api.deps.ProjectSvc.QueryByUserID(ctx.Request().Context(), ctxUsr.ID)
	if err != nil {
		return errors.Wrap(err, "querying user projects")
	}
	if projects == nil {
		projects = []project.Project{}
	}
	return ctx.JSON(http.StatusOK, projects)
}

func (api *projectApi) queryByUsername(ctx echo.Context) error {
	projects, err := api.deps.ProjectSvc.QueryByUsername(ctx.Request().Context(), ctx.Param("username"))
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "querying user projects")
	}
	if projects == nil {
		projects = []project.Project{}
	}
	return ctx.JSON(http.StatusOK, projects)
}

func (api *projectApi) retrieve(ctx echo.Context) error {
	prj, err := api.deps.ProjectSvc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == project.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding project")
	}
	return ctx.JSON(http.StatusOK, prj)
}

func (api *projectApi) update(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data project.UpdateProject
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProject")
	}
	if err = data.Validate(api.deps.Validate); err != nil {
		return err
	}

	if err = api.deps.ProjectSvc.Update(ctx.Request().Context(), ctx.Param("id"), data, ctxUsr); err != nil {
		return trapProjectErr(err, "updating project")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Project updated."})
}

func (api *projectApi) destroy(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err = api.deps.ProjectSvc.Delete(ctx.Request().Context(), ctx.Param("id"), ctxUsr); err != nil {
		return trapProjectErr(err, "deleting project")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func trapProjectErr(err error, msg string) error {
	switch errors.Cause(err) {
	case project.ErrNotFound:
		return errHttpNotFound
	case project.ErrNotOwner:
		return errHttpForbidden
	}
	return errors.Wrap(err, msg)
}
