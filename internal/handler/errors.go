package handler

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/ptitsvieux/backend/internal/apperr"
    "github.com/ptitsvieux/backend/internal/validate"
)

// requestTimeout bounds the store calls of a single request.
const requestTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// fail converts err into the *echo.HTTPError rendered by HTTPErrorHandler.
// Internal errors keep the cause for the error log only.
func fail(err error) error {
    p := apperr.Classify(err)
    he := echo.NewHTTPError(p.Status, p.Body())
    if p.Status >= http.StatusInternalServerError {
        return he.SetInternal(err)
    }
    return he
}

func errorMsg(status int, msg string) error {
    return echo.NewHTTPError(status, map[string]any{"error": msg})
}

func invalidBody() error { return errorMsg(http.StatusBadRequest, "invalid body") }

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || id == 0 {
        return 0, fail(validate.Field(name, "must be a positive integer"))
    }
    return id, nil
}

// HTTPErrorHandler renders every error as {"error": ...} and appends 5xx
// responses to the error log.
func HTTPErrorHandler(errs *apperr.Log) echo.HTTPErrorHandler {
    return func(err error, c echo.Context) {
        if c.Response().Committed {
            return
        }
        status := http.StatusInternalServerError
        body := map[string]any{"error": apperr.MsgInternal}
        cause := err

        var he *echo.HTTPError
        if errors.As(err, &he) {
            status = he.Code
            switch m := he.Message.(type) {
            case map[string]any:
                body = m
            case string:
                body = map[string]any{"error": m}
            default:
                body = map[string]any{"error": http.StatusText(status)}
            }
            if he.Internal != nil {
                cause = he.Internal
            }
        }
        if status >= http.StatusInternalServerError {
            body = map[string]any{"error": apperr.MsgInternal}
            req := c.Request()
            errs.Record(c.Response().Header().Get(echo.HeaderXRequestID), req.Method, req.URL.Path, status, cause)
        }

        if c.Request().Method == http.MethodHead {
            err = c.NoContent(status)
        } else {
            err = c.JSON(status, body)
        }
        if err != nil {
            c.Logger().Error(err)
        }
    }
}
