package http

import "github.com/labstack/echo/v4"

// Handler registers its routes on the server's echo instance. The demand
// API handler is mounted this way by NewServer.
type Handler interface {
	RegisterRoutes(e *echo.Echo)
}
