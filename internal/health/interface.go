package health

import (
	"context"

	"github.com/gin-gonic/gin"
)

// ResponseHandler defines the interface for handling HTTP responses
type ResponseHandler interface {
	SuccessResponse(c *gin.Context, data interface{}, message string)
	ErrorResponse(c *gin.Context, status int, code, message string, err error)
}

// Checker probes one dependency
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// CheckFunc adapts a function to a named Checker
type CheckFunc struct {
	Component string
	Fn        func(ctx context.Context) error
}

// Name implements Checker
func (f CheckFunc) Name() string { return f.Component }

// Check implements Checker
func (f CheckFunc) Check(ctx context.Context) error { return f.Fn(ctx) }
