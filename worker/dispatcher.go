// Package worker provides the execution engine for admitted uploads: a
// Dispatcher that runs one extraction attempt through the middleware
// chain and the external extraction service, converting every failure
// mode into an error the controller can record.
package worker

import (
	"context"
	"log/slog"

	"github.com/reecejunior/newrouteplanner/extract"
	"github.com/reecejunior/newrouteplanner/middleware"
	"github.com/reecejunior/newrouteplanner/upload"
)

// Dispatcher executes a single admitted upload. It is stateless and safe
// for concurrent use; the controller runs one Execute call per in-flight
// upload.
type Dispatcher struct {
	service extract.Service
	mw      middleware.Middleware
	logger  *slog.Logger
}

// NewDispatcher creates a Dispatcher calling the given extraction
// service. Two middleware are always installed around the given ones:
// Timeout as the outermost wrapper, so the upload's deadline bounds the
// whole chain, and Recover as the innermost, so no panic from the
// service call (or from other middleware) escapes Execute.
func NewDispatcher(service extract.Service, logger *slog.Logger, mws ...middleware.Middleware) *Dispatcher {
	chain := append([]middleware.Middleware{middleware.Timeout(logger)}, mws...)
	chain = append(chain, middleware.Recover(logger))
	return &Dispatcher{
		service: service,
		mw:      middleware.Chain(chain...),
		logger:  logger,
	}
}

// Execute runs the upload's extraction attempt to one of two terminal
// outcomes: the ordered address list on success (an empty list is a
// success), or an error describing the failure. It never panics.
func (d *Dispatcher) Execute(ctx context.Context, u *upload.Upload) ([]string, error) {
	var addresses []string

	terminal := func(ctx context.Context) error {
		got, err := d.service.Extract(ctx, u.Payload, u.MediaType)
		if err != nil {
			return err
		}
		addresses = got
		return nil
	}

	if err := d.mw(ctx, u, terminal); err != nil {
		return nil, err
	}

	if addresses == nil {
		addresses = []string{}
	}
	return addresses, nil
}
