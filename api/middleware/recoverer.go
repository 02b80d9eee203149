package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/ichaoui56/e-commerce-backoffice/api/responses"
	pkgerrors "github.com/ichaoui56/e-commerce-backoffice/pkg/errors"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/logger"
)

// Recoverer answers a handler panic with the internal error envelope and logs
// the stack. http.ErrAbortHandler keeps propagating so net/http can drop the
// connection.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
						panic(rec)
					}
					recoverPanic(logg, w, r, rec)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func recoverPanic(logg *logger.Logger, w http.ResponseWriter, r *http.Request, rec any) {
	cause, ok := rec.(error)
	if !ok {
		cause = fmt.Errorf("%v", rec)
	}
	ctx := logg.WithFields(r.Context(), map[string]any{
		"route": r.Method + " " + r.URL.Path,
		"stack": string(debug.Stack()),
	})
	logg.Error(ctx, "panic.recovered", cause)
	responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeInternal, cause, "handler panicked"))
}
