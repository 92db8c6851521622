package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/warehouse-backend/api/responses"
	pkgerrors "github.com/angelmondragon/warehouse-backend/pkg/errors"
	"github.com/angelmondragon/warehouse-backend/pkg/logger"
)

// Recoverer turns a handler panic into a 500 envelope and logs it with the
// route and the order or item being handled.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				err := fmt.Errorf("panic: %v", rec)
				ctx := r.Context()
				if logg != nil {
					ctx = logg.WithFields(ctx, panicFields(r, rec))
					logg.Error(ctx, "panic.recovered", err)
				}
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "panic"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func panicFields(r *http.Request, rec any) map[string]any {
	fields := map[string]any{
		"panic":  fmt.Sprint(rec),
		"method": r.Method,
		"path":   r.URL.Path,
		"route":  routePattern(r),
	}
	if id := strings.TrimSpace(chi.URLParam(r, "id")); id != "" {
		switch {
		case strings.HasPrefix(r.URL.Path, "/api/orders/"):
			fields["order_id"] = id
		case strings.HasPrefix(r.URL.Path, "/api/inventory/"):
			fields["item_id"] = id
		}
	}
	return fields
}
