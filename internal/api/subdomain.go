package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/nvaldr/shopstack-be/internal/apperrors"
	"github.com/nvaldr/shopstack-be/internal/models"
	"github.com/nvaldr/shopstack-be/internal/services"
	"github.com/nvaldr/shopstack-be/internal/subdomain"
	"github.com/rs/zerolog/log"
)

type contextKey string

const shopCtxKey = contextKey("subdomainShop")

// ShopFromContext returns the shop resolved from the request's host, if any.
func ShopFromContext(ctx context.Context) (models.Shop, bool) {
	shop, ok := ctx.Value(shopCtxKey).(models.Shop)
	return shop, ok
}

// SubdomainMiddleware resolves the request host's leading label to a shop and
// stores it in the request context. Requests for unknown, non-reserved labels
// get a 404; reserved labels and the bare base domain pass through untouched.
// The request itself always continues when a shop is found, so API routes stay
// reachable on shop hosts.
func SubdomainMiddleware(shops services.ShopServiceProvider, baseDomain string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			label := subdomain.Extract(r.Host, baseDomain)
			if label == "" {
				next.ServeHTTP(w, r)
				return
			}

			shop, err := shops.GetShopByName(label)
			if err != nil {
				var appErr *apperrors.Error
				if errors.As(err, &appErr) && appErr.Kind == apperrors.KindNotFound {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusNotFound)
					fmt.Fprintf(w, `{"statusCode":404,"message":["Shop '%s' not found"],"error":"Not Found"}`, label)
					return
				}
				// Lookup failures other than a miss must not take the whole
				// request down.
				log.Error().Err(err).Str("subdomain", label).Msg("Subdomain lookup failed")
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), shopCtxKey, shop)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
