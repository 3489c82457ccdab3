package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/spacestar/internal/common"
	"github.com/dmitrijs2005/spacestar/internal/logging"
	"github.com/dmitrijs2005/spacestar/internal/server/auth"
)

type ctxKey string

const identityKey ctxKey = "identity"

// identityFrom returns the member uuid put into ctx by requireBearer.
func identityFrom(ctx context.Context) string {
	v, _ := ctx.Value(identityKey).(string)
	return v
}

// requireBearer admits requests carrying a valid "Bearer <jwt>" access token.
func requireBearer(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(common.AuthorizationHeaderName)
			if !strings.HasPrefix(header, common.BearerPrefix) {
				writeStatus(w, common.ErrUnauthorizedRequest)
				return
			}

			claims, err := auth.ParseToken(strings.TrimSpace(strings.TrimPrefix(header, common.BearerPrefix)), secret)
			if err != nil {
				writeStatus(w, common.ErrUnauthorizedRequest)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, claims.UUID)
			ctx = logging.ContextWith(ctx, "uuid", claims.UUID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
