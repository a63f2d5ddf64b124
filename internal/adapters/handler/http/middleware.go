package http

import (
	"context"
	"net/http"
)

type contextKey string

// DeviceIDKey carries the caller's opaque device identifier through the
// request context.
const DeviceIDKey contextKey = "deviceID"

// DeviceIDHeader is the header voters send their locally generated device
// identifier in. There is no registration step; the token is whatever the
// client minted on first use.
const DeviceIDHeader = "X-Device-ID"

// RequireDeviceID rejects vote-path requests that carry no device identity.
func RequireDeviceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deviceID := r.Header.Get(DeviceIDHeader)
		if deviceID == "" {
			http.Error(w, DeviceIDHeader+" header required", http.StatusBadRequest)
			return
		}

		ctx := context.WithValue(r.Context(), DeviceIDKey, deviceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
