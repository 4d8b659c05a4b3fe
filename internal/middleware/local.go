package middleware

import (
	"net"
	"net/http"
)

// LocalOnly rejects requests that do not come from the loopback interface.
//
// The control API can submit solutions and change the push target, so even
// when the daemon is bound to a wider address only this machine may use it.
// It must run before chi's RealIP, which would let a forwarded header spoof
// the remote address.
func LocalOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		ip := net.ParseIP(host)
		if ip == nil || !ip.IsLoopback() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"Forbidden","message":"the control API only accepts local requests"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
