package main

import (
	"fmt"
	"net/http"
)

// cookiesHandler returns all cookies from the request as JSON.
func cookiesHandler(w http.ResponseWriter, r *http.Request) {
	cookies := make(map[string]string)
	for _, c := range r.Cookies() {
		cookies[c.Name] = c.Value
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"cookies": cookies}, prettyRequested(r))
}

// setCookiesHandler turns each query parameter into a Set-Cookie header
// and redirects back to /cookies so the client can see the result.
func setCookiesHandler(w http.ResponseWriter, r *http.Request) {
	for name, values := range r.URL.Query() {
		if name == "" || len(values) == 0 {
			continue
		}
		http.SetCookie(w, &http.Cookie{Name: name, Value: values[0], Path: "/"})
	}
	http.Redirect(w, r, "/cookies", http.StatusFound)
}

// deleteCookiesHandler expires each named cookie via Max-Age=0 and
// redirects back to /cookies. Query parameter values are ignored.
func deleteCookiesHandler(w http.ResponseWriter, r *http.Request) {
	for name := range r.URL.Query() {
		if name == "" {
			continue
		}
		w.Header().Add("Set-Cookie", fmt.Sprintf("%s=; Path=/; Max-Age=0", name))
	}
	http.Redirect(w, r, "/cookies", http.StatusFound)
}
