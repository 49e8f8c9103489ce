package httputil_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/matzehuels/netview/pkg/httputil"
)

func ExampleClient_Fetch() {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"nodes":[]}`)
	}))
	defer srv.Close()

	c := httputil.NewClient()
	c.Delay = time.Millisecond
	data, err := c.Fetch(context.Background(), srv.URL+"/net.json")
	fmt.Println("Calls:", calls)
	fmt.Println("Body:", string(data), err)
	// Output:
	// Calls: 2
	// Body: {"nodes":[]} <nil>
}

func ExampleStatusError() {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := httputil.NewClient().Fetch(context.Background(), srv.URL)
	var serr *httputil.StatusError
	if errors.As(err, &serr) {
		fmt.Println("Status:", serr.Status, "Temporary:", serr.Temporary())
	}
	// Output:
	// Status: 404 Temporary: false
}
