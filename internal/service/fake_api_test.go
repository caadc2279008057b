package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/sakashimaa/storefront/internal/apiclient"
)

// fakeAPI answers from canned JSON keyed by "METHOD /path" and records every request.
type fakeAPI struct {
	mu        sync.Mutex
	requests  []apiclient.Request
	responses map[string]string
	errs      map[string]error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		responses: make(map[string]string),
		errs:      make(map[string]error),
	}
}

func (f *fakeAPI) on(method, path, body string) {
	f.responses[method+" "+path] = body
}

func (f *fakeAPI) fail(method, path string, err error) {
	f.errs[method+" "+path] = err
}

func (f *fakeAPI) Do(_ context.Context, req apiclient.Request, out interface{}) error {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	key := req.Method + " " + req.Path
	if err, ok := f.errs[key]; ok {
		return err
	}

	body, ok := f.responses[key]
	if !ok || out == nil {
		return nil
	}

	return json.Unmarshal([]byte(body), out)
}

func (f *fakeAPI) last() apiclient.Request {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.requests[len(f.requests)-1]
}

func (f *fakeAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.requests)
}
