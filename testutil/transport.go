package testutil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/andyle182810/ghclient/httpclient"
	"github.com/stretchr/testify/assert"
)

var ErrUnexpectedCall = errors.New("testutil: unexpected transport call")

type Call struct {
	Method string
	Path   string
	Body   string
}

type Expectation struct {
	call     Call
	response *httpclient.Response
	err      error
}

// Return answers the expected call with status and body.
func (e *Expectation) Return(status int, body string) *Expectation {
	e.response = &httpclient.Response{
		StatusCode: status,
		Body:       body,
		Header:     http.Header{},
		RequestID:  "",
	}

	return e
}

// ReturnError fails the expected call as a transport error would.
func (e *Expectation) ReturnError(err error) *Expectation {
	e.err = err

	return e
}

// FakeTransport replays expectations in order and fails the test on any call that
// does not match the next one exactly. Unmet expectations fail the test at cleanup.
type FakeTransport struct {
	t            testing.TB
	mu           sync.Mutex
	expectations []*Expectation
	calls        []Call
}

func NewFakeTransport(t testing.TB) *FakeTransport {
	t.Helper()

	f := &FakeTransport{
		t:            t,
		mu:           sync.Mutex{},
		expectations: nil,
		calls:        nil,
	}

	t.Cleanup(f.AssertExpectations)

	return f
}

// Expect queues a call. body is compared byte for byte; use "" for verbs without one.
func (f *FakeTransport) Expect(method, path, body string) *Expectation {
	f.mu.Lock()
	defer f.mu.Unlock()

	exp := &Expectation{
		call:     Call{Method: method, Path: path, Body: body},
		response: &httpclient.Response{StatusCode: http.StatusOK, Body: "", Header: http.Header{}, RequestID: ""},
		err:      nil,
	}

	f.expectations = append(f.expectations, exp)

	return exp
}

func (f *FakeTransport) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]Call(nil), f.calls...)
}

func (f *FakeTransport) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.expectations)
}

func (f *FakeTransport) AssertExpectations() {
	f.t.Helper()

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, exp := range f.expectations {
		f.t.Errorf("expected call was not made: %s %s", exp.call.Method, exp.call.Path)
	}
}

func (f *FakeTransport) Get(_ context.Context, path string) (*httpclient.Response, error) {
	return f.handle(Call{Method: http.MethodGet, Path: path, Body: ""})
}

func (f *FakeTransport) Post(_ context.Context, path string, body []byte) (*httpclient.Response, error) {
	return f.handle(Call{Method: http.MethodPost, Path: path, Body: string(body)})
}

func (f *FakeTransport) Put(_ context.Context, path string, body []byte) (*httpclient.Response, error) {
	return f.handle(Call{Method: http.MethodPut, Path: path, Body: string(body)})
}

func (f *FakeTransport) Patch(_ context.Context, path string, body []byte) (*httpclient.Response, error) {
	return f.handle(Call{Method: http.MethodPatch, Path: path, Body: string(body)})
}

func (f *FakeTransport) Delete(_ context.Context, path string) (*httpclient.Response, error) {
	return f.handle(Call{Method: http.MethodDelete, Path: path, Body: ""})
}

func (f *FakeTransport) handle(call Call) (*httpclient.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, call)

	if len(f.expectations) == 0 {
		f.t.Errorf("unexpected call: %s %s", call.Method, call.Path)

		return nil, fmt.Errorf("%w: %s %s", ErrUnexpectedCall, call.Method, call.Path)
	}

	exp := f.expectations[0]
	f.expectations = f.expectations[1:]

	assert.Equal(f.t, exp.call.Method, call.Method, "transport method")
	assert.Equal(f.t, exp.call.Path, call.Path, "transport path")
	assert.Equal(f.t, exp.call.Body, call.Body, "transport body")

	if exp.err != nil {
		return nil, exp.err
	}

	resp := *exp.response

	return &resp, nil
}
