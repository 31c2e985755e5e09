/*
 * Copyright 2025 Comcast Cable Communications Management, LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package redfishtest provides a fake Redfish BMC for tests.
package redfishtest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/comcast/fishyredfish/common"
)

const (
	User = "admin"
	Pass = "password"
)

// Request is a request received by the fake BMC
type Request struct {
	Method string
	Path   string
	Body   []byte
	User   string
	Pass   string
}

type response struct {
	status int
	body   []byte
}

// Server is a fake BMC answering canned responses keyed by method and path.
// Unknown paths get a 404. Requests without the User/Pass credential get a 401.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	routes   map[string]response
	systems  []string
	requests []Request
}

func NewServer() *Server {
	s := &Server{routes: make(map[string]response)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

func routeKey(method, path string) string {
	return method + " " + strings.TrimSuffix(path, "/")
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	user, pass, _ := r.BasicAuth()

	s.mu.Lock()
	s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path, Body: body, User: user, Pass: pass})
	resp, ok := s.routes[routeKey(r.Method, r.URL.Path)]
	s.mu.Unlock()

	if user != User || pass != Pass {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":"Base.1.0.GeneralError","message":"NoValidSession"}}`))
		return
	}

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("Unknown path - please create test case(s) for it"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	w.Write(resp.body)
}

// Handle registers a response. body is sent as is when it is a string or
// []byte, anything else is marshalled to JSON.
func (s *Server) Handle(method, path string, status int, body interface{}) {
	var b []byte
	switch v := body.(type) {
	case nil:
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		b = MustMarshal(v)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[routeKey(method, path)] = response{status: status, body: b}
}

// HandleGet registers a 200 response to a GET
func (s *Server) HandleGet(path string, body interface{}) {
	s.Handle(http.MethodGet, path, http.StatusOK, body)
}

// AddSystem adds a system to /redfish/v1/Systems linked to one chassis and one
// manager, and answers its reset action with 204.
func (s *Server) AddSystem(id, chassis, manager string) {
	s.AddSystemDocument(id, map[string]interface{}{
		"@odata.id":  "/redfish/v1/Systems/" + id,
		"Id":         id,
		"PowerState": "On",
		"Links": map[string]interface{}{
			"Chassis":   []map[string]string{{"@odata.id": "/redfish/v1/Chassis/" + chassis}},
			"ManagedBy": []map[string]string{{"@odata.id": "/redfish/v1/Managers/" + manager}},
		},
	})
	s.Handle(http.MethodPost, "/redfish/v1/Systems/"+id+"/Actions/ComputerSystem.Reset", http.StatusNoContent, nil)
}

// AddSystemDocument adds a system with a custom document
func (s *Server) AddSystemDocument(id string, doc interface{}) {
	s.mu.Lock()
	s.systems = append(s.systems, id)
	members := make([]map[string]string, 0, len(s.systems))
	for _, sys := range s.systems {
		members = append(members, map[string]string{"@odata.id": "/redfish/v1/Systems/" + sys})
	}
	s.mu.Unlock()

	s.HandleGet("/redfish/v1/Systems", map[string]interface{}{
		"@odata.id":           "/redfish/v1/Systems",
		"Members":             members,
		"Members@odata.count": len(members),
	})
	s.HandleGet("/redfish/v1/Systems/"+id, doc)
}

// Requests returns a copy of the requests received so far
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// LastRequest returns the most recent request
func (s *Server) LastRequest() Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Request{}
	}
	return s.requests[len(s.requests)-1]
}

func MustMarshal(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// CountingTransport wraps a transport and counts the exchanges going through it
type CountingTransport struct {
	Next common.Transport

	mu    sync.Mutex
	calls int
}

func (c *CountingTransport) Do(ctx context.Context, method, uri string, cred *common.Credential, body []byte) (int, []byte, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.Next.Do(ctx, method, uri, cred, body)
}

// Calls is the number of exchanges so far
func (c *CountingTransport) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}
