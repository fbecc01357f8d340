// Package api contains tests that run against a real backend server.
//
// These tests are excluded from normal test runs and only execute when the
// "api" build tag is set:
//
//	go test -tags=api ./tests/api/... -v
//
// Configuration comes from the environment:
//
//	API_BASE_URL    base URL of the running server (default http://localhost:8080)
//	SESSION_SECRET  login secret of the running server; the suite skips when unset
package api
