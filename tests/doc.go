// Package tests holds the shared test infrastructure for the invoice backend:
// builders and fixtures under fixtures/, testify mocks under mocks/, and the
// integration, e2e, and live-API suites in their own subpackages.
//
// The blank imports below pin the heavier test-only dependencies that are
// otherwise only referenced behind build tags.
package tests

import (
	_ "github.com/stretchr/testify/suite"
	_ "github.com/testcontainers/testcontainers-go"
)
