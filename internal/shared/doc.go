// Package shared holds code used across packages that belongs to no single
// layer. Its testutil subpackage provides slog capture handlers and Labour
// Force Survey extract fixtures for tests.
package shared
