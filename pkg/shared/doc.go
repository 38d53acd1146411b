// Package shared provides common URL utilities used across the
// Federation SDK for Go. It includes absolute-URL normalization and
// origin (scheme, host, port) comparison helpers.
//
// This package is typically used internally by other SDK packages but
// is also available for direct use when building custom integrations
// with federated servers.
package shared
