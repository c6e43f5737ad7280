// Package api provides the server provisioning REST API.
package api
