// Package logging builds the zap logger the server and its background
// workers share. "dev" gets the human console encoder at debug level,
// anything else gets production JSON.
package logging

import "go.uber.org/zap"

func New(env string) (*zap.Logger, error) {
	if env == "dev" || env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
