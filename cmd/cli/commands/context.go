package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/harunaka/careshift/internal/config"
	"github.com/harunaka/careshift/pkg/postgres"
)

// AppContext holds the dependencies commands need
type AppContext struct {
	Cfg    *config.Config
	Store  *postgres.Store
	Logger *zap.Logger
	Ctx    context.Context
}
