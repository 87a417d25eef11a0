package logging

import (
	"github.com/Gobusters/ectologger"
	"go.uber.org/zap"
)

// New builds the application logger: an ectologger whose sink writes every
// entry through zap, so output is JSON in production and human-readable in
// development.
func New(environment string) (ectologger.Logger, func(), error) {
	var zl *zap.Logger
	var err error

	if environment == "production" {
		zl, err = zap.NewProduction()
	} else {
		zl, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, nil, err
	}

	logger := ectologger.NewEctoLogger(func(msg ectologger.EctoLogMessage) {
		zl.Info("log", zap.Any("entry", msg))
	})

	flush := func() {
		_ = zl.Sync()
	}

	return logger, flush, nil
}
