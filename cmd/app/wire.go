//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/property-valuator/internal/bootstrap"
	"github.com/yanqian/property-valuator/internal/domain/nqs"
	"github.com/yanqian/property-valuator/internal/domain/valuation"
	"github.com/yanqian/property-valuator/internal/infra/config"
	httpiface "github.com/yanqian/property-valuator/internal/interface/http"
	"github.com/yanqian/property-valuator/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideValuationConfig,
		provideNQSConfig,
		provideRemoteScorer,
		provideDataset,
		provideHistoryStore,
		provideLearningHook,
		provideNQSScorer,
		nqs.NewEngine,
		nqs.NewService,
		valuation.NewService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
