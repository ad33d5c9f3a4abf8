package factory

import (
	"fmt"

	"github.com/dinesh-git17/debate-lab-sub000/pkg/domain/embedding"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/infra/embedding/openai"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
)

const ProviderOpenAI = "openai"

//go:generate mockery --name=EmbeddingServiceLocator --dir=. --output=./mocks --filename=embedding_service_locator_mock.go --case=underscore --with-expecter

type EmbeddingServiceLocator interface {
	GetService(provider string) (embedding.Creator, error)
}

type serviceLocator struct {
	client *fasthttp.Client
	logger *logrus.Logger
}

func NewEmbeddingServiceLocator(client *fasthttp.Client, logger *logrus.Logger) EmbeddingServiceLocator {
	return &serviceLocator{
		client: client,
		logger: logger,
	}
}

func (l *serviceLocator) GetService(provider string) (embedding.Creator, error) {
	switch provider {
	case ProviderOpenAI:
		return openai.NewOpenAIEmbeddingService(l.client, l.logger), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", provider)
	}
}
