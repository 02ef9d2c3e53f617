package app

import (
	"fmt"
	"sync"

	consentRepository "github.com/allisson/sealkeeper/internal/consent/repository"
	consentUsecase "github.com/allisson/sealkeeper/internal/consent/usecase"
	"github.com/allisson/sealkeeper/internal/database"
)

// consentComponents holds the recryption consent workflow dependencies.
type consentComponents struct {
	notificationSink consentUsecase.NotificationSink
	consentUseCase   consentUsecase.RecryptionConsentUseCase

	notificationSinkInit sync.Once
	consentUseCaseInit   sync.Once
}

// NotificationSink returns the notification repository for the configured database driver.
func (c *Container) NotificationSink() (consentUsecase.NotificationSink, error) {
	c.notificationSinkInit.Do(func() {
		var err error
		c.notificationSink, err = c.initNotificationSink()
		c.setInitError("notificationSink", err)
	})
	if err := c.initError("notificationSink"); err != nil {
		return nil, err
	}
	return c.notificationSink, nil
}

// RecryptionConsentUseCase returns the consent workflow.
func (c *Container) RecryptionConsentUseCase() (consentUsecase.RecryptionConsentUseCase, error) {
	c.consentUseCaseInit.Do(func() {
		var err error
		c.consentUseCase, err = c.initRecryptionConsentUseCase()
		c.setInitError("consentUseCase", err)
	})
	if err := c.initError("consentUseCase"); err != nil {
		return nil, err
	}
	return c.consentUseCase, nil
}

func (c *Container) initNotificationSink() (consentUsecase.NotificationSink, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for notification sink: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverMySQL:
		return consentRepository.NewMySQLNotificationRepository(db), nil
	case "postgres":
		return consentRepository.NewPostgreSQLNotificationRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initRecryptionConsentUseCase() (consentUsecase.RecryptionConsentUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for consent use case: %w", err)
	}

	store, err := c.Store()
	if err != nil {
		return nil, fmt.Errorf("failed to get store for consent use case: %w", err)
	}

	sink, err := c.NotificationSink()
	if err != nil {
		return nil, fmt.Errorf("failed to get notification sink for consent use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for consent use case: %w", err)
	}

	useCase := consentUsecase.NewRecryptionConsentUseCase(
		txManager,
		consentRepository.NewKeyValueRequestRepository(store),
		sink,
		consentRepository.NewStaticStakeholderDirectory(c.config.ConsentStakeholders),
		c.config.RecryptionRequestTTL,
		c.Logger(),
	)
	return consentUsecase.NewRecryptionConsentUseCaseWithMetrics(useCase, businessMetrics), nil
}
