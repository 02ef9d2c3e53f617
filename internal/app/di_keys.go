package app

import (
	"fmt"
	"sync"

	cryptoDomain "github.com/allisson/sealkeeper/internal/crypto/domain"
	cryptoService "github.com/allisson/sealkeeper/internal/crypto/service"
	keypairUsecase "github.com/allisson/sealkeeper/internal/keypair/usecase"
	lifecycleService "github.com/allisson/sealkeeper/internal/lifecycle/service"
	lifecycleUsecase "github.com/allisson/sealkeeper/internal/lifecycle/usecase"
	sealService "github.com/allisson/sealkeeper/internal/seal/service"
	sealUsecase "github.com/allisson/sealkeeper/internal/seal/usecase"
)

// keyComponents holds key custody, lifecycle and sealing dependencies.
type keyComponents struct {
	cryptorFactory *cryptoService.CryptorFactoryService
	keyPairStore   keypairUsecase.KeyPairStore
	ownerCache     *lifecycleService.OwnerCache
	ownerLocks     *lifecycleService.OwnerLocks
	keyLifecycle   lifecycleUsecase.KeyLifecycleUseCase
	sharedValues   lifecycleUsecase.SharedValueUseCase
	sealUseCase    sealUsecase.SealUseCase

	cryptorFactoryInit sync.Once
	keyPairStoreInit   sync.Once
	ownerCacheInit     sync.Once
	ownerLocksInit     sync.Once
	keyLifecycleInit   sync.Once
	sharedValuesInit   sync.Once
	sealUseCaseInit    sync.Once
}

// CryptorFactory returns the factory for the configured asymmetric backend
// and private key protection algorithm.
func (c *Container) CryptorFactory() (*cryptoService.CryptorFactoryService, error) {
	c.cryptorFactoryInit.Do(func() {
		var err error
		c.cryptorFactory, err = c.initCryptorFactory()
		c.setInitError("cryptorFactory", err)
	})
	if err := c.initError("cryptorFactory"); err != nil {
		return nil, err
	}
	return c.cryptorFactory, nil
}

// KeyPairStore returns the owner key pair store.
func (c *Container) KeyPairStore() (keypairUsecase.KeyPairStore, error) {
	c.keyPairStoreInit.Do(func() {
		var err error
		c.keyPairStore, err = c.initKeyPairStore()
		c.setInitError("keyPairStore", err)
	})
	if err := c.initError("keyPairStore"); err != nil {
		return nil, err
	}
	return c.keyPairStore, nil
}

// OwnerCache returns the process-wide unlocked key pair cache.
func (c *Container) OwnerCache() (*lifecycleService.OwnerCache, error) {
	c.ownerCacheInit.Do(func() {
		var err error
		c.ownerCache, err = lifecycleService.NewOwnerCache(c.config.KeyCacheTTL)
		c.setInitError("ownerCache", err)
	})
	if err := c.initError("ownerCache"); err != nil {
		return nil, err
	}
	return c.ownerCache, nil
}

// OwnerLocks returns the per-owner lock set shared by every key-mutating use case.
func (c *Container) OwnerLocks() *lifecycleService.OwnerLocks {
	c.ownerLocksInit.Do(func() {
		c.ownerLocks = lifecycleService.NewOwnerLocks()
	})
	return c.ownerLocks
}

// KeyLifecycleUseCase returns the key lifecycle orchestrator, instrumented when metrics are enabled.
func (c *Container) KeyLifecycleUseCase() (lifecycleUsecase.KeyLifecycleUseCase, error) {
	c.keyLifecycleInit.Do(func() {
		var err error
		c.keyLifecycle, err = c.initKeyLifecycleUseCase()
		c.setInitError("keyLifecycle", err)
	})
	if err := c.initError("keyLifecycle"); err != nil {
		return nil, err
	}
	return c.keyLifecycle, nil
}

// SharedValueUseCase returns the shared value use case.
func (c *Container) SharedValueUseCase() (lifecycleUsecase.SharedValueUseCase, error) {
	c.sharedValuesInit.Do(func() {
		var err error
		c.sharedValues, err = c.initSharedValueUseCase()
		c.setInitError("sharedValues", err)
	})
	if err := c.initError("sharedValues"); err != nil {
		return nil, err
	}
	return c.sharedValues, nil
}

// SealUseCase returns the owner-set sealing use case.
func (c *Container) SealUseCase() (sealUsecase.SealUseCase, error) {
	c.sealUseCaseInit.Do(func() {
		var err error
		c.sealUseCase, err = c.initSealUseCase()
		c.setInitError("sealUseCase", err)
	})
	if err := c.initError("sealUseCase"); err != nil {
		return nil, err
	}
	return c.sealUseCase, nil
}

func (c *Container) initCryptorFactory() (*cryptoService.CryptorFactoryService, error) {
	kdf := cryptoService.KDFParams{
		Time:      uint32(c.config.KDFTime),
		MemoryKiB: uint32(c.config.KDFMemoryKiB),
		Threads:   uint8(c.config.KDFThreads),
	}

	factory, err := cryptoService.NewCryptorFactory(
		cryptoDomain.Backend(c.config.AsymmetricBackend),
		c.config.RSAKeyBits,
		cryptoDomain.Algorithm(c.config.SymmetricAlgorithm),
		kdf,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cryptor factory: %w", err)
	}
	return factory, nil
}

func (c *Container) initKeyPairStore() (keypairUsecase.KeyPairStore, error) {
	store, err := c.Store()
	if err != nil {
		return nil, fmt.Errorf("failed to get store for key pair store: %w", err)
	}

	factory, err := c.CryptorFactory()
	if err != nil {
		return nil, fmt.Errorf("failed to get cryptor factory for key pair store: %w", err)
	}

	return keypairUsecase.NewKeyPairStore(store, factory, factory.Locker(), c.Logger()), nil
}

func (c *Container) initKeyLifecycleUseCase() (lifecycleUsecase.KeyLifecycleUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for key lifecycle use case: %w", err)
	}

	store, err := c.Store()
	if err != nil {
		return nil, fmt.Errorf("failed to get store for key lifecycle use case: %w", err)
	}

	keyPairs, err := c.KeyPairStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get key pair store for key lifecycle use case: %w", err)
	}

	factory, err := c.CryptorFactory()
	if err != nil {
		return nil, fmt.Errorf("failed to get cryptor factory for key lifecycle use case: %w", err)
	}

	bus, err := c.EventBus()
	if err != nil {
		return nil, fmt.Errorf("failed to get event bus for key lifecycle use case: %w", err)
	}

	cache, err := c.OwnerCache()
	if err != nil {
		return nil, fmt.Errorf("failed to get owner cache for key lifecycle use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for key lifecycle use case: %w", err)
	}

	credentials := &lifecycleService.StaticCredentials{
		OwnerID:    c.config.OwnerID,
		Passphrase: c.config.OwnerPassphrase,
	}

	useCase := lifecycleUsecase.NewKeyLifecycleUseCase(
		txManager,
		store,
		keyPairs,
		factory,
		bus,
		credentials,
		cache,
		c.OwnerLocks(),
		c.Logger(),
	)
	return lifecycleUsecase.NewKeyLifecycleUseCaseWithMetrics(useCase, businessMetrics), nil
}

func (c *Container) initSharedValueUseCase() (lifecycleUsecase.SharedValueUseCase, error) {
	store, err := c.Store()
	if err != nil {
		return nil, fmt.Errorf("failed to get store for shared value use case: %w", err)
	}

	keyPairs, err := c.KeyPairStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get key pair store for shared value use case: %w", err)
	}

	factory, err := c.CryptorFactory()
	if err != nil {
		return nil, fmt.Errorf("failed to get cryptor factory for shared value use case: %w", err)
	}

	lifecycle, err := c.KeyLifecycleUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get key lifecycle use case for shared value use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for shared value use case: %w", err)
	}

	useCase := lifecycleUsecase.NewSharedValueUseCase(store, keyPairs, factory, lifecycle, c.OwnerLocks(), c.Logger())
	return lifecycleUsecase.NewSharedValueUseCaseWithMetrics(useCase, businessMetrics), nil
}

func (c *Container) initSealUseCase() (sealUsecase.SealUseCase, error) {
	keyPairs, err := c.KeyPairStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get key pair store for seal use case: %w", err)
	}

	factory, err := c.CryptorFactory()
	if err != nil {
		return nil, fmt.Errorf("failed to get cryptor factory for seal use case: %w", err)
	}

	lifecycle, err := c.KeyLifecycleUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get key lifecycle use case for seal use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for seal use case: %w", err)
	}

	service, err := sealService.NewSealService(
		cryptoService.NewAEADManager(),
		cryptoDomain.Algorithm(c.config.SymmetricAlgorithm),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create seal service: %w", err)
	}

	useCase := sealUsecase.NewSealUseCase(service, keyPairs, factory, lifecycle, c.Logger())
	return sealUsecase.NewSealUseCaseWithMetrics(useCase, businessMetrics), nil
}
