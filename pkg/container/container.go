package container

import (
	"context"
	"fmt"
	"time"

	"contenthub-backend/internal/api"
	"contenthub-backend/internal/auth"
	authService "contenthub-backend/internal/auth/service"
	"contenthub-backend/internal/config"
	"contenthub-backend/internal/domains/category"
	categoryRepo "contenthub-backend/internal/domains/category/repository"
	"contenthub-backend/internal/domains/event"
	eventRepo "contenthub-backend/internal/domains/event/repository"
	"contenthub-backend/internal/domains/people"
	peopleRepo "contenthub-backend/internal/domains/people/repository"
	"contenthub-backend/internal/domains/resource"
	resourceRepo "contenthub-backend/internal/domains/resource/repository"
	"contenthub-backend/internal/domains/user"
	userRepo "contenthub-backend/internal/domains/user/repository"
	infraCache "contenthub-backend/internal/infrastructure/cache"
	"contenthub-backend/internal/infrastructure/database"
	"contenthub-backend/internal/infrastructure/queue"
	"contenthub-backend/internal/infrastructure/storage"
	"contenthub-backend/internal/store"
	"contenthub-backend/pkg/cache"
	"contenthub-backend/pkg/jwt"
	"contenthub-backend/pkg/logger"
)

// Container is the root of the dependency graph, built once at startup and
// shared by the API server and the worker.
type Container struct {
	Config     *config.Config
	DB         *database.PostgresDB
	Cache      cache.Cache
	Storage    *storage.MinIOStorage
	Queue      *queue.Client
	JWTManager *jwt.Manager

	AuthService *authService.Service
	AuthStore   *auth.Store
	UserStore   *user.Store

	Categories *store.Store[category.Category, category.CreateCategoryRequest, category.UpdateCategoryRequest]
	Events     *store.Store[event.Event, event.CreateEventRequest, event.UpdateEventRequest]
	People     *store.Store[people.Person, people.CreatePersonRequest, people.UpdatePersonRequest]
	Resources  *store.Store[resource.Resource, resource.CreateResourceRequest, resource.UpdateResourceRequest]

	CategoryHandler *api.EntityHandler[category.Category, category.CreateCategoryRequest, category.UpdateCategoryRequest]
	EventHandler    *api.EntityHandler[event.Event, event.CreateEventRequest, event.UpdateEventRequest]
	PeopleHandler   *api.EntityHandler[people.Person, people.CreatePersonRequest, people.UpdatePersonRequest]
	ResourceHandler *api.EntityHandler[resource.Resource, resource.CreateResourceRequest, resource.UpdateResourceRequest]
	UserHandler     *api.UserHandler
	AuthHandler     *api.AuthHandler
}

// NewContainer wires config, infrastructure, stores and handlers, in that
// order.
func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	c.Config = cfg
	logger.Init(cfg.App.Environment)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	c.DB = db

	redisCache := infraCache.NewRedisCache(cfg.Redis)
	if err := redisCache.Ping(ctx); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	c.Cache = redisCache

	objectStore, err := storage.NewMinIOStorage(cfg.MinIO)
	if err != nil {
		return nil, fmt.Errorf("connect object storage: %w", err)
	}
	if err := objectStore.EnsureBuckets(ctx, cfg.Buckets.All()); err != nil {
		return nil, fmt.Errorf("ensure buckets: %w", err)
	}
	c.Storage = objectStore

	c.Queue = queue.NewClient(cfg.Redis.Host)
	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, time.Duration(cfg.JWT.SessionExpiry)*time.Hour)

	c.AuthService = authService.New(db.Pool, c.Cache, c.JWTManager, cfg)

	processor := storage.NewImageProcessor()
	images := func(bucket string) *storage.ImageTransfer {
		return storage.NewImageTransfer(objectStore, bucket, processor)
	}

	c.Categories = store.New(store.Config[category.Category, category.CreateCategoryRequest, category.UpdateCategoryRequest]{
		Singular:   "category",
		Plural:     "categories",
		Repo:       categoryRepo.NewPostgresRepository(db.Pool),
		Images:     images(cfg.Buckets.Categories),
		Cleanup:    c.Queue,
		CreateName: func(dto category.CreateCategoryRequest) string { return dto.Name },
		PatchName:  category.UpdateCategoryRequest.NewName,
	})

	c.Events = store.New(store.Config[event.Event, event.CreateEventRequest, event.UpdateEventRequest]{
		Singular:   "event",
		Plural:     "events",
		Repo:       eventRepo.NewPostgresRepository(db.Pool),
		Images:     images(cfg.Buckets.Events),
		Cleanup:    c.Queue,
		CreateName: func(dto event.CreateEventRequest) string { return dto.Title },
		PatchName:  event.UpdateEventRequest.NewName,
	})

	c.People = store.New(store.Config[people.Person, people.CreatePersonRequest, people.UpdatePersonRequest]{
		Singular:   "person",
		Plural:     "people",
		Repo:       peopleRepo.NewPostgresRepository(db.Pool),
		Images:     images(cfg.Buckets.People),
		Cleanup:    c.Queue,
		CreateName: func(dto people.CreatePersonRequest) string { return dto.Name },
		PatchName:  people.UpdatePersonRequest.NewName,
	})

	// Resources have no slug; their url column is the media slot itself.
	c.Resources = store.New(store.Config[resource.Resource, resource.CreateResourceRequest, resource.UpdateResourceRequest]{
		Singular: "resource",
		Plural:   "resources",
		Repo:     resourceRepo.NewPostgresRepository(db.Pool),
		Images:   images(cfg.Buckets.Resources),
		Cleanup:  c.Queue,
	})

	c.UserStore = user.NewStore(
		userRepo.NewPostgresRepository(db.Pool),
		c.AuthService,
		images(cfg.Buckets.Users),
		c.Queue,
	)
	c.AuthStore = auth.NewStore(c.AuthService, c.UserStore)

	c.CategoryHandler = api.NewEntityHandler(c.Categories, "category")
	c.EventHandler = api.NewEntityHandler(c.Events, "event")
	c.PeopleHandler = api.NewEntityHandler(c.People, "person")
	c.ResourceHandler = api.NewEntityHandler(c.Resources, "resource")
	c.UserHandler = api.NewUserHandler(c.UserStore)
	c.AuthHandler = api.NewAuthHandler(c.AuthStore)

	return c, nil
}

// Cleanup releases held connections, in reverse initialization order.
func (c *Container) Cleanup() {
	if c.Queue != nil {
		if err := c.Queue.Close(); err != nil {
			logger.Error("failed to close queue client", err)
		}
	}
	if closer, ok := c.Cache.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("failed to close redis", err)
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
