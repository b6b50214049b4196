package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/codeverse/backend/internal/models"
	"github.com/codeverse/backend/internal/storage"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"
)

// ConnectionSupervisor is the interface that reports whether the primary store can be used.
type ConnectionSupervisor interface {
	// Method EnsureConnected connects to the database if needed and reports its availability.
	//
	// A verified connection is reused, so calling it before every operation is cheap.
	EnsureConnected(ctx context.Context) models.Availability
	// Method Ping probes the database connection, returning an error wrapping ErrUnavailable if it is not usable.
	Ping(ctx context.Context) error
}

// TutorialRepository is the interface that wraps methods for the tutorials collection of the primary store.
//
// Every method returns an error wrapping ErrUnavailable if the database cannot be reached
// and ErrQueryFailed if the query itself failed (malformed id included).
type TutorialRepository interface {
	// Method GetAll retrieve all tutorials with the list projection applied.
	GetAll(ctx context.Context) ([]models.Tutorial, error)
	// Method Export retrieve all tutorials with every field.
	Export(ctx context.Context) ([]models.Tutorial, error)
	// Method GetByID retrieve a tutorial by its id, ErrNotFound if there is none.
	GetByID(ctx context.Context, id string) (*models.Tutorial, error)
	// Method Create insert a tutorial and return the id assigned by the database.
	Create(ctx context.Context, tutorial *models.Tutorial) (string, error)
	// Method Update overwrite the editable fields of a tutorial and report whether a document matched.
	Update(ctx context.Context, id string, tutorial *models.Tutorial) (bool, error)
	// Method Delete remove a tutorial and report whether a document was removed.
	Delete(ctx context.Context, id string) (bool, error)
}

// MirrorStore is the interface that wraps methods for the local mirror file.
type MirrorStore interface {
	// Method Load read the whole mirror. Missing and malformed files read as an empty mirror.
	Load() (*storage.Mirror, error)
	// Method Save replace the whole mirror.
	Save(m *storage.Mirror) error
	// Method Update run a load-mutate-save cycle under the store lock.
	//
	// Nothing is written if fn returns an error, the error is returned unchanged.
	Update(fn func(m *storage.Mirror) error) error
	// Method Exists report whether the mirror file is present.
	Exists() bool
}

const (
	maxTitleLength       = 200
	maxDescriptionLength = 2000
)

// errMirrorUnchanged aborts a mirror update that has nothing to write
var errMirrorUnchanged = errors.New("mirror unchanged")

var knownLevels = []any{
	string(models.LevelBeginner),
	string(models.LevelIntermediate),
	string(models.LevelAdvanced),
}

type tutorialService struct {
	supervisor          ConnectionSupervisor
	repo                TutorialRepository
	mirror              MirrorStore
	fallbackOnEmptyList bool
	logger              *zap.Logger
	now                 func() time.Time
}

// NewTutorialService creates a new tutorial service.
//
// "fallbackOnEmptyList" makes List read the mirror when the database answers with no tutorials at all.
func NewTutorialService(supervisor ConnectionSupervisor, repo TutorialRepository, mirror MirrorStore, fallbackOnEmptyList bool, logger *zap.Logger) *tutorialService {
	return &tutorialService{
		supervisor:          supervisor,
		repo:                repo,
		mirror:              mirror,
		fallbackOnEmptyList: fallbackOnEmptyList,
		logger:              logger,
		now:                 time.Now,
	}
}

// List retrieves all tutorials and reports which store answered.
//
// The database is used when it is available and the query succeeds. Otherwise the mirror is read.
// Every returned tutorial has its defaults filled.
func (s *tutorialService) List(ctx context.Context) ([]models.Tutorial, models.Source, error) {
	if s.supervisor.EnsureConnected(ctx) == models.Available {
		tutorials, err := s.repo.GetAll(ctx)
		switch {
		case err != nil:
			s.logger.Warn("failed to list tutorials from database, using mirror", zap.Error(err))
		case len(tutorials) == 0 && s.fallbackOnEmptyList:
			s.logger.Info("database has no tutorials, using mirror")
		default:
			s.logger.Debug("tutorials loaded from database", zap.Int("count", len(tutorials)))
			return withDefaults(tutorials), models.SourceDatabase, nil
		}
	}

	m, err := s.mirror.Load()
	if err != nil {
		s.logger.Error("failed to list tutorials from mirror", zap.Error(err))
		return nil, "", fmt.Errorf("failed to list tutorials: %w", err)
	}

	tutorials := m.All()
	s.logger.Debug("tutorials loaded from mirror", zap.Int("count", len(tutorials)))
	return withDefaults(tutorials), models.SourceMirror, nil
}

// Get retrieves a tutorial by its id.
//
// The database is asked first. A malformed id, a failed query or a missing document sends the lookup to the mirror.
// ErrNotFound is returned only when neither store has the tutorial.
func (s *tutorialService) Get(ctx context.Context, id string) (*models.Tutorial, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", models.ErrValidation)
	}

	databaseAnswered := false
	if s.supervisor.EnsureConnected(ctx) == models.Available {
		tutorial, err := s.repo.GetByID(ctx, id)
		if err == nil {
			result := tutorial.WithDefaults()
			return &result, nil
		}
		if errors.Is(err, models.ErrNotFound) {
			databaseAnswered = true
		} else {
			s.logger.Debug("database lookup failed, using mirror", zap.String("id", id), zap.Error(err))
		}
	}

	m, err := s.mirror.Load()
	if err != nil {
		s.logger.Error("failed to read tutorial from mirror", zap.String("id", id), zap.Error(err))
		if databaseAnswered {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tutorial: %w", err)
	}

	tutorial, ok := m.Get(id)
	if !ok {
		return nil, models.ErrNotFound
	}
	result := tutorial.WithDefaults()
	return &result, nil
}

// Create stores a new tutorial.
//
// The database insert is attempted when the database is available and its id is used for the record.
// Otherwise the record gets a generated id. The record is always written to the mirror under the same id,
// and a mirror write failure fails the operation.
func (s *tutorialService) Create(ctx context.Context, req *models.CreateTutorialRequest) (*models.Tutorial, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	tutorial := models.Tutorial{
		Title:       req.Title,
		Description: req.Description,
		Level:       valueOr(req.Level, models.DefaultLevel),
		Duration:    valueOr(req.Duration, models.DefaultDuration),
		Language:    valueOr(req.Language, models.DefaultLanguage),
		Content:     req.Content,
		CreatedAt:   &now,
		LastUpdated: &now,
	}

	inDatabase := false
	if s.supervisor.EnsureConnected(ctx) == models.Available {
		id, err := s.repo.Create(ctx, &tutorial)
		if err != nil {
			s.logger.Warn("failed to create tutorial in database, saving to mirror only", zap.Error(err))
		} else {
			tutorial.ID = id
			inDatabase = true
		}
	}
	if tutorial.ID == "" {
		tutorial.ID = storage.GenerateID()
	}

	err := s.mirror.Update(func(m *storage.Mirror) error {
		m.Put(tutorial)
		return nil
	})
	if err != nil {
		if inDatabase {
			s.rollbackCreate(ctx, tutorial.ID, err)
		}
		return nil, fmt.Errorf("failed to save tutorial: %w", err)
	}

	s.logger.Info("tutorial created", zap.String("id", tutorial.ID), zap.Bool("in_database", inDatabase))
	result := tutorial.WithDefaults()
	return &result, nil
}

// rollbackCreate removes a document whose mirror write failed, so a failed Create leaves nothing behind
func (s *tutorialService) rollbackCreate(ctx context.Context, id string, cause error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil || !deleted {
		s.logger.Error("tutorial created in database but not in mirror, rollback failed",
			zap.String("id", id),
			zap.NamedError("cause", cause),
			zap.Error(err),
		)
		return
	}
	s.logger.Warn("tutorial creation rolled back after mirror write failed",
		zap.String("id", id),
		zap.Error(cause),
	)
}

// Update applies a partial update to a tutorial.
//
// The current record is taken from the database, then the mirror, then the defaults, so updating an unknown id
// creates it. The mirror write is required. The database update is attempted afterwards and its failure is
// only logged.
func (s *tutorialService) Update(ctx context.Context, id string, req *models.UpdateTutorialRequest) (*models.Tutorial, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", models.ErrValidation)
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		req.Title = &title
	}
	if err := validateUpdateRequest(req); err != nil {
		return nil, err
	}

	available := s.supervisor.EnsureConnected(ctx) == models.Available

	var fromDatabase *models.Tutorial
	if available {
		tutorial, err := s.repo.GetByID(ctx, id)
		switch {
		case err == nil:
			fromDatabase = tutorial
		case !errors.Is(err, models.ErrNotFound):
			s.logger.Debug("database lookup failed before update", zap.String("id", id), zap.Error(err))
		}
	}

	now := s.now().UTC()
	var updated models.Tutorial
	err := s.mirror.Update(func(m *storage.Mirror) error {
		current := models.Tutorial{ID: id}
		if fromDatabase != nil {
			current = *fromDatabase
		} else if tutorial, ok := m.Get(id); ok {
			current = tutorial
		}

		req.Apply(&current)
		current.ID = id
		current.Title = valueOr(current.Title, models.DefaultTitle)
		current.Level = valueOr(current.Level, models.DefaultLevel)
		current.Duration = valueOr(current.Duration, models.DefaultDuration)
		current.Language = valueOr(current.Language, models.DefaultLanguage)
		if current.CreatedAt == nil {
			current.CreatedAt = &now
		}
		current.LastUpdated = &now

		m.Put(current)
		updated = current
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save tutorial: %w", err)
	}

	if available {
		matched, err := s.repo.Update(ctx, id, &updated)
		switch {
		case err != nil:
			s.logger.Warn("tutorial updated in mirror but not in database", zap.String("id", id), zap.Error(err))
		case !matched:
			s.logger.Debug("tutorial is not in database, updated in mirror only", zap.String("id", id))
		}
	}

	s.logger.Info("tutorial updated", zap.String("id", id))
	result := updated.WithDefaults()
	return &result, nil
}

// Delete removes a tutorial from both stores.
//
// It succeeds if at least one store removed the tutorial and returns ErrNotFound if neither had it.
func (s *tutorialService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", models.ErrValidation)
	}

	removedFromDatabase := false
	if s.supervisor.EnsureConnected(ctx) == models.Available {
		deleted, err := s.repo.Delete(ctx, id)
		if err != nil {
			s.logger.Debug("failed to delete tutorial from database", zap.String("id", id), zap.Error(err))
		}
		removedFromDatabase = deleted
	}

	removedFromMirror := false
	err := s.mirror.Update(func(m *storage.Mirror) error {
		if !m.Delete(id) {
			return errMirrorUnchanged
		}
		removedFromMirror = true
		return nil
	})
	if err != nil && !errors.Is(err, errMirrorUnchanged) {
		if !removedFromDatabase {
			return fmt.Errorf("failed to delete tutorial: %w", err)
		}
		s.logger.Error("tutorial deleted from database but not from mirror", zap.String("id", id), zap.Error(err))
	}

	if !removedFromDatabase && !removedFromMirror {
		return models.ErrNotFound
	}

	s.logger.Info("tutorial deleted",
		zap.String("id", id),
		zap.Bool("from_database", removedFromDatabase),
		zap.Bool("from_mirror", removedFromMirror),
	)
	return nil
}

// Sync replaces the whole mirror with the content of the database and returns the number of tutorials written.
//
// The export runs under the mirror lock, so a write that lands during the sync is not lost.
// Returns an error wrapping ErrUnavailable if the database cannot be reached. Nothing is merged.
func (s *tutorialService) Sync(ctx context.Context) (int, error) {
	if s.supervisor.EnsureConnected(ctx) != models.Available {
		return 0, fmt.Errorf("failed to sync tutorials: %w", models.ErrUnavailable)
	}

	count := 0
	err := s.mirror.Update(func(m *storage.Mirror) error {
		tutorials, err := s.repo.Export(ctx)
		if err != nil {
			s.logger.Error("failed to read tutorials for sync", zap.Error(err))
			return err
		}
		m.Replace(tutorials)
		count = len(tutorials)
		return nil
	})
	if err != nil {
		s.logger.Error("failed to synchronize mirror", zap.Error(err))
		return 0, fmt.Errorf("failed to sync tutorials: %w", err)
	}

	s.logger.Info("mirror synchronized from database", zap.Int("count", count))
	return count, nil
}

// Health reports the state of both stores.
// The service is healthy while at least one store can serve tutorials.
func (s *tutorialService) Health(ctx context.Context) models.HealthStatus {
	database := models.Unavailable
	if err := s.supervisor.Ping(ctx); err == nil {
		database = models.Available
	}

	fallback := "not found"
	if s.mirror.Exists() {
		fallback = "available"
	}

	status := "degraded"
	if database == models.Available || fallback == "available" {
		status = "healthy"
	}

	return models.HealthStatus{
		Status:       status,
		Database:     database.String(),
		JSONFallback: fallback,
		Timestamp:    s.now().UTC(),
	}
}

// validateCreateRequest validates a create request
func validateCreateRequest(req *models.CreateTutorialRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.Required, validation.RuneLength(1, maxTitleLength)),
		validation.Field(&req.Description, validation.RuneLength(0, maxDescriptionLength)),
		validation.Field(&req.Level, validation.In(knownLevels...)),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", models.ErrValidation, err)
	}
	return nil
}

// validateUpdateRequest validates an update request, only the fields that are present are checked
func validateUpdateRequest(req *models.UpdateTutorialRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.NilOrNotEmpty, validation.RuneLength(1, maxTitleLength)),
		validation.Field(&req.Description, validation.RuneLength(0, maxDescriptionLength)),
		validation.Field(&req.Level, validation.In(knownLevels...)),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", models.ErrValidation, err)
	}
	return nil
}

// withDefaults fills the defaults of every tutorial in place
func withDefaults(tutorials []models.Tutorial) []models.Tutorial {
	for i := range tutorials {
		tutorials[i] = tutorials[i].WithDefaults()
	}
	return tutorials
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
