package service

import (
	"EnvKeeper/internal/crypto"
	"EnvKeeper/internal/model"
	"EnvKeeper/internal/repo"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Сколько раз повторяем сохранение версии при гонке за номер.
const versionRetries = 3

// EnvEntry — пара имя/значение на входе сохранения. Значение открытое,
// шифруется уже внутри сервиса.
type EnvEntry struct {
	Name  string
	Value string
}

// VersionResult — итог сохранения. Skipped перечисляет переменные,
// которые не удалось расшифровать при переносе из прошлой версии
// (политика skip-and-continue, см. DESIGN.md).
type VersionResult struct {
	Version *model.EnvVersion
	Skipped []string
}

// VaultService — версионируемое хранилище переменных окружения.
// Каждое сохранение перешифровывает ПОЛНЫЙ набор переменных (старые + новые)
// в новую неизменяемую версию под паролем проекта.
type VaultService struct {
	projects repo.ProjectRepository
	envs     repo.EnvRepository
	logger   *zap.SugaredLogger
}

func NewVaultService(projects repo.ProjectRepository, envs repo.EnvRepository, logger *zap.SugaredLogger) *VaultService {
	return &VaultService{projects: projects, envs: envs, logger: logger}
}

// CreateVersion сохраняет новую версию: проверяет пароль проекта, переносит
// переменные последней версии, накладывает newEntries (новые значения
// перекрывают старые по имени) и шифрует всё заново свежими солями/nonce.
// При неверном пароле версия не создаётся.
func (s *VaultService) CreateVersion(ctx context.Context, projectID string, newEntries []EnvEntry, password string) (*VersionResult, error) {
	if err := s.checkPassword(ctx, projectID, password); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < versionRetries; attempt++ {
		snap, err := s.loadSnapshot(ctx, projectID, password)
		if err != nil {
			return nil, err
		}
		for _, e := range newEntries {
			snap.values[e.Name] = e.Value
		}

		res, err := s.persistSnapshot(ctx, projectID, snap, password)
		if err == nil {
			return res, nil
		}
		if !repo.IsDuplicateVersion(err) {
			return nil, err
		}
		// параллельное сохранение успело занять номер — перечитываем и повторяем
		s.logger.Warnw("version number race, retrying", "project_id", projectID, "attempt", attempt+1)
	}
	return nil, ErrVersionConflict
}

// DeleteVariable выражает удаление как новую версию без указанной переменной.
// Сами записи прошлых версий не трогаются — история остаётся полной.
func (s *VaultService) DeleteVariable(ctx context.Context, projectID, name, password string) (*VersionResult, error) {
	if err := s.checkPassword(ctx, projectID, password); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < versionRetries; attempt++ {
		snap, err := s.loadSnapshot(ctx, projectID, password)
		if err != nil {
			return nil, err
		}
		if _, ok := snap.values[name]; !ok {
			return nil, ErrNotFound
		}
		delete(snap.values, name)

		res, err := s.persistSnapshot(ctx, projectID, snap, password)
		if err == nil {
			return res, nil
		}
		if !repo.IsDuplicateVersion(err) {
			return nil, err
		}
		s.logger.Warnw("version number race, retrying", "project_id", projectID, "attempt", attempt+1)
	}
	return nil, ErrVersionConflict
}

// Reveal расшифровывает значение одной переменной. Неверный пароль и
// испорченные данные неразличимы: наружу уходит crypto.ErrDecryption.
func (s *VaultService) Reveal(ctx context.Context, variableID, password string) (string, error) {
	v, err := s.envs.GetVariableByID(ctx, variableID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return crypto.Decrypt(&v.Envelope, password)
}

// ListVariables возвращает переменные последнего снимка (без расшифровки).
// Если версий ещё нет — пустой список.
func (s *VaultService) ListVariables(ctx context.Context, projectID string) ([]model.EnvVariable, error) {
	latest, err := s.envs.GetLatestVersion(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []model.EnvVariable{}, nil
		}
		return nil, err
	}
	return s.envs.GetVariablesByVersion(ctx, latest.ID)
}

// ListVersions возвращает историю версий проекта по возрастанию номера.
func (s *VaultService) ListVersions(ctx context.Context, projectID string) ([]model.EnvVersion, error) {
	return s.envs.ListVersions(ctx, projectID)
}

func (s *VaultService) checkPassword(ctx context.Context, projectID, password string) error {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	ok, err := crypto.VerifyPassword(password, p.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidPassword
	}
	return nil
}

// snapshot — расшифрованное состояние последней версии.
type snapshot struct {
	values     map[string]string
	skipped    []string
	prevNumber int64
}

// loadSnapshot читает и расшифровывает полный набор переменных последней
// версии. Переменная, не поддавшаяся расшифровке, пропускается с warning
// и попадает в skipped — она не будет перенесена в новую версию.
func (s *VaultService) loadSnapshot(ctx context.Context, projectID, password string) (*snapshot, error) {
	snap := &snapshot{values: map[string]string{}}

	latest, err := s.envs.GetLatestVersion(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return snap, nil
		}
		return nil, err
	}
	snap.prevNumber = latest.VersionNumber

	vars, err := s.envs.GetVariablesByVersion(ctx, latest.ID)
	if err != nil {
		return nil, err
	}
	for _, v := range vars {
		plain, err := crypto.Decrypt(&v.Envelope, password)
		if err != nil {
			s.logger.Warnw("carry-forward: variable skipped, decryption failed",
				"project_id", projectID, "name", v.Name, "version", latest.VersionNumber)
			snap.skipped = append(snap.skipped, v.Name)
			continue
		}
		snap.values[v.Name] = plain
	}
	return snap, nil
}

// persistSnapshot шифрует набор заново и вставляет версию с переменными
// одной транзакцией. Гонку за номер ловит уникальный индекс.
func (s *VaultService) persistSnapshot(ctx context.Context, projectID string, snap *snapshot, password string) (*VersionResult, error) {
	names := make([]string, 0, len(snap.values))
	for name := range snap.values {
		names = append(names, name)
	}
	sort.Strings(names)

	version := &model.EnvVersion{
		ID:            uuid.NewString(),
		ProjectID:     projectID,
		VersionNumber: snap.prevNumber + 1,
		VariableCount: len(names),
	}

	meta, err := json.Marshal(map[string]any{
		"variables": len(names),
		"created":   time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}
	metaEnv, err := crypto.Encrypt(string(meta), password)
	if err != nil {
		return nil, err
	}
	version.Meta = *metaEnv

	vars := make([]model.EnvVariable, 0, len(names))
	for _, name := range names {
		env, err := crypto.Encrypt(snap.values[name], password)
		if err != nil {
			return nil, fmt.Errorf("encrypt %q: %w", name, err)
		}
		vars = append(vars, model.EnvVariable{
			ID:        uuid.NewString(),
			ProjectID: projectID,
			VersionID: version.ID,
			Name:      name,
			Envelope:  *env,
		})
	}

	if err := s.envs.CreateVersionWithVariables(ctx, version, vars); err != nil {
		return nil, err
	}
	return &VersionResult{Version: version, Skipped: snap.skipped}, nil
}
