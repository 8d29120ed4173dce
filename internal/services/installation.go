package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/yohannreimer/projeto-treinamentos/internal/platform/logger"
	"github.com/yohannreimer/projeto-treinamentos/internal/repos"
	"github.com/yohannreimer/projeto-treinamentos/internal/types"
)

// InstallationResolver maps the configured installation-module codes to the
// catalog row that currently carries one of them. The code list is injected
// at startup; the first code that resolves wins. A nil result means no
// installation gate applies anywhere.
type InstallationResolver interface {
	Resolve(ctx context.Context, tx *gorm.DB) (*types.ModuleTemplate, error)
	PreferredCode() string
}

type installationResolver struct {
	codes      []string
	moduleRepo repos.ModuleRepo
	log        *logger.Logger
}

func NewInstallationResolver(codes []string, moduleRepo repos.ModuleRepo, baseLog *logger.Logger) InstallationResolver {
	return &installationResolver{
		codes:      codes,
		moduleRepo: moduleRepo,
		log:        baseLog.With("service", "InstallationResolver"),
	}
}

func (r *installationResolver) Resolve(ctx context.Context, tx *gorm.DB) (*types.ModuleTemplate, error) {
	for _, code := range r.codes {
		module, err := r.moduleRepo.GetByCode(ctx, tx, code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		return module, nil
	}
	return nil, nil
}

func (r *installationResolver) PreferredCode() string {
	if len(r.codes) == 0 {
		return ""
	}
	return r.codes[0]
}
