package usecase

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/Siloq-app/siloq-wordpress-sub001/internal/apperror"
	"github.com/Siloq-app/siloq-wordpress-sub001/internal/entity"
	"github.com/Siloq-app/siloq-wordpress-sub001/internal/repository"
	"github.com/Siloq-app/siloq-wordpress-sub001/pkg/utils"
)

const defaultRedirectListLimit = 500

// RedirectManager records redirects created when content moves.
type RedirectManager interface {
	Create(ctx context.Context, source, target string, code int) (*entity.Redirect, error)
	Resolve(ctx context.Context, source string) (*entity.Redirect, error)
	List(ctx context.Context) ([]*entity.Redirect, error)
}

type redirectUseCase struct {
	redirects repository.RedirectRepository
	logger    *zap.Logger
}

// NewRedirectManager creates the redirect use case.
func NewRedirectManager(redirects repository.RedirectRepository, logger *zap.Logger) RedirectManager {
	return &redirectUseCase{redirects: redirects, logger: logger}
}

func (uc *redirectUseCase) Create(ctx context.Context, source, target string, code int) (*entity.Redirect, error) {
	if code == 0 {
		code = http.StatusMovedPermanently
	}
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
	default:
		return nil, apperror.New(apperror.KindValidation, "redirect.Create", fmt.Sprintf("unsupported redirect status %d", code))
	}

	src, err := utils.NormalizePath(source)
	if err != nil || source == "" {
		return nil, apperror.Wrap(apperror.KindValidation, "redirect.Create", "invalid source path", err)
	}
	dst, err := utils.NormalizePath(target)
	if err != nil || target == "" {
		return nil, apperror.Wrap(apperror.KindValidation, "redirect.Create", "invalid target path", err)
	}
	if src == dst {
		return nil, apperror.New(apperror.KindValidation, "redirect.Create", "source and target are the same path")
	}

	r := &entity.Redirect{SourcePath: src, TargetPath: dst, StatusCode: code}
	if err := uc.redirects.Save(ctx, r); err != nil {
		return nil, err
	}
	uc.logger.Info("redirect created", zap.String("source", src), zap.String("target", dst), zap.Int("code", code))
	return r, nil
}

func (uc *redirectUseCase) Resolve(ctx context.Context, source string) (*entity.Redirect, error) {
	src, err := utils.NormalizePath(source)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, "redirect.Resolve", "invalid source path", err)
	}
	return uc.redirects.FindLatestBySource(ctx, src)
}

func (uc *redirectUseCase) List(ctx context.Context) ([]*entity.Redirect, error) {
	return uc.redirects.List(ctx, defaultRedirectListLimit)
}
