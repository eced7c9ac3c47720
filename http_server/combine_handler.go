package http_server

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/danthegoodman1/hitmerge/hitfile"
	"github.com/danthegoodman1/hitmerge/source"
	"github.com/danthegoodman1/hitmerge/utils"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type (
	// CombineReqBody overrides the server defaults for one run. The input
	// directory is fixed by the server, and outputs stay in the output root.
	CombineReqBody struct {
		// Glob relative to the server's input directory
		Pattern *string `validate:"omitempty,min=1"`
		// Bare file name, no directories
		OutputPath *string `validate:"omitempty,min=1"`
		Format     *string `validate:"omitempty,oneof=text parquet"`
		MaxRows    *int    `validate:"omitempty,gt=0"`
	}

	ErrorResponse struct {
		Error string
	}
)

var ErrPathEscapes = errors.New("path must stay inside the configured directory")

func relativeOnly(p string) error {
	if filepath.IsAbs(p) || p == ".." || strings.HasPrefix(p, "../") || strings.Contains(p, "/../") {
		return ErrPathEscapes
	}
	return nil
}

func (s *HTTPServer) CombineHandler(c *CustomContext) error {
	var reqBody CombineReqBody
	if err := ValidateRequest(c, &reqBody); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	cfg := s.defaults
	cfg.Pattern = utils.Deref(reqBody.Pattern, cfg.Pattern)
	cfg.Format = utils.Deref(reqBody.Format, cfg.Format)
	cfg.MaxRows = utils.Deref(reqBody.MaxRows, cfg.MaxRows)
	if reqBody.OutputPath != nil {
		if filepath.Base(*reqBody.OutputPath) != *reqBody.OutputPath {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: ErrPathEscapes.Error()})
		}
		cfg.OutputPath = *reqBody.OutputPath
	}
	if err := relativeOnly(filepath.ToSlash(cfg.Pattern)); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	ctx := c.Request().Context()
	logger := zerolog.Ctx(ctx)
	logger.Debug().Interface("config", cfg).Msg("running combine")

	s.runMu.Lock()
	stats, err := s.runner.Run(ctx, cfg)
	s.runMu.Unlock()
	if err != nil {
		if isUserError(err) {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		}
		return c.InternalError(err, "error running combine")
	}

	return c.JSON(http.StatusOK, stats)
}

func isUserError(err error) bool {
	var nie *source.NoInputError
	var pe *hitfile.ParseError
	var ve validator.ValidationErrors
	return errors.As(err, &nie) || errors.As(err, &pe) || errors.As(err, &ve)
}
