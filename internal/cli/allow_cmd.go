package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/NikitaCOEUR/compleat/internal/auth"
	"github.com/NikitaCOEUR/compleat/internal/config"
	"github.com/NikitaCOEUR/compleat/internal/derrors"
	"github.com/NikitaCOEUR/compleat/internal/logger"
)

// AllowParams contains parameters for the Allow and Revoke commands
type AllowParams struct {
	EngineParams
	// Path is the directory to authorize. Defaults to the directory of the
	// deepest local config found from Dir.
	Path string
	Out  io.Writer
}

// Allow trusts the matcher scripts of a project in their current state.
// Editing any of them afterwards requires a new Allow.
func Allow(params AllowParams) error {
	log := logger.New(logLevel(params.LogLevel), params.LogOutput)

	dir, cfg, err := resolveProject(params)
	if err != nil {
		return err
	}
	if len(cfg.Scripts) == 0 {
		log.Warn().Str("path", dir).Msg("No matcher scripts configured")
	}

	hash, err := auth.HashScripts(cfg.Scripts)
	if err != nil {
		return derrors.NewAuthorizationError(dir, "failed to hash scripts", err)
	}

	authMgr, err := auth.New(params.AuthPath)
	if err != nil {
		return derrors.NewAuthorizationError(dir, "failed to initialize auth", err)
	}
	if authMgr.Trusted(dir, hash) {
		log.Debug().Str("path", dir).Msg("Already authorized")
		_, err = fmt.Fprintf(output(params.Out), "Already authorized: %s\n", dir)
		return err
	}
	if err := authMgr.Allow(dir, hash); err != nil {
		return derrors.NewAuthorizationError(dir, "failed to authorize", err)
	}
	log.Info().Str("path", dir).Strs("scripts", cfg.Scripts).Msg("Directory authorized")

	_, err = fmt.Fprintf(output(params.Out), "Authorized: %s\n", dir)
	return err
}

// Revoke removes the authorization of a project
func Revoke(params AllowParams) error {
	dir := params.Path
	if dir == "" {
		resolved, _, err := resolveProject(params)
		if err != nil {
			return err
		}
		dir = resolved
	}

	authMgr, err := auth.New(params.AuthPath)
	if err != nil {
		return derrors.NewAuthorizationError(dir, "failed to initialize auth", err)
	}
	if err := authMgr.Revoke(dir); err != nil {
		return derrors.NewAuthorizationError(dir, "failed to revoke", err)
	}

	_, err = fmt.Fprintf(output(params.Out), "Revoked: %s\n", dir)
	return err
}

// List displays all authorized directories
func List(authPath string, out io.Writer) error {
	authMgr, err := auth.New(authPath)
	if err != nil {
		return derrors.NewAuthorizationError("", "failed to initialize auth", err)
	}

	w := output(out)
	paths := authMgr.List()
	if len(paths) == 0 {
		_, err = fmt.Fprintln(w, "No authorized projects")
		return err
	}

	if _, err := fmt.Fprintln(w, "Authorized projects:"); err != nil {
		return err
	}
	for _, path := range paths {
		if _, err := fmt.Fprintf(w, "  %s\n", path); err != nil {
			return err
		}
	}
	return nil
}

// resolveProject finds the directory whose trust gates the scripts and the
// configuration seen from it
func resolveProject(params AllowParams) (string, *config.Config, error) {
	start := params.Path
	if start == "" {
		start = params.Dir
	}
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		start = wd
	}
	start, err := filepath.Abs(start)
	if err != nil {
		return "", nil, err
	}

	cfg, files, err := config.New().LoadHierarchy(start, "")
	if err != nil {
		return "", nil, err
	}
	globalPath, _ := config.GetGlobalConfigPath()
	dir, ok := trustDir(files, globalPath, "")
	if !ok {
		return "", nil, derrors.NewAuthorizationError(start, "no local configuration found", nil)
	}
	return dir, cfg, nil
}

func logLevel(level string) string {
	if level == "" {
		return "warn"
	}
	return level
}
