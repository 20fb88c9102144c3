package core

import (
	"context"
	"fmt"
	"os/exec"

	"go.uber.org/zap"

	"m3m/internal/domain"
	"m3m/internal/storage/config"
)

// Runner starts external processes. The default implementation shells out;
// tests substitute a recorder.
type Runner interface {
	// Run starts the named command and waits for it to exit.
	Run(ctx context.Context, name string, args ...string) error
	// Output runs the command and returns its combined standard output.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

// NewExecRunner returns a Runner backed by os/exec.
func NewExecRunner() Runner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

func (execRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Launcher starts a game through the mod-loader CLI with a chosen profile.
type Launcher struct {
	log    *zap.Logger
	runner Runner
	binary string
	paths  config.Paths
}

// NewLauncher creates a launcher that invokes the given loader binary.
func NewLauncher(log *zap.Logger, runner Runner, binary string, paths config.Paths) *Launcher {
	return &Launcher{log: log, runner: runner, binary: binary, paths: paths}
}

// LaunchArgs builds the loader invocation for a game and profile. A game
// with a pinned executable path is passed through explicitly and skips the
// store's own launch bootstrap.
func (l *Launcher) LaunchArgs(game domain.Game, profileName string) []string {
	args := []string{"launch", "--game", game.CliID, "-p", l.paths.ProfileFile(game, profileName)}
	if game.ExePath != "" {
		args = append(args, "--exe", game.ExePath, "--skip-steam-init")
	}
	return args
}

// Launch starts the game with the named profile and waits for the loader to
// exit.
func (l *Launcher) Launch(ctx context.Context, game domain.Game, profileName string) error {
	args := l.LaunchArgs(game, profileName)
	l.log.Info("launching game",
		zap.String("game", game.ID),
		zap.String("profile", profileName),
		zap.Strings("args", args),
	)
	if err := l.runner.Run(ctx, l.binary, args...); err != nil {
		return fmt.Errorf("launching %s: %w", game.ID, err)
	}
	return nil
}
