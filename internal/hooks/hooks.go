// Package hooks runs user scripts around command executions.
//
// Scripts live in one directory per hook point under the hooks directory,
// e.g. {hooks_dir}/post-execute/10-notify. Executable files run in name
// order with CMDFLOW_* variables describing the execution.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/cristianoliveira/cmdflow/internal/command"
	"github.com/cristianoliveira/cmdflow/internal/logging"
	"github.com/cristianoliveira/cmdflow/internal/ports"
)

// Hook points.
const (
	PreExecute  = "pre-execute"
	PostExecute = "post-execute"
	OnFailure   = "on-failure"
)

// Failure modes.
const (
	FailureWarn   = "warn"
	FailureIgnore = "ignore"
)

const defaultTimeout = 30 * time.Second

// Config selects the scripts and how failures are reported.
type Config struct {
	Dir         string
	Timeout     time.Duration
	FailureMode string
	Logger      logging.Logger
}

// FromConfig reads hooks_enabled, hooks_dir, hooks_timeout (seconds) and
// hooks_failure_mode. It returns false when hooks are off.
func FromConfig(cfg ports.ConfigProvider, logger logging.Logger) (Config, bool) {
	if !cfg.GetBool("hooks_enabled", true) {
		return Config{}, false
	}
	dir := cfg.Get("hooks_dir", "")
	if dir == "" {
		dir = filepath.Join(cfg.Get("config_dir", "."), "hooks")
	}
	return Config{
		Dir:         dir,
		Timeout:     time.Duration(cfg.GetInt("hooks_timeout", int(defaultTimeout/time.Second))) * time.Second,
		FailureMode: cfg.Get("hooks_failure_mode", FailureWarn),
		Logger:      logger,
	}, true
}

// Runner executes hook scripts. It is a command.ExecutionListener.
type Runner struct {
	cfg Config
}

var _ command.ExecutionListener = (*Runner)(nil)

// New creates a runner for cfg.
func New(cfg Config) *Runner {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.FailureMode == "" {
		cfg.FailureMode = FailureWarn
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	return &Runner{cfg: cfg}
}

// Scripts returns the executable scripts of point in name order.
func (r *Runner) Scripts(point string) []string {
	dir := filepath.Join(r.cfg.Dir, point)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var scripts []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil || info.Mode()&0o111 == 0 {
			continue
		}
		scripts = append(scripts, filepath.Join(dir, e.Name()))
	}
	sort.Strings(scripts)
	return scripts
}

// Run executes every script of point with env added to the process
// environment. Script output goes to out. Failures of all scripts are
// joined; every script runs regardless.
func (r *Runner) Run(ctx context.Context, point string, env map[string]string, out io.Writer) error {
	scripts := r.Scripts(point)
	if len(scripts) == 0 {
		return nil
	}
	if out == nil {
		out = io.Discard
	}
	base := append(os.Environ(),
		"CMDFLOW_HOOK_POINT="+point,
		"CMDFLOW_HOOK_TIMESTAMP="+time.Now().Format(time.RFC3339),
	)
	for k, v := range env {
		base = append(base, k+"="+v)
	}

	var errs []error
	for _, script := range scripts {
		if err := r.runScript(ctx, script, base, out); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Runner) runScript(ctx context.Context, script string, env []string, out io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(ctx, script)
	cmd.Env = env
	cmd.Stdout = out
	cmd.Stderr = out
	cmd.WaitDelay = time.Second
	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("timed out after %s", r.cfg.Timeout)
	}
	if err != nil {
		r.cfg.Logger.Warn("hooks: script failed", "script", script, "error", err.Error())
		return fmt.Errorf("hook %s: %w", filepath.Base(script), err)
	}
	r.cfg.Logger.Debug("hooks: script completed", "script", script, "duration", time.Since(start).String())
	return nil
}

func (r *Runner) notify(ectx *command.ExecutionContext, point string, env map[string]string) {
	err := r.Run(ectx, point, env, ectx.ErrOut)
	if err == nil || r.cfg.FailureMode == FailureIgnore {
		return
	}
	fmt.Fprintf(ectx.ErrOut, "warning: %s hooks: %v\n", point, err)
}

func commandEnv(cmd command.Command) map[string]string {
	return map[string]string{"CMDFLOW_COMMAND": command.ShellifyName(cmd.Metadata().Name)}
}

func (r *Runner) PreCommandExecuted(cmd command.Command, ectx *command.ExecutionContext) {
	r.notify(ectx, PreExecute, commandEnv(cmd))
}

func (r *Runner) PostCommandExecuted(cmd command.Command, ectx *command.ExecutionContext, result command.Result) {
	env := commandEnv(cmd)
	env["CMDFLOW_RESULT_SUCCESS"] = strconv.FormatBool(result.Success)
	env["CMDFLOW_RESULT_MESSAGE"] = result.Message
	r.notify(ectx, PostExecute, env)
}

func (r *Runner) PostCommandFailure(cmd command.Command, ectx *command.ExecutionContext, err error) {
	env := commandEnv(cmd)
	env["CMDFLOW_ERROR"] = err.Error()
	r.notify(ectx, OnFailure, env)
}
