package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"
)

type procConfig struct {
	Name string
	Args []string
	Dir  string
	Env  []string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	build := []procConfig{
		{
			Name: "build-ui-wasm",
			Args: []string{"go", "build", "-o", "ui/main.wasm", "./cmd/ui-wasm"},
			Env:  []string{"GOOS=js", "GOARCH=wasm"},
		},
	}
	if err := runAll(ctx, build); err != nil {
		fmt.Fprintf(os.Stderr, "eventpage dev: %v\n", err)
		os.Exit(1)
	}
	if err := copyWasmExec("ui/wasm_exec.js"); err != nil {
		fmt.Fprintf(os.Stderr, "eventpage dev: %v\n", err)
		os.Exit(1)
	}

	procs := []procConfig{
		{
			Name: "eventpage",
			Args: []string{"go", "run", "./cmd/eventpage", "serve", "--dev"},
			Env: []string{
				"EVENTPAGE_SERVER__ASSETS=ui",
				"EVENTPAGE_SERVER__TEMPLATES=internal/ui/server/templates",
			},
		},
	}
	if err := runAll(ctx, procs); err != nil {
		fmt.Fprintf(os.Stderr, "eventpage dev exited with error: %v\n", err)
		os.Exit(1)
	}
}

// copyWasmExec copies the loader shim matching the local toolchain. Go 1.24
// moved it from misc/wasm to lib/wasm.
func copyWasmExec(dst string) error {
	out, err := exec.Command("go", "env", "GOROOT").Output()
	if err != nil {
		return fmt.Errorf("go env GOROOT: %w", err)
	}
	root := strings.TrimSpace(string(out))
	for _, src := range []string{
		filepath.Join(root, "lib", "wasm", "wasm_exec.js"),
		filepath.Join(root, "misc", "wasm", "wasm_exec.js"),
	} {
		data, err := os.ReadFile(src)
		if err != nil {
			continue
		}
		return os.WriteFile(dst, data, 0o644)
	}
	return fmt.Errorf("wasm_exec.js not found under %s", root)
}

func runAll(ctx context.Context, procs []procConfig) error {
	if len(procs) == 0 {
		return fmt.Errorf("no processes configured")
	}
	var wg sync.WaitGroup
	errCh := make(chan error, len(procs))

	for _, cfg := range procs {
		wg.Add(1)
		go func(cfg procConfig) {
			defer wg.Done()
			cmd := exec.CommandContext(ctx, cfg.Args[0], cfg.Args[1:]...)
			cmd.Stdout = os.Stdout
			cmd.Stderr = os.Stderr
			if cfg.Dir != "" {
				cmd.Dir = cfg.Dir
			}
			if len(cfg.Env) > 0 {
				cmd.Env = append(append([]string{}, os.Environ()...), cfg.Env...)
			}
			if err := cmd.Start(); err != nil {
				errCh <- fmt.Errorf("%s start: %w", cfg.Name, err)
				return
			}
			if err := cmd.Wait(); err != nil {
				// Cancelled processes exit with a signal; that is expected.
				select {
				case <-ctx.Done():
					return
				default:
				}
				errCh <- fmt.Errorf("%s exited: %w", cfg.Name, err)
			}
		}(cfg)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		shutdownDelay := time.After(2 * time.Second)
		select {
		case <-done:
		case <-shutdownDelay:
		}
	case err := <-errCh:
		return err
	case <-done:
		select {
		case err := <-errCh:
			return err
		default:
		}
	}
	return nil
}
