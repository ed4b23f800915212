package task

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/tessara/questdrive/api"
	"github.com/tessara/questdrive/event"
	"github.com/tessara/questdrive/quest"
	"github.com/tessara/questdrive/registry"
)

// PlayDesktop drives the play-on-desktop kind by presenting a synthetic
// running-process record for the quest's application and waiting for the
// server-pushed progress to reach the target. The record is removed on
// every exit path.
type PlayDesktop struct{}

// NewPlayDesktop creates the play-on-desktop strategy.
func NewPlayDesktop() *PlayDesktop { return &PlayDesktop{} }

// Kinds implements Strategy.
func (*PlayDesktop) Kinds() []quest.TaskKind {
	return []quest.TaskKind{quest.TaskPlayOnDesktop}
}

// Run implements Strategy.
func (*PlayDesktop) Run(ctx context.Context, it *Item) error {
	if !it.Bindings.Desktop {
		return Skipf("quest %s requires the desktop client", it.Quest.ID)
	}
	if it.Bindings.Process == nil {
		return Skipf("no process registry on this host")
	}

	appID := it.Quest.Config.Application.ID
	app, err := it.Bindings.API.PublicApplication(ctx, appID)
	if err != nil {
		return fmt.Errorf("application lookup for %s: %w", appID, err)
	}

	exe, ok := windowsExecutable(app)
	if !ok {
		return Skipf("application %s has no windows executable", app.Name)
	}

	proc := syntheticProcess(app, exe)
	it.Bindings.Process.Set(proc)
	it.Bindings.Bus.Publish(event.TopicProcessChange, event.ProcessChange{
		Added: []registry.Process{proc},
	})
	defer func() {
		it.Bindings.Process.Clear()
		it.Bindings.Bus.Publish(event.TopicProcessChange, event.ProcessChange{
			Removed: []registry.Process{proc},
		})
	}()

	it.Logger.Info("faking game presence",
		slog.String("quest", it.Quest.Name()),
		slog.String("application", app.Name),
		slog.String("exe", exe.Name),
		slog.Int("pid", proc.PID),
	)

	if err := awaitProgress(ctx, it); err != nil {
		return err
	}

	it.Logger.Info("play task completed", slog.String("quest", it.Quest.Name()))
	return nil
}

// windowsExecutable picks the application's win32 non-launcher
// executable. Executable names may carry a leading ">" marker that is
// not part of the on-disk name.
func windowsExecutable(app api.Application) (api.Executable, bool) {
	for _, exe := range app.Executables {
		if exe.OS == "win32" {
			exe.Name = strings.TrimPrefix(exe.Name, ">")
			return exe, true
		}
	}
	return api.Executable{}, false
}

// syntheticProcess builds a plausible running-process record for the
// application: an install path derived from the application name, a
// visible non-launcher process, and a random pid in the usual
// user-process range.
func syntheticProcess(app api.Application, exe api.Executable) registry.Process {
	pid := 1000 + rand.IntN(30000)
	return registry.Process{
		ID:          app.ID,
		Name:        app.Name,
		ProcessName: app.Name,
		ExeName:     exe.Name,
		ExePath:     fmt.Sprintf("c:/program files/%s/%s", strings.ToLower(app.Name), exe.Name),
		CmdLine:     fmt.Sprintf(`C:\Program Files\%s\%s`, app.Name, exe.Name),
		PID:         pid,
		PIDPath:     []int{pid},
		Hidden:      false,
		IsLauncher:  false,
		Start:       time.Now(),
	}
}
