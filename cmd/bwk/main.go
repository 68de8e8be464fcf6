package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/boardwalkhq/boardwalk/internal/datasource"
	"github.com/boardwalkhq/boardwalk/pkg/api"
	"github.com/boardwalkhq/boardwalk/pkg/config"
	"github.com/boardwalkhq/boardwalk/pkg/model"
	"github.com/boardwalkhq/boardwalk/pkg/ui"
	"github.com/boardwalkhq/boardwalk/pkg/version"
	"github.com/boardwalkhq/boardwalk/pkg/watcher"
	"github.com/boardwalkhq/boardwalk/pkg/workspace"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

func main() {
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	serverURL := flag.String("server", "", "Backend server URL (overrides config)")
	orgID := flag.String("org", "", "Organization ID to open")
	projectKey := flag.String("project", "", "Project key to open (e.g. CONS)")
	offline := flag.String("offline", "", "Render from an offline snapshot file instead of the backend")
	saveSnapshot := flag.String("save-snapshot", "", "Fetch the workspace, write it to a snapshot file, and exit")
	flag.Parse()

	if *help {
		fmt.Println("Usage: bwk [options]")
		fmt.Println("\nA terminal board for boardwalk project tracking.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("bwk %s\n", version.Version)
		os.Exit(0)
	}

	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		// Non-fatal: continue with defaults.
		cfg = config.DefaultConfig()
	}
	if *serverURL != "" {
		cfg.Server.URL = *serverURL
	}
	if *orgID != "" {
		cfg.Workspace.OrganizationID = *orgID
	}
	if *projectKey != "" {
		cfg.Workspace.ProjectKey = *projectKey
	}

	if *offline != "" {
		if err := runOffline(*offline); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	client := newClient(cfg)
	store := workspace.NewStore(client)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	org, project, err := resolveWorkspace(ctx, client, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := store.SwitchProject(ctx, org, project); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading project %s: %v\n", project.ProjectKey, err)
		os.Exit(1)
	}
	cancel()

	// Warm the profile cache for visible assignees.
	warmCtx, warmCancel := context.WithTimeout(context.Background(), 30*time.Second)
	for _, issue := range store.Issues() {
		store.EnsureProfile(warmCtx, issue.AssigneeID)
	}
	warmCancel()

	if *saveSnapshot != "" {
		snap := datasource.Snapshot{
			Org:     store.CurrentOrg(),
			Project: store.CurrentProject(),
			Board:   store.CurrentBoard(),
			Columns: store.Columns().Columns(),
			Issues:  store.Issues(),
		}
		if err := datasource.Save(*saveSnapshot, snap); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing snapshot: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %d issues to %s\n", len(snap.Issues), *saveSnapshot)
		return
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		printStatic(store, false)
		return
	}

	m := ui.NewBoardModel(store, false)
	if err := runTUIProgram(m, nil); err != nil {
		fmt.Fprintf(os.Stderr, "Error running board: %v\n", err)
		os.Exit(1)
	}
}

func newClient(cfg config.Config) api.Client {
	var opts []api.HTTPOption
	if cfg.Server.Token != "" {
		opts = append(opts, api.WithToken(cfg.Server.Token))
	}
	return api.NewHTTPClient(cfg.Server.URL, opts...)
}

// resolveWorkspace picks the organization and project to open: the ones
// pinned in the config if present, otherwise the first of each.
func resolveWorkspace(ctx context.Context, client api.Client, cfg config.Config) (model.Organization, model.Project, error) {
	orgs, err := client.ListOrganizations(ctx)
	if err != nil {
		return model.Organization{}, model.Project{}, fmt.Errorf("listing organizations: %w", err)
	}
	if len(orgs) == 0 {
		return model.Organization{}, model.Project{}, fmt.Errorf("no organizations available for this account")
	}

	org := orgs[0]
	if cfg.Workspace.OrganizationID != "" {
		found := false
		for _, o := range orgs {
			if o.ID == cfg.Workspace.OrganizationID {
				org = o
				found = true
				break
			}
		}
		if !found {
			return model.Organization{}, model.Project{}, fmt.Errorf("organization %s not found", cfg.Workspace.OrganizationID)
		}
	}

	projects, err := client.ListProjects(ctx, org.ID)
	if err != nil {
		return model.Organization{}, model.Project{}, fmt.Errorf("listing projects for org %s: %w", org.ID, err)
	}
	if len(projects) == 0 {
		return model.Organization{}, model.Project{}, fmt.Errorf("organization %s has no projects", org.Name)
	}

	project := projects[0]
	if cfg.Workspace.ProjectKey != "" {
		found := false
		for _, p := range projects {
			if strings.EqualFold(p.ProjectKey, cfg.Workspace.ProjectKey) {
				project = p
				found = true
				break
			}
		}
		if !found {
			return model.Organization{}, model.Project{}, fmt.Errorf("project %s not found in organization %s", cfg.Workspace.ProjectKey, org.Name)
		}
	}

	return org, project, nil
}

// runOffline renders a snapshot file without a backend. The file is watched
// for changes so edits (or a fresh --save-snapshot) show up live.
func runOffline(path string) error {
	store, err := loadSnapshotStore(path)
	if err != nil {
		return err
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		printStatic(store, true)
		return nil
	}

	w, err := watcher.New(path)
	if err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}
	if err := w.Start(); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}
	defer w.Stop()

	m := ui.NewBoardModel(store, true)
	return runTUIProgram(m, func(p *tea.Program, done <-chan struct{}) {
		for {
			select {
			case <-done:
				return
			case _, ok := <-w.Changed():
				if !ok {
					return
				}
				fresh, err := loadSnapshotStore(path)
				if err != nil {
					continue
				}
				p.Send(ui.SnapshotReloadedMsg{Store: fresh})
			}
		}
	})
}

func loadSnapshotStore(path string) (*workspace.Store, error) {
	snap, err := datasource.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot %s: %w", path, err)
	}

	store := workspace.NewStore(nil)
	install := workspace.Snapshot{
		Board:   snap.Board,
		Columns: snap.Columns,
		Issues:  snap.Issues,
	}
	if snap.Org != nil {
		install.Org = *snap.Org
	}
	if snap.Project != nil {
		install.Project = *snap.Project
	}
	store.Install(install)
	return store, nil
}

// printStatic renders the board once for pipes and CI logs.
func printStatic(store *workspace.Store, readOnly bool) {
	width := 120
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}

	m := ui.NewBoardModel(store, readOnly)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: width, Height: 40})
	board, ok := updated.(ui.BoardModel)
	if !ok {
		return
	}
	fmt.Println(board.View())
}

// runTUIProgram runs the bubbletea program with graceful SIGINT/SIGTERM
// shutdown. sidecar, when non-nil, runs alongside the program (e.g. the
// snapshot file watcher) and is told to stop when the program exits.
func runTUIProgram(m ui.BoardModel, sidecar func(*tea.Program, <-chan struct{})) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	if sidecar != nil {
		go sidecar(p, runDone)
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}
