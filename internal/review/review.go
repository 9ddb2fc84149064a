// Package review provides an interactive shell for settling ambiguous
// mentions left behind by a resolution run. Each ambiguous parent name is
// presented with its candidate entities; the reviewer picks one or leaves
// the mention ambiguous. Decisions update the stored mentions only, never
// the catalog.
package review

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/scales-okn/jed/internal/audit"
	"github.com/scales-okn/jed/internal/storage"
	"github.com/scales-okn/jed/internal/types"
)

// Reviewer represents the interactive review shell.
type Reviewer struct {
	store    storage.Storage
	runID    string
	rl       *readline.Instance
	ctx      context.Context
	catalog  map[string]types.CatalogEntry
	groups   []*group
	cursor   int
	resolved int
	commands map[string]commandHandler
}

type commandHandler func(args []string) error

// group collects the ambiguous mentions sharing one parent name.
type group struct {
	parent     string
	candidates []string
	mentions   int
	cases      map[string]bool
}

// New creates a Reviewer for one run.
func New(store storage.Storage, runID string) (*Reviewer, error) {
	if store == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if runID == "" {
		return nil, fmt.Errorf("run ID is required")
	}
	r := &Reviewer{
		store:    store,
		runID:    runID,
		commands: make(map[string]commandHandler),
	}
	r.registerCommands()
	return r, nil
}

// buildGroups folds ambiguous mentions into per-parent groups, ordered by
// parent name. Candidate sets are unioned across mentions and sorted.
func buildGroups(mentions []*types.Mention) []*group {
	byParent := make(map[string]*group)
	for _, m := range mentions {
		g, ok := byParent[m.ParentName]
		if !ok {
			g = &group{parent: m.ParentName, cases: make(map[string]bool)}
			byParent[m.ParentName] = g
		}
		g.mentions++
		g.cases[m.CaseID] = true
		for _, id := range m.AmbiguousEntityIDs {
			if !contains(g.candidates, id) {
				g.candidates = append(g.candidates, id)
			}
		}
	}
	groups := make([]*group, 0, len(byParent))
	for _, g := range byParent {
		sort.Strings(g.candidates)
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].parent < groups[j].parent })
	return groups
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Run starts the review loop.
func (r *Reviewer) Run(ctx context.Context) error {
	r.ctx = ctx

	entries, err := r.store.GetCatalog(ctx, r.runID)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	r.catalog = make(map[string]types.CatalogEntry, len(entries))
	for _, e := range entries {
		r.catalog[e.EntityID] = e
	}

	ambiguous, err := r.store.GetAmbiguousMentions(ctx, r.runID)
	if err != nil {
		return fmt.Errorf("failed to load ambiguous mentions: %w", err)
	}
	r.groups = buildGroups(ambiguous)
	if len(r.groups) == 0 {
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s No ambiguous mentions in run %s\n", green("✓"), r.runID)
		return nil
	}

	cyan := color.New(color.FgCyan).SprintFunc()
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            cyan("review> "),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()
	r.rl = rl

	r.printWelcome(len(ambiguous))
	r.showCurrent()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			} else if err == io.EOF {
				r.printFarewell()
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if err := r.processInput(line); err != nil {
			if err == io.EOF {
				return nil
			}
			red := color.New(color.FgRed).SprintFunc()
			fmt.Printf("%s %v\n", red("Error:"), err)
		}
		if len(r.groups) == 0 {
			r.printFarewell()
			return nil
		}
	}
}

func (r *Reviewer) processInput(line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}
	if handler, ok := r.commands[parts[0]]; ok {
		return handler(parts[1:])
	}
	// a bare number is shorthand for pick
	if _, err := strconv.Atoi(parts[0]); err == nil {
		return r.cmdPick(parts[:1])
	}
	return fmt.Errorf("unknown command %q, type 'help' for available commands", parts[0])
}

func (r *Reviewer) registerCommands() {
	r.commands["help"] = r.cmdHelp
	r.commands["?"] = r.cmdHelp
	r.commands["show"] = r.cmdShow
	r.commands["pick"] = r.cmdPick
	r.commands["skip"] = r.cmdSkip
	r.commands["next"] = r.cmdSkip
	r.commands["n"] = r.cmdSkip
	r.commands["list"] = r.cmdList
	r.commands["status"] = r.cmdStatus
	r.commands["exit"] = r.cmdExit
	r.commands["quit"] = r.cmdExit
}

func (r *Reviewer) printWelcome(mentions int) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Printf("\n%s\n", cyan("Ambiguity review"))
	fmt.Printf("Run %s: %d ambiguous names across %d mentions\n", r.runID, len(r.groups), mentions)
	fmt.Println()
	fmt.Println("Type a candidate number to assign it, 'skip' to leave ambiguous,")
	fmt.Println("'help' for all commands")
	fmt.Println()
}

func (r *Reviewer) printFarewell() {
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Printf("\n%s Review done: %d names assigned, %d left ambiguous\n",
		green("✓"), r.resolved, len(r.groups))
}

// showCurrent prints the group under the cursor with numbered candidates.
func (r *Reviewer) showCurrent() {
	if len(r.groups) == 0 {
		return
	}
	g := r.groups[r.cursor]
	yellow := color.New(color.FgYellow, color.Bold).SprintFunc()
	fmt.Printf("\n[%d/%d] %s\n", r.cursor+1, len(r.groups), yellow(g.parent))
	fmt.Printf("  %d mentions in %d cases\n", g.mentions, len(g.cases))
	for i, id := range g.candidates {
		fmt.Printf("  %d. %s\n", i+1, r.describeCandidate(id))
	}
}

func (r *Reviewer) describeCandidate(id string) string {
	e, ok := r.catalog[id]
	if !ok {
		return id
	}
	desc := fmt.Sprintf("%s  %s (%s)", id, e.Name, e.Label)
	if e.IsFJC {
		desc += fmt.Sprintf(" [FJC %s]", e.FJCID)
	} else if e.IsRegistry {
		desc += fmt.Sprintf(" [roster %s]", e.RegistryID)
	}
	return desc
}

func (r *Reviewer) cmdHelp(args []string) error {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Printf("\n%s\n", cyan("Available Commands:"))
	fmt.Println()
	commands := []struct {
		name string
		desc string
	}{
		{"pick <n>", "Assign candidate n to the current name (a bare number works too)"},
		{"skip, next, n", "Leave the current name ambiguous and move on"},
		{"show", "Show the current name again"},
		{"list", "List the names still waiting for review"},
		{"status", "Show review progress"},
		{"help, ?", "Show this help message"},
		{"exit, quit", "Exit the review"},
	}
	for _, cmd := range commands {
		fmt.Printf("  %s  %s\n", green(cmd.name), cmd.desc)
	}
	fmt.Println()
	return nil
}

func (r *Reviewer) cmdShow(args []string) error {
	r.showCurrent()
	return nil
}

func (r *Reviewer) cmdPick(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: pick <candidate number>")
	}
	g := r.groups[r.cursor]
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(g.candidates) {
		return fmt.Errorf("candidate number must be between 1 and %d", len(g.candidates))
	}
	id := g.candidates[n-1]

	updated, err := r.store.ResolveAmbiguousMentions(r.ctx, r.runID, g.parent, id)
	if err != nil {
		return err
	}
	if err := r.store.Record(r.ctx, audit.NewEvent(r.runID, audit.EventTypeLabelDecision,
		audit.PhaseLabel, audit.SeverityInfo,
		fmt.Sprintf("review assigned %s to %q (%d mentions)", id, g.parent, updated),
		map[string]interface{}{
			"name":      g.parent,
			"entity_id": id,
			"mentions":  updated,
		})); err != nil {
		return fmt.Errorf("failed to record review decision: %w", err)
	}

	green := color.New(color.FgGreen).SprintFunc()
	fmt.Printf("%s %s -> %s (%d mentions updated)\n", green("✓"), g.parent, id, updated)
	r.resolved++

	r.groups = append(r.groups[:r.cursor], r.groups[r.cursor+1:]...)
	if r.cursor >= len(r.groups) {
		r.cursor = 0
	}
	r.showCurrent()
	return nil
}

func (r *Reviewer) cmdSkip(args []string) error {
	if r.cursor == len(r.groups)-1 {
		r.cursor = 0
	} else {
		r.cursor++
	}
	r.showCurrent()
	return nil
}

func (r *Reviewer) cmdList(args []string) error {
	fmt.Println()
	for i, g := range r.groups {
		marker := "  "
		if i == r.cursor {
			marker = "> "
		}
		fmt.Printf("%s%d. %s (%d mentions, %d candidates)\n",
			marker, i+1, g.parent, g.mentions, len(g.candidates))
	}
	fmt.Println()
	return nil
}

func (r *Reviewer) cmdStatus(args []string) error {
	fmt.Printf("\n%d assigned, %d remaining\n\n", r.resolved, len(r.groups))
	return nil
}

func (r *Reviewer) cmdExit(args []string) error {
	r.printFarewell()
	r.rl.Close()
	return io.EOF
}
