package cmd

import (
	"fmt"
	"os"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/nimbusops/console/internal/marker"
	"github.com/nimbusops/console/internal/platform"
	"github.com/nimbusops/console/internal/state"
	"github.com/nimbusops/console/internal/widget"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the platform a one-off question from the terminal",
	Long: `ask sends a single inquiry to the backend and prints the streamed
response. Artifacts are summarized by title; open the web console to
inspect them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

// askStyles is the terminal rendering for one-shot answers.
type askStyles struct {
	answer   lipgloss.Style
	artifact lipgloss.Style
	tools    lipgloss.Style
	errText  lipgloss.Style
}

func defaultAskStyles() askStyles {
	return askStyles{
		answer:   lipgloss.NewStyle(),
		artifact: lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("108")),
		tools:    lipgloss.NewStyle().Faint(true),
		errText:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

// askSink prints the decoded stream to stdout. Intermediate renders are
// dropped; only the final residual and the side events are shown.
type askSink struct {
	styles askStyles
	failed bool
}

func (s *askSink) RenderText(string) error { return nil }

func (s *askSink) Artifact(p marker.ArtifactPayload) error {
	title := p.Title
	if title == "" {
		title = p.ID
	}
	fmt.Printf("%s\n", s.styles.artifact.Render(fmt.Sprintf("[artifact: %s (%s)]", title, p.Type)))
	return nil
}

func (s *askSink) CommandCard(c marker.CmdCard) error {
	fmt.Printf("%s\n", s.styles.artifact.Render(fmt.Sprintf("$ %s", c.Command)))
	if c.Explanation != "" {
		fmt.Printf("%s\n", s.styles.tools.Render(c.Explanation))
	}
	return nil
}

func (s *askSink) Suggestions(items []string) error {
	if len(items) == 0 {
		return nil
	}
	fmt.Printf("%s\n", s.styles.tools.Render("Follow-ups: "+strings.Join(items, " · ")))
	return nil
}

func (s *askSink) Event(marker.Kind, string) {}

func (s *askSink) Final(residual string) error {
	fmt.Println(s.styles.answer.Render(strings.TrimSpace(residual)))
	return nil
}

func (s *askSink) ToolsUsed(names []string) error {
	if len(names) == 0 {
		return nil
	}
	fmt.Printf("%s\n", s.styles.tools.Render("Tools: "+strings.Join(names, ", ")))
	return nil
}

func (s *askSink) StreamError(msg string) error {
	s.failed = true
	fmt.Fprintln(os.Stderr, s.styles.errText.Render("Error: "+msg))
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	client, err := platform.NewClient(platform.Config{
		BaseURL:   cfg.BackendURL,
		WSBaseURL: cfg.WSURL,
		Token:     cfg.Token,
		Timeout:   cfg.Timeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("creating backend client: %w", err)
	}

	dir, err := stateDir(cfg)
	if err != nil {
		return err
	}
	prefs, err := state.Open(dir, logger)
	if err != nil {
		return fmt.Errorf("opening state store: %w", err)
	}

	ctrl := widget.New(widget.SurfaceInquiry, client, prefs, logger)
	defer ctrl.Dispose()

	ctx := cmd.Context()
	if err := ctrl.Init(ctx); err != nil {
		return fmt.Errorf("connecting to backend: %w", err)
	}

	sink := &askSink{styles: defaultAskStyles()}
	if err := ctrl.Send(ctx, strings.Join(args, " "), "", sink); err != nil {
		return fmt.Errorf("asking: %w", err)
	}
	if sink.failed {
		return fmt.Errorf("the backend reported an error")
	}
	return nil
}
