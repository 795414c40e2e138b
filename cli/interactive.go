package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"skyview/manager"
)

const interactiveHelp = `?text            suggest places for text
#n               show weather for suggestion n
:here            show weather at the current device location
:units metric    switch units (metric or imperial)
:quit            leave
anything else    show weather for that place or "lat, lon"
`

func newInteractiveCommand(pipeline Pipeline, output *string) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Line oriented session with debounced suggestions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := &session{
				pipeline: pipeline,
				out:      &lockedWriter{w: cmd.OutOrStdout()},
				format:   *output,
			}
			return s.run(cmd.Context(), cmd.InOrStdin())
		},
	}
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

type session struct {
	pipeline Pipeline
	out      io.Writer
	format   string

	prev     manager.State
	inflight sync.WaitGroup
}

func (s *session) run(ctx context.Context, in io.Reader) error {
	s.prev = s.pipeline.Snapshot()
	s.pipeline.Subscribe(s.onChange)
	defer s.pipeline.Close()

	fmt.Fprint(s.out, interactiveHelp)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == ":quit" {
			break
		}
		s.handle(ctx, line)
	}

	s.inflight.Wait()
	return scanner.Err()
}

func (s *session) handle(ctx context.Context, line string) {
	switch {
	case strings.HasPrefix(line, "?"):
		s.pipeline.EditQuery(ctx, strings.TrimPrefix(line, "?"))

	case strings.HasPrefix(line, "#"):
		n, err := strconv.Atoi(strings.TrimPrefix(line, "#"))
		suggestions := s.pipeline.Snapshot().Suggestions
		if err != nil || n < 1 || n > len(suggestions) {
			fmt.Fprintf(s.out, "no suggestion %s\n", strings.TrimPrefix(line, "#"))
			return
		}
		place := suggestions[n-1]
		s.async(func() { _, _ = s.pipeline.PickSuggestion(ctx, place) })

	case line == ":here":
		s.async(func() { _, _ = s.pipeline.UseMyLocation(ctx) })

	case strings.HasPrefix(line, ":units"):
		unit, err := manager.ParseUnitSystem(strings.TrimSpace(strings.TrimPrefix(line, ":units")))
		if err != nil {
			fmt.Fprintf(s.out, "%s\n", err)
			return
		}
		s.pipeline.SetUnit(unit)

	case strings.HasPrefix(line, ":"):
		fmt.Fprintf(s.out, "unknown command %s\n", line)

	default:
		s.async(func() { _, _ = s.pipeline.Submit(ctx, line) })
	}
}

// async runs an intent without blocking input; only the latest intent's
// outcome reaches the screen.
func (s *session) async(fn func()) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		fn()
	}()
}

// onChange renders the difference between the previous and the new state.
// Calls are serialized by the pipeline.
func (s *session) onChange(st manager.State) {
	prev := s.prev
	s.prev = st

	if st.Loading && !prev.Loading {
		fmt.Fprintln(s.out, "loading...")
	}

	if !samePlaces(st.Suggestions, prev.Suggestions) && len(st.Suggestions) > 0 {
		renderSuggestions(s.out, st.Suggestions)
	}

	if st.Status == manager.Failed && st.Err != nil && st.Err != prev.Err {
		fmt.Fprintf(s.out, "error: %s\n", st.Err)
	}

	if st.View != nil && (st.View != prev.View || st.Units != prev.Units) {
		if err := render(s.out, st.View, st.Units, s.format); err != nil {
			fmt.Fprintf(s.out, "error: %s\n", err)
		}
	}
}

func samePlaces(a, b []manager.Place) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
