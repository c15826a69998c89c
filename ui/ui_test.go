package ui

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/pranshuj73/gifzoo/hasura"
)

// fakeGifs serves a fixed number of GIFs per category
type fakeGifs struct {
	mu      sync.Mutex
	total   map[string]int
	err     error
	queries []string
}

func (f *fakeGifs) SearchGifs(ctx context.Context, category string, limit, offset int) ([]hasura.Gif, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.queries = append(f.queries, fmt.Sprintf("%s@%d", category, offset))
	if f.err != nil {
		return nil, f.err
	}
	var out []hasura.Gif
	for i := offset; i < offset+limit && i < f.total[category]; i++ {
		out = append(out, gif(category, i))
	}
	return out, nil
}

func (f *fakeGifs) SampleGifs(ctx context.Context, category string, limit int) ([]hasura.Gif, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.queries = append(f.queries, category)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]hasura.Gif, limit)
	for i := range out {
		out[i] = gif(category, i)
	}
	return out, nil
}

func (f *fakeGifs) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeGifs) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func gif(category string, i int) hasura.Gif {
	return hasura.Gif{URL: fmt.Sprintf("https://gifs.example/%s/%d.gif", category, i), Category: category}
}

// drain runs cmd and everything it leads to through m, returning every
// message produced. Spinner ticks are dropped so animation never recurses.
func drain(t *testing.T, m tea.Model, cmd tea.Cmd) []tea.Msg {
	t.Helper()

	var out []tea.Msg
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(t, steps, 1000, "command loop did not settle")

		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}

		switch msg := next().(type) {
		case nil:
		case spinner.TickMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			out = append(out, msg)
			_, follow := m.Update(msg)
			queue = append(queue, follow)
		}
	}
	return out
}

func press(m tea.Model, keys ...tea.KeyMsg) []tea.Cmd {
	var cmds []tea.Cmd
	for _, k := range keys {
		_, cmd := m.Update(k)
		cmds = append(cmds, cmd)
	}
	return cmds
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typed(s string) []tea.KeyMsg {
	keys := make([]tea.KeyMsg, 0, len(s))
	for _, r := range s {
		keys = append(keys, runes(string(r)))
	}
	return keys
}

func msgsOf[T tea.Msg](msgs []tea.Msg) []T {
	var out []T
	for _, msg := range msgs {
		if v, ok := msg.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
