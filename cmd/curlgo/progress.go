package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/curl-bridge/errors"
)

var (
	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4"))

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type progressModel struct {
	spinner spinner.Model
	url     string
	fetch   func() fetchResult
	cancel  context.CancelFunc
	result  *fetchResult

	canceling bool
}

func newProgressModel(url string, cancel context.CancelFunc, fetch func() fetchResult) *progressModel {
	s := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle))
	return &progressModel{
		spinner: s,
		url:     url,
		fetch:   fetch,
		cancel:  cancel,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.start)
}

func (m *progressModel) start() tea.Msg {
	return m.fetch()
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			// The transfer sees the canceled context and returns; quit
			// once its result arrives.
			m.cancel()
			m.canceling = true
			return m, nil
		}

	case fetchResult:
		m.result = &msg
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if m.result != nil {
		return ""
	}
	if m.canceling {
		return fmt.Sprintf("%s canceling %s\n", m.spinner.View(), urlStyle.Render(m.url))
	}
	return fmt.Sprintf("%s fetching %s  %s\n",
		m.spinner.View(),
		urlStyle.Render(m.url),
		helpStyle.Render("q cancel"))
}

func runProgress(url string, cancel context.CancelFunc, fetch func() fetchResult) (fetchResult, error) {
	m := newProgressModel(url, cancel, fetch)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		return fetchResult{}, err
	}
	if m.result == nil {
		return fetchResult{err: errors.Canceled(errors.PhaseHTTP, context.Canceled)}, nil
	}
	return *m.result, nil
}
