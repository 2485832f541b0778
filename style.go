package main

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// painter 按输出端的终端能力着色, 非终端时原样输出
type painter struct {
	ok  lipgloss.Style
	bad lipgloss.Style
}

func newPainter(w io.Writer) *painter {
	r := lipgloss.NewRenderer(w)
	return &painter{
		ok:  r.NewStyle().Foreground(lipgloss.Color("2")),
		bad: r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
}

func (p *painter) success(s string) string {
	return p.ok.Render(s)
}

func (p *painter) failure(s string) string {
	return p.bad.Render(s)
}
