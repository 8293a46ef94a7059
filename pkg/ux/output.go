// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette: cookie browns over glass-jar blues.
var (
	ColorJarBright  = lipgloss.Color("#7FC8F8")
	ColorJarPrimary = lipgloss.Color("#4A9FD8")
	ColorJarDeep    = lipgloss.Color("#2B6C9E")
	ColorCookie     = lipgloss.Color("#C68642")
	ColorCrumb      = lipgloss.Color("#8D5524")
	ColorSlate      = lipgloss.Color("#5C6B73")

	ColorSuccess = lipgloss.Color("#5FD38D")
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
	ColorMuted   = ColorSlate
)

// Styles provides pre-configured lipgloss styles
var Styles = struct {
	Title     lipgloss.Style
	Bold      lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Highlight lipgloss.Style
	Safe      lipgloss.Style

	Box       lipgloss.Style
	TableHead lipgloss.Style
	TableCell lipgloss.Style
	TableEdge lipgloss.Style
}{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(ColorJarBright),
	Bold:      lipgloss.NewStyle().Bold(true),
	Muted:     lipgloss.NewStyle().Foreground(ColorMuted),
	Success:   lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning:   lipgloss.NewStyle().Foreground(ColorWarning),
	Error:     lipgloss.NewStyle().Foreground(ColorError).Bold(true),
	Highlight: lipgloss.NewStyle().Foreground(ColorCookie).Bold(true),
	Safe:      lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true),

	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorJarDeep).
		Padding(0, 1),
	TableHead: lipgloss.NewStyle().Bold(true).Foreground(ColorCookie).Padding(0, 1),
	TableCell: lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right),
	TableEdge: lipgloss.NewStyle().Foreground(ColorJarDeep),
}

// Icon is a status glyph with a plain fallback for machine output.
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconInfo    Icon = "•"
	IconCookie  Icon = "◉"
)

// Render returns the icon, or its plain-text label in machine mode.
func (i Icon) Render() string {
	if GetPersonality().Level == PersonalityMachine {
		switch i {
		case IconSuccess:
			return "OK:"
		case IconWarning:
			return "WARN:"
		case IconError:
			return "ERROR:"
		default:
			return "-"
		}
	}
	return string(i)
}

func styled(style lipgloss.Style, text string) string {
	if !ShouldShowColors() {
		return text
	}
	return style.Render(text)
}

// Title writes a section heading.
func Title(w io.Writer, text string) {
	if GetPersonality().Level == PersonalityMachine {
		fmt.Fprintf(w, "== %s ==\n", text)
		return
	}
	fmt.Fprintln(w, Styles.Title.Render(text))
}

// Success writes text with the success icon.
func Success(w io.Writer, text string) {
	fmt.Fprintf(w, "%s %s\n", styled(Styles.Success, IconSuccess.Render()), text)
}

// Warning writes text with the warning icon.
func Warning(w io.Writer, text string) {
	fmt.Fprintf(w, "%s %s\n", styled(Styles.Warning, IconWarning.Render()), text)
}

// Error writes text with the error icon.
func Error(w io.Writer, text string) {
	fmt.Fprintf(w, "%s %s\n", styled(Styles.Error, IconError.Render()), text)
}

// Info writes text with the info bullet.
func Info(w io.Writer, text string) {
	fmt.Fprintf(w, "%s %s\n", styled(Styles.Muted, IconInfo.Render()), text)
}

// Muted writes dimmed text.
func Muted(w io.Writer, text string) {
	fmt.Fprintln(w, styled(Styles.Muted, text))
}

// Highlight renders text in the accent style without writing it.
func Highlight(text string) string {
	return styled(Styles.Highlight, text)
}

// Box writes content inside a rounded border, or as indented lines in
// machine mode.
func Box(w io.Writer, title, content string) {
	if GetPersonality().Level == PersonalityMachine {
		if title != "" {
			fmt.Fprintln(w, title)
		}
		for _, line := range strings.Split(content, "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
		return
	}
	body := content
	if title != "" {
		body = Styles.Title.Render(title) + "\n" + content
	}
	fmt.Fprintln(w, Styles.Box.Render(body))
}
