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
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// RenderPositions renders rows of jar counts.
//
// In machine mode every value is right-aligned in a column as wide as the
// largest value plus one, one row per line, with no header. Otherwise the
// rows are drawn as a bordered table under header. An empty rows slice
// renders as the empty string.
func RenderPositions(header []string, rows [][]int, maxValue int) string {
	if len(rows) == 0 {
		return ""
	}
	if GetPersonality().Level == PersonalityMachine {
		return plainPositions(rows, maxValue)
	}

	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = make([]string, len(row))
		for j, v := range row {
			cells[i][j] = strconv.Itoa(v)
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(Styles.TableEdge).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return Styles.TableHead
			}
			return Styles.TableCell
		}).
		Rows(cells...)
	if len(header) > 0 {
		t = t.Headers(header...)
	}
	return t.Render() + "\n"
}

func plainPositions(rows [][]int, maxValue int) string {
	width := len(strconv.Itoa(maxValue)) + 1
	var b strings.Builder
	for _, row := range rows {
		for _, v := range row {
			s := strconv.Itoa(v)
			if pad := width - len(s); pad > 0 {
				b.WriteString(strings.Repeat(" ", pad))
			}
			b.WriteString(s)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// JarHeader returns "jar 0" .. "jar n-1".
func JarHeader(n int) []string {
	h := make([]string, n)
	for i := range h {
		h[i] = "jar " + strconv.Itoa(i)
	}
	return h
}
