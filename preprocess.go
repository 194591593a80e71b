// Copyright 2023 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package mdtree

import (
	"strings"

	"github.com/rivo/uniseg"
)

const tabStopSize = 4

// Preprocess normalizes Markdown source into lines.
// NUL characters are removed,
// "\n", "\r\n", and a lone "\r" are all treated as line endings,
// and tabs are expanded to the next multiple of four columns.
// Columns are counted in grapheme clusters.
// The returned lines do not contain line endings.
// A missing final line ending is treated as if it were present,
// so Preprocess("a") and Preprocess("a\n") both return ["a"].
func Preprocess(text string) []string {
	text = strings.ReplaceAll(text, "\x00", "")
	var lines []string
	for len(text) > 0 {
		i := strings.IndexAny(text, "\r\n")
		if i < 0 {
			lines = append(lines, expandTabs(text))
			break
		}
		lines = append(lines, expandTabs(text[:i]))
		if text[i] == '\r' && i+1 < len(text) && text[i+1] == '\n' {
			i++
		}
		text = text[i+1:]
	}
	return lines
}

func expandTabs(line string) string {
	if !strings.Contains(line, "\t") {
		return line
	}
	sb := new(strings.Builder)
	sb.Grow(len(line) + tabStopSize)
	col := 0
	for {
		i := strings.IndexByte(line, '\t')
		if i < 0 {
			sb.WriteString(line)
			return sb.String()
		}
		sb.WriteString(line[:i])
		col += uniseg.GraphemeClusterCount(line[:i])
		n := tabStopSize - col%tabStopSize
		for j := 0; j < n; j++ {
			sb.WriteByte(' ')
		}
		col += n
		line = line[i+1:]
	}
}
