// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package extract pulls generated HTML out of an AI completion.
package extract

import (
	"regexp"
	"strings"
)

// fenceRe matches a fenced code block. The info word right after the
// opening fence is captured separately from the interior, which is matched
// non-greedily so the first closing fence ends the block.
var fenceRe = regexp.MustCompile("(?s)```([A-Za-z0-9_+.-]*)(.*?)```")

// HTML returns the interior of the first fenced block in text. The block may
// be untagged or tagged "html" in any case. It reports false when there is no
// complete fence, the block is empty or it is tagged with another language;
// callers treat that as the model declining and show text to the user as is.
//
// Only the first block is used. A nested or malformed fence closes early on
// the inner marker and usually yields an empty interior, which is a no-match.
func HTML(text string) (string, bool) {
	m := fenceRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	if tag := m[1]; tag != "" && !strings.EqualFold(tag, "html") {
		return "", false
	}
	html := strings.TrimSpace(m[2])
	if html == "" {
		return "", false
	}
	return html, true
}
