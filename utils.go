package main

import (
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
)

func readClipboardText() (string, error) {
	if runtime.GOOS == "darwin" {
		// Rich text on macOS reaches the plain clipboard as RTF unless asked.
		if out, err := exec.Command("pbpaste", "-Prefer", "txt").Output(); err == nil {
			return string(out), nil
		}
	}
	return clipboard.ReadAll()
}

func writeClipboardText(text string) error {
	return clipboard.WriteAll(text)
}

func isRTF(text string) bool {
	return strings.HasPrefix(text, `{\rtf`) || strings.Contains(text, `\rtf1`)
}

func isHTML(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	if !strings.HasPrefix(t, "<") {
		return false
	}
	for _, tag := range []string{"<html", "<body", "<div", "<p>", "<span"} {
		if strings.Contains(t, tag) {
			return true
		}
	}
	return false
}

// rtfWords maps control words that carry visible text.
var rtfWords = map[string]string{
	"par":  "\n",
	"line": "\n",
	"tab":  "\t",
}

// rtfSkipGroups are destinations whose whole group is metadata.
var rtfSkipGroups = map[string]bool{
	"fonttbl":    true,
	"colortbl":   true,
	"stylesheet": true,
	"info":       true,
	"*":          true,
}

func isLetter(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// extractTextFromRTF keeps the visible characters of an RTF document.
func extractTextFromRTF(rtf string) string {
	var out strings.Builder
	out.Grow(len(rtf))

	depth := 0
	skipBelow := -1 // groups deeper than this are skipped; -1 for none
	groupStart := false

	for i := 0; i < len(rtf); i++ {
		c := rtf[i]
		switch c {
		case '{':
			depth++
			groupStart = true
			continue
		case '}':
			if skipBelow >= 0 && depth <= skipBelow+1 {
				skipBelow = -1
			}
			depth--
			groupStart = false
			continue
		case '\r', '\n':
			continue
		}
		skipping := skipBelow >= 0

		if c != '\\' {
			groupStart = false
			if !skipping && (c >= 32 || c == '\t') {
				out.WriteByte(c)
			}
			continue
		}
		if i+1 >= len(rtf) {
			break
		}
		next := rtf[i+1]
		switch {
		case next == '\\' || next == '{' || next == '}':
			if !skipping {
				out.WriteByte(next)
			}
			i++
		case next == '\'' && i+3 < len(rtf):
			if v, err := strconv.ParseUint(rtf[i+2:i+4], 16, 8); err == nil && !skipping {
				out.WriteRune(rune(v))
			}
			i += 3
		case next == '~':
			if !skipping {
				out.WriteByte(' ')
			}
			i++
		case next == '*':
			if groupStart && !skipping {
				skipBelow = depth - 1
			}
			i++
		case isLetter(next):
			j := i + 1
			for j < len(rtf) && isLetter(rtf[j]) {
				j++
			}
			word := rtf[i+1 : j]
			if j < len(rtf) && rtf[j] == '-' {
				j++
			}
			for j < len(rtf) && isDigit(rtf[j]) {
				j++
			}
			if j < len(rtf) && rtf[j] == ' ' {
				j++
			}
			i = j - 1
			if groupStart && rtfSkipGroups[word] && !skipping {
				skipBelow = depth - 1
			} else if s, ok := rtfWords[word]; ok && !skipping {
				out.WriteString(s)
			}
		default:
			i++
		}
		groupStart = false
	}
	return out.String()
}

var htmlEntities = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&nbsp;", " ",
	"&amp;", "&",
)

// extractTextFromHTML drops tags, turns block ends into newlines and decodes
// the common entities.
func extractTextFromHTML(html string) string {
	var out strings.Builder
	out.Grow(len(html))

	for len(html) > 0 {
		open := strings.IndexByte(html, '<')
		if open < 0 {
			out.WriteString(html)
			break
		}
		out.WriteString(html[:open])
		end := strings.IndexByte(html[open:], '>')
		if end < 0 {
			break
		}
		tag := strings.ToLower(html[open+1 : open+end])
		switch {
		case tag == "br" || tag == "br/" || tag == "br /",
			tag == "/p", tag == "/div", tag == "/li", strings.HasPrefix(tag, "/h"):
			out.WriteByte('\n')
		}
		html = html[open+end+1:]
	}
	return htmlEntities.Replace(out.String())
}

// cleanClipboardText turns pasted content into plain text with \n line ends.
func cleanClipboardText(text string) string {
	switch {
	case text == "":
		return ""
	case isRTF(text):
		text = extractTextFromRTF(text)
	case isHTML(text):
		text = extractTextFromHTML(text)
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var out strings.Builder
	out.Grow(len(text))
	for _, r := range text {
		if r == '\n' || r == '\t' || r >= 32 && r != 127 {
			out.WriteRune(r)
		}
	}
	return out.String()
}
