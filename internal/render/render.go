// Package render turns a draw into the chat text and the email body.
package render

import (
	"strings"
	"time"

	"drawwatch/internal/lottery"

	"golang.org/x/text/width"
)

// TimeLayout formats the notification time.
const TimeLayout = "2006-01-02 15:04:05"

// cellWidth is the display width of one column in the chat text. Two-digit
// numbers and single CJK labels fill it exactly; longer cells overflow.
const cellWidth = 2

// Message is a rendered notification.
type Message struct {
	Subject string
	Text    string
	HTML    string
}

// Render produces both bodies. at is the notification time.
func Render(d lottery.Draw, at time.Time) (Message, error) {
	html, err := HTML(d, at)
	if err != nil {
		return Message{}, err
	}
	return Message{
		Subject: d.OpenCode,
		Text:    Text(d, at),
		HTML:    html,
	}, nil
}

// Text renders the plain-text chat message: a number row, a colour row and a
// zodiac row, followed by the draw time, period and notification time.
func Text(d lottery.Draw, at time.Time) string {
	balls := d.Balls()
	nums := make([]string, len(balls))
	waves := make([]string, len(balls))
	zods := make([]string, len(balls))
	for i, b := range balls {
		nums[i] = padLeft(b.Number, cellWidth)
		waves[i] = padLeft(b.Label(), cellWidth)
		zods[i] = padLeft(b.Zodiac, cellWidth)
	}

	var sb strings.Builder
	sb.WriteString(strings.Join(nums, " "))
	sb.WriteString("\n")
	sb.WriteString(strings.Join(waves, " "))
	sb.WriteString("\n")
	sb.WriteString(strings.Join(zods, " "))
	sb.WriteString("\n")
	sb.WriteString("開獎時間：")
	sb.WriteString(d.OpenTime)
	sb.WriteString(" 期號：")
	sb.WriteString(d.Expect)
	sb.WriteString("期\n")
	sb.WriteString("通知時間：")
	sb.WriteString(at.Format(TimeLayout))
	return sb.String()
}

// padLeft right-aligns s in a field of n display columns.
func padLeft(s string, n int) string {
	w := displayWidth(s)
	if w >= n {
		return s
	}
	return strings.Repeat(" ", n-w) + s
}

// displayWidth counts East Asian wide and fullwidth runes as two columns.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}
