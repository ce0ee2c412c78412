package render

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"drawwatch/internal/lottery"
)

type htmlBall struct {
	Number   string
	Zodiac   string
	Color    string
	FontSize string
}

type htmlData struct {
	Balls      []htmlBall
	OpenTime   string
	Expect     string
	NotifiedAt string
}

var emailTemplate = template.Must(template.New("email").Parse(emailHTMLTemplate))

// HTML renders the email body: one coloured ball per number with its zodiac
// underneath, then the draw time, period and notification time.
func HTML(d lottery.Draw, at time.Time) (string, error) {
	data := htmlData{
		OpenTime:   d.OpenTime,
		Expect:     d.Expect,
		NotifiedAt: at.Format(TimeLayout),
	}
	for _, b := range d.Balls() {
		fs := "24px"
		if len([]rune(b.Number)) > 2 {
			fs = "18px"
		}
		data.Balls = append(data.Balls, htmlBall{
			Number:   b.Number,
			Zodiac:   b.Zodiac,
			Color:    b.Wave.Color(),
			FontSize: fs,
		})
	}

	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render email: %w", err)
	}
	return buf.String(), nil
}

const emailHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8" />
  <style>
    body {
      font-family: 'Microsoft YaHei', Arial, sans-serif;
      line-height: 1.6;
      color: #333;
      max-width: 700px;
      margin: 0 auto;
      padding: 20px;
    }
    .container { display: flex; flex-direction: column; align-items: center; }
    .numbers { display: flex; justify-content: center; flex-wrap: wrap; margin: 25px 0; }
    .item { display: flex; flex-direction: column; align-items: center; margin: 0 10px; }
    .ball {
      display: flex;
      justify-content: center;
      align-items: center;
      width: 55px;
      height: 55px;
      border-radius: 50%;
      color: white;
      font-weight: bold;
      margin-bottom: 8px;
    }
    .zodiac { font-size: 16px; text-align: center; min-width: 55px; }
    .info-line { width: 100%; margin: 12px 0; font-size: 18px; text-align: center; }
    .label { font-weight: bold; margin-right: 5px; }
  </style>
</head>
<body>
  <div class="container">
    <div class="numbers">
{{- range .Balls}}
      <div class="item">
        <div class="ball" style="background-color: {{.Color}}; font-size: {{.FontSize}};">{{.Number}}</div>
        <div class="zodiac">{{.Zodiac}}</div>
      </div>
{{- end}}
    </div>
    <div class="info-line">
      <span class="label">開獎時間：</span><span>{{.OpenTime}}</span>
      <span class="label">期號：</span><span>{{.Expect}}期</span>
    </div>
    <div class="info-line">
      <span class="label">通知時間：</span><span>{{.NotifiedAt}}</span>
    </div>
  </div>
</body>
</html>
`
