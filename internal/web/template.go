package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/operant-chamber/internal/status"
)

const timeFormat = "2006-01-02T15:04:05Z"

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"onOff": func(on bool) string {
		if on {
			return "ON"
		}
		return "OFF"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>Operant Chamber {{.Config.Chamber}}</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Operant Chamber {{.Config.Chamber}}</h1>

<h2>Session</h2>
<table>
<tr><th>Running</th><td id="running" class="{{if .Session.Running}}on{{else}}off{{end}}">{{if .Session.Running}}yes{{else}}no{{end}}</td></tr>
{{if .SessionID}}<tr><th>Session</th><td>{{.SessionID}}</td></tr>{{end}}
<tr><th>Paradigm</th><td>{{.Session.Paradigm}}</td></tr>
<tr><th>Ratio</th><td>{{.Session.Ratio}}</td></tr>
<tr><th>Presses toward reward</th><td>{{.Session.PressCount}}</td></tr>
<tr><th>Rewards</th><td>{{.Session.Rewards}}</td></tr>
{{if .LastRecord}}<tr><th>Last record</th><td>{{.LastRecord}}</td></tr>{{end}}
</table>

<h2>Devices</h2>
<table>
<tr><th>Device</th><td>Pin / Armed / Level</td></tr>
{{range .Session.Devices}}<tr><th>{{.ID}}</th><td>{{.Pin}} / {{if .Armed}}armed{{else}}disarmed{{end}} / <span class="{{if .On}}on{{else}}off{{end}}">{{onOff .On}}</span></td></tr>
{{end}}</table>

<h2>Record Counts</h2>
<table>
<tr><th>Active presses</th><td>{{.Session.Counts.ActivePresses}}</td></tr>
<tr><th>Inactive presses</th><td>{{.Session.Counts.InactivePresses}}</td></tr>
<tr><th>Timeout presses</th><td>{{.Session.Counts.TimeoutPresses}}</td></tr>
<tr><th>Licks</th><td>{{.Session.Counts.Licks}}</td></tr>
<tr><th>Infusions</th><td>{{.Session.Counts.Infusions}}</td></tr>
<tr><th>Stimulations</th><td>{{.Session.Counts.Stims}}</td></tr>
<tr><th>Frames</th><td>{{.Session.Counts.Frames}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> · <a href="/sessions.json">Sessions</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
